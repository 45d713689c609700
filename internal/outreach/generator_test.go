package outreach

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propscout/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func listing() domain.ScoredListing {
	return domain.ScoredListing{
		MergedListing: domain.MergedListing{
			Address:      "123 Main St, Beverly Hills, CA",
			Price:        450_000,
			DaysOnMarket: 75,
			PriceDrops:   2,
		},
		MotivationScore: 55,
	}
}

func TestGenerateFallsBackToTemplateWithoutKey(t *testing.T) {
	g := NewGenerator(Config{}, testLogger())

	msg := g.Generate(context.Background(), listing())
	assert.Contains(t, msg, "123 Main St, Beverly Hills, CA")
	assert.Contains(t, msg, "75 days")
	assert.Contains(t, msg, "2 price reduction(s)")
	assert.Contains(t, msg, "$450,000.00")
	assert.Contains(t, msg, "Best regards")
}

func TestGenerateUsesChatCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[1].Content, "123 Main St")

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Dear owner, ..."}},
			},
		})
	}))
	defer srv.Close()

	g := NewGenerator(Config{BaseURL: srv.URL, APIKey: "sk-test"}, testLogger())

	msg := g.Generate(context.Background(), listing())
	assert.Equal(t, "Dear owner, ...", msg)
}

func TestGenerateFallsBackOnAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := NewGenerator(Config{BaseURL: srv.URL, APIKey: "sk-test"}, testLogger())

	msg := g.Generate(context.Background(), listing())
	assert.Contains(t, msg, "123 Main St", "API failure degrades to the template")
}

func TestGenerateFallsBackOnEmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	g := NewGenerator(Config{BaseURL: srv.URL, APIKey: "sk-test"}, testLogger())

	msg := g.Generate(context.Background(), listing())
	assert.Contains(t, msg, "Best regards")
}

func TestTemplateSkipsZeroPriceDrops(t *testing.T) {
	l := listing()
	l.PriceDrops = 0

	msg := templateMessage(l)
	assert.NotContains(t, msg, "price reduction")
}
