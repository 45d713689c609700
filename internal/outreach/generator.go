// Package outreach generates seller outreach copy for stored properties. It
// calls the OpenAI chat completions API when a key is configured and falls
// back to a deterministic template otherwise, so callers always get a
// message.
package outreach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"propscout/internal/domain"
	"propscout/internal/export"
)

const (
	defaultBaseURL = "https://api.openai.com"
	defaultModel   = "gpt-4"

	requestTimeout = 30 * time.Second

	systemPrompt = "You are a professional real estate investor crafting an outreach message."
)

// Config holds the OpenAI connection parameters. An empty APIKey disables
// the API entirely and every message comes from the template.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Generator produces outreach messages for properties.
type Generator struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	logger     *slog.Logger
}

// NewGenerator creates a Generator. Empty BaseURL and Model fall back to the
// OpenAI defaults.
func NewGenerator(cfg Config, logger *slog.Logger) *Generator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return &Generator{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		logger:     logger.With(slog.String("component", "outreach")),
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate returns an outreach message for the listing. Any API failure is
// logged and replaced by the template message, so the returned string is
// always usable.
func (g *Generator) Generate(ctx context.Context, l domain.ScoredListing) string {
	if g.apiKey == "" {
		return templateMessage(l)
	}

	msg, err := g.complete(ctx, l)
	if err != nil {
		g.logger.WarnContext(ctx, "outreach generation fell back to template",
			slog.String("address", l.Address),
			slog.String("error", err.Error()),
		)
		return templateMessage(l)
	}
	return msg
}

func (g *Generator) complete(ctx context.Context, l domain.ScoredListing) (string, error) {
	prompt := fmt.Sprintf(`Generate a professional and empathetic outreach message for a property owner.

Property Details:
- Address: %s
- Days on Market: %d
- Current Price: %s
- Price Drops: %d

The message should be friendly, professional, and highlight our ability to provide a quick, cash transaction.`,
		l.Address, l.DaysOnMarket, export.Currency(l.Price), l.PriceDrops)

	body, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("outreach: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("outreach: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("outreach: chat completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("outreach: chat completion: HTTP %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("outreach: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("outreach: empty completion")
	}
	return parsed.Choices[0].Message.Content, nil
}

// templateMessage is the deterministic fallback. It references the same
// details the prompt does so the copy stays specific to the property.
func templateMessage(l domain.ScoredListing) string {
	var b strings.Builder
	b.WriteString("Hello,\n\n")
	fmt.Fprintf(&b, "I noticed your property at %s has been on the market for %d days", l.Address, l.DaysOnMarket)
	if l.PriceDrops > 0 {
		fmt.Fprintf(&b, " with %d price reduction(s)", l.PriceDrops)
	}
	b.WriteString(". ")
	fmt.Fprintf(&b, "I am a local investor and I would like to make a cash offer near your asking price of %s, ", export.Currency(l.Price))
	b.WriteString("with a fast close and no contingencies.\n\n")
	b.WriteString("If you are open to a conversation, I would be glad to discuss the details at your convenience.\n\n")
	b.WriteString("Best regards")
	return b.String()
}
