package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"propscout/internal/domain"
)

// Searcher runs a full aggregation search and returns ranked listings. It is
// declared locally so the handler package does not depend on the concrete
// pipeline implementation.
type Searcher interface {
	Run(ctx context.Context, filter domain.SearchFilter) ([]domain.ScoredListing, error)
}

// PropertyReader provides stored property lookups.
type PropertyReader interface {
	Get(ctx context.Context, id string) (domain.ScoredListing, error)
	ListByZip(ctx context.Context, zipCode string) ([]domain.ScoredListing, error)
}

// OutreachGenerator produces seller outreach copy for a property.
type OutreachGenerator interface {
	Generate(ctx context.Context, l domain.ScoredListing) string
}

// Exporter renders stored properties to CSV.
type Exporter interface {
	Export(ctx context.Context, ids []string) (domain.ExportResult, error)
}

// PropertyHandler serves the property search, lookup, outreach, and export
// endpoints.
type PropertyHandler struct {
	searcher   Searcher
	properties PropertyReader
	outreach   OutreachGenerator
	exporter   Exporter
	logger     *slog.Logger
}

// NewPropertyHandler creates a PropertyHandler.
func NewPropertyHandler(searcher Searcher, properties PropertyReader, outreach OutreachGenerator, exporter Exporter, logger *slog.Logger) *PropertyHandler {
	return &PropertyHandler{
		searcher:   searcher,
		properties: properties,
		outreach:   outreach,
		exporter:   exporter,
		logger:     logger,
	}
}

// searchResponse wraps the search endpoint output.
type searchResponse struct {
	Properties []domain.ScoredListing `json:"properties"`
	Count      int                    `json:"count"`
}

// Search runs the aggregation pipeline for the requested ZIP codes and
// returns the ranked results. The request blocks until every ZIP code has
// been fetched, merged, and scored.
// POST /api/properties/search
func (h *PropertyHandler) Search(w http.ResponseWriter, r *http.Request) {
	log := logHandler(h.logger, "search")

	var filter domain.SearchFilter
	if err := decodeJSON(w, r, &filter); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := filter.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	listings, err := h.searcher.Run(r.Context(), filter)
	if err != nil {
		log.ErrorContext(r.Context(), "search failed",
			slog.Any("zip_codes", filter.ZipCodes),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Properties: listings,
		Count:      len(listings),
	})
}

// Get returns a single stored property by its ID.
// GET /api/properties/{id}
func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing property id")
		return
	}

	listing, err := h.properties.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "property not found")
			return
		}
		logHandler(h.logger, "get").ErrorContext(r.Context(), "get property failed",
			slog.String("property_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get property")
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

// ListByZip returns the stored results of earlier aggregation runs for a ZIP
// code. It never contacts the upstream sources.
// GET /api/zips/{zip}/properties
func (h *PropertyHandler) ListByZip(w http.ResponseWriter, r *http.Request) {
	zip := pathParam(r, "zip")
	if zip == "" {
		writeError(w, http.StatusBadRequest, "missing zip code")
		return
	}

	listings, err := h.properties.ListByZip(r.Context(), zip)
	if err != nil {
		logHandler(h.logger, "list_by_zip").ErrorContext(r.Context(), "list properties failed",
			slog.String("zip_code", zip),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list properties")
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Properties: listings,
		Count:      len(listings),
	})
}

// Outreach generates an outreach message for a stored property.
// GET /api/properties/{id}/outreach
func (h *PropertyHandler) Outreach(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing property id")
		return
	}

	listing, err := h.properties.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "property not found")
			return
		}
		logHandler(h.logger, "outreach").ErrorContext(r.Context(), "get property failed",
			slog.String("property_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get property")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": h.outreach.Generate(r.Context(), listing),
	})
}

// exportRequest is the body of the export endpoint.
type exportRequest struct {
	PropertyIDs []string `json:"property_ids"`
}

// Export renders the requested properties to CSV and streams the file back.
// The archive location, when the export was also written to object storage,
// is exposed via the X-Archive-Path header.
// POST /api/properties/export
func (h *PropertyHandler) Export(w http.ResponseWriter, r *http.Request) {
	log := logHandler(h.logger, "export")

	var req exportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.PropertyIDs) == 0 {
		writeError(w, http.StatusBadRequest, "property_ids must not be empty")
		return
	}

	result, err := h.exporter.Export(r.Context(), req.PropertyIDs)
	if err != nil {
		log.ErrorContext(r.Context(), "export failed",
			slog.Int("property_ids", len(req.PropertyIDs)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="propscout-export.csv"`)
	if result.ArchivePath != "" {
		w.Header().Set("X-Archive-Path", result.ArchivePath)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(result.CSV)
}
