package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/agencyos/enrich-api/internal/entity"
	"github.com/agencyos/enrich-api/internal/infra/http/middleware"
	"github.com/agencyos/enrich-api/internal/usecase"
)

const maxBodyBytes = 1 << 16

type EnrichContactExecutor interface {
	Execute(ctx context.Context, input usecase.EnrichContactInput) (*usecase.EnrichContactOutput, error)
}

type EnrichHandler struct {
	UseCase      EnrichContactExecutor
	ProviderName string
	rateLimiter  *RateLimiter
	logger       *zap.Logger
}

func NewEnrichHandler(uc EnrichContactExecutor, providerName string, limiter *RateLimiter, logger *zap.Logger) *EnrichHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrichHandler{
		UseCase:      uc,
		ProviderName: providerName,
		rateLimiter:  limiter,
		logger:       logger,
	}
}

// HandleContact serves POST /api/enrich/contact.
func (h *EnrichHandler) HandleContact(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		writeErrorResponse(w, http.StatusTooManyRequests, usecase.CodeRateLimited, "Too many requests. Please try again later.")
		return
	}

	// An empty body is a request without an email, not malformed JSON.
	var req entity.EnrichmentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeInvalidJSON, "Invalid JSON body")
		return
	}

	output, err := h.UseCase.Execute(r.Context(), usecase.EnrichContactInput{Email: req.Email})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if output.CacheChecked {
		middleware.RecordCacheResult(output.Cached)
	}
	outcome := "success"
	if output.Cached {
		outcome = "cached"
	}
	middleware.RecordEnrichment(output.Provider, outcome)

	writeJSON(w, http.StatusOK, output.Profile)
}

func (h *EnrichHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *usecase.DomainError
	if errors.As(err, &domainErr) {
		middleware.RecordEnrichment(h.ProviderName, "invalid")
		writeErrorResponse(w, domainErr.StatusCode, domainErr.Code, domainErr.Message)
		return
	}

	if pe, ok := entity.AsProviderError(err); ok {
		middleware.RecordEnrichment(pe.Provider, string(pe.Failure))
		if pe.Failure != entity.FailureNoMatch {
			middleware.RecordIntegrationError(pe.Provider)
			h.logger.Warn("Enrichment lookup failed",
				zap.String("provider", pe.Provider),
				zap.String("failure", string(pe.Failure)),
				zap.Error(pe.Cause),
			)
		}
		writeErrorResponse(w, pe.StatusCode(), string(pe.Failure), pe.PublicMessage())
		return
	}

	if errors.Is(err, context.Canceled) {
		h.logger.Debug("Client cancelled enrichment request", zap.String("path", r.URL.Path))
		return
	}

	h.logger.Error("Unexpected enrichment error", zap.Error(err))
	writeErrorResponse(w, http.StatusInternalServerError, usecase.CodeInternal, "Internal server error")
}
