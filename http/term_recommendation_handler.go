package http

import (
	"context"
	"log/slog"
	"net/http"

	"emi-calculator/domain"
)

type TermRecommender interface {
	RecommendTerm(ctx context.Context, input domain.TermRecommendationInput) (domain.TermRecommendationResult, error)
}

type TermRecommendationHandler struct {
	service TermRecommender
	logger  *slog.Logger
}

func NewTermRecommendationHandler(service TermRecommender, logger *slog.Logger) *TermRecommendationHandler {
	return &TermRecommendationHandler{service: service, logger: logger}
}

// RecommendTerm handles POST /loan/recommend-term.
func (h *TermRecommendationHandler) RecommendTerm(w http.ResponseWriter, r *http.Request) {
	var input domain.TermRecommendationInput
	if err := decodeJSON(r, &input); err != nil {
		h.logger.DebugContext(r.Context(), "error decoding request body", slog.Any("error", err))
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}

	result, err := h.service.RecommendTerm(r.Context(), input)
	if err != nil {
		h.logger.InfoContext(r.Context(), "term recommendation rejected", slog.Any("error", err))
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, r, http.StatusOK, result)
}
