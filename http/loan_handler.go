package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"emi-calculator/domain"
)

// LoanCalculator is the service surface the loan handlers need.
type LoanCalculator interface {
	Calculate(ctx context.Context, raw domain.RawLoanInput) (domain.Calculation, domain.Breakdown, error)
	Schedule(ctx context.Context, raw domain.RawLoanInput) (domain.AmortizationResult, []domain.ScheduleEntry, error)
	History(ctx context.Context, limit int) ([]domain.Calculation, error)
}

type LoanHandler struct {
	service LoanCalculator
	logger  *slog.Logger
}

func NewLoanHandler(service LoanCalculator, logger *slog.Logger) *LoanHandler {
	return &LoanHandler{service: service, logger: logger}
}

type calculateResponse struct {
	Calculation domain.Calculation `json:"calculation"`
	Breakdown   domain.Breakdown   `json:"breakdown"`
}

type scheduleResponse struct {
	Result   domain.AmortizationResult `json:"result"`
	Schedule []domain.ScheduleEntry    `json:"schedule"`
}

// CalculateLoan handles POST /loan/calculate.
func (h *LoanHandler) CalculateLoan(w http.ResponseWriter, r *http.Request) {
	var raw domain.RawLoanInput
	if err := decodeJSON(r, &raw); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}

	calc, breakdown, err := h.service.Calculate(r.Context(), raw)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, r, http.StatusOK, calculateResponse{Calculation: calc, Breakdown: breakdown})
}

// Schedule handles POST /loan/schedule.
func (h *LoanHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var raw domain.RawLoanInput
	if err := decodeJSON(r, &raw); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}

	result, entries, err := h.service.Schedule(r.Context(), raw)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, r, http.StatusOK, scheduleResponse{Result: result, Schedule: entries})
}

// History handles GET /loan/history?limit=N.
func (h *LoanHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	calcs, err := h.service.History(r.Context(), limit)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, r, http.StatusOK, calcs)
}
