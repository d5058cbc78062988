package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emi-calculator/domain"
	"emi-calculator/logger"
	"emi-calculator/repository"
	"emi-calculator/service"
	"emi-calculator/validation"
)

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"request_id"`
	Error     *struct {
		Code    string                  `json:"code"`
		Message string                  `json:"message"`
		Fields  []validation.FieldError `json:"fields"`
	} `json:"error"`
}

func newTestRouter(t *testing.T, limiter *RateLimiter) http.Handler {
	t.Helper()
	log := logger.Discard()
	limits := validation.DefaultLimits()
	loans := service.NewLoanService(repository.NewLoanRepositoryMemory(), repository.NewMockCache(), limits, log)
	terms := service.NewTermRecommendationService(limits, log)

	return NewRouter(Dependencies{Loans: loans, Terms: terms, RateLimiter: limiter, Logger: log})
}

func postJSON(t *testing.T, h http.Handler, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestCalculateLoanHandler_OK(t *testing.T) {
	router := newTestRouter(t, nil)

	w, env := postJSON(t, router, "/loan/calculate",
		`{"principal": 500000, "annual_rate_percent": "10.5", "term_years": 3}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.RequestID)
	assert.Equal(t, env.RequestID, w.Header().Get(RequestIDHeader))

	var data calculateResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 16251.22, data.Calculation.Result.PeriodicPayment)
	assert.Equal(t, 585043.98, data.Calculation.Result.TotalPayment)
	assert.Equal(t, 85043.98, data.Calculation.Result.TotalInterest)
	assert.Equal(t, 85.46, data.Breakdown.PrincipalShare)
}

func TestCalculateLoanHandler_ValidationErrors(t *testing.T) {
	router := newTestRouter(t, nil)

	w, env := postJSON(t, router, "/loan/calculate",
		`{"principal": "abc", "annual_rate_percent": 75, "term_years": 3}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, domain.CodeValidation, env.Error.Code)
	require.Len(t, env.Error.Fields, 2)
	assert.Equal(t, validation.FieldPrincipal, env.Error.Fields[0].Field)
	assert.Equal(t, "Please enter a valid loan amount", env.Error.Fields[0].Message)
	assert.Equal(t, validation.FieldAnnualRate, env.Error.Fields[1].Field)
}

func TestCalculateLoanHandler_MethodNotAllowed(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/loan/calculate", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCalculateLoanHandler_BadRequest(t *testing.T) {
	router := newTestRouter(t, nil)

	w, env := postJSON(t, router, "/loan/calculate", `{invalid-json}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrCodeBadRequest, env.Error.Code)
}

func TestCalculateLoanHandler_UnsupportedMediaType(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/loan/calculate", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestScheduleHandler(t *testing.T) {
	router := newTestRouter(t, nil)

	w, env := postJSON(t, router, "/loan/schedule",
		`{"principal": "1,20,000", "annual_rate_percent": "0", "term_years": "1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var data scheduleResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 10000.0, data.Result.PeriodicPayment)
	require.Len(t, data.Schedule, 12)
	assert.Equal(t, 0.0, data.Schedule[11].Balance)
}

func TestHistoryHandler(t *testing.T) {
	router := newTestRouter(t, nil)

	for _, body := range []string{
		`{"principal": 100000, "annual_rate_percent": 9, "term_years": 2}`,
		`{"principal": 200000, "annual_rate_percent": 9, "term_years": 2}`,
	} {
		w, _ := postJSON(t, router, "/loan/calculate", body)
		require.Equal(t, http.StatusOK, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/loan/history?limit=1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var calcs []domain.Calculation
	require.NoError(t, json.Unmarshal(env.Data, &calcs))
	require.Len(t, calcs, 1)
	assert.Equal(t, 200000.0, calcs[0].Input.Principal)

	req = httptest.NewRequest(http.MethodGet, "/loan/history?limit=abc", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecommendTermHandler(t *testing.T) {
	router := newTestRouter(t, nil)

	w, env := postJSON(t, router, "/loan/recommend-term", `{
		"principal": 500000,
		"annual_rate_percent": 10.5,
		"min_term_years": 1,
		"max_term_years": 5,
		"max_monthly_payment": 20000,
		"preference": "minimize_interest"
	}`)

	require.Equal(t, http.StatusOK, w.Code)
	var result domain.TermRecommendationResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 3, result.RecommendedTermYears)
}

func TestRecommendTermHandler_NoViableTerm(t *testing.T) {
	router := newTestRouter(t, nil)

	w, env := postJSON(t, router, "/loan/recommend-term", `{
		"principal": 500000,
		"annual_rate_percent": 10.5,
		"min_term_years": 1,
		"max_term_years": 5,
		"max_monthly_payment": 10,
		"preference": "balanced"
	}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, domain.CodeNoViable, env.Error.Code)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fixed-id", w.Header().Get(RequestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)
	postJSON(t, router, "/loan/calculate", `{"principal": 500000, "annual_rate_percent": 10.5, "term_years": 3}`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "emi_calculator_calculations_total")
	assert.Contains(t, w.Body.String(), "emi_http_requests_total")
}

func TestRouter_RateLimited(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	t.Cleanup(limiter.Stop)
	router := newTestRouter(t, limiter)

	body := `{"principal": 500000, "annual_rate_percent": 10.5, "term_years": 3}`
	for i := 0; i < 2; i++ {
		w, _ := postJSON(t, router, "/loan/calculate", body)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w, env := postJSON(t, router, "/loan/calculate", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, ErrCodeTooManyRequests, env.Error.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	// Health checks bypass the limiter.
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	hw := httptest.NewRecorder()
	router.ServeHTTP(hw, req)
	assert.Equal(t, http.StatusOK, hw.Code)
}

type failingLoans struct{}

func (failingLoans) Calculate(context.Context, domain.RawLoanInput) (domain.Calculation, domain.Breakdown, error) {
	return domain.Calculation{}, domain.Breakdown{}, errors.New("boom")
}

func (failingLoans) Schedule(context.Context, domain.RawLoanInput) (domain.AmortizationResult, []domain.ScheduleEntry, error) {
	return domain.AmortizationResult{}, nil, domain.NewDomainError(domain.CodeOverflow, "too large", domain.ErrNumericOverflow)
}

func (failingLoans) History(context.Context, int) ([]domain.Calculation, error) {
	return nil, errors.New("db down")
}

func TestHandlers_ErrorMapping(t *testing.T) {
	log := logger.Discard()
	router := NewRouter(Dependencies{
		Loans:  failingLoans{},
		Terms:  service.NewTermRecommendationService(validation.DefaultLimits(), log),
		Logger: log,
	})

	w, env := postJSON(t, router, "/loan/calculate", `{"principal": 1, "annual_rate_percent": 1, "term_years": 1}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, domain.CodeInternal, env.Error.Code)

	w, env = postJSON(t, router, "/loan/schedule", `{"principal": 1, "annual_rate_percent": 1, "term_years": 1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, domain.CodeOverflow, env.Error.Code)
}
