package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies wires handlers into the router. RateLimiter may be nil to
// disable limiting.
type Dependencies struct {
	Loans       LoanCalculator
	Terms       TermRecommender
	RateLimiter *RateLimiter
	Logger      *slog.Logger
}

// NewRouter registers every route. Calculation endpoints are rate limited;
// health and metrics are not.
func NewRouter(deps Dependencies) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(requestLogging(deps.Logger))
	r.Use(metrics)

	loanH := NewLoanHandler(deps.Loans, deps.Logger)
	termH := NewTermRecommendationHandler(deps.Terms, deps.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/loan", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(RateLimitMiddleware(deps.RateLimiter))
		}
		r.Use(contentTypeJSON)

		r.Post("/calculate", loanH.CalculateLoan)
		r.Post("/schedule", loanH.Schedule)
		r.Post("/recommend-term", termH.RecommendTerm)
		r.Get("/history", loanH.History)
	})

	return r
}
