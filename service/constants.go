package service

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100

	// Largest year span the term recommender will evaluate in one request.
	MaxTermRangeYears = 30
	MaxAlternatives   = 3
)
