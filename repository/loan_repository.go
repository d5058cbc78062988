package repository

import (
	"context"

	"emi-calculator/domain"
)

// LoanRepository stores EMI calculations for the history view.
type LoanRepository interface {
	Save(ctx context.Context, calc domain.Calculation) error
	// Recent returns at most limit calculations, newest first.
	Recent(ctx context.Context, limit int) ([]domain.Calculation, error)
}
