package repository

import (
	"context"
	"sync"

	"emi-calculator/domain"
)

// LoanRepositoryMemory is an in-memory implementation of LoanRepository.
type LoanRepositoryMemory struct {
	mu   sync.RWMutex
	data []domain.Calculation
}

// NewLoanRepositoryMemory creates a new in-memory loan repository.
func NewLoanRepositoryMemory() *LoanRepositoryMemory {
	return &LoanRepositoryMemory{
		data: []domain.Calculation{},
	}
}

// Save appends the calculation.
func (r *LoanRepositoryMemory) Save(_ context.Context, calc domain.Calculation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data = append(r.data, calc)
	return nil
}

func (r *LoanRepositoryMemory) Recent(_ context.Context, limit int) ([]domain.Calculation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.data) {
		limit = len(r.data)
	}

	out := make([]domain.Calculation, 0, limit)
	for i := len(r.data) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.data[i])
	}
	return out, nil
}
