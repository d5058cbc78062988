package repository

import (
	"context"
	"strconv"

	"emi-calculator/domain"
)

type CacheRepository interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string) error
}

// CacheKey is the canonical cache key for a parsed loan input.
func CacheKey(input domain.LoanInput) string {
	return "emi:" +
		strconv.FormatFloat(input.Principal, 'f', -1, 64) + ":" +
		strconv.FormatFloat(input.AnnualRatePercent, 'f', -1, 64) + ":" +
		strconv.Itoa(input.TermYears)
}
