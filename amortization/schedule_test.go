package amortization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emi-calculator/domain"
)

func TestSchedule_ReferenceLoan(t *testing.T) {
	input := domain.LoanInput{Principal: 500000, AnnualRatePercent: 10.5, TermYears: 3}

	entries := Schedule(input)
	require.Len(t, entries, 36)

	first := entries[0]
	assert.Equal(t, 1, first.Period)
	assert.Equal(t, 16251.22, first.Payment)
	assert.Equal(t, 4375.0, first.Interest)
	assert.Equal(t, 11876.22, first.Principal)

	var principalPaid float64
	for _, e := range entries {
		principalPaid += e.Principal
	}
	assert.InDelta(t, input.Principal, principalPaid, 0.36)
	assert.Equal(t, 0.0, entries[35].Balance)
}

func TestSchedule_ZeroRate(t *testing.T) {
	entries := Schedule(domain.LoanInput{Principal: 1200, TermYears: 1})
	require.Len(t, entries, 12)

	for _, e := range entries {
		assert.Equal(t, 100.0, e.Payment)
		assert.Equal(t, 0.0, e.Interest)
	}
	assert.Equal(t, 1100.0, entries[0].Balance)
	assert.Equal(t, 0.0, entries[11].Balance)
}

func TestSchedule_Degenerate(t *testing.T) {
	assert.Nil(t, Schedule(domain.LoanInput{Principal: 0, AnnualRatePercent: 5, TermYears: 1}))
	assert.Nil(t, Schedule(domain.LoanInput{Principal: 100, AnnualRatePercent: -1, TermYears: 1}))
	assert.Nil(t, Schedule(domain.LoanInput{Principal: 100, AnnualRatePercent: 5, TermYears: 0}))

	for _, term := range []int{1 << 60, (1 << 62) + 1, MaxSchedulePeriods/12 + 1} {
		input := domain.LoanInput{Principal: 500000, AnnualRatePercent: 10.5, TermYears: term}
		require.NotPanics(t, func() { Schedule(input) })
		assert.Nil(t, Schedule(input))
	}
}

func TestSchedule_LongestTerm(t *testing.T) {
	entries := Schedule(domain.LoanInput{Principal: 500000, AnnualRatePercent: 10.5, TermYears: MaxSchedulePeriods / 12})

	require.Len(t, entries, MaxSchedulePeriods)
	assert.Equal(t, 0.0, entries[len(entries)-1].Balance)
}
