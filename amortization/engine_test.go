package amortization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emi-calculator/domain"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name  string
		input domain.LoanInput
		want  domain.AmortizationResult
	}{
		{
			name:  "reference defaults",
			input: domain.LoanInput{Principal: 500000, AnnualRatePercent: 10.5, TermYears: 3},
			want: domain.AmortizationResult{
				PeriodicPayment: 16251.22,
				TotalInterest:   85043.98,
				TotalPayment:    585043.98,
				Principal:       500000,
				NumberOfPeriods: 36,
				MonthlyRate:     10.5 / 12 / 100,
				IsValid:         true,
			},
		},
		{
			name:  "zero rate is plain division",
			input: domain.LoanInput{Principal: 1200, AnnualRatePercent: 0, TermYears: 1},
			want: domain.AmortizationResult{
				PeriodicPayment: 100,
				TotalInterest:   0,
				TotalPayment:    1200,
				Principal:       1200,
				NumberOfPeriods: 12,
				MonthlyRate:     0,
				IsValid:         true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.input)
			assert.Equal(t, tt.want.PeriodicPayment, got.PeriodicPayment)
			assert.Equal(t, tt.want.TotalInterest, got.TotalInterest)
			assert.Equal(t, tt.want.TotalPayment, got.TotalPayment)
			assert.Equal(t, tt.want.Principal, got.Principal)
			assert.Equal(t, tt.want.NumberOfPeriods, got.NumberOfPeriods)
			assert.InDelta(t, tt.want.MonthlyRate, got.MonthlyRate, 1e-15)
			assert.Equal(t, tt.want.IsValid, got.IsValid)
		})
	}
}

func TestCompute_ReferenceMonthlyRate(t *testing.T) {
	got := Compute(domain.LoanInput{Principal: 500000, AnnualRatePercent: 10.5, TermYears: 3})
	assert.InDelta(t, 0.00875, got.MonthlyRate, 1e-12)
}

func TestCompute_DegenerateInput(t *testing.T) {
	inputs := map[string]domain.LoanInput{
		"zero principal":     {Principal: 0, AnnualRatePercent: 10, TermYears: 5},
		"negative principal": {Principal: -1000, AnnualRatePercent: 10, TermYears: 5},
		"negative rate":      {Principal: 1000, AnnualRatePercent: -0.5, TermYears: 5},
		"zero term":          {Principal: 1000, AnnualRatePercent: 10, TermYears: 0},
		"negative term":      {Principal: 1000, AnnualRatePercent: 10, TermYears: -3},
		"NaN principal":      {Principal: math.NaN(), AnnualRatePercent: 10, TermYears: 5},
		"NaN rate":           {Principal: 1000, AnnualRatePercent: math.NaN(), TermYears: 5},
		"months wrap to 12":  {Principal: 500000, AnnualRatePercent: 10.5, TermYears: (1 << 62) + 1},
		"months go negative": {Principal: 500000, AnnualRatePercent: 10.5, TermYears: 1 << 60},
		"max int term":       {Principal: 500000, AnnualRatePercent: 10.5, TermYears: math.MaxInt},
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			require.NotPanics(t, func() { Compute(input) })
			assert.Equal(t, domain.AmortizationResult{}, Compute(input))
		})
	}
}

func TestCompute_LongestRepresentableTerm(t *testing.T) {
	got := Compute(domain.LoanInput{Principal: 1000, AnnualRatePercent: 0, TermYears: maxTermYears})

	require.True(t, got.IsValid)
	assert.Positive(t, got.NumberOfPeriods)
	assert.Equal(t, maxTermYears*monthsPerYear, got.NumberOfPeriods)
}

func TestCompute_SmallestLoan(t *testing.T) {
	got := Compute(domain.LoanInput{Principal: 1, AnnualRatePercent: 0.01, TermYears: 1})

	require.True(t, got.IsValid)
	assert.Equal(t, 12, got.NumberOfPeriods)
	assert.True(t, got.Finite())
	assert.Equal(t, 0.08, got.PeriodicPayment)
	assert.Equal(t, 1.0, got.TotalPayment)
	assert.Equal(t, 0.0, got.TotalInterest)
}

func TestCompute_OverflowPropagates(t *testing.T) {
	got := Compute(domain.LoanInput{Principal: 1000, AnnualRatePercent: 1e6, TermYears: 10000})

	assert.True(t, got.IsValid)
	assert.False(t, got.Finite())
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.01, Round2(1.005000001))
	assert.Equal(t, 2.5, Round2(2.499999))
	assert.Equal(t, -1.24, Round2(-1.235000001))
	assert.Equal(t, 0.0, Round2(0.004))
}

func TestBreakdownOf(t *testing.T) {
	result := Compute(domain.LoanInput{Principal: 500000, AnnualRatePercent: 10.5, TermYears: 3})

	b := BreakdownOf(result)
	assert.Equal(t, 85.46, b.PrincipalShare)
	assert.Equal(t, 14.54, b.InterestShare)

	assert.Equal(t, domain.Breakdown{}, BreakdownOf(domain.AmortizationResult{}))

	zeroRate := BreakdownOf(Compute(domain.LoanInput{Principal: 1200, TermYears: 1}))
	assert.Equal(t, 100.0, zeroRate.PrincipalShare)
	assert.Equal(t, 0.0, zeroRate.InterestShare)
}
