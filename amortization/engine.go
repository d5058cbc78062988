// Package amortization computes fixed-installment (EMI) loan figures.
//
// Everything here is a pure function of its input: no I/O, no logging, no
// shared state. Range limits are the caller's concern; see package validation.
package amortization

import (
	"math"

	"emi-calculator/domain"
)

const monthsPerYear = 12

// maxTermYears keeps TermYears*monthsPerYear within int.
const maxTermYears = math.MaxInt / monthsPerYear

// Round2 rounds to two decimal places, half away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Compute returns the EMI, total payment and total interest for input.
//
// Degenerate input (principal <= 0, rate < 0, term <= 0, a term whose month
// count does not fit in an int, or any NaN) yields a
// zero result with IsValid false. Compute never panics; an overflowing
// compound factor propagates as Inf or NaN in the returned fields.
func Compute(input domain.LoanInput) domain.AmortizationResult {
	if !valid(input) {
		return domain.AmortizationResult{}
	}

	monthlyRate := input.AnnualRatePercent / monthsPerYear / 100
	periods := input.TermYears * monthsPerYear

	payment := periodicPayment(input.Principal, monthlyRate, periods)
	totalPayment := payment * float64(periods)
	totalInterest := totalPayment - input.Principal

	return domain.AmortizationResult{
		PeriodicPayment: Round2(payment),
		TotalInterest:   Round2(totalInterest),
		TotalPayment:    Round2(totalPayment),
		Principal:       input.Principal,
		NumberOfPeriods: periods,
		MonthlyRate:     monthlyRate,
		IsValid:         true,
	}
}

// BreakdownOf returns the principal and interest shares of the total payment
// in percent. Invalid or zero-total results give an empty breakdown.
func BreakdownOf(result domain.AmortizationResult) domain.Breakdown {
	if !result.IsValid || result.TotalPayment == 0 {
		return domain.Breakdown{}
	}
	return domain.Breakdown{
		PrincipalShare: Round2(result.Principal / result.TotalPayment * 100),
		InterestShare:  Round2(result.TotalInterest / result.TotalPayment * 100),
	}
}

func valid(input domain.LoanInput) bool {
	if math.IsNaN(input.Principal) || math.IsNaN(input.AnnualRatePercent) {
		return false
	}
	return input.Principal > 0 && input.AnnualRatePercent >= 0 &&
		input.TermYears > 0 && input.TermYears <= maxTermYears
}

// periodicPayment is the unrounded installment. A zero rate is plain division.
func periodicPayment(principal, monthlyRate float64, periods int) float64 {
	if monthlyRate == 0 {
		return principal / float64(periods)
	}
	factor := math.Pow(1+monthlyRate, float64(periods))
	return principal * monthlyRate * factor / (factor - 1)
}
