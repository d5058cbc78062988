package amortization

import (
	"emi-calculator/domain"
)

// MaxSchedulePeriods caps the length of a generated table (100 years).
const MaxSchedulePeriods = 1200

// Schedule returns the month-by-month repayment table for input. The running
// balance is kept unrounded; the final period absorbs the residual so the
// closing balance is exactly zero. Degenerate input, or a term longer than
// MaxSchedulePeriods months, returns nil.
func Schedule(input domain.LoanInput) []domain.ScheduleEntry {
	if !valid(input) || input.TermYears > MaxSchedulePeriods/monthsPerYear {
		return nil
	}

	monthlyRate := input.AnnualRatePercent / monthsPerYear / 100
	periods := input.TermYears * monthsPerYear
	payment := periodicPayment(input.Principal, monthlyRate, periods)

	entries := make([]domain.ScheduleEntry, 0, periods)
	balance := input.Principal

	for period := 1; period <= periods; period++ {
		interest := balance * monthlyRate
		principalPart := payment - interest
		installment := payment

		if period == periods {
			principalPart = balance
			installment = principalPart + interest
		}

		balance -= principalPart
		if period == periods || balance < 0 {
			balance = 0
		}

		entries = append(entries, domain.ScheduleEntry{
			Period:    period,
			Payment:   Round2(installment),
			Interest:  Round2(interest),
			Principal: Round2(principalPart),
			Balance:   Round2(balance),
		})
	}

	return entries
}
