package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"time"
)

// LoanInput is a single EMI request: principal in currency units, nominal
// annual rate as a percentage and the term in whole years.
type LoanInput struct {
	Principal         float64 `json:"principal"`
	AnnualRatePercent float64 `json:"annual_rate_percent"`
	TermYears         int     `json:"term_years"`
}

// AmortizationResult is the output of one EMI computation. When IsValid is
// false every numeric field is zero.
type AmortizationResult struct {
	PeriodicPayment float64 `json:"periodic_payment"`
	TotalInterest   float64 `json:"total_interest"`
	TotalPayment    float64 `json:"total_payment"`
	Principal       float64 `json:"principal"`
	NumberOfPeriods int     `json:"number_of_periods"`
	MonthlyRate     float64 `json:"monthly_rate"`
	IsValid         bool    `json:"is_valid"`
}

// Finite reports whether every float field holds a finite value.
func (r AmortizationResult) Finite() bool {
	for _, v := range []float64{r.PeriodicPayment, r.TotalInterest, r.TotalPayment, r.Principal, r.MonthlyRate} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Breakdown splits the total payment into principal and interest shares,
// expressed as percentages.
type Breakdown struct {
	PrincipalShare float64 `json:"principal_share"`
	InterestShare  float64 `json:"interest_share"`
}

// ScheduleEntry is one month of an amortization schedule.
type ScheduleEntry struct {
	Period    int     `json:"period"`
	Payment   float64 `json:"payment"`
	Interest  float64 `json:"interest"`
	Principal float64 `json:"principal"`
	Balance   float64 `json:"balance"`
}

// Calculation is a stored EMI computation.
type Calculation struct {
	ID        string             `json:"id"`
	Input     LoanInput          `json:"input"`
	Result    AmortizationResult `json:"result"`
	CreatedAt time.Time          `json:"created_at"`
}

// FormValue is the raw text of a form field. It decodes from either a JSON
// string or a JSON number so clients can post whatever the input box holds.
type FormValue string

func (v *FormValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = FormValue(n.String())
	return nil
}

// RawLoanInput is the unparsed calculator form.
type RawLoanInput struct {
	Principal         FormValue `json:"principal"`
	AnnualRatePercent FormValue `json:"annual_rate_percent"`
	TermYears         FormValue `json:"term_years"`
}
