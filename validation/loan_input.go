// Package validation turns raw calculator form text into a domain.LoanInput.
//
// The amortization engine only rejects mathematically degenerate input; the
// application bounds (principal range, maximum rate and term) are enforced
// here so the engine can be called on every keystroke without guards.
package validation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"emi-calculator/domain"
)

// Field names as they appear in the request body.
const (
	FieldPrincipal  = "principal"
	FieldAnnualRate = "annual_rate_percent"
	FieldTermYears  = "term_years"
)

// Field error codes.
const (
	CodeRequired   = "required"
	CodeNotNumber  = "not_a_number"
	CodeNotInteger = "not_an_integer"
	CodeOutOfRange = "out_of_range"
)

// Limits bound what the calculator accepts.
type Limits struct {
	MinPrincipal         float64
	MaxPrincipal         float64
	MaxAnnualRatePercent float64
	MaxTermYears         int
}

// DefaultLimits mirrors the bounds of the public calculator form.
func DefaultLimits() Limits {
	return Limits{
		MinPrincipal:         50_000,
		MaxPrincipal:         100_000_000,
		MaxAnnualRatePercent: 50,
		MaxTermYears:         30,
	}
}

// Validate reports inconsistent limits.
func (l Limits) Validate() error {
	if l.MinPrincipal <= 0 || l.MaxPrincipal < l.MinPrincipal {
		return fmt.Errorf("invalid principal limits: min %v, max %v", l.MinPrincipal, l.MaxPrincipal)
	}
	if l.MaxAnnualRatePercent < 0 {
		return fmt.Errorf("invalid max annual rate: %v", l.MaxAnnualRatePercent)
	}
	if l.MaxTermYears < 1 {
		return fmt.Errorf("invalid max term: %d", l.MaxTermYears)
	}
	return nil
}

// FieldError describes one rejected form field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseError collects every rejected field of a form.
type ParseError struct {
	Fields []FieldError
}

func (e *ParseError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "invalid loan input: " + strings.Join(msgs, "; ")
}

func (e *ParseError) Unwrap() error {
	return domain.ErrInvalidInput
}

func (e *ParseError) add(field, code, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Code: code, Message: message})
}

var validate = validator.New()

// misplacedComma matches a comma that does not sit between two digits.
var misplacedComma = regexp.MustCompile(`(^|[^0-9]),|,([^0-9]|$)`)

// ParseLoanInput parses and range-checks raw form values. On failure the
// returned error is a *ParseError listing every bad field.
func ParseLoanInput(raw domain.RawLoanInput, limits Limits) (domain.LoanInput, error) {
	perr := &ParseError{}
	var input domain.LoanInput

	if principal, ok := parseAmount(perr, FieldPrincipal, string(raw.Principal), "Please enter a valid loan amount"); ok {
		tag := fmt.Sprintf("gte=%v,lte=%v", limits.MinPrincipal, limits.MaxPrincipal)
		if err := validate.Var(principal, tag); err != nil {
			perr.add(FieldPrincipal, CodeOutOfRange, fmt.Sprintf(
				"Loan amount must be between %s and %s", groupThousands(limits.MinPrincipal), groupThousands(limits.MaxPrincipal)))
		}
		input.Principal = principal
	}

	if rate, ok := parseAmount(perr, FieldAnnualRate, strings.TrimSuffix(strings.TrimSpace(string(raw.AnnualRatePercent)), "%"), "Please enter a valid interest rate"); ok {
		if err := validate.Var(rate, fmt.Sprintf("gte=0,lte=%v", limits.MaxAnnualRatePercent)); err != nil {
			perr.add(FieldAnnualRate, CodeOutOfRange, fmt.Sprintf(
				"Interest rate must be between 0 and %v%%", limits.MaxAnnualRatePercent))
		}
		input.AnnualRatePercent = rate
	}

	if term, ok := parseTerm(perr, string(raw.TermYears)); ok {
		if err := validate.Var(term, fmt.Sprintf("gte=1,lte=%d", limits.MaxTermYears)); err != nil {
			perr.add(FieldTermYears, CodeOutOfRange, fmt.Sprintf(
				"Loan tenure must be between 1 and %d years", limits.MaxTermYears))
		}
		input.TermYears = term
	}

	if len(perr.Fields) > 0 {
		return domain.LoanInput{}, perr
	}
	return input, nil
}

// IsParseError returns the *ParseError in err's chain, if any.
func IsParseError(err error) (*ParseError, bool) {
	var perr *ParseError
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}

func parseAmount(perr *ParseError, field, text, message string) (float64, bool) {
	text, ok := normalize(text)
	if text == "" && ok {
		perr.add(field, CodeRequired, message)
		return 0, false
	}
	if !ok {
		perr.add(field, CodeNotNumber, message)
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		perr.add(field, CodeNotNumber, message)
		return 0, false
	}
	return v, true
}

func parseTerm(perr *ParseError, text string) (int, bool) {
	const message = "Please enter a valid loan tenure in years"

	text, ok := normalize(text)
	if text == "" && ok {
		perr.add(FieldTermYears, CodeRequired, message)
		return 0, false
	}
	if !ok {
		perr.add(FieldTermYears, CodeNotNumber, message)
		return 0, false
	}
	if n, err := strconv.Atoi(text); err == nil {
		return n, true
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		perr.add(FieldTermYears, CodeNotNumber, message)
		return 0, false
	}
	if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		perr.add(FieldTermYears, CodeNotInteger, "Loan tenure must be a whole number of years")
		return 0, false
	}
	return int(v), true
}

// normalize strips surrounding space and digit grouping ("5,00,000") and
// reports whether what is left is a plain decimal. Exponents, hex floats and
// stray commas are rejected. Empty text is reported as ok.
func normalize(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", true
	}
	if misplacedComma.MatchString(text) {
		return text, false
	}
	text = strings.ReplaceAll(text, ",", "")
	return text, validate.Var(text, "numeric") == nil
}

func groupThousands(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
