package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"emi-calculator/amortization"
	"emi-calculator/domain"
	"emi-calculator/validation"
)

type TermRecommendationService struct {
	limits validation.Limits
	logger *slog.Logger
}

func NewTermRecommendationService(limits validation.Limits, logger *slog.Logger) *TermRecommendationService {
	return &TermRecommendationService{
		limits: limits,
		logger: logger.With("component", "term_recommendation_service"),
	}
}

// RecommendTerm evaluates every whole-year term in the requested range and
// ranks the ones whose EMI fits under MaxMonthlyPayment.
func (s *TermRecommendationService) RecommendTerm(
	ctx context.Context,
	input domain.TermRecommendationInput,
) (domain.TermRecommendationResult, error) {
	ctx, span := tracer.Start(ctx, "TermRecommendationService.RecommendTerm")
	defer span.End()

	if err := s.validate(input); err != nil {
		return domain.TermRecommendationResult{}, err
	}

	recommendations := []domain.TermRecommendation{}

	for term := input.MinTermYears; term <= input.MaxTermYears; term++ {
		result := amortization.Compute(domain.LoanInput{
			Principal:         input.Principal,
			AnnualRatePercent: input.AnnualRatePercent,
			TermYears:         term,
		})
		if !result.IsValid || !result.Finite() {
			s.logger.WarnContext(ctx, "skipping term with degenerate result", slog.Int("term_years", term))
			continue
		}

		if result.PeriodicPayment > input.MaxMonthlyPayment {
			continue
		}

		recommendations = append(recommendations, domain.TermRecommendation{
			TermYears:      term,
			MonthlyPayment: result.PeriodicPayment,
			TotalInterest:  result.TotalInterest,
			Score:          s.calculateScore(result, input, term),
			Reason:         generateReason(input.Preference),
		})
	}

	if len(recommendations) == 0 {
		return domain.TermRecommendationResult{}, domain.NewDomainError(
			domain.CodeNoViable,
			fmt.Sprintf("no term between %d and %d years keeps the EMI under %.2f",
				input.MinTermYears, input.MaxTermYears, input.MaxMonthlyPayment),
			domain.ErrNoViableTerm,
		)
	}

	// Highest score first; shorter term wins ties.
	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Score > recommendations[j].Score
	})

	recommendations[0].Reason = topReason(recommendations)

	return domain.TermRecommendationResult{
		RecommendedTermYears: recommendations[0].TermYears,
		Recommendations:      recommendations,
	}, nil
}

func (s *TermRecommendationService) validate(input domain.TermRecommendationInput) error {
	invalid := func(msg string) error {
		return domain.NewDomainError(domain.CodeValidation, msg, domain.ErrInvalidInput)
	}

	switch {
	case input.Principal < s.limits.MinPrincipal || input.Principal > s.limits.MaxPrincipal:
		return invalid(fmt.Sprintf("principal must be between %.0f and %.0f", s.limits.MinPrincipal, s.limits.MaxPrincipal))
	case input.AnnualRatePercent < 0 || input.AnnualRatePercent > s.limits.MaxAnnualRatePercent:
		return invalid(fmt.Sprintf("annual rate must be between 0 and %v", s.limits.MaxAnnualRatePercent))
	case input.MinTermYears <= 0 || input.MaxTermYears <= 0:
		return invalid("term bounds must be positive")
	case input.MinTermYears > input.MaxTermYears:
		return invalid("min term is greater than max term")
	case input.MaxTermYears > s.limits.MaxTermYears:
		return invalid(fmt.Sprintf("max term exceeds the limit of %d years", s.limits.MaxTermYears))
	case input.MaxTermYears-input.MinTermYears > MaxTermRangeYears:
		return invalid(fmt.Sprintf("term range exceeds %d years", MaxTermRangeYears))
	case input.MaxMonthlyPayment <= 0:
		return invalid("max monthly payment must be positive")
	}

	switch input.Preference {
	case domain.PreferMinimizeInterest, domain.PreferMinimizePayment, domain.PreferBalanced:
		return nil
	}
	return domain.NewDomainError(domain.CodeValidation,
		fmt.Sprintf("preference %q is not one of minimize_interest, minimize_payment, balanced", input.Preference),
		errors.Join(domain.ErrInvalidInput, domain.ErrInvalidPreference))
}

// calculateScore rates a term from 0 to 10 by normalising interest, payment
// and term length against the requested range.
func (s *TermRecommendationService) calculateScore(
	result domain.AmortizationResult,
	input domain.TermRecommendationInput,
	term int,
) float64 {
	minMonths := float64(input.MinTermYears * 12)
	maxMonths := float64(input.MaxTermYears * 12)

	// Simple-interest envelope over the term range.
	maxPossibleInterest := input.Principal * (input.AnnualRatePercent / 100) * maxMonths / 12
	minPossibleInterest := input.Principal * (input.AnnualRatePercent / 100) * minMonths / 12

	interestRange := maxPossibleInterest - minPossibleInterest
	lowestPayment := input.Principal / maxMonths
	paymentRange := input.MaxMonthlyPayment - lowestPayment

	interestScore := 0.0
	paymentScore := 0.0
	termScore := 10.0

	if interestRange > 0 {
		interestScore = 10.0 * (1.0 - (result.TotalInterest-minPossibleInterest)/interestRange)
	}
	if paymentRange > 0 {
		paymentScore = 10.0 * (1.0 - (result.PeriodicPayment-lowestPayment)/paymentRange)
	}
	if span := input.MaxTermYears - input.MinTermYears; span > 0 {
		termScore = 10.0 * (1.0 - float64(term-input.MinTermYears)/float64(span))
	}

	var score float64
	switch input.Preference {
	case domain.PreferMinimizeInterest:
		score = 0.6*interestScore + 0.2*paymentScore + 0.2*termScore
	case domain.PreferMinimizePayment:
		score = 0.2*interestScore + 0.6*paymentScore + 0.2*termScore
	case domain.PreferBalanced:
		score = 0.4*interestScore + 0.4*paymentScore + 0.2*termScore
	}

	return amortization.Round2(score)
}

func generateReason(preference string) string {
	switch preference {
	case domain.PreferMinimizeInterest:
		return "Term chosen to minimise total interest"
	case domain.PreferMinimizePayment:
		return "Term chosen to minimise the monthly EMI"
	case domain.PreferBalanced:
		return "Balance between monthly EMI and total cost"
	}
	return "Recommendation based on the supplied parameters"
}

// topReason compares the winner with the next alternatives.
func topReason(recs []domain.TermRecommendation) string {
	top := recs[0]
	reason := fmt.Sprintf("%s: %d years at %.2f per month, %.2f total interest",
		top.Reason, top.TermYears, top.MonthlyPayment, top.TotalInterest)

	for i := 1; i < len(recs) && i <= MaxAlternatives; i++ {
		alt := recs[i]
		reason += fmt.Sprintf("; %d years would cost %.2f per month and %.2f interest",
			alt.TermYears, alt.MonthlyPayment, alt.TotalInterest)
	}
	return reason
}
