package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"emi-calculator/amortization"
	"emi-calculator/domain"
	"emi-calculator/repository"
	"emi-calculator/validation"
)

var tracer = otel.Tracer("emi-calculator/service")

type LoanService struct {
	repo   repository.LoanRepository
	cache  repository.CacheRepository
	limits validation.Limits
	logger *slog.Logger
	now    func() time.Time
}

// NewLoanService creates a new LoanService with the given repository and cache.
func NewLoanService(
	repo repository.LoanRepository,
	cache repository.CacheRepository,
	limits validation.Limits,
	logger *slog.Logger,
) *LoanService {
	return &LoanService{
		repo:   repo,
		cache:  cache,
		limits: limits,
		logger: logger.With("component", "loan_service"),
		now:    time.Now,
	}
}

// Calculate parses the raw form, computes the EMI and records it in history.
// Bad input yields a *validation.ParseError; a result that overflowed yields
// a *domain.DomainError wrapping domain.ErrNumericOverflow. A history write
// failure is logged and otherwise ignored.
func (s *LoanService) Calculate(
	ctx context.Context,
	raw domain.RawLoanInput,
) (domain.Calculation, domain.Breakdown, error) {
	ctx, span := tracer.Start(ctx, "LoanService.Calculate")
	defer span.End()

	input, err := validation.ParseLoanInput(raw, s.limits)
	if err != nil {
		calculationsTotal.WithLabelValues("invalid").Inc()
		span.SetStatus(codes.Error, "invalid input")
		return domain.Calculation{}, domain.Breakdown{}, err
	}
	span.SetAttributes(
		attribute.Float64("loan.principal", input.Principal),
		attribute.Float64("loan.annual_rate_percent", input.AnnualRatePercent),
		attribute.Int("loan.term_years", input.TermYears),
	)

	result, err := s.CalculateLoan(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.Calculation{}, domain.Breakdown{}, err
	}

	calc := domain.Calculation{
		ID:        uuid.NewString(),
		Input:     input,
		Result:    result,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Save(ctx, calc); err != nil {
		persistErrorsTotal.Inc()
		s.logger.WarnContext(ctx, "failed to save loan calculation",
			slog.String("calculation_id", calc.ID),
			slog.Any("error", err),
		)
	}

	principalRequested.Observe(input.Principal)
	s.logger.DebugContext(ctx, "loan calculated",
		slog.String("calculation_id", calc.ID),
		slog.Float64("periodic_payment", result.PeriodicPayment),
		slog.Int("periods", result.NumberOfPeriods),
	)

	return calc, amortization.BreakdownOf(result), nil
}

// CalculateLoan computes the EMI for an already parsed input, serving
// repeated inputs from the cache.
func (s *LoanService) CalculateLoan(
	ctx context.Context,
	input domain.LoanInput,
) (domain.AmortizationResult, error) {
	key := repository.CacheKey(input)

	if cached, ok := s.cache.Get(ctx, key); ok {
		var result domain.AmortizationResult
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			cacheLookupsTotal.WithLabelValues("hit").Inc()
			calculationsTotal.WithLabelValues("ok").Inc()
			return result, nil
		}
		s.logger.WarnContext(ctx, "discarding undecodable cache entry", slog.String("key", key))
	}
	cacheLookupsTotal.WithLabelValues("miss").Inc()

	result := amortization.Compute(input)
	if !result.IsValid {
		calculationsTotal.WithLabelValues("invalid").Inc()
		return domain.AmortizationResult{}, domain.NewDomainError(
			domain.CodeValidation, "loan input is degenerate", domain.ErrInvalidInput)
	}
	if !result.Finite() {
		calculationsTotal.WithLabelValues("overflow").Inc()
		return domain.AmortizationResult{}, domain.NewDomainError(
			domain.CodeOverflow, "loan figures are too large to compute", domain.ErrNumericOverflow)
	}

	if encoded, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, key, string(encoded)); err != nil {
			s.logger.WarnContext(ctx, "failed to cache loan result",
				slog.String("key", key),
				slog.Any("error", err),
			)
		}
	}

	calculationsTotal.WithLabelValues("ok").Inc()
	return result, nil
}

// Schedule returns the summary and month-by-month table for the raw form.
// Schedules are not written to history.
func (s *LoanService) Schedule(
	ctx context.Context,
	raw domain.RawLoanInput,
) (domain.AmortizationResult, []domain.ScheduleEntry, error) {
	ctx, span := tracer.Start(ctx, "LoanService.Schedule")
	defer span.End()

	input, err := validation.ParseLoanInput(raw, s.limits)
	if err != nil {
		span.SetStatus(codes.Error, "invalid input")
		return domain.AmortizationResult{}, nil, err
	}

	result, err := s.CalculateLoan(ctx, input)
	if err != nil {
		span.RecordError(err)
		return domain.AmortizationResult{}, nil, err
	}

	return result, amortization.Schedule(input), nil
}

// History returns recent calculations, newest first. limit is clamped to
// [1, MaxHistoryLimit]; zero or negative means DefaultHistoryLimit.
func (s *LoanService) History(ctx context.Context, limit int) ([]domain.Calculation, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	calcs, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load calculation history: %w", err)
	}
	return calcs, nil
}
