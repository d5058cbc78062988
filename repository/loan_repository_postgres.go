package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"emi-calculator/domain"
)

// PoolConfig sizes the PostgreSQL connection pool.
type PoolConfig struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// NewPostgresPool opens a pool for dsn and pings it.
func NewPostgresPool(ctx context.Context, dsn string, cfg PoolConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// LoanRepositoryPostgres persists calculations in the calculations table.
type LoanRepositoryPostgres struct {
	pool *pgxpool.Pool
}

func NewLoanRepositoryPostgres(pool *pgxpool.Pool) *LoanRepositoryPostgres {
	return &LoanRepositoryPostgres{pool: pool}
}

const insertCalculation = `
	INSERT INTO calculations (
		id, principal, annual_rate_percent, term_years,
		periodic_payment, total_interest, total_payment,
		number_of_periods, monthly_rate, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func (r *LoanRepositoryPostgres) Save(ctx context.Context, calc domain.Calculation) error {
	_, err := r.pool.Exec(ctx, insertCalculation,
		calc.ID,
		calc.Input.Principal,
		calc.Input.AnnualRatePercent,
		calc.Input.TermYears,
		calc.Result.PeriodicPayment,
		calc.Result.TotalInterest,
		calc.Result.TotalPayment,
		calc.Result.NumberOfPeriods,
		calc.Result.MonthlyRate,
		calc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert calculation %s: %w", calc.ID, err)
	}
	return nil
}

const selectRecentCalculations = `
	SELECT id::text, principal, annual_rate_percent, term_years,
	       periodic_payment, total_interest, total_payment,
	       number_of_periods, monthly_rate, created_at
	FROM calculations
	ORDER BY created_at DESC
	LIMIT $1`

func (r *LoanRepositoryPostgres) Recent(ctx context.Context, limit int) ([]domain.Calculation, error) {
	rows, err := r.pool.Query(ctx, selectRecentCalculations, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query calculations: %w", err)
	}

	calcs, err := pgx.CollectRows(rows, scanCalculation)
	if err != nil {
		return nil, fmt.Errorf("failed to scan calculations: %w", err)
	}
	return calcs, nil
}

func scanCalculation(row pgx.CollectableRow) (domain.Calculation, error) {
	var c domain.Calculation
	err := row.Scan(
		&c.ID,
		&c.Input.Principal,
		&c.Input.AnnualRatePercent,
		&c.Input.TermYears,
		&c.Result.PeriodicPayment,
		&c.Result.TotalInterest,
		&c.Result.TotalPayment,
		&c.Result.NumberOfPeriods,
		&c.Result.MonthlyRate,
		&c.CreatedAt,
	)
	c.Result.Principal = c.Input.Principal
	c.Result.IsValid = true
	return c, err
}
