package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mybooks/storefront/internal/domain/refdata"
)

const (
	getDeliveryRuleSQL = `SELECT id, name, company_name, cost, free_over_cost, available
		FROM delivery_rules WHERE id = $1`

	getWrapSQL = `SELECT id, name, cost, available
		FROM wraps WHERE id = $1`

	getReturnRuleSQL = `SELECT name, term_days, delivery_fee, available
		FROM return_rules WHERE name = $1`
)

var (
	_ refdata.DeliveryRuleRepository = (*DeliveryRuleRepository)(nil)
	_ refdata.WrapRepository         = (*WrapRepository)(nil)
	_ refdata.ReturnRuleRepository   = (*ReturnRuleRepository)(nil)
)

// DeliveryRuleRepository implements refdata.DeliveryRuleRepository backed by PostgreSQL.
type DeliveryRuleRepository struct {
	pool *pgxpool.Pool
}

// NewDeliveryRuleRepository returns a DeliveryRuleRepository that uses the given pool.
func NewDeliveryRuleRepository(pool *pgxpool.Pool) *DeliveryRuleRepository {
	return &DeliveryRuleRepository{pool: pool}
}

// GetByID returns a delivery rule by its identifier.
func (r *DeliveryRuleRepository) GetByID(ctx context.Context, id int64) (*refdata.DeliveryRule, error) {
	rows, err := r.pool.Query(ctx, getDeliveryRuleSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting delivery rule %d: %w", id, err)
	}

	dr, err := pgx.CollectExactlyOneRow(rows, scanDeliveryRule)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &refdata.DeliveryRuleNotFoundError{RuleID: id}
		}
		return nil, fmt.Errorf("getting delivery rule %d: %w", id, err)
	}
	return &dr, nil
}

// WrapRepository implements refdata.WrapRepository backed by PostgreSQL.
type WrapRepository struct {
	pool *pgxpool.Pool
}

// NewWrapRepository returns a WrapRepository that uses the given pool.
func NewWrapRepository(pool *pgxpool.Pool) *WrapRepository {
	return &WrapRepository{pool: pool}
}

// GetByID returns a gift wrap option by its identifier.
func (r *WrapRepository) GetByID(ctx context.Context, id int64) (*refdata.Wrap, error) {
	rows, err := r.pool.Query(ctx, getWrapSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting wrap %d: %w", id, err)
	}

	w, err := pgx.CollectExactlyOneRow(rows, scanWrap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &refdata.WrapNotFoundError{WrapID: id}
		}
		return nil, fmt.Errorf("getting wrap %d: %w", id, err)
	}
	return &w, nil
}

// ReturnRuleRepository implements refdata.ReturnRuleRepository backed by PostgreSQL.
type ReturnRuleRepository struct {
	pool *pgxpool.Pool
}

// NewReturnRuleRepository returns a ReturnRuleRepository that uses the given pool.
func NewReturnRuleRepository(pool *pgxpool.Pool) *ReturnRuleRepository {
	return &ReturnRuleRepository{pool: pool}
}

// GetByName returns a return rule by its name.
func (r *ReturnRuleRepository) GetByName(ctx context.Context, name string) (*refdata.ReturnRule, error) {
	rows, err := r.pool.Query(ctx, getReturnRuleSQL, name)
	if err != nil {
		return nil, fmt.Errorf("getting return rule %q: %w", name, err)
	}

	rr, err := pgx.CollectExactlyOneRow(rows, scanReturnRule)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &refdata.ReturnRuleNotFoundError{Name: name}
		}
		return nil, fmt.Errorf("getting return rule %q: %w", name, err)
	}
	return &rr, nil
}

func scanDeliveryRule(row pgx.CollectableRow) (refdata.DeliveryRule, error) {
	var dr refdata.DeliveryRule
	err := row.Scan(&dr.ID, &dr.Name, &dr.CompanyName, &dr.Cost, &dr.FreeOverCost, &dr.Available)
	return dr, err
}

func scanWrap(row pgx.CollectableRow) (refdata.Wrap, error) {
	var w refdata.Wrap
	err := row.Scan(&w.ID, &w.Name, &w.Cost, &w.Available)
	return w, err
}

func scanReturnRule(row pgx.CollectableRow) (refdata.ReturnRule, error) {
	var rr refdata.ReturnRule
	err := row.Scan(&rr.Name, &rr.TermDays, &rr.DeliveryFee, &rr.Available)
	return rr, err
}
