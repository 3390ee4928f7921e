// Package refdata holds the small, mostly-static lookup tables the order flow
// resolves by id or code: delivery rules, return rules, and gift wraps.
package refdata

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// DeliveryRuleNotFoundError indicates an unknown delivery rule id.
type DeliveryRuleNotFoundError struct {
	RuleID int64
}

func (e *DeliveryRuleNotFoundError) Error() string {
	return fmt.Sprintf("delivery rule %d not found", e.RuleID)
}

// WrapNotFoundError indicates an unknown gift wrap option id.
type WrapNotFoundError struct {
	WrapID int64
}

func (e *WrapNotFoundError) Error() string {
	return fmt.Sprintf("wrap option %d not found", e.WrapID)
}

// ReturnRuleNotFoundError indicates an unknown return rule name.
type ReturnRuleNotFoundError struct {
	Name string
}

func (e *ReturnRuleNotFoundError) Error() string {
	return fmt.Sprintf("return rule %q not found", e.Name)
}

// DeliveryRule describes a shipping fee policy.
type DeliveryRule struct {
	ID           int64
	Name         string
	CompanyName  string
	Cost         decimal.Decimal
	FreeOverCost decimal.Decimal
	Available    bool
}

// ReturnRule describes the return window and fee for a product class.
type ReturnRule struct {
	Name        string
	TermDays    int
	DeliveryFee decimal.Decimal
	Available   bool
}

// Wrap is a gift wrap option that can be attached to an order line.
type Wrap struct {
	ID        int64
	Name      string
	Cost      decimal.Decimal
	Available bool
}

// DeliveryRuleRepository resolves delivery rules by id.
type DeliveryRuleRepository interface {
	GetByID(ctx context.Context, id int64) (*DeliveryRule, error)
}

// WrapRepository resolves gift wrap options by id.
type WrapRepository interface {
	GetByID(ctx context.Context, id int64) (*Wrap, error)
}

// ReturnRuleRepository resolves return rules by name.
type ReturnRuleRepository interface {
	GetByName(ctx context.Context, name string) (*ReturnRule, error)
}
