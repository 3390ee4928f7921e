// Package user holds the store account model and the tagged reference type
// used to distinguish signed-in customers from guest checkout.
package user

import (
	"context"
	"fmt"
	"time"
)

// NotFoundError indicates a referenced user account does not exist.
type NotFoundError struct {
	UserID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("user %d not found", e.UserID)
}

// User represents a store account.
type User struct {
	ID          int64
	Name        string
	Email       string
	PhoneNumber string
	IsAdmin     bool
	CreatedAt   time.Time
}

// Ref identifies the owner of an order or cart: either an authenticated
// account or the guest identity. The zero value is the guest.
type Ref struct {
	id int64
}

// Authenticated returns a Ref bound to a real account id.
func Authenticated(id int64) Ref {
	return Ref{id: id}
}

// Guest returns the guest identity used for non-authenticated checkout.
func Guest() Ref {
	return Ref{}
}

// IsGuest reports whether the reference is the guest identity.
func (r Ref) IsGuest() bool {
	return r.id == 0
}

// ID returns the account id and true for authenticated references,
// or 0 and false for the guest.
func (r Ref) ID() (int64, bool) {
	if r.IsGuest() {
		return 0, false
	}
	return r.id, true
}

func (r Ref) String() string {
	if r.IsGuest() {
		return "guest"
	}
	return fmt.Sprintf("user:%d", r.id)
}

// Repository defines read operations for store accounts.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
}
