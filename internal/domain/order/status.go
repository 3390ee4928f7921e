package order

import "fmt"

// Status enumerates the order lifecycle states.
type Status string

const (
	StatusWait      Status = "wait"
	StatusPaid      Status = "paid"
	StatusDelivery  Status = "delivery"
	StatusCompleted Status = "completed"
	StatusReturned  Status = "returned"
	StatusCancelled Status = "cancelled"
)

// UnknownStatusError indicates a status code that is not part of the
// enumerated set.
type UnknownStatusError struct {
	Code string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown order status %q", e.Code)
}

// InvalidTransitionError indicates a status change that is not allowed by
// the transition table.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %q to %q", e.From, e.To)
}

// transitions maps each status to the set of statuses it may advance to.
// Terminal states (returned, cancelled) have no successors.
var transitions = map[Status][]Status{
	StatusWait:      {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusDelivery, StatusCancelled},
	StatusDelivery:  {StatusCompleted, StatusReturned},
	StatusCompleted: {StatusReturned},
	StatusReturned:  {},
	StatusCancelled: {},
}

// ParseStatus validates a status code against the enumerated set.
func ParseStatus(code string) (Status, error) {
	s := Status(code)
	if _, ok := transitions[s]; !ok {
		return "", &UnknownStatusError{Code: code}
	}
	return s, nil
}

// CanTransition reports whether an order in status s may move to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// DetailStatus enumerates order-line states.
type DetailStatus string

const (
	DetailStatusWait      DetailStatus = "wait"
	DetailStatusConfirmed DetailStatus = "confirmed"
	DetailStatusShipped   DetailStatus = "shipped"
	DetailStatusReturned  DetailStatus = "returned"
	DetailStatusCancelled DetailStatus = "cancelled"
)

var detailStatuses = map[DetailStatus]struct{}{
	DetailStatusWait:      {},
	DetailStatusConfirmed: {},
	DetailStatusShipped:   {},
	DetailStatusReturned:  {},
	DetailStatusCancelled: {},
}

// ParseDetailStatus validates an order-line status code.
func ParseDetailStatus(code string) (DetailStatus, error) {
	s := DetailStatus(code)
	if _, ok := detailStatuses[s]; !ok {
		return "", &UnknownStatusError{Code: code}
	}
	return s, nil
}
