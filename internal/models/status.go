package models

import "fmt"

type OrderStatus string

const (
	StatusPending OrderStatus = "pending"
	StatusShipped OrderStatus = "shipped"
	StatusDone    OrderStatus = "done"
	StatusCancel  OrderStatus = "cancel"
)

var transitions = map[OrderStatus][]OrderStatus{
	StatusPending: {StatusShipped, StatusCancel},
	StatusShipped: {StatusDone},
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case StatusPending, StatusShipped, StatusDone, StatusCancel:
		return st, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// CanTransition reports whether an order may move from s to next.
// Only forward progress and cancellation of pending orders are allowed.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return len(transitions[s]) == 0
}
