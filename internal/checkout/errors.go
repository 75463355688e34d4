package checkout

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalidRequest    Kind = "invalid_request"
	KindProductNotFound   Kind = "product_not_found"
	KindInsufficientStock Kind = "insufficient_stock"
	KindInternal          Kind = "internal_error"
)

// Error is the only error type PlaceOrder returns. The transaction has
// already been rolled back by the time a caller sees it.
type Error struct {
	Kind      Kind
	Message   string
	ProductID uint
	Available int
	Requested int
	Err       error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindProductNotFound:
		return fmt.Sprintf("product %d not found", e.ProductID)
	case KindInsufficientStock:
		return fmt.Sprintf("insufficient stock for product %d: available %d, requested %d", e.ProductID, e.Available, e.Requested)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func invalid(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

func internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var ce *Error
	ok := errors.As(err, &ce)
	return ce, ok
}
