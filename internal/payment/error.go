package payment

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig         = errors.New("invalid gateway config")
	ErrMissingRequiredFields = errors.New("missing required fields")
	ErrPaymentNotFound       = errors.New("payment not found")
)

// Error wraps a failure from a gateway operation with the operation name.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ninepay %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
