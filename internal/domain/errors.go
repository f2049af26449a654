package domain

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrValidation             = errors.New("validation")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrOrderLocked            = errors.New("order locked")
	ErrEmptyCart              = errors.New("empty cart")
	ErrInvalidCustomerName    = errors.New("invalid customer name")
	ErrInsufficientAmount     = errors.New("insufficient amount")
	ErrChefUnavailable        = errors.New("chef unavailable")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrBackendUnavailable     = errors.New("backend unavailable")
	ErrPaymentFailed          = errors.New("payment failed")
)

// IsInputError reports whether err should be shown inline to the caller
// rather than treated as a system failure.
func IsInputError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrInvalidCustomerName) ||
		errors.Is(err, ErrInsufficientAmount)
}
