package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/jafarshop/storefront/internal/domain"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when a call needs a credential that is missing or rejected.
// Callers recover by sending the user to sign in.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrValidation is returned when form validation fails; Fields holds every failing field
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

// ErrInvalidStateTransition is returned when an invalid checkout transition is attempted
type ErrInvalidStateTransition struct {
	From domain.CheckoutState
	To   domain.CheckoutState
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// ErrRemote is returned when the API answers non-2xx or cannot be reached.
// Message is the server-provided message when there is one.
type ErrRemote struct {
	Op      string
	Status  int
	Message string
}

func (e *ErrRemote) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s returned %d: %s", e.Op, e.Status, e.Message)
}

// IsAuth reports whether the server rejected the credential
func (e *ErrRemote) IsAuth() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// ErrSignInRequired is returned by cart operations when no identity is active
type ErrSignInRequired struct{}

func (e *ErrSignInRequired) Error() string {
	return "Please log in to add items to your cart!"
}

// ErrMissingProductRef is returned when no product reference can be resolved
type ErrMissingProductRef struct{}

func (e *ErrMissingProductRef) Error() string {
	return "Product ID missing. Please refresh and try again."
}

// ErrOutOfStock is returned when no cart line survives stock clamping
type ErrOutOfStock struct{}

func (e *ErrOutOfStock) Error() string {
	return "No items in cart or all items are out of stock."
}

// ErrOrderCreation is returned when the orders endpoint answers without an order id
type ErrOrderCreation struct {
	Message string
}

func (e *ErrOrderCreation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Order creation failed"
}

// UserMessage extracts the text to surface to the user for err
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var r *ErrRemote
	if stderrors.As(err, &r) && r.Message != "" {
		return r.Message
	}
	return err.Error()
}
