package domain

import "strings"

// Role is the authorization role carried by an identity
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps any server role string onto a known role; unknown values are users
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// PaymentMethod is the wire value sent as paymentMethod on order creation
type PaymentMethod string

const (
	// PaymentCOD - cash on delivery, completed synchronously
	PaymentCOD PaymentMethod = "COD"
	// PaymentCard - hosted-payment redirect, completed via provider callback
	PaymentCard PaymentMethod = "Card"
)

// ParsePaymentMethod accepts the selector values ("cod", "card") as well as the wire values
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cod", "cash":
		return PaymentCOD, true
	case "card":
		return PaymentCard, true
	default:
		return "", false
	}
}

// OrderStatus is the server-side order status; the client treats it as opaque
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusPaid      OrderStatus = "Paid"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// CheckoutState is a state of the checkout orchestration
type CheckoutState string

const (
	CheckoutEditing        CheckoutState = "EDITING"
	CheckoutValidating     CheckoutState = "VALIDATING"
	CheckoutSubmittingCOD  CheckoutState = "SUBMITTING_COD"
	CheckoutSubmittingCard CheckoutState = "SUBMITTING_CARD"
	// REDIRECTING - handed off to the payment provider; no further local changes
	CheckoutRedirecting CheckoutState = "REDIRECTING"
	CheckoutSucceeded   CheckoutState = "SUCCEEDED"
	CheckoutFailed      CheckoutState = "FAILED"
)

// IsTerminal reports whether no further transition is possible from s
func (s CheckoutState) IsTerminal() bool {
	return s == CheckoutRedirecting || s == CheckoutSucceeded
}

// CanTransitionTo checks if a checkout state transition is valid
func (s CheckoutState) CanTransitionTo(next CheckoutState) bool {
	switch s {
	case CheckoutEditing:
		return next == CheckoutValidating
	case CheckoutValidating:
		return next == CheckoutEditing ||
			next == CheckoutSubmittingCOD ||
			next == CheckoutSubmittingCard ||
			next == CheckoutFailed
	case CheckoutSubmittingCOD:
		return next == CheckoutSucceeded ||
			next == CheckoutFailed
	case CheckoutSubmittingCard:
		return next == CheckoutRedirecting ||
			next == CheckoutFailed
	case CheckoutFailed:
		return next == CheckoutEditing
	case CheckoutRedirecting, CheckoutSucceeded:
		return false // Terminal states
	default:
		return false
	}
}

// PaymentOutcome is the user-facing result of verifying a provider session
type PaymentOutcome string

const (
	PaymentPaid              PaymentOutcome = "paid"
	PaymentUnpaid            PaymentOutcome = "unpaid"
	PaymentCanceled          PaymentOutcome = "canceled"
	PaymentUnknown           PaymentOutcome = "unknown"
	PaymentVerificationError PaymentOutcome = "verification_error"
)

// OutcomeFromProviderStatus maps the provider's payment_status field
func OutcomeFromProviderStatus(status string) PaymentOutcome {
	switch status {
	case "paid":
		return PaymentPaid
	case "unpaid":
		return PaymentUnpaid
	case "canceled":
		return PaymentCanceled
	default:
		return PaymentUnknown
	}
}

// Message is the text shown to the buyer for the outcome
func (o PaymentOutcome) Message() string {
	switch o {
	case PaymentPaid:
		return "Payment successful! Thank you for your order."
	case PaymentUnpaid, PaymentCanceled:
		return "Payment failed or was canceled. Please try again."
	case PaymentUnknown:
		return "Payment not completed. Please contact support."
	default:
		return "Error verifying payment. Please try again later."
	}
}
