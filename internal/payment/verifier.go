package payment

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/metrics"
)

// SessionIDParam is the query parameter the provider appends to the return URL
const SessionIDParam = "session_id"

const invalidSessionMessage = "Invalid session. Please try again."

// API is the verification endpoint of the storefront API
type API interface {
	VerifySession(ctx context.Context, sessionID string) (string, error)
}

// CartClearer empties the buyer's cart after a confirmed payment
type CartClearer interface {
	ClearCart(ctx context.Context) error
}

// Result is what the return page shows
type Result struct {
	SessionID string                `json:"session_id,omitempty"`
	Outcome   domain.PaymentOutcome `json:"outcome"`
	Message   string                `json:"message"`
}

// Verifier checks a provider session once; it never retries
type Verifier struct {
	api    API
	cart   CartClearer
	logger *zap.Logger
}

// NewVerifier creates a payment verifier. cart may be nil when there is no
// local cart to clear.
func NewVerifier(api API, cart CartClearer, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{api: api, cart: cart, logger: logger}
}

// Verify maps the provider's payment_status onto an outcome. A missing
// session id is a verification error and makes no call.
func (v *Verifier) Verify(ctx context.Context, sessionID string) Result {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		metrics.ObservePaymentOutcome(string(domain.PaymentVerificationError))
		return Result{Outcome: domain.PaymentVerificationError, Message: invalidSessionMessage}
	}

	status, err := v.api.VerifySession(ctx, sessionID)
	if err != nil {
		v.logger.Warn("Payment verification failed", zap.String("session_id", sessionID), zap.Error(err))
		metrics.ObservePaymentOutcome(string(domain.PaymentVerificationError))
		return Result{SessionID: sessionID, Outcome: domain.PaymentVerificationError, Message: domain.PaymentVerificationError.Message()}
	}

	outcome := domain.OutcomeFromProviderStatus(status)
	v.logger.Info("Payment verified",
		zap.String("session_id", sessionID),
		zap.String("payment_status", status),
		zap.String("outcome", string(outcome)),
	)
	metrics.ObservePaymentOutcome(string(outcome))
	return Result{SessionID: sessionID, Outcome: outcome, Message: outcome.Message()}
}

// CompleteReturn handles the provider's redirect back: it reads session_id
// from the return URL, verifies it and clears the cart only when paid
func (v *Verifier) CompleteReturn(ctx context.Context, returnURL string) Result {
	result := v.Verify(ctx, SessionIDFromURL(returnURL))
	if result.Outcome != domain.PaymentPaid || v.cart == nil {
		return result
	}
	if err := v.cart.ClearCart(ctx); err != nil {
		v.logger.Warn("Payment confirmed but cart clear failed", zap.String("session_id", result.SessionID), zap.Error(err))
	}
	return result
}

// SessionIDFromURL extracts session_id from a return URL or bare query string
func SessionIDFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if u, err := url.Parse(raw); err == nil && u.RawQuery != "" {
		return u.Query().Get(SessionIDParam)
	}
	if q, err := url.ParseQuery(strings.TrimPrefix(raw, "?")); err == nil {
		return q.Get(SessionIDParam)
	}
	return ""
}
