package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/payment"
)

// PaymentReturnResponse is rendered on the provider's return URL
type PaymentReturnResponse struct {
	Outcome   domain.PaymentOutcome `json:"outcome"`
	Message   string                `json:"message"`
	SessionID string                `json:"session_id,omitempty"`
	Next      string                `json:"next"`
}

// ReturnVerifier completes a hosted-payment return
type ReturnVerifier interface {
	Verify(ctx context.Context, sessionID string) payment.Result
	CompleteReturn(ctx context.Context, returnURL string) payment.Result
}

// HandlePaymentReturn handles GET /success?session_id=...
// The cart is cleared only when the provider reports the session paid.
func HandlePaymentReturn(verifier ReturnVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := verifier.CompleteReturn(c.Request.Context(), c.Request.URL.String())

		logger.Info("Payment return handled",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("session_id", result.SessionID),
			zap.String("outcome", string(result.Outcome)),
		)

		status := http.StatusOK
		if result.Outcome == domain.PaymentVerificationError && result.SessionID == "" {
			status = http.StatusBadRequest
		}
		c.JSON(status, PaymentReturnResponse{
			Outcome:   result.Outcome,
			Message:   result.Message,
			SessionID: result.SessionID,
			Next:      "/",
		})
	}
}

// HandleVerifySession handles GET /verify/:session_id, a re-check that never touches the cart
func HandleVerifySession(verifier ReturnVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := verifier.Verify(c.Request.Context(), c.Param("session_id"))
		c.JSON(http.StatusOK, PaymentReturnResponse{
			Outcome:   result.Outcome,
			Message:   result.Message,
			SessionID: result.SessionID,
			Next:      "/",
		})
	}
}
