package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

type fakeAPI struct {
	status string
	err    error
	calls  []string
}

func (f *fakeAPI) VerifySession(ctx context.Context, sessionID string) (string, error) {
	f.calls = append(f.calls, sessionID)
	return f.status, f.err
}

type fakeCart struct {
	clears int
	err    error
}

func (f *fakeCart) ClearCart(ctx context.Context) error {
	f.clears++
	return f.err
}

func TestVerifyMapsProviderStatus(t *testing.T) {
	tests := []struct {
		status string
		want   domain.PaymentOutcome
	}{
		{"paid", domain.PaymentPaid},
		{"unpaid", domain.PaymentUnpaid},
		{"canceled", domain.PaymentCanceled},
		{"weird", domain.PaymentUnknown},
		{"", domain.PaymentUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			api := &fakeAPI{status: tt.status}
			result := NewVerifier(api, nil, zaptest.NewLogger(t)).Verify(context.Background(), "cs_1")
			assert.Equal(t, tt.want, result.Outcome)
			assert.Equal(t, tt.want.Message(), result.Message)
			assert.Equal(t, []string{"cs_1"}, api.calls)
		})
	}
}

func TestVerifyMissingSessionMakesNoCall(t *testing.T) {
	api := &fakeAPI{status: "paid"}
	result := NewVerifier(api, nil, zaptest.NewLogger(t)).Verify(context.Background(), "  ")

	assert.Equal(t, domain.PaymentVerificationError, result.Outcome)
	assert.Equal(t, "Invalid session. Please try again.", result.Message)
	assert.Empty(t, api.calls)
}

func TestVerifyRemoteFailure(t *testing.T) {
	api := &fakeAPI{err: &errors.ErrRemote{Op: "verify_session", Status: 500, Message: "boom"}}
	result := NewVerifier(api, nil, zaptest.NewLogger(t)).Verify(context.Background(), "cs_1")
	assert.Equal(t, domain.PaymentVerificationError, result.Outcome)
}

func TestCompleteReturnClearsCartOnlyWhenPaid(t *testing.T) {
	for status, clears := range map[string]int{"paid": 1, "unpaid": 0, "canceled": 0, "weird": 0} {
		t.Run(status, func(t *testing.T) {
			cart := &fakeCart{}
			v := NewVerifier(&fakeAPI{status: status}, cart, zaptest.NewLogger(t))
			v.CompleteReturn(context.Background(), "http://localhost:8080/success?session_id=cs_1")
			assert.Equal(t, clears, cart.clears)
		})
	}

	t.Run("missing session id", func(t *testing.T) {
		cart := &fakeCart{}
		api := &fakeAPI{status: "paid"}
		result := NewVerifier(api, cart, zaptest.NewLogger(t)).CompleteReturn(context.Background(), "http://localhost:8080/success")
		assert.Equal(t, domain.PaymentVerificationError, result.Outcome)
		assert.Empty(t, api.calls)
		assert.Equal(t, 0, cart.clears)
	})
}

func TestSessionIDFromURL(t *testing.T) {
	assert.Equal(t, "cs_1", SessionIDFromURL("https://shop.example.com/success?session_id=cs_1"))
	assert.Equal(t, "cs_2", SessionIDFromURL("?session_id=cs_2"))
	assert.Equal(t, "cs_3", SessionIDFromURL("session_id=cs_3&x=1"))
	assert.Equal(t, "", SessionIDFromURL("https://shop.example.com/success"))
	assert.Equal(t, "", SessionIDFromURL(""))
}
