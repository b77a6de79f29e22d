package checkout

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/storeapi"
	"github.com/jafarshop/storefront/pkg/errors"
)

type fakeOrderAPI struct {
	mu           sync.Mutex
	order        *domain.Order
	orderErr     error
	session      *domain.PaymentSession
	sessionErr   error
	orders       []storeapi.OrderRequest
	keys         []string
	sessionCalls []string
}

func (f *fakeOrderAPI) CreateOrder(ctx context.Context, req storeapi.OrderRequest, key string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, req)
	f.keys = append(f.keys, key)
	return f.order, f.orderErr
}

func (f *fakeOrderAPI) CreateCheckoutSession(ctx context.Context, orderID string) (*domain.PaymentSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionCalls = append(f.sessionCalls, orderID)
	return f.session, f.sessionErr
}

type fakeCart struct {
	lines    domain.Cart
	clears   int
	clearErr error
}

func (f *fakeCart) Lines() domain.Cart { return f.lines.Clone() }

func (f *fakeCart) ClearCart(ctx context.Context) error {
	f.clears++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.lines = domain.Cart{}
	return nil
}

type fakeSessions struct {
	identity *domain.Identity
}

func (f fakeSessions) Current() *domain.Identity { return f.identity }

type recorder struct {
	targets  []string
	infos    []string
	failures []string
}

func (r *recorder) Navigate(target string) { r.targets = append(r.targets, target) }
func (r *recorder) Info(message string)    { r.infos = append(r.infos, message) }
func (r *recorder) Error(message string)   { r.failures = append(r.failures, message) }

type fixture struct {
	api  *fakeOrderAPI
	cart *fakeCart
	rec  *recorder
	o    *Orchestrator
}

func newFixture(t *testing.T, identity *domain.Identity) *fixture {
	t.Helper()
	f := &fixture{
		api:  &fakeOrderAPI{},
		cart: &fakeCart{lines: domain.Cart{stocked("p1", 2, 5, "100")}},
		rec:  &recorder{},
	}
	f.o = NewOrchestrator(f.api, f.cart, fakeSessions{identity: identity}, f.rec, f.rec, DefaultShippingFee, zaptest.NewLogger(t))
	return f
}

func buyer() *domain.Identity {
	return &domain.Identity{ID: "u1", Name: "Ada Lovelace", Email: "ada@example.com", Credential: "t1"}
}

func fillShipping(t *testing.T, o *Orchestrator) {
	t.Helper()
	require.NoError(t, o.SetField(FieldAddress, "1 Analytical Way"))
	require.NoError(t, o.SetField(FieldCity, "Lahore"))
	require.NoError(t, o.SetField(FieldPhone, "0300-1234567"))
}

func fillCard(t *testing.T, o *Orchestrator) {
	t.Helper()
	require.NoError(t, o.SelectPaymentMethod(domain.PaymentCard))
	require.NoError(t, o.SetField(FieldCardNumber, "4111111111111111"))
	require.NoError(t, o.SetField(FieldCardExpiry, "1229"))
	require.NoError(t, o.SetField(FieldCardCVV, "123"))
}

func TestNewOrchestratorPrefillsFromIdentity(t *testing.T) {
	f := newFixture(t, buyer())
	form := f.o.Form()
	assert.Equal(t, "Ada Lovelace", form.Name)
	assert.Equal(t, "ada@example.com", form.Email)
	assert.Equal(t, domain.PaymentCOD, form.PaymentMethod)
	assert.Equal(t, domain.CheckoutEditing, f.o.State())
}

func TestCODSuccessClearsCart(t *testing.T) {
	f := newFixture(t, buyer())
	f.api.order = &domain.Order{ID: "o1"}
	fillShipping(t, f.o)

	require.NoError(t, f.o.PlaceOrder(context.Background()))

	assert.Equal(t, domain.CheckoutSucceeded, f.o.State())
	assert.Equal(t, 1, f.cart.clears)
	assert.Empty(t, f.cart.lines)
	assert.Equal(t, "o1", f.o.Order().ID)
	require.Len(t, f.api.orders, 1)
	assert.Equal(t, "03001234567", f.api.orders[0].Phone)
	assert.NotEmpty(t, f.api.keys[0])
	assert.Empty(t, f.api.sessionCalls)
}

func TestCODFailureKeepsCart(t *testing.T) {
	f := newFixture(t, buyer())
	f.api.orderErr = &errors.ErrRemote{Op: "create_order", Status: 400, Message: "Insufficient stock"}
	fillShipping(t, f.o)

	err := f.o.PlaceOrder(context.Background())

	require.Error(t, err)
	assert.Equal(t, domain.CheckoutFailed, f.o.State())
	assert.Equal(t, 0, f.cart.clears)
	assert.Len(t, f.cart.lines, 1)
	assert.Equal(t, "Insufficient stock", f.o.Failure())
	assert.Equal(t, []string{"Insufficient stock"}, f.rec.failures)
}

func TestCODClearFailureStillSucceeds(t *testing.T) {
	f := newFixture(t, buyer())
	f.api.order = &domain.Order{ID: "o1"}
	f.cart.clearErr = &errors.ErrRemote{Op: "clear_cart", Status: 500, Message: "boom"}
	fillShipping(t, f.o)

	require.NoError(t, f.o.PlaceOrder(context.Background()))
	assert.Equal(t, domain.CheckoutSucceeded, f.o.State())
}

func TestCardProtocolRedirects(t *testing.T) {
	f := newFixture(t, buyer())
	f.api.order = &domain.Order{ID: "o1"}
	f.api.session = &domain.PaymentSession{OrderRef: "o1", ProviderSessionID: "cs_1", RedirectURL: "https://pay.example.com/cs_1"}
	fillShipping(t, f.o)
	fillCard(t, f.o)

	require.NoError(t, f.o.PlaceOrder(context.Background()))

	assert.Equal(t, domain.CheckoutRedirecting, f.o.State())
	assert.Equal(t, []string{"o1"}, f.api.sessionCalls)
	assert.Equal(t, []string{"https://pay.example.com/cs_1"}, f.rec.targets)
	assert.Equal(t, domain.PaymentCard, f.api.orders[0].PaymentMethod)
	assert.Equal(t, 0, f.cart.clears)

	assert.Error(t, f.o.SetField(FieldCity, "Karachi"))
	assert.Error(t, f.o.PlaceOrder(context.Background()))
}

func TestCardWithoutOrderIDSkipsSession(t *testing.T) {
	for name, order := range map[string]*domain.Order{"nil order": nil, "empty id": {}} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, buyer())
			f.api.order = order
			fillShipping(t, f.o)
			fillCard(t, f.o)

			err := f.o.PlaceOrder(context.Background())

			var creation *errors.ErrOrderCreation
			require.ErrorAs(t, err, &creation)
			assert.Equal(t, domain.CheckoutFailed, f.o.State())
			assert.Empty(t, f.api.sessionCalls)
			assert.Equal(t, 0, f.cart.clears)
		})
	}
}

func TestCardSessionFailure(t *testing.T) {
	f := newFixture(t, buyer())
	f.api.order = &domain.Order{ID: "o1"}
	f.api.sessionErr = &errors.ErrRemote{Op: "create_checkout_session", Status: 502, Message: "Stripe unavailable"}
	fillShipping(t, f.o)
	fillCard(t, f.o)

	require.Error(t, f.o.PlaceOrder(context.Background()))
	assert.Equal(t, domain.CheckoutFailed, f.o.State())
	assert.Equal(t, "o1", f.o.Order().ID)
	assert.Empty(t, f.rec.targets)
	assert.Equal(t, 0, f.cart.clears)
}

func TestSelectingCardDoesNotSubmit(t *testing.T) {
	f := newFixture(t, buyer())
	fillShipping(t, f.o)
	fillCard(t, f.o)

	assert.Empty(t, f.api.orders)
	assert.Equal(t, domain.CheckoutEditing, f.o.State())
}

func TestValidationBlocksSubmission(t *testing.T) {
	f := newFixture(t, buyer())
	require.NoError(t, f.o.SetField(FieldPhone, "12345"))

	err := f.o.PlaceOrder(context.Background())

	var verr *errors.ErrValidation
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.CheckoutEditing, f.o.State())
	assert.Contains(t, f.o.FieldErrors(), FieldPhone)
	assert.Contains(t, f.o.FieldErrors(), FieldAddress)
	assert.Empty(t, f.api.orders)
}

func TestOutOfStockAbortsBeforeNetwork(t *testing.T) {
	f := newFixture(t, buyer())
	f.cart.lines = domain.Cart{stocked("p1", 3, 0, "10")}
	fillShipping(t, f.o)

	err := f.o.PlaceOrder(context.Background())

	var oos *errors.ErrOutOfStock
	require.ErrorAs(t, err, &oos)
	assert.Equal(t, domain.CheckoutFailed, f.o.State())
	assert.Empty(t, f.api.orders)
}

func TestUnauthenticatedCheckoutRedirectsToSignIn(t *testing.T) {
	for name, identity := range map[string]*domain.Identity{
		"no identity":   nil,
		"no credential": {ID: "u1"},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, identity)
			fillShipping(t, f.o)

			err := f.o.PlaceOrder(context.Background())

			var unauth *errors.ErrUnauthorized
			require.ErrorAs(t, err, &unauth)
			assert.Equal(t, []string{SignInPath}, f.rec.targets)
			assert.Empty(t, f.api.orders)
			assert.Equal(t, domain.CheckoutEditing, f.o.State())
		})
	}
}

func TestAuthFailureNavigatesToSignIn(t *testing.T) {
	f := newFixture(t, buyer())
	f.api.orderErr = &errors.ErrRemote{Op: "create_order", Status: 401, Message: "Token expired"}
	fillShipping(t, f.o)

	require.Error(t, f.o.PlaceOrder(context.Background()))
	assert.Equal(t, []string{SignInPath}, f.rec.targets)
}

func TestRetryAfterFailure(t *testing.T) {
	f := newFixture(t, buyer())
	f.api.orderErr = &errors.ErrRemote{Op: "create_order", Status: 500, Message: "boom"}
	fillShipping(t, f.o)
	require.Error(t, f.o.PlaceOrder(context.Background()))

	f.api.orderErr = nil
	f.api.order = &domain.Order{ID: "o2"}
	require.NoError(t, f.o.PlaceOrder(context.Background()))

	assert.Equal(t, domain.CheckoutSucceeded, f.o.State())
	require.Len(t, f.api.keys, 2)
	assert.NotEqual(t, f.api.keys[0], f.api.keys[1])
}

func TestSetFieldMasksInput(t *testing.T) {
	f := newFixture(t, buyer())
	require.NoError(t, f.o.SetField(FieldCardNumber, "4111111111111111extra"))
	require.NoError(t, f.o.SetField(FieldCardExpiry, "0729"))
	require.NoError(t, f.o.SetField(FieldCardCVV, "98765"))

	form := f.o.Form()
	assert.Equal(t, "4111 1111 1111 1111", form.CardNumber)
	assert.Equal(t, "07/29", form.CardExpiry)
	assert.Equal(t, "987", form.CardCVV)

	assert.Error(t, f.o.SetField("coupon", "x"))
	assert.Error(t, f.o.SetField(FieldPaymentMethod, "bitcoin"))
	require.NoError(t, f.o.SetField(FieldPaymentMethod, "card"))
	assert.Equal(t, domain.PaymentCard, f.o.Form().PaymentMethod)
}
