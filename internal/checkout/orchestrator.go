package checkout

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/metrics"
	"github.com/jafarshop/storefront/internal/storeapi"
	"github.com/jafarshop/storefront/internal/ui"
	"github.com/jafarshop/storefront/pkg/errors"
)

// SignInPath is where an unauthenticated checkout is sent
const SignInPath = "/signin"

// API is the order and payment-session part of the storefront API
type API interface {
	CreateOrder(ctx context.Context, req storeapi.OrderRequest, idempotencyKey string) (*domain.Order, error)
	CreateCheckoutSession(ctx context.Context, orderID string) (*domain.PaymentSession, error)
}

// Cart is the cart the order is built from
type Cart interface {
	Lines() domain.Cart
	ClearCart(ctx context.Context) error
}

// Sessions provides the buyer's identity
type Sessions interface {
	Current() *domain.Identity
}

// Orchestrator drives one checkout attempt from form entry to completion
type Orchestrator struct {
	api         API
	cart        Cart
	sessions    Sessions
	navigator   ui.Navigator
	notifier    ui.Notifier
	shippingFee decimal.Decimal
	logger      *zap.Logger

	mu          sync.Mutex
	state       domain.CheckoutState
	form        domain.CheckoutForm
	fieldErrors map[string]string
	order       *domain.Order
	session     *domain.PaymentSession
	failure     string
}

// NewOrchestrator creates an orchestrator in EDITING with the form prefilled from the current identity
func NewOrchestrator(api API, cart Cart, sessions Sessions, navigator ui.Navigator, notifier ui.Notifier, shippingFee decimal.Decimal, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if navigator == nil {
		navigator = ui.Discard
	}
	if notifier == nil {
		notifier = ui.Discard
	}
	o := &Orchestrator{
		api:         api,
		cart:        cart,
		sessions:    sessions,
		navigator:   navigator,
		notifier:    notifier,
		shippingFee: shippingFee,
		logger:      logger,
		state:       domain.CheckoutEditing,
		form:        domain.CheckoutForm{PaymentMethod: domain.PaymentCOD},
		fieldErrors: map[string]string{},
	}
	if identity := sessions.Current(); identity != nil {
		o.form.Name = identity.Name
		o.form.Email = identity.Email
		o.form.Phone = FormatPhone(identity.Phone)
	}
	return o
}

// State returns the current checkout state
func (o *Orchestrator) State() domain.CheckoutState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Form returns a copy of the form
func (o *Orchestrator) Form() domain.CheckoutForm {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.form
}

// FieldErrors returns the failures of the last validation
func (o *Orchestrator) FieldErrors() map[string]string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]string, len(o.fieldErrors))
	for k, v := range o.fieldErrors {
		out[k] = v
	}
	return out
}

// Order returns the created order, if any
func (o *Orchestrator) Order() *domain.Order {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.order
}

// PaymentSession returns the provider session of a card checkout, if any
func (o *Orchestrator) PaymentSession() *domain.PaymentSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// Failure returns the message of the last failed submission
func (o *Orchestrator) Failure() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.failure
}

// SetField updates one form field, masking card, expiry, CVV and phone input
func (o *Orchestrator) SetField(name, value string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.editable(); err != nil {
		return err
	}

	switch name {
	case FieldName:
		o.form.Name = value
	case FieldEmail:
		o.form.Email = value
	case FieldAddress:
		o.form.Address = value
	case FieldCity:
		o.form.City = value
	case FieldPhone:
		o.form.Phone = FormatPhone(value)
	case FieldCardNumber:
		o.form.CardNumber = FormatCardNumber(value)
	case FieldCardExpiry:
		o.form.CardExpiry = FormatExpiry(value)
	case FieldCardCVV:
		o.form.CardCVV = FormatCVV(value)
	case FieldPaymentMethod:
		method, ok := domain.ParsePaymentMethod(value)
		if !ok {
			return &errors.ErrValidation{Fields: map[string]string{FieldPaymentMethod: "Select a payment method"}}
		}
		o.form.PaymentMethod = method
	default:
		return &errors.ErrValidation{Message: "unknown checkout field " + name}
	}
	return nil
}

// SelectPaymentMethod changes the payment method. It never submits: both
// methods wait for PlaceOrder.
func (o *Orchestrator) SelectPaymentMethod(method domain.PaymentMethod) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.editable(); err != nil {
		return err
	}
	if method != domain.PaymentCOD && method != domain.PaymentCard {
		return &errors.ErrValidation{Fields: map[string]string{FieldPaymentMethod: "Select a payment method"}}
	}
	o.form.PaymentMethod = method
	return nil
}

// editable leaves FAILED for EDITING; called with mu held
func (o *Orchestrator) editable() error {
	if o.state == domain.CheckoutFailed {
		return o.transition(domain.CheckoutEditing)
	}
	if o.state != domain.CheckoutEditing {
		return &errors.ErrInvalidStateTransition{From: o.state, To: domain.CheckoutEditing}
	}
	return nil
}

// transition moves to next; called with mu held
func (o *Orchestrator) transition(next domain.CheckoutState) error {
	if !o.state.CanTransitionTo(next) {
		return &errors.ErrInvalidStateTransition{From: o.state, To: next}
	}
	o.logger.Debug("Checkout state transition", zap.String("from", string(o.state)), zap.String("to", string(next)))
	o.state = next
	return nil
}

func (o *Orchestrator) setState(next domain.CheckoutState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.transition(next); err != nil {
		o.logger.Error("Rejected checkout state transition", zap.Error(err))
	}
}

// PlaceOrder validates the form, builds the order from the cart and runs the
// COD or card protocol. The returned error is also reflected in State.
func (o *Orchestrator) PlaceOrder(ctx context.Context) error {
	o.mu.Lock()
	if o.state == domain.CheckoutFailed {
		_ = o.transition(domain.CheckoutEditing)
	}
	if err := o.transition(domain.CheckoutValidating); err != nil {
		o.mu.Unlock()
		return err
	}
	form := o.form
	o.mu.Unlock()

	identity := o.sessions.Current()
	if !identity.Authenticated() {
		o.setState(domain.CheckoutEditing)
		o.navigator.Navigate(SignInPath)
		return &errors.ErrUnauthorized{Message: "Please sign in to place an order"}
	}

	if err := Validate(form); err != nil {
		o.mu.Lock()
		var verr *errors.ErrValidation
		if stderrors.As(err, &verr) {
			o.fieldErrors = verr.Fields
		}
		_ = o.transition(domain.CheckoutEditing)
		o.mu.Unlock()
		return err
	}

	req, err := BuildOrder(*identity, o.cart.Lines(), form, o.shippingFee)
	if err != nil {
		o.mu.Lock()
		o.fieldErrors = map[string]string{}
		o.mu.Unlock()
		return o.fail(form.PaymentMethod, err)
	}

	o.mu.Lock()
	o.fieldErrors = map[string]string{}
	if form.PaymentMethod == domain.PaymentCard {
		_ = o.transition(domain.CheckoutSubmittingCard)
	} else {
		_ = o.transition(domain.CheckoutSubmittingCOD)
	}
	o.mu.Unlock()

	if form.PaymentMethod == domain.PaymentCard {
		return o.submitCard(ctx, *identity, req)
	}
	return o.submitCOD(ctx, *identity, req)
}

func (o *Orchestrator) createOrder(ctx context.Context, identity domain.Identity, req storeapi.OrderRequest) (*domain.Order, error) {
	key := uuid.NewString()
	o.logger.Info("Submitting order",
		zap.String("user_id", identity.ID),
		zap.String("payment_method", string(req.PaymentMethod)),
		zap.Int("line_count", len(req.Products)),
		zap.String("total", req.Total.String()),
		zap.String("idempotency_key", key),
	)
	return o.api.CreateOrder(ctx, req, key)
}

func (o *Orchestrator) submitCOD(ctx context.Context, identity domain.Identity, req storeapi.OrderRequest) error {
	order, err := o.createOrder(ctx, identity, req)
	if err != nil {
		return o.fail(domain.PaymentCOD, err)
	}

	if err := o.cart.ClearCart(ctx); err != nil {
		o.logger.Warn("Order placed but cart clear failed", zap.String("user_id", identity.ID), zap.Error(err))
	}

	o.mu.Lock()
	o.order = order
	_ = o.transition(domain.CheckoutSucceeded)
	o.mu.Unlock()

	if order != nil {
		o.logger.Info("Order placed", zap.String("order_id", order.ID), zap.String("payment_method", string(domain.PaymentCOD)))
	}
	metrics.ObserveCheckout(string(domain.PaymentCOD), string(domain.CheckoutSucceeded))
	o.notifier.Info("Order placed successfully!")
	return nil
}

// submitCard creates the order and then, strictly after it carries an id,
// requests the payment session and hands off to the provider
func (o *Orchestrator) submitCard(ctx context.Context, identity domain.Identity, req storeapi.OrderRequest) error {
	order, err := o.createOrder(ctx, identity, req)
	if err != nil {
		return o.fail(domain.PaymentCard, err)
	}
	if order == nil || order.ID == "" {
		return o.fail(domain.PaymentCard, &errors.ErrOrderCreation{})
	}

	o.mu.Lock()
	o.order = order
	o.mu.Unlock()

	session, err := o.api.CreateCheckoutSession(ctx, order.ID)
	if err == nil && (session == nil || session.RedirectURL == "") {
		err = &errors.ErrRemote{Op: "create_checkout_session", Message: "Payment session could not be created"}
	}
	if err != nil {
		// The order stays on the server unpaid
		o.logger.Warn("Payment session failed after order creation", zap.String("order_id", order.ID), zap.Error(err))
		return o.fail(domain.PaymentCard, err)
	}

	o.mu.Lock()
	o.session = session
	_ = o.transition(domain.CheckoutRedirecting)
	o.mu.Unlock()

	o.logger.Info("Redirecting to payment provider",
		zap.String("order_id", order.ID),
		zap.String("session_id", session.ProviderSessionID),
	)
	metrics.ObserveCheckout(string(domain.PaymentCard), string(domain.CheckoutRedirecting))
	o.navigator.Navigate(session.RedirectURL)
	return nil
}

func (o *Orchestrator) fail(method domain.PaymentMethod, err error) error {
	msg := errors.UserMessage(err)

	o.mu.Lock()
	o.failure = msg
	if tErr := o.transition(domain.CheckoutFailed); tErr != nil {
		o.logger.Error("Rejected checkout state transition", zap.Error(tErr))
	}
	o.mu.Unlock()

	o.logger.Warn("Checkout failed", zap.String("payment_method", string(method)), zap.Error(err))
	metrics.ObserveCheckout(string(method), string(domain.CheckoutFailed))
	o.notifier.Error(msg)

	var remote *errors.ErrRemote
	if stderrors.As(err, &remote) && remote.IsAuth() {
		o.navigator.Navigate(SignInPath)
	}
	return err
}
