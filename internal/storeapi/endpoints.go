package storeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/jafarshop/storefront/internal/domain"
)

// SignUpRequest is the registration payload
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// OrderRequest is the order creation payload
type OrderRequest struct {
	User          string               `json:"user"`
	Products      []domain.OrderLine   `json:"products"`
	Total         json.Number          `json:"total"`
	Address       string               `json:"address"`
	City          string               `json:"city"`
	Phone         string               `json:"phone"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	Name          string               `json:"name"`
	Email         string               `json:"email"`
}

// cartResponse is the {cart:[...]} envelope; Cart is nil when the key is absent
type cartResponse struct {
	Cart *domain.Cart `json:"cart"`
}

// SignIn posts credentials and returns the raw response body for normalization
func (c *Client) SignIn(ctx context.Context, email, password string) (map[string]interface{}, error) {
	var out map[string]interface{}
	err := c.do(ctx, request{
		op:     "sign_in",
		method: http.MethodPost,
		path:   "/api/users/signin",
		body:   map[string]string{"email": email, "password": password},
	}, &out)
	return out, err
}

// SignUp registers a user and returns the raw response body for normalization
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (map[string]interface{}, error) {
	var out map[string]interface{}
	err := c.do(ctx, request{
		op:     "sign_up",
		method: http.MethodPost,
		path:   "/api/users/signup",
		body:   req,
	}, &out)
	return out, err
}

// GetCart reads the remote cart; a response without a cart is an empty cart
func (c *Client) GetCart(ctx context.Context, userID string) (domain.Cart, error) {
	var out cartResponse
	if err := c.do(ctx, request{
		op:     "get_cart",
		method: http.MethodGet,
		path:   "/api/users/" + url.PathEscape(userID) + "/cart",
	}, &out); err != nil {
		return nil, err
	}
	if out.Cart == nil {
		return domain.Cart{}, nil
	}
	return *out.Cart, nil
}

// AddCartItem applies a signed quantity delta. ok is false when the server
// answered 2xx without a cart, in which case the caller keeps its current cart.
func (c *Client) AddCartItem(ctx context.Context, userID, productID string, delta int) (cart domain.Cart, ok bool, err error) {
	var out cartResponse
	if err := c.do(ctx, request{
		op:     "add_cart_item",
		method: http.MethodPost,
		path:   "/api/users/" + url.PathEscape(userID) + "/cart",
		body: struct {
			ProductID string `json:"productId"`
			Quantity  int    `json:"quantity"`
		}{productID, delta},
	}, &out); err != nil {
		return nil, false, err
	}
	if out.Cart == nil {
		return nil, false, nil
	}
	return *out.Cart, true, nil
}

// RemoveCartItem deletes one product's line and returns the remaining cart
func (c *Client) RemoveCartItem(ctx context.Context, userID, productID string) (domain.Cart, error) {
	var out cartResponse
	if err := c.do(ctx, request{
		op:     "remove_cart_item",
		method: http.MethodDelete,
		path:   "/api/users/" + url.PathEscape(userID) + "/cart/" + url.PathEscape(productID),
	}, &out); err != nil {
		return nil, err
	}
	if out.Cart == nil {
		return domain.Cart{}, nil
	}
	return *out.Cart, nil
}

// ClearCart empties the remote cart
func (c *Client) ClearCart(ctx context.Context, userID string) error {
	return c.do(ctx, request{
		op:     "clear_cart",
		method: http.MethodDelete,
		path:   "/api/users/" + url.PathEscape(userID) + "/cart",
	}, nil)
}

// CreateOrder submits an order. A 2xx response without an order yields (nil, nil).
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest, idempotencyKey string) (*domain.Order, error) {
	var out struct {
		Order *domain.Order `json:"order"`
	}
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers[IdempotencyKeyHeader] = idempotencyKey
	}
	if err := c.do(ctx, request{
		op:      "create_order",
		method:  http.MethodPost,
		path:    "/api/orders",
		body:    req,
		headers: headers,
	}, &out); err != nil {
		return nil, err
	}
	return out.Order, nil
}

// CreateCheckoutSession requests a hosted-payment session for an order
func (c *Client) CreateCheckoutSession(ctx context.Context, orderID string) (*domain.PaymentSession, error) {
	var out struct {
		URL       string            `json:"url"`
		ID        domain.FlexString `json:"id"`
		SessionID domain.FlexString `json:"sessionId"`
	}
	if err := c.do(ctx, request{
		op:     "create_checkout_session",
		method: http.MethodPost,
		path:   "/api/payments/create-checkout-session",
		body:   map[string]string{"orderId": orderID},
	}, &out); err != nil {
		return nil, err
	}
	session := &domain.PaymentSession{
		OrderRef:          orderID,
		ProviderSessionID: string(out.SessionID),
		RedirectURL:       out.URL,
	}
	if session.ProviderSessionID == "" {
		session.ProviderSessionID = string(out.ID)
	}
	return session, nil
}

// VerifySession returns the provider's payment_status for a checkout session
func (c *Client) VerifySession(ctx context.Context, sessionID string) (string, error) {
	var out struct {
		PaymentStatus string `json:"payment_status"`
	}
	if err := c.do(ctx, request{
		op:     "verify_session",
		method: http.MethodGet,
		path:   "/api/payments/verify-session",
		query:  url.Values{"session_id": {sessionID}},
	}, &out); err != nil {
		return "", err
	}
	return out.PaymentStatus, nil
}

// ListProducts returns the catalog
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var raw json.RawMessage
	if err := c.do(ctx, request{
		op:     "list_products",
		method: http.MethodGet,
		path:   "/api/products",
	}, &raw); err != nil {
		return nil, err
	}
	products := []domain.Product{}
	if err := decodeList(raw, "products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct returns a single catalog entry
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var raw json.RawMessage
	if err := c.do(ctx, request{
		op:     "get_product",
		method: http.MethodGet,
		path:   "/api/products/" + url.PathEscape(id),
	}, &raw); err != nil {
		return nil, err
	}
	var wrapped struct {
		Product *domain.Product `json:"product"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Product != nil {
		return wrapped.Product, nil
	}
	var p domain.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListUsers returns the raw user records (admin only)
func (c *Client) ListUsers(ctx context.Context) ([]map[string]interface{}, error) {
	var raw json.RawMessage
	if err := c.do(ctx, request{
		op:     "list_users",
		method: http.MethodGet,
		path:   "/api/users/getAllUsers",
	}, &raw); err != nil {
		return nil, err
	}
	users := []map[string]interface{}{}
	if err := decodeList(raw, "users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListOrders returns every order (admin only)
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var raw json.RawMessage
	if err := c.do(ctx, request{
		op:     "list_orders",
		method: http.MethodGet,
		path:   "/api/orders",
	}, &raw); err != nil {
		return nil, err
	}
	orders := []domain.Order{}
	if err := decodeList(raw, "orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus sets an order's status (admin only)
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	return c.do(ctx, request{
		op:     "update_order_status",
		method: http.MethodPut,
		path:   "/api/orders/" + url.PathEscape(orderID),
		body:   map[string]domain.OrderStatus{"status": status},
	}, nil)
}
