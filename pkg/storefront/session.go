package storefront

import (
	"context"
	"errors"
	"sync"
)

// DefaultShippingFee is the flat surcharge the server adds to every order.
const DefaultShippingFee = 50

var (
	ErrNotSignedIn       = errors.New("not signed in")
	ErrIncompleteAddress = errors.New("please fill in all address details")
	ErrEmptyCart         = errors.New("your cart is empty")
)

// Session is the explicit signed-in state of one shopper: token, identity, cart
// and order history. Login sets it up and Logout tears it down.
type Session struct {
	api         *API
	store       IdentityStore
	cart        *Cart
	orders      *OrderSync
	shippingFee float64

	mu         sync.RWMutex
	identifier string
}

// NewSession creates a session. A previously stored identity is picked up, but a
// new Login is needed before authenticated calls succeed.
func NewSession(api *API, store IdentityStore, shippingFee float64) (*Session, error) {
	s := &Session{
		api:         api,
		store:       store,
		cart:        NewCart(),
		orders:      NewOrderSync(api, store),
		shippingFee: shippingFee,
	}
	identity, err := store.Load()
	if err != nil {
		return nil, err
	}
	if identity != nil {
		s.identifier = identity.Identifier
	}
	return s, nil
}

// Cart returns the session's cart.
func (s *Session) Cart() *Cart { return s.cart }

// Orders returns the session's order cache.
func (s *Session) Orders() *OrderSync { return s.orders }

// API returns the underlying client.
func (s *Session) API() *API { return s.api }

// Identifier returns the signed-in identifier or "".
func (s *Session) Identifier() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identifier
}

// Signup registers a new account without signing in.
func (s *Session) Signup(ctx context.Context, identifier, secret, confirmSecret string) error {
	return s.api.Signup(ctx, identifier, secret, confirmSecret)
}

// Login authenticates, keeps the token and stores the account identity.
func (s *Session) Login(ctx context.Context, identifier, secret string) error {
	token, err := s.api.Login(ctx, identifier, secret)
	if err != nil {
		return err
	}
	s.api.SetToken(token)

	if err := s.store.Clear(); err != nil {
		return err
	}
	if _, err := resolveIdentity(ctx, s.api, s.store, identifier); err != nil {
		s.api.SetToken("")
		return err
	}

	s.mu.Lock()
	s.identifier = identifier
	s.mu.Unlock()
	return nil
}

// Logout forgets the token, the stored identity, the cached orders and the cart.
func (s *Session) Logout() error {
	s.api.SetToken("")
	s.mu.Lock()
	s.identifier = ""
	s.mu.Unlock()
	s.orders.ClearOrders()
	s.cart.Clear()
	return s.store.Clear()
}

// Checkout turns the cart into an order. The ordered lines leave the cart only after
// the server accepted the order; on failure the cart is left untouched and the
// server's message is returned as an *APIError.
func (s *Session) Checkout(ctx context.Context, address Address) (*Order, error) {
	identifier := s.Identifier()
	if identifier == "" {
		return nil, ErrNotSignedIn
	}
	if !address.Complete() {
		return nil, ErrIncompleteAddress
	}
	lines := s.cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	identity, err := resolveIdentity(ctx, s.api, s.store, identifier)
	if err != nil {
		return nil, err
	}

	items := make([]OrderItem, len(lines))
	for i, line := range lines {
		items[i] = OrderItem{Name: line.Name, Price: line.Price, ImageURL: line.ImageURL, Quantity: line.quantity()}
	}
	order, err := s.api.CreateOrder(ctx, OrderRequest{
		UserID:  identity.ID,
		Items:   items,
		Total:   total(lines, s.shippingFee),
		Address: &address,
	})
	if err != nil {
		return nil, err
	}
	s.cart.removeOrdered(lines)

	s.orders.AddOrder(*order)
	// The optimistic entry stays if the refresh fails.
	_ = s.orders.RefreshOrders(ctx)
	return order, nil
}
