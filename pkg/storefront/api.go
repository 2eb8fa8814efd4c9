package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// GenericErrorMessage is shown when the server gives no usable error text.
const GenericErrorMessage = "Something went wrong. Please try again."

// APIError is a non-2xx response. Message is the server's error text verbatim when
// it sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// API calls the storefront HTTP surface.
type API struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewAPI creates a client for the server at baseURL, e.g. http://localhost:8080.
func NewAPI(baseURL string) (*API, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse storefront url: %w", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("storefront url must be an absolute http(s) url: %q", baseURL)
	}
	return &API{
		baseURL: strings.TrimRight(parsed.String(), "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// SetToken sets the bearer token sent with every request. An empty token signs out.
func (a *API) SetToken(token string) {
	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
}

// Token returns the current bearer token.
func (a *API) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

// Signup registers an account. confirmSecret may be empty.
func (a *API) Signup(ctx context.Context, identifier, secret, confirmSecret string) error {
	body := map[string]string{"identifier": identifier, "secret": secret}
	if confirmSecret != "" {
		body["confirmSecret"] = confirmSecret
	}
	return a.do(ctx, http.MethodPost, "/api/auth/signup", body, nil)
}

// Login returns a session token.
func (a *API) Login(ctx context.Context, identifier, secret string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := a.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{"identifier": identifier, "secret": secret}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// GetAccount looks an account up by identifier.
func (a *API) GetAccount(ctx context.Context, identifier string) (*Account, error) {
	var account Account
	if err := a.do(ctx, http.MethodGet, "/api/user/"+url.PathEscape(identifier), nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateAccount applies a partial profile update.
func (a *API) UpdateAccount(ctx context.Context, identifier string, update ProfileUpdate) (*Account, error) {
	var out struct {
		User Account `json:"user"`
	}
	if err := a.do(ctx, http.MethodPut, "/api/user/"+url.PathEscape(identifier), update, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// AddCartLine pushes one line to the server-side cart and returns the stored cart.
func (a *API) AddCartLine(ctx context.Context, identifier string, line Line) ([]Line, error) {
	var out struct {
		Cart []Line `json:"cart"`
	}
	if err := a.do(ctx, http.MethodPost, "/api/cart/"+url.PathEscape(identifier), line, &out); err != nil {
		return nil, err
	}
	return out.Cart, nil
}

// GetCart returns the server-side cart.
func (a *API) GetCart(ctx context.Context, identifier string) ([]Line, error) {
	var cart []Line
	if err := a.do(ctx, http.MethodGet, "/api/cart/"+url.PathEscape(identifier), nil, &cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// CreateOrder places an order.
func (a *API) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	var out struct {
		Order Order `json:"order"`
	}
	if err := a.do(ctx, http.MethodPost, "/api/orders", req, &out); err != nil {
		return nil, err
	}
	return &out.Order, nil
}

// ListOrders returns the orders of one account, newest first.
func (a *API) ListOrders(ctx context.Context, userID string) ([]Order, error) {
	orders := []Order{}
	if err := a.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(userID), nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListAllOrders returns every order. Only admin accounts may call it.
func (a *API) ListAllOrders(ctx context.Context) ([]Order, error) {
	orders := []Order{}
	if err := a.do(ctx, http.MethodGet, "/api/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (a *API) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := a.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func newAPIError(status int, raw []byte) *APIError {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	message := GenericErrorMessage
	if err := json.Unmarshal(raw, &payload); err == nil {
		switch {
		case payload.Error != "":
			message = payload.Error
		case payload.Message != "":
			message = payload.Message
		}
	}
	return &APIError{Status: status, Message: message}
}
