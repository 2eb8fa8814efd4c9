package storefront

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeServer is a small in-memory stand-in for the storefront HTTP surface.
type fakeServer struct {
	mu           sync.Mutex
	accounts     map[string]*Account // by identifier
	secrets      map[string]string
	orders       []Order
	userLookups  int
	ordersServed int
	failCreate   string
	listDelay    map[string]time.Duration
}

func newFakeServer(t *testing.T) (*fakeServer, *API) {
	t.Helper()
	f := &fakeServer{
		accounts:  map[string]*Account{},
		secrets:   map[string]string{},
		listDelay: map[string]time.Duration{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/signup", f.signup)
	mux.HandleFunc("POST /api/auth/login", f.login)
	mux.HandleFunc("GET /api/user/{identifier}", f.authed(f.getUser))
	mux.HandleFunc("POST /api/orders", f.authed(f.createOrder))
	mux.HandleFunc("GET /api/orders/{userId}", f.authed(f.listOrders))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	api, err := NewAPI(srv.URL)
	require.NoError(t, err)
	return f, api
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeServer) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer token-") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
			return
		}
		next(w, r)
	}
}

func (f *fakeServer) signup(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[body["identifier"]]; ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "User already exists"})
		return
	}
	f.accounts[body["identifier"]] = &Account{ID: fmt.Sprintf("id-%d", len(f.accounts)+1), Identifier: body["identifier"]}
	f.secrets[body["identifier"]] = body["secret"]
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

func (f *fakeServer) login(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if secret, ok := f.secrets[body["identifier"]]; !ok || secret != body["secret"] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": "token-" + body["identifier"]})
}

func (f *fakeServer) getUser(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userLookups++
	account, ok := f.accounts[r.PathValue("identifier")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (f *fakeServer) createOrder(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != "" {
		if f.failCreate == "garbage" {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": f.failCreate})
		return
	}
	order := Order{
		ID:        fmt.Sprintf("order-%d", len(f.orders)+1),
		UserID:    req.UserID,
		Items:     req.Items,
		Total:     req.Total,
		Status:    "pending",
		CreatedAt: time.Now(),
	}
	if req.Address != nil {
		order.Address = *req.Address
	}
	f.orders = append([]Order{order}, f.orders...)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"message": "Order placed successfully", "order": order})
}

func (f *fakeServer) listOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	f.mu.Lock()
	delay := f.listDelay[userID]
	f.mu.Unlock()
	time.Sleep(delay)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.ordersServed++
	out := []Order{}
	for _, order := range f.orders {
		if order.UserID == userID {
			out = append(out, order)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *fakeServer) seedOrder(userID, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append([]Order{{ID: id, UserID: userID, Status: "pending"}}, f.orders...)
}

func (f *fakeServer) setFailCreate(message string) {
	f.mu.Lock()
	f.failCreate = message
	f.mu.Unlock()
}

func (f *fakeServer) setListDelay(userID string, d time.Duration) {
	f.mu.Lock()
	f.listDelay[userID] = d
	f.mu.Unlock()
}

func (f *fakeServer) orderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

func (f *fakeServer) counts() (userLookups, ordersServed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userLookups, f.ordersServed
}
