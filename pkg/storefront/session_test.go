package storefront

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var deliveryAddress = Address{Village: "Kota", StreetNo: "4", City: "Guntur", State: "AP", Pincode: "522001"}

func signedInSession(t *testing.T) (*fakeServer, *Session) {
	t.Helper()
	f, api := newFakeServer(t)
	session, err := NewSession(api, NewMemoryIdentityStore(), DefaultShippingFee)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, session.Signup(ctx, "a@x.com", "pw123", "pw123"))
	require.NoError(t, session.Login(ctx, "a@x.com", "pw123"))
	return f, session
}

func TestSessionLogin(t *testing.T) {
	_, session := signedInSession(t)

	assert.Equal(t, "a@x.com", session.Identifier())
	assert.Equal(t, "token-a@x.com", session.API().Token())
	identity, err := session.store.Load()
	require.NoError(t, err)
	assert.Equal(t, &Identity{ID: "id-1", Identifier: "a@x.com", Name: "a"}, identity)
}

func TestSessionLoginFailure(t *testing.T) {
	_, api := newFakeServer(t)
	session, err := NewSession(api, NewMemoryIdentityStore(), DefaultShippingFee)
	require.NoError(t, err)

	err = session.Login(context.Background(), "a@x.com", "pw123")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", err.Error())
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))
	assert.Empty(t, session.Identifier())
	assert.Empty(t, api.Token())
}

func TestSessionCheckout(t *testing.T) {
	f, session := signedInSession(t)
	session.Cart().Add(shirt)
	session.Cart().Add(scarf)

	order, err := session.Checkout(context.Background(), deliveryAddress)
	require.NoError(t, err)

	assert.Equal(t, 950.0, order.Total)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "id-1", order.UserID)
	assert.Equal(t, 0, session.Cart().Len(), "cart is cleared after a confirmed order")

	orders := session.Orders().Orders()
	require.Len(t, orders, 1, "the refresh replaced the optimistic entry")
	assert.Equal(t, order.ID, orders[0].ID)
	_, served := f.counts()
	assert.Equal(t, 1, served)
}

func TestSessionCheckoutKeepsLinesAddedMeanwhile(t *testing.T) {
	f, session := signedInSession(t)
	session.Cart().Add(shirt)
	f.setListDelay("id-1", 200*time.Millisecond)

	type result struct {
		order *Order
		err   error
	}
	done := make(chan result, 1)
	go func() {
		order, err := session.Checkout(context.Background(), deliveryAddress)
		done <- result{order, err}
	}()

	require.Eventually(t, func() bool { return f.orderCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	hat := Line{Name: "Hat", Price: 150, ImageURL: "hat.jpg", Quantity: 1}
	session.Cart().Add(hat)

	res := <-done
	require.NoError(t, res.err)
	assert.Len(t, res.order.Items, 1)
	assert.Equal(t, []Line{hat}, session.Cart().Lines(), "a line added during checkout was never ordered")
}

func TestSessionCheckoutFailureKeepsCart(t *testing.T) {
	f, session := signedInSession(t)
	session.Cart().Add(shirt)
	f.setFailCreate("Missing required order fields")

	_, err := session.Checkout(context.Background(), deliveryAddress)
	require.Error(t, err)
	assert.Equal(t, "Missing required order fields", err.Error(), "the server's message is surfaced verbatim")
	assert.Equal(t, 1, session.Cart().Len())
	assert.Empty(t, session.Orders().Orders())

	f.setFailCreate("garbage")
	_, err = session.Checkout(context.Background(), deliveryAddress)
	require.Error(t, err)
	assert.Equal(t, GenericErrorMessage, err.Error())
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))
	assert.Equal(t, 1, session.Cart().Len())
}

func TestSessionCheckoutPreconditions(t *testing.T) {
	_, session := signedInSession(t)

	_, err := session.Checkout(context.Background(), deliveryAddress)
	assert.ErrorIs(t, err, ErrEmptyCart)

	session.Cart().Add(shirt)
	incomplete := deliveryAddress
	incomplete.Pincode = ""
	_, err = session.Checkout(context.Background(), incomplete)
	assert.ErrorIs(t, err, ErrIncompleteAddress)

	require.NoError(t, session.Logout())
	_, err = session.Checkout(context.Background(), deliveryAddress)
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestSessionLogout(t *testing.T) {
	f, session := signedInSession(t)
	f.seedOrder("id-1", "order-9")
	require.NoError(t, session.Orders().FetchOrders(context.Background(), "a@x.com"))
	session.Cart().Add(shirt)

	require.NoError(t, session.Logout())

	assert.Empty(t, session.Identifier())
	assert.Empty(t, session.API().Token())
	assert.Empty(t, session.Orders().Orders())
	assert.Equal(t, 0, session.Cart().Len())
	identity, err := session.store.Load()
	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestSessionRestoresStoredIdentity(t *testing.T) {
	_, api := newFakeServer(t)
	store := NewFileIdentityStore(filepath.Join(t.TempDir(), "identity.json"))
	require.NoError(t, store.Save(Identity{ID: "id-7", Identifier: "a@x.com"}))

	session, err := NewSession(api, store, DefaultShippingFee)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", session.Identifier())
}
