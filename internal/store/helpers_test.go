package store

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"storefront/config"
	"storefront/internal/api"
	"storefront/internal/storage"
)

// storeFixtures holds all test dependencies for store tests, backed by a
// single httptest server standing in for the API.
type storeFixtures struct {
	server   *httptest.Server
	client   *api.Client
	storage  *storage.SessionStorage
	session  *SessionStore
	auth     *AuthStore
	cart     *CartStore
	orders   *OrderStore
	payments *PaymentStore
	products *ProductStore
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.Handler) (*api.Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.API.BaseURL = server.URL
	cfg.API.Timeout = 5 * time.Second

	client := api.New(api.Params{Config: cfg, Logger: newTestLogger()})

	return client, server
}

func newTestStores(t *testing.T, handler http.Handler) storeFixtures {
	t.Helper()

	client, server := newTestClient(t, handler)
	logger := newTestLogger()

	sessionStorage := storage.NewWithPath(filepath.Join(t.TempDir(), "session.json"), logger)
	session := NewSessionStore(SessionStoreParams{Client: client, Storage: sessionStorage, Logger: logger})
	auth := NewAuthStore(AuthStoreParams{Client: client, Session: session, Logger: logger})
	cart := NewCartStore(CartStoreParams{Client: client, Logger: logger})
	orders := NewOrderStore(OrderStoreParams{Client: client, Logger: logger})
	payments := NewPaymentStore(PaymentStoreParams{Client: client, Orders: orders, Logger: logger})
	products := NewProductStore(ProductStoreParams{Client: client, Logger: logger})

	return storeFixtures{
		server:   server,
		client:   client,
		storage:  sessionStorage,
		session:  session,
		auth:     auth,
		cart:     cart,
		orders:   orders,
		payments: payments,
		products: products,
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
