package store

import (
	"context"
	"log/slog"

	"storefront/internal/api"
	"storefront/internal/domain/entity"

	"go.uber.org/fx"
)

// CartStoreParams holds dependencies for CartStore, injected by Fx.
type CartStoreParams struct {
	fx.In

	Client *api.Client
	Logger *slog.Logger
}

// CartStore holds the shopping cart. Totals are server-computed and never
// recomputed locally: every mutation replaces cart state from the response
// instead of guessing.
type CartStore struct {
	status tracker

	client *api.Client
	logger *slog.Logger

	items       []entity.CartItem
	totalAmount float64
	itemsCount  int
}

// NewCartStore is the constructor for CartStore.
func NewCartStore(params CartStoreParams) *CartStore {
	return &CartStore{
		client: params.Client,
		logger: params.Logger,
	}
}

// Loading reports whether a cart operation is in progress.
func (s *CartStore) Loading() bool { return s.status.Loading() }

// Err returns the displayable message of the last failed operation.
func (s *CartStore) Err() string { return s.status.Err() }

// Message returns the last success message from the API.
func (s *CartStore) Message() string { return s.status.Message() }

// ClearStatus resets the error and message fields.
func (s *CartStore) ClearStatus() { s.status.ClearStatus() }

// Items returns the cart line items.
func (s *CartStore) Items() []entity.CartItem {
	s.status.mu.RLock()
	defer s.status.mu.RUnlock()

	return s.items
}

// TotalAmount returns the server-computed cart total.
func (s *CartStore) TotalAmount() float64 {
	s.status.mu.RLock()
	defer s.status.mu.RUnlock()

	return s.totalAmount
}

// ItemsCount returns the server-computed item count.
func (s *CartStore) ItemsCount() int {
	s.status.mu.RLock()
	defer s.status.mu.RUnlock()

	return s.itemsCount
}

// cartResponse covers both payload variants the cart endpoints return: the
// full cart under data, or a summary-only update.
type cartResponse struct {
	Data        *entity.Cart        `json:"data"`
	CartSummary *entity.CartSummary `json:"cart_summary"`
}

// applyCart replaces local cart state with whatever the server sent.
func (s *CartStore) applyCart(res *cartResponse) {
	s.status.mu.Lock()
	defer s.status.mu.Unlock()

	if res.Data != nil {
		s.items = res.Data.Items
		s.totalAmount = res.Data.TotalAmount
		s.itemsCount = res.Data.ItemsCount
	}
	if res.CartSummary != nil {
		s.totalAmount = res.CartSummary.TotalAmount
		s.itemsCount = res.CartSummary.ItemsCount
	}
}

// cartCall issues one cart request and reconciles the response. Mutations
// that came back with only a summary are followed by a wholesale re-fetch so
// the line items never drift from the server.
func (s *CartStore) cartCall(ctx context.Context, endpointKey string, mutation bool, issue func(ctx context.Context, path string, out any) (string, error)) error {
	path, err := s.client.Endpoint(endpointKey)
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		var res cartResponse
		message, err := issue(ctx, path, &res)
		if err != nil {
			return message, err
		}
		s.applyCart(&res)

		if mutation && res.Data == nil {
			if err := s.refetch(ctx); err != nil {
				return message, err
			}
		}

		return message, nil
	})
}

// refetch reloads the full cart outside the usual status cycle.
func (s *CartStore) refetch(ctx context.Context) error {
	path, err := s.client.Endpoint("cartShow")
	if err != nil {
		return err
	}

	var res cartResponse
	if _, err := s.client.Get(ctx, path, nil, &res); err != nil {
		return err
	}
	s.applyCart(&res)

	return nil
}

// FetchCart loads the current cart state from the server.
func (s *CartStore) FetchCart(ctx context.Context) error {
	return s.cartCall(ctx, "cartShow", false, func(ctx context.Context, path string, out any) (string, error) {
		return s.client.Get(ctx, path, nil, out)
	})
}

// AddItem puts a product into the cart.
func (s *CartStore) AddItem(ctx context.Context, productID int64, quantity int) error {
	body := map[string]any{"product_id": productID, "quantity": quantity}

	return s.cartCall(ctx, "cartAdd", true, func(ctx context.Context, path string, out any) (string, error) {
		return s.client.Post(ctx, path, body, out)
	})
}

// UpdateItem changes a cart line's quantity.
func (s *CartStore) UpdateItem(ctx context.Context, itemID int64, quantity int) error {
	body := map[string]any{"item_id": itemID, "quantity": quantity}

	return s.cartCall(ctx, "cartUpdate", true, func(ctx context.Context, path string, out any) (string, error) {
		return s.client.Patch(ctx, path, body, out)
	})
}

// RemoveItem removes a cart line.
func (s *CartStore) RemoveItem(ctx context.Context, itemID int64) error {
	body := map[string]any{"item_id": itemID}

	return s.cartCall(ctx, "cartRevoke", true, func(ctx context.Context, path string, out any) (string, error) {
		return s.client.Delete(ctx, path, body, out)
	})
}

// ClearCart empties the whole cart.
func (s *CartStore) ClearCart(ctx context.Context) error {
	return s.cartCall(ctx, "cartClear", true, func(ctx context.Context, path string, out any) (string, error) {
		return s.client.Delete(ctx, path, nil, out)
	})
}
