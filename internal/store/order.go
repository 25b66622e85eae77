package store

import (
	"context"
	"fmt"
	"log/slog"

	"storefront/internal/api"
	"storefront/internal/domain/entity"

	"go.uber.org/fx"
)

// OrderStoreParams holds dependencies for OrderStore, injected by Fx.
type OrderStoreParams struct {
	fx.In

	Client *api.Client
	Logger *slog.Logger
}

// OrderStore holds the order list and the currently viewed order.
type OrderStore struct {
	status tracker

	client *api.Client
	logger *slog.Logger

	orders     []entity.Order
	selected   *entity.Order
	pagination *entity.Pagination
}

// NewOrderStore is the constructor for OrderStore.
func NewOrderStore(params OrderStoreParams) *OrderStore {
	return &OrderStore{
		client: params.Client,
		logger: params.Logger,
	}
}

// Loading reports whether an order operation is in progress.
func (s *OrderStore) Loading() bool { return s.status.Loading() }

// Err returns the displayable message of the last failed operation.
func (s *OrderStore) Err() string { return s.status.Err() }

// Message returns the last success message from the API.
func (s *OrderStore) Message() string { return s.status.Message() }

// ClearStatus resets the error and message fields.
func (s *OrderStore) ClearStatus() { s.status.ClearStatus() }

// Orders returns the loaded order list.
func (s *OrderStore) Orders() []entity.Order {
	s.status.mu.RLock()
	defer s.status.mu.RUnlock()

	return s.orders
}

// SelectedOrder returns the currently viewed order, or nil.
func (s *OrderStore) SelectedOrder() *entity.Order {
	s.status.mu.RLock()
	defer s.status.mu.RUnlock()

	return s.selected
}

// Pagination returns the order list metadata.
func (s *OrderStore) Pagination() *entity.Pagination {
	s.status.mu.RLock()
	defer s.status.mu.RUnlock()

	return s.pagination
}

// orderResponse is the single-order payload shape.
type orderResponse struct {
	Data struct {
		Order entity.Order `json:"order"`
	} `json:"data"`
}

// fetchList loads one page of orders from the given endpoint.
func (s *OrderStore) fetchList(ctx context.Context, endpointKey string, page int) error {
	path, err := s.client.Endpoint(endpointKey)
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		var res struct {
			Data struct {
				Orders []entity.Order     `json:"orders"`
				Meta   *entity.Pagination `json:"meta"`
			} `json:"data"`
		}
		message, err := s.client.Get(ctx, path, pageQuery(page), &res)
		if err != nil {
			return message, err
		}

		s.status.mu.Lock()
		s.orders = res.Data.Orders
		s.pagination = res.Data.Meta
		s.status.mu.Unlock()

		return message, nil
	})
}

// FetchOrders loads a page of all orders (admin).
func (s *OrderStore) FetchOrders(ctx context.Context, page int) error {
	return s.fetchList(ctx, "orders", page)
}

// FetchMyOrders loads a page of the current user's orders.
func (s *OrderStore) FetchMyOrders(ctx context.Context, page int) error {
	return s.fetchList(ctx, "myOrders", page)
}

// FetchOrder loads a single order into the selected slot.
func (s *OrderStore) FetchOrder(ctx context.Context, orderID int64) error {
	path, err := s.orderPath(orderID, "")
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		var res orderResponse
		message, err := s.client.Get(ctx, path, nil, &res)
		if err != nil {
			return message, err
		}

		s.status.mu.Lock()
		s.selected = &res.Data.Order
		s.status.mu.Unlock()

		return message, nil
	})
}

// CreateOrder creates a new order from the current cart and selects it.
func (s *OrderStore) CreateOrder(ctx context.Context) (*entity.Order, error) {
	path, err := s.client.Endpoint("orders")
	if err != nil {
		return nil, err
	}

	var created *entity.Order
	err = s.status.call(func() (string, error) {
		var res orderResponse
		message, err := s.client.Post(ctx, path, nil, &res)
		if err != nil {
			return message, err
		}

		s.status.mu.Lock()
		s.selected = &res.Data.Order
		created = &res.Data.Order
		s.status.mu.Unlock()

		return message, nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateOrder changes an order's status and reconciles the response in
// place: the matching list entry is patched without touching ordering or
// pagination, and the selected order is replaced when the ids match.
func (s *OrderStore) UpdateOrder(ctx context.Context, orderID int64, updates map[string]any) error {
	path, err := s.orderPath(orderID, "")
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		var res orderResponse
		message, err := s.client.Patch(ctx, path, updates, &res)
		if err != nil {
			return message, err
		}
		s.reconcile(&res.Data.Order)

		return message, nil
	})
}

// CancelOrder cancels an order.
func (s *OrderStore) CancelOrder(ctx context.Context, orderID int64) error {
	path, err := s.orderPath(orderID, "/cancel")
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		var res orderResponse
		message, err := s.client.Post(ctx, path, nil, &res)
		if err != nil {
			return message, err
		}
		s.reconcile(&res.Data.Order)

		return message, nil
	})
}

// DeleteOrder deletes an order (admin) and filters the list locally; no
// re-fetch is triggered, so pagination metadata may go stale until the next
// explicit fetch.
func (s *OrderStore) DeleteOrder(ctx context.Context, orderID int64) error {
	path, err := s.orderPath(orderID, "")
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		message, err := s.client.Delete(ctx, path, nil, nil)
		if err != nil {
			return message, err
		}

		s.status.mu.Lock()
		filtered := s.orders[:0]
		for _, o := range s.orders {
			if o.ID != orderID {
				filtered = append(filtered, o)
			}
		}
		s.orders = filtered
		if s.selected != nil && s.selected.ID == orderID {
			s.selected = nil
		}
		s.status.mu.Unlock()

		return message, nil
	})
}

// ClearSelectedOrder clears the selected order from the state.
func (s *OrderStore) ClearSelectedOrder() {
	s.status.mu.Lock()
	defer s.status.mu.Unlock()
	s.selected = nil
}

func (s *OrderStore) reconcile(updated *entity.Order) {
	s.status.mu.Lock()
	defer s.status.mu.Unlock()

	if s.selected != nil && s.selected.ID == updated.ID {
		s.selected = updated
	}
	for i := range s.orders {
		if s.orders[i].ID == updated.ID {
			s.orders[i] = *updated

			break
		}
	}
}

func (s *OrderStore) orderPath(orderID int64, suffix string) (string, error) {
	base, err := s.client.Endpoint("orders")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%d%s", base, orderID, suffix), nil
}
