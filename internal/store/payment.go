package store

import (
	"context"
	"fmt"
	"log/slog"

	"storefront/internal/api"
	"storefront/internal/domain/entity"

	"go.uber.org/fx"
)

// OrderRefresher re-fetches a single order. Satisfied by OrderStore; the
// payment store uses it to keep denormalized order/payment status in sync
// after a payment mutation, the one cross-store consistency rule.
type OrderRefresher interface {
	FetchOrder(ctx context.Context, orderID int64) error
}

// PaymentStoreParams holds dependencies for PaymentStore, injected by Fx.
type PaymentStoreParams struct {
	fx.In

	Client *api.Client
	Orders *OrderStore
	Logger *slog.Logger
}

// PaymentStore holds the payment list and the currently viewed payment.
type PaymentStore struct {
	status tracker

	client *api.Client
	orders OrderRefresher
	logger *slog.Logger

	payments   []entity.Payment
	selected   *entity.Payment
	pagination *entity.Pagination
}

// NewPaymentStore is the constructor for PaymentStore.
func NewPaymentStore(params PaymentStoreParams) *PaymentStore {
	return &PaymentStore{
		client: params.Client,
		orders: params.Orders,
		logger: params.Logger,
	}
}

// Loading reports whether a payment operation is in progress.
func (s *PaymentStore) Loading() bool { return s.status.Loading() }

// Err returns the displayable message of the last failed operation.
func (s *PaymentStore) Err() string { return s.status.Err() }

// Message returns the last success message from the API.
func (s *PaymentStore) Message() string { return s.status.Message() }

// ClearStatus resets the error and message fields.
func (s *PaymentStore) ClearStatus() { s.status.ClearStatus() }

// Payments returns the loaded payment list.
func (s *PaymentStore) Payments() []entity.Payment {
	s.status.mu.RLock()
	defer s.status.mu.RUnlock()

	return s.payments
}

// SelectedPayment returns the currently viewed payment, or nil.
func (s *PaymentStore) SelectedPayment() *entity.Payment {
	s.status.mu.RLock()
	defer s.status.mu.RUnlock()

	return s.selected
}

// Pagination returns the payment list metadata.
func (s *PaymentStore) Pagination() *entity.Pagination {
	s.status.mu.RLock()
	defer s.status.mu.RUnlock()

	return s.pagination
}

// paymentResponse is the single-payment payload shape.
type paymentResponse struct {
	Data struct {
		Payment entity.Payment `json:"payment"`
	} `json:"data"`
}

// FetchPayments loads a page of payments.
func (s *PaymentStore) FetchPayments(ctx context.Context, page int) error {
	path, err := s.client.Endpoint("payments")
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		var res struct {
			Data struct {
				Payments []entity.Payment   `json:"payments"`
				Meta     *entity.Pagination `json:"meta"`
			} `json:"data"`
		}
		message, err := s.client.Get(ctx, path, pageQuery(page), &res)
		if err != nil {
			return message, err
		}

		s.status.mu.Lock()
		s.payments = res.Data.Payments
		s.pagination = res.Data.Meta
		s.status.mu.Unlock()

		return message, nil
	})
}

// FetchPayment loads a single payment into the selected slot.
func (s *PaymentStore) FetchPayment(ctx context.Context, paymentID int64) error {
	path, err := s.paymentPath(paymentID, "")
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		var res paymentResponse
		message, err := s.client.Get(ctx, path, nil, &res)
		if err != nil {
			return message, err
		}

		s.status.mu.Lock()
		s.selected = &res.Data.Payment
		s.status.mu.Unlock()

		return message, nil
	})
}

// CreatePayment creates a payment against an order, selects it, and
// re-fetches the parent order so its payment status stays consistent.
func (s *PaymentStore) CreatePayment(ctx context.Context, orderID int64, method string) (*entity.Payment, error) {
	path, err := s.client.Endpoint("payments")
	if err != nil {
		return nil, err
	}

	body := map[string]any{"order_id": orderID, "payment_method": method}

	var created *entity.Payment
	err = s.status.call(func() (string, error) {
		var res paymentResponse
		message, err := s.client.Post(ctx, path, body, &res)
		if err != nil {
			return message, err
		}

		s.status.mu.Lock()
		s.selected = &res.Data.Payment
		created = &res.Data.Payment
		s.status.mu.Unlock()

		s.refreshParentOrder(ctx, res.Data.Payment.OrderID)

		return message, nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// RetryPayment retries a failed payment, reconciles it in place, and
// re-fetches the parent order.
func (s *PaymentStore) RetryPayment(ctx context.Context, paymentID int64) error {
	path, err := s.paymentPath(paymentID, "/retry")
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		var res paymentResponse
		message, err := s.client.Post(ctx, path, nil, &res)
		if err != nil {
			return message, err
		}

		updated := res.Data.Payment
		s.status.mu.Lock()
		if s.selected != nil && s.selected.ID == updated.ID {
			s.selected = &updated
		}
		for i := range s.payments {
			if s.payments[i].ID == updated.ID {
				s.payments[i] = updated

				break
			}
		}
		s.status.mu.Unlock()

		s.refreshParentOrder(ctx, updated.OrderID)

		return message, nil
	})
}

// ClearSelectedPayment clears the selected payment from the state.
func (s *PaymentStore) ClearSelectedPayment() {
	s.status.mu.Lock()
	defer s.status.mu.Unlock()
	s.selected = nil
}

// refreshParentOrder keeps the order store's copy of the referenced order in
// sync. A failure here is logged, not surfaced: the payment succeeded.
func (s *PaymentStore) refreshParentOrder(ctx context.Context, orderID int64) {
	if s.orders == nil || orderID == 0 {
		return
	}
	if err := s.orders.FetchOrder(ctx, orderID); err != nil {
		s.logger.Warn("Failed to refresh parent order after payment",
			slog.Int64("order_id", orderID),
			slog.Any("error", err),
		)
	}
}

func (s *PaymentStore) paymentPath(paymentID int64, suffix string) (string, error) {
	base, err := s.client.Endpoint("payments")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%d%s", base, paymentID, suffix), nil
}
