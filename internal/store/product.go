package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"storefront/internal/api"
	"storefront/internal/domain/entity"

	"go.uber.org/fx"
)

// ProductStoreParams holds dependencies for ProductStore, injected by Fx.
type ProductStoreParams struct {
	fx.In

	Client *api.Client
	Logger *slog.Logger
}

// ProductStore holds the product catalog list and the currently viewed
// product. Social actions return the updated aggregate product, which is
// patched into the list in place.
type ProductStore struct {
	status tracker

	client *api.Client
	logger *slog.Logger

	products   []entity.Product
	selected   *entity.Product
	pagination *entity.Pagination
}

// NewProductStore is the constructor for ProductStore.
func NewProductStore(params ProductStoreParams) *ProductStore {
	return &ProductStore{
		client: params.Client,
		logger: params.Logger,
	}
}

// Loading reports whether a product operation is in progress.
func (s *ProductStore) Loading() bool { return s.status.Loading() }

// Err returns the displayable message of the last failed operation.
func (s *ProductStore) Err() string { return s.status.Err() }

// Message returns the last success message from the API.
func (s *ProductStore) Message() string { return s.status.Message() }

// ClearStatus resets the error and message fields.
func (s *ProductStore) ClearStatus() { s.status.ClearStatus() }

// Products returns the loaded product list.
func (s *ProductStore) Products() []entity.Product {
	s.status.mu.RLock()
	defer s.status.mu.RUnlock()

	return s.products
}

// SelectedProduct returns the currently viewed product, or nil.
func (s *ProductStore) SelectedProduct() *entity.Product {
	s.status.mu.RLock()
	defer s.status.mu.RUnlock()

	return s.selected
}

// Pagination returns the product list metadata.
func (s *ProductStore) Pagination() *entity.Pagination {
	s.status.mu.RLock()
	defer s.status.mu.RUnlock()

	return s.pagination
}

// productResponse is the single-product payload shape.
type productResponse struct {
	Data struct {
		Product entity.Product `json:"product"`
	} `json:"data"`
}

// FetchProducts loads a page of products; filters are passed through as
// query parameters alongside the page.
func (s *ProductStore) FetchProducts(ctx context.Context, page int, filters url.Values) error {
	path, err := s.client.Endpoint("products")
	if err != nil {
		return err
	}

	query := pageQuery(page)
	for key, values := range filters {
		query[key] = values
	}

	return s.status.call(func() (string, error) {
		var res struct {
			Data struct {
				Products []entity.Product   `json:"products"`
				Meta     *entity.Pagination `json:"meta"`
			} `json:"data"`
		}
		message, err := s.client.Get(ctx, path, query, &res)
		if err != nil {
			return message, err
		}

		s.status.mu.Lock()
		s.products = res.Data.Products
		s.pagination = res.Data.Meta
		s.status.mu.Unlock()

		return message, nil
	})
}

// FetchProduct loads a single product into the selected slot.
func (s *ProductStore) FetchProduct(ctx context.Context, productID int64) error {
	path, err := s.productPath(productID, "")
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		var res productResponse
		message, err := s.client.Get(ctx, path, nil, &res)
		if err != nil {
			return message, err
		}

		s.status.mu.Lock()
		s.selected = &res.Data.Product
		s.status.mu.Unlock()

		return message, nil
	})
}

// CreateProduct creates a product from a multipart form (descriptive fields
// plus photo uploads) and returns the created record.
func (s *ProductStore) CreateProduct(ctx context.Context, fields map[string]string, photos []api.FileField) (*entity.Product, error) {
	path, err := s.client.Endpoint("products")
	if err != nil {
		return nil, err
	}

	var created *entity.Product
	err = s.status.call(func() (string, error) {
		var res productResponse
		message, err := s.client.PostMultipart(ctx, path, fields, photos, &res)
		if err != nil {
			return message, err
		}

		s.status.mu.Lock()
		created = &res.Data.Product
		s.status.mu.Unlock()

		return message, nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateProduct updates a product from a multipart form and reconciles the
// response in place.
func (s *ProductStore) UpdateProduct(ctx context.Context, productID int64, fields map[string]string, photos []api.FileField) error {
	path, err := s.productPath(productID, "")
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		var res productResponse
		message, err := s.client.PatchMultipart(ctx, path, fields, photos, &res)
		if err != nil {
			return message, err
		}
		s.reconcile(&res.Data.Product)

		return message, nil
	})
}

// DeleteProduct deletes a product and filters the list locally.
func (s *ProductStore) DeleteProduct(ctx context.Context, productID int64) error {
	path, err := s.productPath(productID, "")
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		message, err := s.client.Delete(ctx, path, nil, nil)
		if err != nil {
			return message, err
		}

		s.status.mu.Lock()
		filtered := s.products[:0]
		for _, p := range s.products {
			if p.ID != productID {
				filtered = append(filtered, p)
			}
		}
		s.products = filtered
		if s.selected != nil && s.selected.ID == productID {
			s.selected = nil
		}
		s.status.mu.Unlock()

		return message, nil
	})
}

// LikeProduct toggles the current user's like on a product.
func (s *ProductStore) LikeProduct(ctx context.Context, productID int64) error {
	return s.socialAction(ctx, productID, "/like", nil)
}

// RateProduct rates a product.
func (s *ProductStore) RateProduct(ctx context.Context, productID int64, rating int) error {
	return s.socialAction(ctx, productID, "/rate", map[string]any{"rating": rating})
}

// CommentOnProduct adds a comment, optionally threaded under a parent.
func (s *ProductStore) CommentOnProduct(ctx context.Context, productID int64, content string, parentID *int64) error {
	body := map[string]any{"content": content}
	if parentID != nil {
		body["parent_id"] = *parentID
	}

	return s.socialAction(ctx, productID, "/comment", body)
}

// ClearSelectedProduct clears the selected product from the state.
func (s *ProductStore) ClearSelectedProduct() {
	s.status.mu.Lock()
	defer s.status.mu.Unlock()
	s.selected = nil
}

// socialAction posts one like/rate/comment action; each returns the updated
// aggregate product.
func (s *ProductStore) socialAction(ctx context.Context, productID int64, suffix string, body any) error {
	path, err := s.productPath(productID, suffix)
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		var res productResponse
		message, err := s.client.Post(ctx, path, body, &res)
		if err != nil {
			return message, err
		}
		s.reconcile(&res.Data.Product)

		return message, nil
	})
}

func (s *ProductStore) reconcile(updated *entity.Product) {
	s.status.mu.Lock()
	defer s.status.mu.Unlock()

	if s.selected != nil && s.selected.ID == updated.ID {
		s.selected = updated
	}
	for i := range s.products {
		if s.products[i].ID == updated.ID {
			s.products[i] = *updated

			break
		}
	}
}

func (s *ProductStore) productPath(productID int64, suffix string) (string, error) {
	base, err := s.client.Endpoint("products")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%d%s", base, productID, suffix), nil
}
