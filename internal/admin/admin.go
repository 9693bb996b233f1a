// Package admin implements the thin admin console operations: product CRUD
// with image uploads, coupon creation and order status management. All
// operations require an account carrying the admin role; the backend
// enforces this, the client only pre-checks for a friendlier error.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/chungmin23/storefront/internal/api"
	"github.com/chungmin23/storefront/internal/models"
)

// Service wraps the admin endpoints.
type Service struct {
	client *api.Client
	log    *slog.Logger
}

// New creates an admin service.
func New(client *api.Client, log *slog.Logger) *Service {
	return &Service{
		client: client,
		log:    log,
	}
}

// ProductInput is the editable product payload. Images are uploaded as
// multipart file parts under the "files" field.
type ProductInput struct {
	Name        string
	Description string
	Price       int64
	Category    string
	Stock       int
	Images      []api.File
}

func (in ProductInput) fields() map[string]string {
	return map[string]string{
		"name":        in.Name,
		"description": in.Description,
		"price":       strconv.FormatInt(in.Price, 10),
		"category":    in.Category,
		"stock":       strconv.Itoa(in.Stock),
	}
}

// CreateProduct registers a product, then best-effort refreshes the search
// index. The product save is the primary operation; an indexing failure is
// logged and swallowed, never rolled back.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	var p models.Product
	if err := s.client.Upload(ctx, "POST", "/products", in.fields(), in.Images, &p); err != nil {
		return nil, err
	}

	s.reindex(ctx)
	s.log.Info("product created", "product_id", p.ID, "name", p.Name)
	return &p, nil
}

// UpdateProduct replaces a product's editable fields and images, then
// best-effort refreshes the search index.
func (s *Service) UpdateProduct(ctx context.Context, productID int64, in ProductInput) (*models.Product, error) {
	var p models.Product
	path := fmt.Sprintf("/products/%d", productID)
	if err := s.client.Upload(ctx, "PUT", path, in.fields(), in.Images, &p); err != nil {
		return nil, err
	}

	s.reindex(ctx)
	s.log.Info("product updated", "product_id", productID)
	return &p, nil
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, productID int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/products/%d", productID), nil)
}

// CreateCoupon publishes a new coupon definition.
func (s *Service) CreateCoupon(ctx context.Context, in models.CouponInput) (*models.Coupon, error) {
	var c models.Coupon
	if err := s.client.Post(ctx, "/coupons/", in, &c); err != nil {
		return nil, err
	}

	s.log.Info("coupon created", "coupon_id", c.CouponID, "code", c.Code)
	return &c, nil
}

// Orders returns one page of all orders across members.
func (s *Service) Orders(ctx context.Context, page, size int) (*models.Page[models.Order], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	var result models.Page[models.Order]
	if err := s.client.Get(ctx, "/orders", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateOrderStatus moves an order to a new lifecycle status.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	body := map[string]models.OrderStatus{"status": status}
	path := fmt.Sprintf("/orders/%d/status", orderID)
	if err := s.client.Put(ctx, path, body, nil); err != nil {
		return err
	}

	s.log.Info("order status updated", "order_id", orderID, "status", status)
	return nil
}

// reindex triggers a rebuild of the product search index. Failure must not
// block the save that triggered it.
func (s *Service) reindex(ctx context.Context) {
	if err := s.client.Post(ctx, "/products/index", nil, nil); err != nil {
		s.log.Warn("product reindex failed after save", "error", err)
	}
}
