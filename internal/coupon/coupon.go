// Package coupon fetches coupon data and computes the client-side discount
// preview shown before submission. The server remains authoritative for the
// discount actually applied to an order.
package coupon

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chungmin23/storefront/internal/api"
	"github.com/chungmin23/storefront/internal/models"
)

// Service wraps the coupon endpoints.
type Service struct {
	client *api.Client
	log    *slog.Logger
}

// New creates a coupon service.
func New(client *api.Client, log *slog.Logger) *Service {
	return &Service{
		client: client,
		log:    log,
	}
}

// Active lists coupons currently open for issuing.
func (s *Service) Active(ctx context.Context) ([]models.Coupon, error) {
	var coupons []models.Coupon
	if err := s.client.Get(ctx, "/coupons/active", nil, &coupons); err != nil {
		return nil, err
	}
	return coupons, nil
}

// Mine lists coupons issued to the current account.
func (s *Service) Mine(ctx context.Context) ([]models.MyCoupon, error) {
	var coupons []models.MyCoupon
	if err := s.client.Get(ctx, "/coupons/my", nil, &coupons); err != nil {
		return nil, err
	}
	return coupons, nil
}

// ForCheckout lists coupons the server considers eligible for the current
// cart total.
func (s *Service) ForCheckout(ctx context.Context) ([]models.MyCoupon, error) {
	var coupons []models.MyCoupon
	if err := s.client.Get(ctx, "/coupons/checkout", nil, &coupons); err != nil {
		return nil, err
	}
	return coupons, nil
}

// Issue claims a coupon by code for the current account. Business-rule
// rejections (already issued, expired) surface as *api.Error with the
// server's message.
func (s *Service) Issue(ctx context.Context, code string) error {
	return s.client.Post(ctx, fmt.Sprintf("/coupons/issue/%s", code), nil, nil)
}

// Discount computes the preview discount for a coupon against a subtotal.
//
// PERCENT: floor(subtotal * value / 100), capped at MaxDiscountAmount when
// one is set. FIXED: the raw value, deliberately not clamped against the
// subtotal; the backend owns the final arithmetic.
func Discount(subtotal int64, c models.MyCoupon) int64 {
	if c.Type == models.DiscountPercent {
		discount := subtotal * c.DiscountValue / 100
		if c.MaxDiscountAmount > 0 && discount > c.MaxDiscountAmount {
			discount = c.MaxDiscountAmount
		}
		return discount
	}
	return c.DiscountValue
}

// Usable reports whether a coupon can be applied to a cart with the given
// subtotal: not yet used, and the minimum order amount (if any) is met.
func Usable(c models.MyCoupon, subtotal int64) bool {
	if c.Used {
		return false
	}
	if c.MinOrderAmount > 0 && subtotal < c.MinOrderAmount {
		return false
	}
	return true
}
