// Package payment reads payment records and requests cancellations. Payment
// processing itself lives entirely in the backend.
package payment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chungmin23/storefront/internal/api"
	"github.com/chungmin23/storefront/internal/models"
)

// StatusCompleted is the payment status that requires an explicit
// cancellation call after an order cancel.
const StatusCompleted = "COMPLETED"

// Service wraps the payment endpoints.
type Service struct {
	client *api.Client
	log    *slog.Logger
}

// New creates a payment service.
func New(client *api.Client, log *slog.Logger) *Service {
	return &Service{
		client: client,
		log:    log,
	}
}

// Get returns a payment by its id.
func (s *Service) Get(ctx context.Context, paymentID int64) (*models.Payment, error) {
	var p models.Payment
	if err := s.client.Get(ctx, fmt.Sprintf("/payments/%d", paymentID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ByOrderNumber returns the payment attached to an order.
func (s *Service) ByOrderNumber(ctx context.Context, orderNumber string) (*models.Payment, error) {
	var p models.Payment
	if err := s.client.Get(ctx, "/payments/order/"+orderNumber, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Cancel requests cancellation of a completed payment.
func (s *Service) Cancel(ctx context.Context, orderNumber, reason string) error {
	body := map[string]string{"cancelReason": reason}
	if err := s.client.Post(ctx, "/payments/cancel/"+orderNumber, body, nil); err != nil {
		return err
	}

	s.log.Info("payment cancelled", "order_number", orderNumber)
	return nil
}
