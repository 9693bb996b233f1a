// Package order provides order history, detail and cancellation. The status
// lifecycle is owned by the backend; the client only gates which actions it
// will attempt and how statuses are labeled.
package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/chungmin23/storefront/internal/api"
	"github.com/chungmin23/storefront/internal/models"
)

// ErrNotCancellable is returned when cancellation is attempted for a status
// outside {PENDING, PAID}. The check happens before any network call.
var ErrNotCancellable = errors.New("order can no longer be cancelled")

// statusLabels maps known statuses to display text. Unknown statuses are
// shown verbatim so new backend statuses degrade gracefully.
var statusLabels = map[models.OrderStatus]string{
	models.OrderPending:   "Awaiting payment",
	models.OrderPaid:      "Paid",
	models.OrderPreparing: "Preparing",
	models.OrderShipping:  "Shipping",
	models.OrderDelivered: "Delivered",
	models.OrderCancelled: "Cancelled",
}

// StatusLabel returns the display label for a status.
func StatusLabel(s models.OrderStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// CanCancel reports whether the cancel action is offered for a status.
func CanCancel(s models.OrderStatus) bool {
	return s == models.OrderPending || s == models.OrderPaid
}

// Service wraps the member-facing order endpoints.
type Service struct {
	client *api.Client
	log    *slog.Logger
}

// New creates an order service.
func New(client *api.Client, log *slog.Logger) *Service {
	return &Service{
		client: client,
		log:    log,
	}
}

// My returns one page of the current member's orders. Pages are 1-based.
func (s *Service) My(ctx context.Context, page, size int) (*models.Page[models.Order], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	var result models.Page[models.Order]
	if err := s.client.Get(ctx, "/orders/my", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get returns one order by its numeric id.
func (s *Service) Get(ctx context.Context, orderID int64) (*models.Order, error) {
	var order models.Order
	if err := s.client.Get(ctx, fmt.Sprintf("/orders/%d", orderID), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ByNumber returns one order by its order number.
func (s *Service) ByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	if err := s.client.Get(ctx, "/orders/number/"+orderNumber, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Cancel cancels an order. Statuses outside {PENDING, PAID} are rejected
// client-side without touching the network.
func (s *Service) Cancel(ctx context.Context, o models.Order) error {
	if !CanCancel(o.Status) {
		return fmt.Errorf("%w: status is %s", ErrNotCancellable, o.Status)
	}

	if err := s.client.Delete(ctx, fmt.Sprintf("/orders/%d", o.OrderID), nil); err != nil {
		return err
	}

	s.log.Info("order cancelled", "order_id", o.OrderID, "order_number", o.OrderNumber)
	return nil
}
