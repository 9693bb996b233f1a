// Package checkout sequences delivery input, coupon selection and order
// submission. The orchestrator is a small state machine:
//
//	Loading -> AwaitingInput (coupon selected/cleared freely)
//	AwaitingInput -> Submitting -> Succeeded
//	Submitting -> AwaitingInput on failure, so the user can correct and retry
//
// Submission is blocked until every required delivery field is present and a
// payment method is chosen. On success the purchased cart lines are removed
// best-effort; the order already exists server-side, so cleanup failures are
// logged and ignored.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/chungmin23/storefront/internal/cart"
	"github.com/chungmin23/storefront/internal/coupon"
	"github.com/chungmin23/storefront/internal/models"
)

// State is the orchestrator's lifecycle position.
type State int

const (
	StateLoading State = iota
	StateAwaitingInput
	StateSubmitting
	StateSucceeded
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAwaitingInput:
		return "awaiting-input"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrEmptyCart          = errors.New("no items to check out")
	ErrNotReady           = errors.New("checkout is not accepting input")
	ErrIncompleteDelivery = errors.New("delivery information is incomplete")
	ErrNoPaymentMethod    = errors.New("payment method is required")
	ErrInvalidPayment     = errors.New("unknown payment method")
	ErrUnknownCoupon      = errors.New("coupon is not available for this checkout")
	ErrCouponUsed         = errors.New("coupon has already been used")
)

// DeliveryInput collects the shipping destination. The four tagged fields
// must be non-empty before submission.
type DeliveryInput struct {
	ReceiverName    string `validate:"required"`
	ReceiverPhone   string `validate:"required"`
	ZipCode         string `validate:"required"`
	AddressLine     string `validate:"required"`
	AddressDetail   string
	DeliveryMessage string
}

// Totals is the pre-submission price preview. The server recomputes all
// three on submission; this is display-only.
type Totals struct {
	Subtotal int64
	Discount int64
	Total    int64
}

// OrderClient is the slice of the gateway client the orchestrator needs.
type OrderClient interface {
	Post(ctx context.Context, path string, body, out any) error
}

// CouponSource fetches checkout-eligible coupons.
type CouponSource interface {
	ForCheckout(ctx context.Context) ([]models.MyCoupon, error)
}

// Orchestrator drives one checkout flow. Not reusable after success; build a
// fresh one per checkout.
type Orchestrator struct {
	client   OrderClient
	cart     *cart.Store
	coupons  CouponSource
	log      *slog.Logger
	validate *validator.Validate

	mu        sync.Mutex
	state     State
	email     string
	items     []models.CartItem
	available []models.MyCoupon
	selected  *models.MyCoupon
	delivery  DeliveryInput
	payment   models.PaymentMethod
}

// New creates an orchestrator in the Loading state.
func New(client OrderClient, cartStore *cart.Store, coupons CouponSource, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		client:   client,
		cart:     cartStore,
		coupons:  coupons,
		log:      log,
		validate: validator.New(),
		state:    StateLoading,
	}
}

// Begin seeds the checkout. With explicit items (a "buy now" hand-off) the
// cart is left untouched; otherwise the full authoritative cart is loaded.
// An empty cart refuses to start so the caller can route back to the cart
// view. Coupon lookup failures are non-fatal: checkout proceeds without.
func (o *Orchestrator) Begin(ctx context.Context, email string, items ...models.CartItem) error {
	o.mu.Lock()
	if o.state != StateLoading {
		o.mu.Unlock()
		return fmt.Errorf("%w: already started", ErrNotReady)
	}
	o.mu.Unlock()

	if len(items) == 0 {
		fetched, err := o.cart.Fetch(ctx)
		if err != nil {
			return fmt.Errorf("failed to load cart for checkout: %w", err)
		}
		items = fetched
	}
	if len(items) == 0 {
		return ErrEmptyCart
	}

	available, err := o.coupons.ForCheckout(ctx)
	if err != nil {
		o.log.Warn("coupon lookup failed, continuing without coupons", "error", err)
		available = nil
	}

	o.mu.Lock()
	o.email = email
	o.items = items
	o.available = available
	o.state = StateAwaitingInput
	o.mu.Unlock()
	return nil
}

// State returns the current lifecycle position.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Items returns the lines being purchased.
func (o *Orchestrator) Items() []models.CartItem {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]models.CartItem, len(o.items))
	copy(out, o.items)
	return out
}

// Coupons returns the checkout-eligible coupons, used ones excluded.
func (o *Orchestrator) Coupons() []models.MyCoupon {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]models.MyCoupon, 0, len(o.available))
	for _, c := range o.available {
		if !c.Used {
			out = append(out, c)
		}
	}
	return out
}

// SetDelivery records the shipping destination. Validation happens at
// submission so partial input can be staged freely.
func (o *Orchestrator) SetDelivery(d DeliveryInput) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.delivery = d
}

// SetPaymentMethod chooses one of the fixed payment options.
func (o *Orchestrator) SetPaymentMethod(pm models.PaymentMethod) error {
	switch pm {
	case models.PayCard, models.PayBankTransfer, models.PayKakao, models.PayToss:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidPayment, pm)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.payment = pm
	return nil
}

// SelectCoupon applies one of the available coupons to the preview.
func (o *Orchestrator) SelectCoupon(memberCouponID int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i := range o.available {
		if o.available[i].MemberCouponID == memberCouponID {
			if o.available[i].Used {
				return ErrCouponUsed
			}
			o.selected = &o.available[i]
			return nil
		}
	}
	return fmt.Errorf("%w: id %d", ErrUnknownCoupon, memberCouponID)
}

// ClearCoupon removes the coupon selection.
func (o *Orchestrator) ClearCoupon() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.selected = nil
}

// Preview computes the display totals from the staged items and coupon.
func (o *Orchestrator) Preview() Totals {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.previewLocked()
}

func (o *Orchestrator) previewLocked() Totals {
	var subtotal int64
	for _, item := range o.items {
		subtotal += item.UnitPrice * int64(item.Quantity)
	}

	var discount int64
	if o.selected != nil {
		discount = coupon.Discount(subtotal, *o.selected)
	}

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal - discount,
	}
}

// CanSubmit reports whether submission would pass the client-side gate.
func (o *Orchestrator) CanSubmit() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state == StateAwaitingInput && o.validateLocked() == nil
}

func (o *Orchestrator) validateLocked() error {
	if err := o.validate.Struct(o.delivery); err != nil {
		return fmt.Errorf("%w: %v", ErrIncompleteDelivery, err)
	}
	if o.payment == "" {
		return ErrNoPaymentMethod
	}
	return nil
}

// Submit sends the single order-creation request. On success the purchased
// cart lines are deleted best-effort and the orchestrator reaches Succeeded.
// On failure it returns to AwaitingInput; the server's message, when
// present, travels verbatim inside the returned *api.Error.
func (o *Orchestrator) Submit(ctx context.Context) (*models.Order, error) {
	o.mu.Lock()
	if o.state != StateAwaitingInput {
		state := o.state
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: state is %s", ErrNotReady, state)
	}
	if err := o.validateLocked(); err != nil {
		o.mu.Unlock()
		return nil, err
	}

	req := o.buildRequestLocked()
	purchased := make([]models.CartItem, len(o.items))
	copy(purchased, o.items)
	o.state = StateSubmitting
	o.mu.Unlock()

	var order models.Order
	if err := o.client.Post(ctx, "/orders", req, &order); err != nil {
		o.mu.Lock()
		o.state = StateAwaitingInput
		o.mu.Unlock()
		return nil, err
	}

	// The order exists server-side now; cart cleanup must not undo it.
	o.clearPurchased(ctx, purchased)

	o.mu.Lock()
	o.state = StateSucceeded
	o.mu.Unlock()

	o.log.Info("order placed",
		"order_number", order.OrderNumber,
		"final_amount", order.FinalAmount,
		"items", len(purchased),
	)
	return &order, nil
}

func (o *Orchestrator) buildRequestLocked() models.OrderRequest {
	items := make([]models.OrderItem, 0, len(o.items))
	for _, item := range o.items {
		items = append(items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	address := o.delivery.AddressLine
	if o.delivery.AddressDetail != "" {
		address = strings.TrimSpace(address + " " + o.delivery.AddressDetail)
	}

	req := models.OrderRequest{
		Email: o.email,
		Items: items,
		Delivery: models.Delivery{
			ReceiverName:    o.delivery.ReceiverName,
			ReceiverPhone:   o.delivery.ReceiverPhone,
			ZipCode:         o.delivery.ZipCode,
			Address:         address,
			DeliveryMessage: o.delivery.DeliveryMessage,
		},
		PaymentMethod: o.payment,
	}
	if o.selected != nil {
		req.MemberCouponID = strconv.FormatInt(o.selected.MemberCouponID, 10)
	}
	return req
}

// clearPurchased deletes each submitted line from the server cart. A failed
// delete is logged and skipped, never retried.
func (o *Orchestrator) clearPurchased(ctx context.Context, purchased []models.CartItem) {
	for _, item := range purchased {
		if _, err := o.cart.Remove(ctx, item.CartItemID); err != nil {
			o.log.Warn("failed to clear purchased cart line",
				"cart_item_id", item.CartItemID,
				"error", err,
			)
		}
	}
}
