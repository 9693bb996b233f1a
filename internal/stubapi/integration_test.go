package stubapi_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chungmin23/storefront/internal/admin"
	"github.com/chungmin23/storefront/internal/api"
	"github.com/chungmin23/storefront/internal/cart"
	"github.com/chungmin23/storefront/internal/catalog"
	"github.com/chungmin23/storefront/internal/checkout"
	"github.com/chungmin23/storefront/internal/coupon"
	"github.com/chungmin23/storefront/internal/models"
	"github.com/chungmin23/storefront/internal/order"
	"github.com/chungmin23/storefront/internal/payment"
	"github.com/chungmin23/storefront/internal/session"
	"github.com/chungmin23/storefront/internal/storage"
	"github.com/chungmin23/storefront/internal/stubapi"
)

// env wires the full SDK against an in-process twin, the same way the CLI
// wires it against the real backend.
type env struct {
	persist  storage.Store
	client   *api.Client
	session  *session.Store
	catalog  *catalog.Service
	cart     *cart.Store
	coupons  *coupon.Service
	orders   *order.Service
	payments *payment.Service
	admin    *admin.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := stubapi.New(stubapi.DefaultSeed(), "test-secret", log)
	srv := httptest.NewServer(server.Router())
	t.Cleanup(srv.Close)

	persist := storage.NewMemory()
	client := api.New(srv.URL+"/api", 5*time.Second, persist, log)
	return &env{
		persist:  persist,
		client:   client,
		session:  session.New(client, persist, log),
		catalog:  catalog.New(client, log),
		cart:     cart.New(client, persist, log),
		coupons:  coupon.New(client, log),
		orders:   order.New(client, log),
		payments: payment.New(client, log),
		admin:    admin.New(client, log),
	}
}

func TestAnonymousBrowsingAndAuthGate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// The catalog is open.
	page, err := e.catalog.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Items, 4)
	assert.Equal(t, 1, page.Page)

	// The cart is not.
	_, err = e.cart.Fetch(ctx)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}

func TestLoginBadPassword(t *testing.T) {
	e := newEnv(t)

	_, err := e.session.Login(context.Background(), "user@mall.dev", "nope")

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
	assert.False(t, e.session.IsAuthenticated())
}

func TestFullPurchaseFlow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	user, err := e.session.Login(ctx, "user@mall.dev", "user1234")
	require.NoError(t, err)
	require.Equal(t, "user@mall.dev", user.Email)

	// Find the keyboard in the catalog.
	page, err := e.catalog.List(ctx, 1, 10)
	require.NoError(t, err)
	var keyboard models.Product
	for _, p := range page.Items {
		if p.Name == "Wireless Keyboard" {
			keyboard = p
		}
	}
	require.NotZero(t, keyboard.ID)
	require.Equal(t, int64(45000), keyboard.Price)

	// Claim the welcome coupon; claiming twice is rejected with the
	// server's message.
	require.NoError(t, e.coupons.Issue(ctx, "WELCOME10"))
	err = e.coupons.Issue(ctx, "WELCOME10")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "coupon already issued", apiErr.Message)

	mine, err := e.coupons.Mine(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	welcome := mine[0]

	// Put one keyboard in the cart.
	items, err := e.cart.AddOrUpdate(ctx, keyboard.ID, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(45000), e.cart.Subtotal())

	// The issued coupon is eligible for this cart.
	eligible, err := e.coupons.ForCheckout(ctx)
	require.NoError(t, err)
	require.Len(t, eligible, 1)

	// Check out with the coupon: 10% of 45000 is 4500, capped at 3000.
	co := checkout.New(e.client, e.cart, e.coupons, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, co.Begin(ctx, user.Email))
	co.SetDelivery(checkout.DeliveryInput{
		ReceiverName:  "Shopper",
		ReceiverPhone: "010-1234-5678",
		ZipCode:       "04524",
		AddressLine:   "100 Sejong-daero",
	})
	require.NoError(t, co.SetPaymentMethod(models.PayCard))
	require.NoError(t, co.SelectCoupon(welcome.MemberCouponID))
	assert.Equal(t, checkout.Totals{Subtotal: 45000, Discount: 3000, Total: 42000}, co.Preview())

	placed, err := co.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, placed.Status)
	assert.Equal(t, int64(45000), placed.TotalAmount)
	assert.Equal(t, int64(3000), placed.DiscountAmount)
	assert.Equal(t, int64(42000), placed.FinalAmount)

	// Purchased lines were cleared from the server cart.
	after, err := e.cart.Fetch(ctx)
	require.NoError(t, err)
	assert.Empty(t, after)

	// The coupon is spent; a second order cannot reuse it.
	mine, err = e.coupons.Mine(ctx)
	require.NoError(t, err)
	require.True(t, mine[0].Used)

	// The order shows in history with its payment.
	history, err := e.orders.My(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, history.Items, 1)
	assert.Equal(t, placed.OrderNumber, history.Items[0].OrderNumber)

	pay, err := e.payments.ByOrderNumber(ctx, placed.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", pay.Status)
	assert.Equal(t, int64(42000), pay.Amount)

	// Cancel the order, then its payment, mirroring the CLI's chain.
	require.NoError(t, e.orders.Cancel(ctx, *placed))
	cancelled, err := e.orders.Get(ctx, placed.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)

	// A cancelled order is rejected client-side without a network call.
	err = e.orders.Cancel(ctx, *cancelled)
	require.ErrorIs(t, err, order.ErrNotCancellable)

	require.NoError(t, e.payments.Cancel(ctx, placed.OrderNumber, "changed my mind"))
	pay, err = e.payments.ByOrderNumber(ctx, placed.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", pay.Status)
}

func TestExpiredAccessTokenIsRefreshedTransparently(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.session.Login(ctx, "user@mall.dev", "user1234")
	require.NoError(t, err)

	// Corrupt the access token but keep the refresh token, as if the
	// access token had expired between sessions.
	require.NoError(t, e.persist.Set(storage.KeyAccessToken, "garbage"))

	items, err := e.cart.Fetch(ctx)
	require.NoError(t, err, "the gateway should refresh and retry")
	assert.Empty(t, items)

	token, _ := e.persist.Get(storage.KeyAccessToken)
	assert.NotEqual(t, "garbage", token, "a fresh token pair was persisted")
}

func TestAdminGateAndOperations(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// A plain member is turned away from admin routes.
	_, err := e.session.Login(ctx, "user@mall.dev", "user1234")
	require.NoError(t, err)

	_, err = e.admin.Orders(ctx, 1, 10)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
	assert.Equal(t, "admin role required", apiErr.Message)

	e.session.Logout()

	// The admin account can manage the catalog and coupons.
	_, err = e.session.Login(ctx, "admin@mall.dev", "admin1234")
	require.NoError(t, err)

	created, err := e.admin.CreateProduct(ctx, admin.ProductInput{
		Name:        "Mechanical Pencil",
		Description: "0.5mm drafting pencil",
		Price:       4500,
		Category:    "Stationery",
		Stock:       200,
		Images: []api.File{
			{Field: "files", Name: "pencil.png", Content: []byte("png-bytes")},
		},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, int64(4500), created.Price)

	updated, err := e.admin.UpdateProduct(ctx, created.ID, admin.ProductInput{
		Name:        "Mechanical Pencil",
		Description: "0.5mm drafting pencil",
		Price:       3900,
		Category:    "Stationery",
		Stock:       180,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3900), updated.Price)

	newCoupon, err := e.admin.CreateCoupon(ctx, models.CouponInput{
		Code:          "AUTUMN15",
		Name:          "Autumn 15%",
		Type:          models.DiscountPercent,
		DiscountValue: 15,
	})
	require.NoError(t, err)
	assert.NotZero(t, newCoupon.CouponID)

	active, err := e.coupons.Active(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 3)

	require.NoError(t, e.admin.DeleteProduct(ctx, created.ID))
	_, err = e.catalog.Get(ctx, created.ID)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
}
