package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

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
)

type app struct {
	client   *api.Client
	log      *slog.Logger
	sessions *session.Store
	cart     *cart.Store
	catalog  *catalog.Service
	coupons  *coupon.Service
	orders   *order.Service
	payments *payment.Service
	admin    *admin.Service
}

func newApp(client *api.Client, store storage.Store, log *slog.Logger) *app {
	return &app{
		client:   client,
		log:      log,
		sessions: session.New(client, store, log),
		cart:     cart.New(client, store, log),
		catalog:  catalog.New(client, log),
		coupons:  coupon.New(client, log),
		orders:   order.New(client, log),
		payments: payment.New(client, log),
		admin:    admin.New(client, log),
	}
}

func (a *app) run(args []string) error {
	if len(args) == 0 {
		usage()
		return nil
	}

	ctx := context.Background()
	cmd, rest := args[0], args[1:]

	var err error
	switch cmd {
	case "login":
		err = a.cmdLogin(ctx, rest)
	case "signup":
		err = a.cmdSignup(ctx, rest)
	case "logout":
		a.sessions.Logout()
		fmt.Println("Logged out.")
	case "whoami":
		err = a.cmdWhoami()
	case "products":
		err = a.cmdProducts(ctx, rest)
	case "product":
		err = a.cmdProduct(ctx, rest)
	case "recommend":
		err = a.cmdRecommend(ctx, rest)
	case "cart":
		err = a.cmdCart(ctx)
	case "cart-set":
		err = a.cmdCartSet(ctx, rest)
	case "cart-rm":
		err = a.cmdCartRemove(ctx, rest)
	case "coupons":
		err = a.cmdCoupons(ctx)
	case "issue":
		err = a.cmdIssue(ctx, rest)
	case "checkout":
		err = a.cmdCheckout(ctx, rest)
	case "orders":
		err = a.cmdOrders(ctx, rest)
	case "order":
		err = a.cmdOrder(ctx, rest)
	case "cancel":
		err = a.cmdCancel(ctx, rest)
	case "admin-orders":
		err = a.cmdAdminOrders(ctx, rest)
	case "admin-status":
		err = a.cmdAdminStatus(ctx, rest)
	default:
		usage()
		return fmt.Errorf("unknown command: %s", cmd)
	}

	// Map the gateway's error taxonomy onto user-facing messages.
	switch {
	case errors.Is(err, api.ErrUnreachable):
		return errors.New("server unreachable, please try again later")
	case errors.Is(err, api.ErrSessionExpired):
		return errors.New("session expired, please log in again")
	}
	return err
}

func usage() {
	fmt.Println(`Usage: storefront <command> [options]

Commands:
  login <email> <password>       Log in
  signup <email> <pw> <nick>     Register and log in
  logout                         Drop the local session
  whoami                         Show the current session
  products [-page N] [-size N]   Browse the catalog
  product <id>                   Show one product
  recommend <query...>           AI product recommendation
  cart                           Show the cart
  cart-set <productID> <qty>     Set absolute quantity (0 removes)
  cart-rm <cartItemID>           Remove a cart line
  coupons                        List active and owned coupons
  issue <code>                   Claim a coupon by code
  checkout [options]             Place an order (see checkout -h)
  orders [-page N]               Order history
  order <id>                     Order detail
  cancel <id>                    Cancel an order
  admin-orders [-page N]         All orders (admin)
  admin-status <id> <status>     Update order status (admin)`)
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: login <email> <password>")
	}
	user, err := a.sessions.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Welcome, %s (%s)\n", user.Nickname, user.Email)
	return nil
}

func (a *app) cmdSignup(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: signup <email> <password> <nickname>")
	}
	user, err := a.sessions.Signup(ctx, session.SignupRequest{
		Email:    args[0],
		Password: args[1],
		Nickname: args[2],
	})
	if err != nil {
		return err
	}
	fmt.Printf("Account created. Welcome, %s!\n", user.Nickname)
	return nil
}

func (a *app) cmdWhoami() error {
	user := a.sessions.Check()
	if user == nil {
		fmt.Println("Not logged in.")
		return nil
	}
	fmt.Printf("%s <%s> roles=%s\n", user.Nickname, user.Email, strings.Join(user.RoleNames, ","))
	if exp, ok := a.sessions.TokenExpiry(); ok {
		fmt.Printf("Access token expires at %s\n", exp.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func (a *app) cmdProducts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", 10, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := a.catalog.List(ctx, *page, *size)
	if err != nil {
		return err
	}
	for _, p := range result.Items {
		fmt.Printf("%4d  %-28s %8d won  stock=%d  [%s]\n", p.ID, p.Name, p.Price, p.Stock, p.Category)
	}
	fmt.Printf("page %d/%d\n", result.Page, result.TotalPage)
	return nil
}

func (a *app) cmdProduct(ctx context.Context, args []string) error {
	id, err := parseID(args, "usage: product <id>")
	if err != nil {
		return err
	}
	p, err := a.catalog.Get(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%d won)\n%s\ncategory=%s stock=%d\n", p.Name, p.Price, p.Description, p.Category, p.Stock)
	for _, f := range p.UploadFileNames {
		fmt.Println("image:", a.catalog.ImageURL(f))
	}
	return nil
}

func (a *app) cmdRecommend(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: recommend <query...>")
	}
	rec, err := a.catalog.Recommend(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Println(rec.Explanation)
	for _, p := range rec.RecommendedProducts {
		fmt.Printf("%4d  %-28s %8d won\n", p.ID, p.Name, p.Price)
	}
	return nil
}

func (a *app) cmdCart(ctx context.Context) error {
	items, err := a.cart.Fetch(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("Cart is empty.")
		return nil
	}
	for _, item := range items {
		fmt.Printf("%4d  %-28s %8d won x %d = %d won\n",
			item.CartItemID, item.Name, item.UnitPrice, item.Quantity,
			item.UnitPrice*int64(item.Quantity))
	}
	fmt.Printf("subtotal: %d won (%d items)\n", a.cart.Subtotal(), a.cart.Count())
	return nil
}

func (a *app) cmdCartSet(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: cart-set <productID> <qty>")
	}
	productID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product id: %s", args[0])
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity: %s", args[1])
	}

	items, err := a.cart.AddOrUpdate(ctx, productID, qty)
	if err != nil {
		return err
	}
	fmt.Printf("Cart updated: %d lines, subtotal %d won\n", len(items), a.cart.Subtotal())
	return nil
}

func (a *app) cmdCartRemove(ctx context.Context, args []string) error {
	id, err := parseID(args, "usage: cart-rm <cartItemID>")
	if err != nil {
		return err
	}
	items, err := a.cart.Remove(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("Removed. %d lines remain.\n", len(items))
	return nil
}

func (a *app) cmdCoupons(ctx context.Context) error {
	active, err := a.coupons.Active(ctx)
	if err != nil {
		return err
	}
	fmt.Println("Active coupons:")
	for _, c := range active {
		fmt.Printf("  %-12s %s (%s %d)\n", c.Code, c.Name, c.Type, c.DiscountValue)
	}

	if !a.sessions.IsAuthenticated() {
		return nil
	}
	mine, err := a.coupons.Mine(ctx)
	if err != nil {
		return err
	}
	fmt.Println("My coupons:")
	for _, c := range mine {
		state := "usable"
		if c.Used {
			state = "used"
		}
		fmt.Printf("  #%d %s (%s %d) until %s [%s]\n",
			c.MemberCouponID, c.Name, c.Type, c.DiscountValue, c.EndDate, state)
	}
	return nil
}

func (a *app) cmdIssue(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: issue <code>")
	}
	if err := a.coupons.Issue(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("Coupon issued.")
	return nil
}

func (a *app) cmdCheckout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	name := fs.String("name", "", "receiver name (required)")
	phone := fs.String("phone", "", "receiver phone (required)")
	zip := fs.String("zip", "", "zip code (required)")
	addr := fs.String("addr", "", "address line (required)")
	detail := fs.String("detail", "", "address detail")
	message := fs.String("msg", "", "delivery message")
	pay := fs.String("pay", "CARD", "payment method: CARD, BANK, KAKAO, TOSS")
	couponID := fs.Int64("coupon", 0, "member coupon id to apply")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user := a.sessions.Current()
	if user == nil {
		return errors.New("please log in first")
	}

	flow := checkout.New(a.client, a.cart, a.coupons, a.log)
	if err := flow.Begin(ctx, user.Email); err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			return errors.New("cart is empty, nothing to order")
		}
		return err
	}

	flow.SetDelivery(checkout.DeliveryInput{
		ReceiverName:    *name,
		ReceiverPhone:   *phone,
		ZipCode:         *zip,
		AddressLine:     *addr,
		AddressDetail:   *detail,
		DeliveryMessage: *message,
	})
	if err := flow.SetPaymentMethod(models.PaymentMethod(*pay)); err != nil {
		return err
	}
	if *couponID != 0 {
		if err := flow.SelectCoupon(*couponID); err != nil {
			return err
		}
	}

	totals := flow.Preview()
	fmt.Printf("subtotal %d won, discount %d won, total %d won\n",
		totals.Subtotal, totals.Discount, totals.Total)

	placed, err := flow.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Order placed: %s (final %d won)\n", placed.OrderNumber, placed.FinalAmount)
	return nil
}

func (a *app) cmdOrders(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := a.orders.My(ctx, *page, 10)
	if err != nil {
		return err
	}
	for _, o := range result.Items {
		cancellable := ""
		if order.CanCancel(o.Status) {
			cancellable = " (cancellable)"
		}
		fmt.Printf("%4d  %s  %s  %8d won  %s%s\n",
			o.OrderID, o.OrderNumber, o.OrderDate, o.FinalAmount,
			order.StatusLabel(o.Status), cancellable)
	}
	fmt.Printf("page %d/%d\n", result.Page, result.TotalPage)
	return nil
}

func (a *app) cmdOrder(ctx context.Context, args []string) error {
	id, err := parseID(args, "usage: order <id>")
	if err != nil {
		return err
	}
	o, err := a.orders.Get(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("%s  %s  %s\n", o.OrderNumber, o.OrderDate, order.StatusLabel(o.Status))
	for _, item := range o.Items {
		fmt.Printf("  %-28s %8d won x %d\n", item.Name, item.UnitPrice, item.Quantity)
	}
	fmt.Printf("total %d - discount %d = %d won\n", o.TotalAmount, o.DiscountAmount, o.FinalAmount)
	fmt.Printf("to %s (%s), %s %s\n", o.Delivery.ReceiverName, o.Delivery.ReceiverPhone,
		o.Delivery.ZipCode, o.Delivery.Address)

	if p, err := a.payments.ByOrderNumber(ctx, o.OrderNumber); err == nil {
		fmt.Printf("payment: %s via %s (%d won)\n", p.Status, p.PaymentMethod, p.Amount)
	}
	return nil
}

func (a *app) cmdCancel(ctx context.Context, args []string) error {
	id, err := parseID(args, "usage: cancel <id>")
	if err != nil {
		return err
	}
	o, err := a.orders.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := a.orders.Cancel(ctx, *o); err != nil {
		return err
	}

	// A completed payment needs its own cancellation after the order one.
	if p, err := a.payments.ByOrderNumber(ctx, o.OrderNumber); err == nil && p.Status == payment.StatusCompleted {
		if err := a.payments.Cancel(ctx, o.OrderNumber, "customer request"); err != nil {
			a.log.Warn("payment cancellation failed", "order_number", o.OrderNumber, "error", err)
		}
	}

	fmt.Printf("Order %s cancelled.\n", o.OrderNumber)
	return nil
}

func (a *app) cmdAdminOrders(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("admin-orders", flag.ContinueOnError)
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := a.admin.Orders(ctx, *page, 20)
	if err != nil {
		return err
	}
	for _, o := range result.Items {
		fmt.Printf("%4d  %s  %8d won  %s\n",
			o.OrderID, o.OrderNumber, o.FinalAmount, order.StatusLabel(o.Status))
	}
	fmt.Printf("page %d/%d\n", result.Page, result.TotalPage)
	return nil
}

func (a *app) cmdAdminStatus(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: admin-status <orderID> <status>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid order id: %s", args[0])
	}

	status := models.OrderStatus(strings.ToUpper(args[1]))
	if err := a.admin.UpdateOrderStatus(ctx, id, status); err != nil {
		return err
	}
	fmt.Printf("Order %d moved to %s.\n", id, status)
	return nil
}

func parseID(args []string, usage string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New(usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id: %s", args[0])
	}
	return id, nil
}
