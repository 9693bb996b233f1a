// Package stubapi is a development twin of the remote mall backend. It
// implements the client-facing REST contract against in-memory state so the
// SDK can be exercised end to end without the real server. Business rules
// are mirrored only as far as the contract requires; it is not a backend
// reimplementation.
package stubapi

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/chungmin23/storefront/internal/middleware"
	"github.com/chungmin23/storefront/internal/models"
)

// Server holds the twin's in-memory state. All maps are guarded by mu; the
// twin favors simplicity over lock granularity.
type Server struct {
	log    *slog.Logger
	secret []byte

	mu       sync.Mutex
	members  map[string]*member
	products map[int64]models.Product
	carts    map[string][]models.CartItem
	coupons  map[int64]models.Coupon
	issued   map[string][]models.MyCoupon
	orders   map[int64]*orderRecord
	payments map[string]*models.Payment
	nextID   int64
}

type member struct {
	Email    string
	Password string
	Nickname string
	Roles    []string
}

// orderRecord ties an order to its owning member.
type orderRecord struct {
	models.Order
	Email string
}

// New creates a twin seeded with the given fixture and signing secret.
func New(seed *Seed, secret string, log *slog.Logger) *Server {
	s := &Server{
		log:      log,
		secret:   []byte(secret),
		members:  make(map[string]*member),
		products: make(map[int64]models.Product),
		carts:    make(map[string][]models.CartItem),
		coupons:  make(map[int64]models.Coupon),
		issued:   make(map[string][]models.MyCoupon),
		orders:   make(map[int64]*orderRecord),
		payments: make(map[string]*models.Payment),
		nextID:   1,
	}
	s.apply(seed)
	return s
}

// Router builds the twin's HTTP routes under the /api prefix, mirroring the
// real backend's layout.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		// Open endpoints
		r.Post("/member/login", s.handleLogin)
		r.Post("/member/join", s.handleJoin)
		r.Get("/member/refresh", s.handleRefresh)
		r.Get("/products/list", s.handleListProducts)
		r.Get("/products/search", s.handleSearchProducts)
		r.Get("/products/{productID}", s.handleGetProduct)
		r.Post("/products/recommend", s.handleRecommend)
		r.Get("/coupons/active", s.handleActiveCoupons)

		// Member endpoints
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/cart/items", s.handleCartItems)
			r.Post("/cart/change", s.handleCartChange)
			r.Delete("/cart/{cartItemID}", s.handleCartDelete)

			r.Get("/coupons/my", s.handleMyCoupons)
			r.Get("/coupons/checkout", s.handleCheckoutCoupons)
			r.Post("/coupons/issue/{code}", s.handleIssueCoupon)

			r.Post("/orders", s.handleCreateOrder)
			r.Get("/orders/my", s.handleMyOrders)
			r.Get("/orders/number/{orderNumber}", s.handleOrderByNumber)
			r.Get("/orders/{orderID}", s.handleGetOrder)
			r.Delete("/orders/{orderID}", s.handleCancelOrder)

			r.Get("/payments/order/{orderNumber}", s.handlePaymentByOrder)
			r.Get("/payments/{paymentID}", s.handleGetPayment)
			r.Post("/payments/cancel/{orderNumber}", s.handleCancelPayment)
		})

		// Admin endpoints
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Use(s.requireAdmin)

			r.Post("/products", s.handleCreateProduct)
			r.Put("/products/{productID}", s.handleUpdateProduct)
			r.Delete("/products/{productID}", s.handleDeleteProduct)
			r.Post("/products/index", s.handleReindex)

			r.Post("/coupons/", s.handleCreateCoupon)

			r.Get("/orders", s.handleAllOrders)
			r.Put("/orders/{orderID}/status", s.handleUpdateOrderStatus)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

// allocID hands out the next identifier. Caller must hold mu.
func (s *Server) allocID() int64 {
	id := s.nextID
	s.nextID++
	return id
}
