package stubapi

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chungmin23/storefront/internal/models"
)

// handleCreateOrder handles POST /api/orders. Totals are computed here and
// are authoritative; the client's preview is display-only.
func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	email := callerEmail(r)

	var req models.OrderRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "order must contain at least one item")
		return
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			writeError(w, http.StatusBadRequest, "quantity must be positive")
			return
		}
	}
	switch req.PaymentMethod {
	case models.PayCard, models.PayBankTransfer, models.PayKakao, models.PayToss:
	default:
		writeError(w, http.StatusBadRequest, "unknown payment method")
		return
	}

	var total int64
	for _, item := range req.Items {
		total += item.UnitPrice * int64(item.Quantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var discount int64
	if req.MemberCouponID != "" {
		id, err := strconv.ParseInt(req.MemberCouponID, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid coupon reference")
			return
		}

		coupons := s.issued[email]
		idx := -1
		for i := range coupons {
			if coupons[i].MemberCouponID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			writeError(w, http.StatusBadRequest, "coupon not found")
			return
		}
		if coupons[idx].Used {
			writeError(w, http.StatusBadRequest, "coupon already used")
			return
		}
		if coupons[idx].MinOrderAmount > 0 && total < coupons[idx].MinOrderAmount {
			writeError(w, http.StatusBadRequest, "order amount below coupon minimum")
			return
		}

		discount = discountFor(coupons[idx], total)
		coupons[idx].Used = true
		coupons[idx].UsedDate = time.Now().Format(time.RFC3339)
	}

	now := time.Now()
	record := &orderRecord{
		Order: models.Order{
			OrderID:        s.allocID(),
			OrderNumber:    fmt.Sprintf("ORD-%s", uuid.New().String()[:8]),
			OrderDate:      now.Format(time.RFC3339),
			Status:         models.OrderPaid,
			TotalAmount:    total,
			DiscountAmount: discount,
			FinalAmount:    total - discount,
			Items:          req.Items,
			Delivery:       req.Delivery,
		},
		Email: email,
	}
	s.orders[record.OrderID] = record

	s.payments[record.OrderNumber] = &models.Payment{
		PaymentID:     s.allocID(),
		OrderNumber:   record.OrderNumber,
		Status:        "COMPLETED",
		PaymentMethod: string(req.PaymentMethod),
		Amount:        record.FinalAmount,
		PaymentDate:   now.Format(time.RFC3339),
	}

	writeJSON(w, http.StatusOK, record.Order)
}

// discountFor mirrors the backend's discount arithmetic: percent coupons
// floor and cap, fixed coupons apply the raw value.
func discountFor(c models.MyCoupon, subtotal int64) int64 {
	if c.Type == models.DiscountPercent {
		d := subtotal * c.DiscountValue / 100
		if c.MaxDiscountAmount > 0 && d > c.MaxDiscountAmount {
			d = c.MaxDiscountAmount
		}
		return d
	}
	return c.DiscountValue
}

// handleMyOrders handles GET /api/orders/my?page&size, newest first.
func (s *Server) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	email := callerEmail(r)
	page, size := parsePaging(r)

	s.mu.Lock()
	orders := make([]models.Order, 0)
	for _, rec := range s.orders {
		if rec.Email == email {
			orders = append(orders, rec.Order)
		}
	}
	s.mu.Unlock()

	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderID > orders[j].OrderID })
	writeJSON(w, http.StatusOK, paginate(orders, page, size))
}

// handleAllOrders handles GET /api/orders (admin only).
func (s *Server) handleAllOrders(w http.ResponseWriter, r *http.Request) {
	page, size := parsePaging(r)

	s.mu.Lock()
	orders := make([]models.Order, 0, len(s.orders))
	for _, rec := range s.orders {
		orders = append(orders, rec.Order)
	}
	s.mu.Unlock()

	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderID > orders[j].OrderID })
	writeJSON(w, http.StatusOK, paginate(orders, page, size))
}

// handleGetOrder handles GET /api/orders/{orderID}.
func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	s.mu.Lock()
	rec, ok := s.orders[id]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, rec.Order)
}

// handleOrderByNumber handles GET /api/orders/number/{orderNumber}.
func (s *Server) handleOrderByNumber(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "orderNumber")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.orders {
		if rec.OrderNumber == number {
			writeJSON(w, http.StatusOK, rec.Order)
			return
		}
	}
	writeError(w, http.StatusNotFound, "order not found")
}

// handleCancelOrder handles DELETE /api/orders/{orderID}. Only PENDING and
// PAID orders can be cancelled.
func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.orders[id]
	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if rec.Status != models.OrderPending && rec.Status != models.OrderPaid {
		writeError(w, http.StatusBadRequest, "order cannot be cancelled")
		return
	}

	rec.Status = models.OrderCancelled
	writeJSON(w, http.StatusOK, rec.Order)
}

// handleUpdateOrderStatus handles PUT /api/orders/{orderID}/status (admin).
func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := readJSON(r, &req); err != nil || req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	s.mu.Lock()
	rec, ok := s.orders[id]
	if ok {
		rec.Status = req.Status
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, rec.Order)
}

// handleGetPayment handles GET /api/payments/{paymentID}.
func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "paymentID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payments {
		if p.PaymentID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeError(w, http.StatusNotFound, "payment not found")
}

// handlePaymentByOrder handles GET /api/payments/order/{orderNumber}.
func (s *Server) handlePaymentByOrder(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "orderNumber")

	s.mu.Lock()
	p, ok := s.payments[number]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleCancelPayment handles POST /api/payments/cancel/{orderNumber}.
func (s *Server) handleCancelPayment(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "orderNumber")

	var req struct {
		CancelReason string `json:"cancelReason"`
	}
	// Body is optional; an empty reason is allowed.
	_ = readJSON(r, &req)

	s.mu.Lock()
	p, ok := s.payments[number]
	if ok {
		p.Status = "CANCELLED"
		p.CancelReason = req.CancelReason
		p.CancelDate = time.Now().Format(time.RFC3339)
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
