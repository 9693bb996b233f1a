package stubapi

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/chungmin23/storefront/internal/models"
)

// handleActiveCoupons handles GET /api/coupons/active.
func (s *Server) handleActiveCoupons(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	coupons := make([]models.Coupon, 0, len(s.coupons))
	for _, c := range s.coupons {
		if c.IsActive {
			coupons = append(coupons, c)
		}
	}
	s.mu.Unlock()

	sort.Slice(coupons, func(i, j int) bool { return coupons[i].CouponID < coupons[j].CouponID })
	writeJSON(w, http.StatusOK, coupons)
}

// handleCreateCoupon handles POST /api/coupons/ (admin only).
func (s *Server) handleCreateCoupon(w http.ResponseWriter, r *http.Request) {
	var in models.CouponInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Code == "" || in.Name == "" {
		writeError(w, http.StatusBadRequest, "couponCode and couponName are required")
		return
	}
	if in.Type != models.DiscountFixed && in.Type != models.DiscountPercent {
		writeError(w, http.StatusBadRequest, "couponType must be FIXED or PERCENT")
		return
	}

	s.mu.Lock()
	c := models.Coupon{
		CouponID:          s.allocID(),
		Code:              in.Code,
		Name:              in.Name,
		Type:              in.Type,
		DiscountValue:     in.DiscountValue,
		MinOrderAmount:    in.MinOrderAmount,
		MaxDiscountAmount: in.MaxDiscountAmount,
		StartDate:         in.StartDate,
		EndDate:           in.EndDate,
		IsActive:          true,
	}
	s.coupons[c.CouponID] = c
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, c)
}

// handleIssueCoupon handles POST /api/coupons/issue/{code}. Each member can
// hold one issued instance per coupon code.
func (s *Server) handleIssueCoupon(w http.ResponseWriter, r *http.Request) {
	email := callerEmail(r)
	code := chi.URLParam(r, "code")

	s.mu.Lock()
	defer s.mu.Unlock()

	var def *models.Coupon
	for id := range s.coupons {
		c := s.coupons[id]
		if c.Code == code && c.IsActive {
			def = &c
			break
		}
	}
	if def == nil {
		writeError(w, http.StatusNotFound, "coupon not found")
		return
	}

	for _, mc := range s.issued[email] {
		if mc.Name == def.Name && !mc.Used {
			writeError(w, http.StatusBadRequest, "coupon already issued")
			return
		}
	}

	s.issued[email] = append(s.issued[email], models.MyCoupon{
		MemberCouponID:    s.allocID(),
		Name:              def.Name,
		Type:              def.Type,
		DiscountValue:     def.DiscountValue,
		MinOrderAmount:    def.MinOrderAmount,
		MaxDiscountAmount: def.MaxDiscountAmount,
		EndDate:           def.EndDate,
	})

	writeJSON(w, http.StatusOK, map[string]string{"result": "issued"})
}

// handleMyCoupons handles GET /api/coupons/my.
func (s *Server) handleMyCoupons(w http.ResponseWriter, r *http.Request) {
	email := callerEmail(r)

	s.mu.Lock()
	coupons := append([]models.MyCoupon(nil), s.issued[email]...)
	s.mu.Unlock()

	if coupons == nil {
		coupons = []models.MyCoupon{}
	}
	writeJSON(w, http.StatusOK, coupons)
}

// handleCheckoutCoupons handles GET /api/coupons/checkout: unused coupons
// whose minimum order amount is met by the member's current cart subtotal.
func (s *Server) handleCheckoutCoupons(w http.ResponseWriter, r *http.Request) {
	email := callerEmail(r)

	s.mu.Lock()
	subtotal := s.cartSubtotalLocked(email)
	eligible := make([]models.MyCoupon, 0)
	for _, mc := range s.issued[email] {
		if mc.Used {
			continue
		}
		if mc.MinOrderAmount > 0 && subtotal < mc.MinOrderAmount {
			continue
		}
		eligible = append(eligible, mc)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, eligible)
}
