package stubapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chungmin23/storefront/internal/models"
)

func readJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

// handleCartItems handles GET /api/cart/items.
func (s *Server) handleCartItems(w http.ResponseWriter, r *http.Request) {
	email := callerEmail(r)

	s.mu.Lock()
	items := append([]models.CartItem(nil), s.carts[email]...)
	s.mu.Unlock()

	if items == nil {
		items = []models.CartItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// handleCartChange handles POST /api/cart/change. Qty is the desired
// absolute quantity; anything below one deletes the line, so a quantity of
// zero can never exist.
func (s *Server) handleCartChange(w http.ResponseWriter, r *http.Request) {
	email := callerEmail(r)

	var change models.CartChange
	if err := readJSON(r, &change); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[change.ProductID]
	if !ok {
		writeError(w, http.StatusBadRequest, "product not found")
		return
	}
	if change.Quantity > 0 && product.Stock < change.Quantity {
		writeError(w, http.StatusBadRequest, "insufficient stock")
		return
	}

	items := s.carts[email]
	idx := -1
	for i := range items {
		if items[i].ProductID == change.ProductID {
			idx = i
			break
		}
	}

	switch {
	case change.Quantity < 1:
		if idx >= 0 {
			items = append(items[:idx], items[idx+1:]...)
		}
	case idx >= 0:
		items[idx].Quantity = change.Quantity
	default:
		image := ""
		if len(product.UploadFileNames) > 0 {
			image = product.UploadFileNames[0]
		}
		items = append(items, models.CartItem{
			CartItemID: s.allocID(),
			ProductID:  product.ID,
			Name:       product.Name,
			UnitPrice:  product.Price,
			Quantity:   change.Quantity,
			ImageFile:  image,
		})
	}

	s.carts[email] = items
	writeJSON(w, http.StatusOK, items)
}

// handleCartDelete handles DELETE /api/cart/{cartItemID} and returns the
// full remaining cart.
func (s *Server) handleCartDelete(w http.ResponseWriter, r *http.Request) {
	email := callerEmail(r)

	id, err := strconv.ParseInt(chi.URLParam(r, "cartItemID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cart item id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[email]
	found := false
	for i := range items {
		if items[i].CartItemID == id {
			items = append(items[:i], items[i+1:]...)
			found = true
			break
		}
	}

	if !found {
		writeError(w, http.StatusNotFound, "cart item not found")
		return
	}

	s.carts[email] = items
	writeJSON(w, http.StatusOK, items)
}

// cartSubtotalLocked sums a member's cart. Caller must hold mu.
func (s *Server) cartSubtotalLocked(email string) int64 {
	var total int64
	for _, item := range s.carts[email] {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}
