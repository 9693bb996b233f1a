package stubapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chungmin23/storefront/internal/models"
)

func parsePaging(r *http.Request) (page, size int) {
	page, size = 1, 10
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && v > 0 {
		size = v
	}
	return page, size
}

func paginate[T any](items []T, page, size int) models.Page[T] {
	totalPage := (len(items) + size - 1) / size
	start := (page - 1) * size
	if start > len(items) {
		start = len(items)
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return models.Page[T]{
		Items:     items[start:end],
		TotalPage: totalPage,
		Page:      page,
		Size:      size,
	}
}

// handleListProducts handles GET /api/products/list?page&size.
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	page, size := parsePaging(r)

	s.mu.Lock()
	products := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	s.mu.Unlock()

	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	writeJSON(w, http.StatusOK, paginate(products, page, size))
}

// handleGetProduct handles GET /api/products/{productID}.
func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	s.mu.Lock()
	p, ok := s.products[id]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleCreateProduct handles POST /api/products (multipart, admin only).
func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	in, files, ok := s.readProductForm(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	in.ID = s.allocID()
	in.UploadFileNames = files
	s.products[in.ID] = in
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, in)
}

// handleUpdateProduct handles PUT /api/products/{productID} (admin only).
func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	in, files, ok := s.readProductForm(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	existing, found := s.products[id]
	if found {
		in.ID = id
		if len(files) > 0 {
			in.UploadFileNames = files
		} else {
			in.UploadFileNames = existing.UploadFileNames
		}
		s.products[id] = in
	}
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, in)
}

// handleDeleteProduct handles DELETE /api/products/{productID} (admin only).
func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	s.mu.Lock()
	_, found := s.products[id]
	delete(s.products, id)
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "deleted"})
}

// handleReindex handles POST /api/products/index. The twin has no vector
// store; it just reports how many products would be indexed.
func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	count := len(s.products)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]int{"indexed": count})
}

// handleRecommend handles POST /api/products/recommend with a naive
// substring match standing in for the real RAG pipeline.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserQuery string `json:"userQuery"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	matches := s.searchProducts(req.UserQuery, 5)
	writeJSON(w, http.StatusOK, models.Recommendation{
		UserQuery:           req.UserQuery,
		RecommendedProducts: matches,
		Explanation:         "products matching your query",
		Confidence:          0.5,
	})
}

// handleSearchProducts handles GET /api/products/search?query&topK.
func (s *Server) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	topK := 5
	if v, err := strconv.Atoi(r.URL.Query().Get("topK")); err == nil && v > 0 {
		topK = v
	}
	writeJSON(w, http.StatusOK, s.searchProducts(r.URL.Query().Get("query"), topK))
}

func (s *Server) searchProducts(query string, limit int) []models.Product {
	query = strings.ToLower(query)

	s.mu.Lock()
	defer s.mu.Unlock()

	matches := make([]models.Product, 0, limit)
	ids := make([]int64, 0, len(s.products))
	for id := range s.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		p := s.products[id]
		if query == "" ||
			strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Description), query) ||
			strings.Contains(strings.ToLower(p.Category), query) {
			matches = append(matches, p)
			if len(matches) == limit {
				break
			}
		}
	}
	return matches
}

// readProductForm parses the multipart product payload shared by create and
// update. File contents are discarded; only names are kept.
func (s *Server) readProductForm(w http.ResponseWriter, r *http.Request) (models.Product, []string, bool) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return models.Product{}, nil, false
	}

	price, _ := strconv.ParseInt(r.FormValue("price"), 10, 64)
	stock, _ := strconv.Atoi(r.FormValue("stock"))

	p := models.Product{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       price,
		Category:    r.FormValue("category"),
		Stock:       stock,
	}
	if p.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return models.Product{}, nil, false
	}

	var files []string
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["files"] {
			files = append(files, fh.Filename)
		}
	}
	return p, files, true
}
