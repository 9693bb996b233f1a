// Package catalog provides product browsing and the AI recommendation
// endpoints. All data is server-owned; nothing is cached here.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/chungmin23/storefront/internal/api"
	"github.com/chungmin23/storefront/internal/models"
)

// Service wraps the product browsing endpoints.
type Service struct {
	client *api.Client
	log    *slog.Logger
}

// New creates a catalog service.
func New(client *api.Client, log *slog.Logger) *Service {
	return &Service{
		client: client,
		log:    log,
	}
}

// List returns one page of products. Pages are 1-based.
func (s *Service) List(ctx context.Context, page, size int) (*models.Page[models.Product], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	var result models.Page[models.Product]
	if err := s.client.Get(ctx, "/products/list", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get returns one product by id.
func (s *Service) Get(ctx context.Context, productID int64) (*models.Product, error) {
	var p models.Product
	if err := s.client.Get(ctx, fmt.Sprintf("/products/%d", productID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ImageURL builds the public URL for a product image file.
func (s *Service) ImageURL(fileName string) string {
	return s.client.BaseURL() + "/products/view/" + fileName
}

// Recommend asks the backend's AI recommender for products matching a
// free-text query.
func (s *Service) Recommend(ctx context.Context, userQuery string) (*models.Recommendation, error) {
	body := map[string]string{"userQuery": userQuery}

	var rec models.Recommendation
	if err := s.client.Post(ctx, "/products/recommend", body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// SearchSimilar runs a vector-similarity product search without AI text
// generation.
func (s *Service) SearchSimilar(ctx context.Context, query string, topK int) ([]models.Product, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("topK", strconv.Itoa(topK))

	var products []models.Product
	if err := s.client.Get(ctx, "/products/search", q, &products); err != nil {
		return nil, err
	}
	return products, nil
}
