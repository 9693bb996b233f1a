package stubapi

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chungmin23/storefront/internal/models"
)

// Seed is the twin's initial fixture: members, catalog and coupon
// definitions.
type Seed struct {
	Members  []SeedMember  `yaml:"members"`
	Products []SeedProduct `yaml:"products"`
	Coupons  []SeedCoupon  `yaml:"coupons"`
}

type SeedMember struct {
	Email    string   `yaml:"email"`
	Password string   `yaml:"password"`
	Nickname string   `yaml:"nickname"`
	Roles    []string `yaml:"roles"`
}

type SeedProduct struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       int64  `yaml:"price"`
	Category    string `yaml:"category"`
	Stock       int    `yaml:"stock"`
}

type SeedCoupon struct {
	Code              string `yaml:"code"`
	Name              string `yaml:"name"`
	Type              string `yaml:"type"`
	DiscountValue     int64  `yaml:"discountValue"`
	MinOrderAmount    int64  `yaml:"minOrderAmount"`
	MaxDiscountAmount int64  `yaml:"maxDiscountAmount"`
	StartDate         string `yaml:"startDate"`
	EndDate           string `yaml:"endDate"`
}

// LoadSeed reads a YAML fixture from disk.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &seed, nil
}

// DefaultSeed returns a small built-in fixture good enough for local
// development and the SDK tests.
func DefaultSeed() *Seed {
	return &Seed{
		Members: []SeedMember{
			{Email: "admin@mall.dev", Password: "admin1234", Nickname: "Admin", Roles: []string{"USER", "ADMIN"}},
			{Email: "user@mall.dev", Password: "user1234", Nickname: "Shopper", Roles: []string{"USER"}},
		},
		Products: []SeedProduct{
			{Name: "Wireless Keyboard", Description: "Low-profile wireless keyboard", Price: 45000, Category: "Electronics", Stock: 30},
			{Name: "Ceramic Mug", Description: "350ml ceramic mug", Price: 9000, Category: "Kitchen", Stock: 100},
			{Name: "Running Shoes", Description: "Lightweight running shoes", Price: 89000, Category: "Sports", Stock: 15},
			{Name: "Desk Lamp", Description: "LED desk lamp with dimmer", Price: 27000, Category: "Home", Stock: 50},
		},
		Coupons: []SeedCoupon{
			{Code: "WELCOME10", Name: "Welcome 10%", Type: "PERCENT", DiscountValue: 10, MaxDiscountAmount: 3000, StartDate: "2026-01-01", EndDate: "2026-12-31"},
			{Code: "SAVE5000", Name: "5,000 off", Type: "FIXED", DiscountValue: 5000, MinOrderAmount: 30000, StartDate: "2026-01-01", EndDate: "2026-12-31"},
		},
	}
}

// apply loads a fixture into the server's state.
func (s *Server) apply(seed *Seed) {
	if seed == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range seed.Members {
		roles := m.Roles
		if len(roles) == 0 {
			roles = []string{"USER"}
		}
		s.members[m.Email] = &member{
			Email:    m.Email,
			Password: m.Password,
			Nickname: m.Nickname,
			Roles:    roles,
		}
	}

	for _, p := range seed.Products {
		id := s.allocID()
		s.products[id] = models.Product{
			ID:          id,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Category:    p.Category,
			Stock:       p.Stock,
		}
	}

	for _, c := range seed.Coupons {
		id := s.allocID()
		s.coupons[id] = models.Coupon{
			CouponID:          id,
			Code:              c.Code,
			Name:              c.Name,
			Type:              models.DiscountType(c.Type),
			DiscountValue:     c.DiscountValue,
			MinOrderAmount:    c.MinOrderAmount,
			MaxDiscountAmount: c.MaxDiscountAmount,
			StartDate:         c.StartDate,
			EndDate:           c.EndDate,
			IsActive:          true,
		}
	}
}
