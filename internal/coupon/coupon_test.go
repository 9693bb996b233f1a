package coupon

import (
	"testing"

	"github.com/chungmin23/storefront/internal/models"
)

func TestDiscount(t *testing.T) {
	tests := []struct {
		name     string
		subtotal int64
		coupon   models.MyCoupon
		want     int64
	}{
		{
			name:     "percent discount capped at max",
			subtotal: 50000,
			coupon: models.MyCoupon{
				Type:              models.DiscountPercent,
				DiscountValue:     10,
				MaxDiscountAmount: 3000,
			},
			want: 3000,
		},
		{
			name:     "percent discount below cap",
			subtotal: 20000,
			coupon: models.MyCoupon{
				Type:              models.DiscountPercent,
				DiscountValue:     10,
				MaxDiscountAmount: 3000,
			},
			want: 2000,
		},
		{
			name:     "percent discount without cap",
			subtotal: 50000,
			coupon: models.MyCoupon{
				Type:          models.DiscountPercent,
				DiscountValue: 10,
			},
			want: 5000,
		},
		{
			name:     "percent discount floors",
			subtotal: 1999,
			coupon: models.MyCoupon{
				Type:          models.DiscountPercent,
				DiscountValue: 10,
			},
			want: 199,
		},
		{
			name:     "fixed discount",
			subtotal: 50000,
			coupon: models.MyCoupon{
				Type:          models.DiscountFixed,
				DiscountValue: 5000,
			},
			want: 5000,
		},
		{
			name:     "fixed discount may exceed subtotal",
			subtotal: 3000,
			coupon: models.MyCoupon{
				Type:          models.DiscountFixed,
				DiscountValue: 5000,
			},
			want: 5000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Discount(tt.subtotal, tt.coupon); got != tt.want {
				t.Errorf("Discount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUsable(t *testing.T) {
	tests := []struct {
		name     string
		coupon   models.MyCoupon
		subtotal int64
		want     bool
	}{
		{
			name:     "unused without minimum",
			coupon:   models.MyCoupon{},
			subtotal: 1000,
			want:     true,
		},
		{
			name:     "used coupon",
			coupon:   models.MyCoupon{Used: true},
			subtotal: 100000,
			want:     false,
		},
		{
			name:     "minimum not met",
			coupon:   models.MyCoupon{MinOrderAmount: 30000},
			subtotal: 29999,
			want:     false,
		},
		{
			name:     "minimum exactly met",
			coupon:   models.MyCoupon{MinOrderAmount: 30000},
			subtotal: 30000,
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Usable(tt.coupon, tt.subtotal); got != tt.want {
				t.Errorf("Usable() = %v, want %v", got, tt.want)
			}
		})
	}
}
