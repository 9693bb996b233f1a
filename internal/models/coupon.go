package models

// DiscountType distinguishes fixed-amount coupons from percentage coupons.
type DiscountType string

const (
	DiscountFixed   DiscountType = "FIXED"
	DiscountPercent DiscountType = "PERCENT"
)

// Coupon is a coupon definition as published by the backend.
type Coupon struct {
	CouponID          int64        `json:"couponId"`
	Code              string       `json:"couponCode"`
	Name              string       `json:"couponName"`
	Type              DiscountType `json:"couponType"`
	DiscountValue     int64        `json:"discountValue"`
	MinOrderAmount    int64        `json:"minOrderAmount,omitempty"`
	MaxDiscountAmount int64        `json:"maxDiscountAmount,omitempty"`
	StartDate         string       `json:"startDate"`
	EndDate           string       `json:"endDate"`
	IsActive          bool         `json:"isActive"`
}

// CouponInput is the admin request body for creating a coupon.
type CouponInput struct {
	Code              string       `json:"couponCode"`
	Name              string       `json:"couponName"`
	Type              DiscountType `json:"couponType"`
	DiscountValue     int64        `json:"discountValue"`
	MinOrderAmount    int64        `json:"minOrderAmount,omitempty"`
	MaxDiscountAmount int64        `json:"maxDiscountAmount,omitempty"`
	StartDate         string       `json:"startDate"`
	EndDate           string       `json:"endDate"`
}

// MyCoupon is an issued coupon instance bound to one account. Used is a
// terminal flag set once the coupon has been applied to a completed order.
type MyCoupon struct {
	MemberCouponID    int64        `json:"memberCouponId"`
	Name              string       `json:"couponName"`
	Type              DiscountType `json:"couponType"`
	DiscountValue     int64        `json:"discountValue"`
	MinOrderAmount    int64        `json:"minOrderAmount,omitempty"`
	MaxDiscountAmount int64        `json:"maxDiscountAmount,omitempty"`
	EndDate           string       `json:"endDate"`
	Used              bool         `json:"used"`
	UsedDate          string       `json:"usedDate,omitempty"`
}
