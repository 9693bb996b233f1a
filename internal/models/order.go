package models

// OrderStatus is the lifecycle state of an order as reported by the backend.
// The set may grow server-side; unknown values are displayed verbatim.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderPreparing OrderStatus = "PREPARING"
	OrderShipping  OrderStatus = "SHIPPING"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// PaymentMethod is one of the fixed payment options offered at checkout.
type PaymentMethod string

const (
	PayCard         PaymentMethod = "CARD"
	PayBankTransfer PaymentMethod = "BANK"
	PayKakao        PaymentMethod = "KAKAO"
	PayToss         PaymentMethod = "TOSS"
)

// OrderItem is a single product line within an order.
type OrderItem struct {
	ProductID int64  `json:"pno"`
	Name      string `json:"pname"`
	UnitPrice int64  `json:"price"`
	Quantity  int    `json:"qty"`
}

// Delivery holds the shipping destination for an order.
type Delivery struct {
	ReceiverName    string `json:"receiverName"`
	ReceiverPhone   string `json:"receiverPhone"`
	ZipCode         string `json:"zipCode"`
	Address         string `json:"address"`
	DeliveryMessage string `json:"deliveryMessage,omitempty"`
	TrackingNumber  string `json:"trackingNumber,omitempty"`
}

// Order is a confirmed order. TotalAmount, DiscountAmount and FinalAmount are
// computed server-side and authoritative; FinalAmount = TotalAmount - DiscountAmount.
type Order struct {
	OrderID        int64       `json:"ono"`
	OrderNumber    string      `json:"orderNumber"`
	OrderDate      string      `json:"orderDate"`
	Status         OrderStatus `json:"status"`
	TotalAmount    int64       `json:"totalAmount"`
	DiscountAmount int64       `json:"discountAmount"`
	FinalAmount    int64       `json:"finalAmount"`
	Items          []OrderItem `json:"orderItems"`
	Delivery       Delivery    `json:"delivery"`
}

// OrderRequest is the request body for POST /orders.
type OrderRequest struct {
	Email          string        `json:"email,omitempty"`
	Items          []OrderItem   `json:"orderItems"`
	Delivery       Delivery      `json:"delivery"`
	MemberCouponID string        `json:"memberCouponId,omitempty"`
	PaymentMethod  PaymentMethod `json:"paymentMethod"`
}
