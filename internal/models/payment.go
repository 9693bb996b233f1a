package models

// Payment is the payment record attached to an order.
type Payment struct {
	PaymentID     int64  `json:"paymentId"`
	OrderNumber   string `json:"orderNumber"`
	Status        string `json:"status"`
	PaymentMethod string `json:"paymentMethod"`
	Amount        int64  `json:"amount"`
	PaymentDate   string `json:"paymentDate,omitempty"`
	CancelReason  string `json:"cancelReason,omitempty"`
	CancelDate    string `json:"cancelDate,omitempty"`
}
