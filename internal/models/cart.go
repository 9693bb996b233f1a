package models

// CartItem is one line of the server-side cart. The server owns cart state;
// clients hold a read-through copy replaced wholesale on every mutation.
type CartItem struct {
	CartItemID int64  `json:"cino"`
	ProductID  int64  `json:"pno"`
	Name       string `json:"pname"`
	UnitPrice  int64  `json:"price"`
	Quantity   int    `json:"qty"`
	ImageFile  string `json:"imageFile,omitempty"`
}

// CartChange is the request body for POST /cart/change. Qty is the desired
// absolute quantity for the product line, not a delta.
type CartChange struct {
	Email      string `json:"email,omitempty"`
	CartItemID int64  `json:"cino,omitempty"`
	ProductID  int64  `json:"pno"`
	Quantity   int    `json:"qty"`
}
