package validation

// AddItemRequest is the payload for POST /carts/:cartID/items. Quantity
// arrives as a string (storefront forms post strings); the handler parses it
// and rejects non-numeric values.
type AddItemRequest struct {
	ProductID   string            `json:"product_id" validate:"required"`
	VariationID string            `json:"variation_id,omitempty"` // required for variable products
	Attributes  map[string]string `json:"attributes,omitempty"`   // attribute id -> chosen value
	Quantity    string            `json:"quantity" validate:"required"`
}

// OrderItem is one line of a PlaceOrderRequest.
type OrderItem struct {
	ProductID   string            `json:"product_id" validate:"required"`
	VariationID string            `json:"variation_id,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	Quantity    int               `json:"quantity" validate:"required,min=1"`
	Price       float64           `json:"price" validate:"required,gt=0"` // unit price the client saw
}

// PlaceOrderRequest is the payload for POST /orders.
type PlaceOrderRequest struct {
	CustomerID   string      `json:"customer_id,omitempty"`
	Items        []OrderItem `json:"items" validate:"required,min=1,dive"`
	Amount       float64     `json:"amount" validate:"required,gt=0"` // total the client claims
	Discount     float64     `json:"discount,omitempty" validate:"gte=0"`
	CustomerNote string      `json:"customer_note,omitempty"`
	Payment      string      `json:"payment,omitempty"`
}

// UpdateStatusRequest is the payload for POST /orders/:orderID/status.
type UpdateStatusRequest struct {
	Status  string `json:"status" validate:"required"`
	Message string `json:"message,omitempty"`
}
