package order

import "time"

// State is the flat key/value snapshot exchanged with persistence
// collaborators. Keys are named, optional and independently applied: unknown
// keys are ignored and missing keys leave fields unchanged.
type State map[string]interface{}

// Shipping is the serializable shipping attachment inside a State.
type Shipping struct {
	MethodID    string            `json:"method_id" dynamodbav:"method_id"`
	MethodState map[string]string `json:"method_state,omitempty" dynamodbav:"method_state,omitempty"`
	Price       float64           `json:"price" dynamodbav:"price"`
}

// ExportState returns the snapshot a persistence collaborator stores. This
// is the only channel through which storage observes the aggregate.
func (o *Order) ExportState() State {
	shipping := Shipping{Price: o.shippingPrice}
	if o.shippingMethod != nil {
		shipping.MethodID = o.shippingMethod.ID()
		shipping.MethodState = o.shippingMethod.State()
	}

	return State{
		"id":               o.id,
		"number":           o.number,
		"created_at":       o.createdAt.Unix(),
		"updated_at":       o.updatedAt.Unix(),
		"items":            o.Items(),
		"billing_address":  o.billingAddress,
		"shipping_address": o.shippingAddress,
		"customer":         o.customer,
		"shipping":         shipping,
		"payment":          o.paymentID,
		"customer_note":    o.customerNote,
		"status":           string(o.status),
		"product_subtotal": o.productSubtotal,
		"subtotal":         o.subtotal,
		"total":            o.total,
		"discount":         o.discount,
		"shipping_tax":     copyTax(o.shippingTax),
	}
}

// ImportState applies a snapshot to the aggregate. Each key is optional and
// applied defensively. Items are replayed through AddItem so the tax buckets
// are rebuilt, and the total is recomputed at the end from subtotal, taxes
// and discount instead of trusting a stored value: stored totals may be
// stale or from an older schema, and this is the reconciliation point.
// Importing the same snapshot onto a fresh aggregate is idempotent.
func (o *Order) ImportState(state State) {
	if id, ok := state["id"].(string); ok {
		o.id = id
	}
	if number, ok := state["number"].(string); ok {
		o.number = number
	}
	if ts, ok := asInt64(state["created_at"]); ok {
		o.createdAt = time.Unix(ts, 0).UTC()
	}
	if items, ok := state["items"].([]*Item); ok {
		for _, item := range items {
			o.AddItem(item)
		}
	}
	if address, ok := state["billing_address"].(Address); ok {
		o.billingAddress = address
	}
	if address, ok := state["shipping_address"].(Address); ok {
		o.shippingAddress = address
	}
	switch customer := state["customer"].(type) {
	case Customer:
		o.customer = customer
	case string:
		if customer != "" {
			o.customer = Customer{ID: customer}
		}
	}
	if shipping, ok := state["shipping"].(Shipping); ok {
		o.shippingPrice = shipping.Price
	}
	// A persistence collaborator that resolved the stored method state back
	// into a live method passes it under this key.
	if method, ok := state["shipping_method"].(ShippingMethod); ok {
		o.shippingMethod = method
	}
	if payment, ok := state["payment"].(string); ok {
		o.paymentID = payment
	}
	if note, ok := state["customer_note"].(string); ok {
		o.customerNote = note
	}
	if tax, ok := state["shipping_tax"].(map[string]float64); ok {
		for class, value := range tax {
			o.shippingTax[class] += value
		}
	}
	if value, ok := asFloat64(state["product_subtotal"]); ok {
		o.productSubtotal = value
	}
	if value, ok := asFloat64(state["subtotal"]); ok {
		o.subtotal = value
	}
	if value, ok := asFloat64(state["discount"]); ok {
		o.discount = value
	}

	o.total = o.subtotal + o.TotalTax() + o.TotalShippingTax() - o.discount

	if status, ok := state["status"].(string); ok {
		o.status = Status(status)
	}
	if ts, ok := asInt64(state["updated_at"]); ok {
		o.updatedAt = time.Unix(ts, 0).UTC()
	}
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func asFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
