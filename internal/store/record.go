package store

import (
	"github.com/merchkit/go-commerce-orderflow/internal/order"
)

// record is the shape of an order row in DynamoDB. It mirrors the
// aggregate's exported state key for key; the stored total is kept for
// reporting queries but the import path recomputes it.
type record struct {
	OrderID         string             `dynamodbav:"order_id"` // PK
	Number          string             `dynamodbav:"number,omitempty"`
	CreatedAt       int64              `dynamodbav:"created_at"`
	UpdatedAt       int64              `dynamodbav:"updated_at"`
	Items           []itemRecord       `dynamodbav:"items,omitempty"`
	BillingAddress  order.Address      `dynamodbav:"billing_address"`
	ShippingAddress order.Address      `dynamodbav:"shipping_address"`
	CustomerID      string             `dynamodbav:"customer_id,omitempty"`
	CustomerEmail   string             `dynamodbav:"customer_email,omitempty"`
	CustomerName    string             `dynamodbav:"customer_name,omitempty"`
	Shipping        order.Shipping     `dynamodbav:"shipping"`
	Payment         string             `dynamodbav:"payment,omitempty"`
	CustomerNote    string             `dynamodbav:"customer_note,omitempty"`
	Status          string             `dynamodbav:"status"`
	ProductSubtotal float64            `dynamodbav:"product_subtotal"`
	Subtotal        float64            `dynamodbav:"subtotal"`
	Total           float64            `dynamodbav:"total"`
	Discount        float64            `dynamodbav:"discount"`
	ShippingTax     map[string]float64 `dynamodbav:"shipping_tax,omitempty"`
	Notes           []order.Note       `dynamodbav:"notes,omitempty"`
}

type itemRecord struct {
	ItemID    string             `dynamodbav:"item_id"`
	ProductID string             `dynamodbav:"product_id"`
	Type      string             `dynamodbav:"type"`
	Name      string             `dynamodbav:"name"`
	Price     float64            `dynamodbav:"price"`
	Quantity  int                `dynamodbav:"quantity"`
	Tax       map[string]float64 `dynamodbav:"tax,omitempty"`
	Meta      []order.Meta       `dynamodbav:"meta,omitempty"`
}

func recordFromState(state order.State) record {
	rec := record{}
	if v, ok := state["id"].(string); ok {
		rec.OrderID = v
	}
	if v, ok := state["number"].(string); ok {
		rec.Number = v
	}
	if v, ok := state["created_at"].(int64); ok {
		rec.CreatedAt = v
	}
	if v, ok := state["updated_at"].(int64); ok {
		rec.UpdatedAt = v
	}
	if items, ok := state["items"].([]*order.Item); ok {
		for _, item := range items {
			rec.Items = append(rec.Items, itemRecord{
				ItemID:    item.ID,
				ProductID: item.ProductID,
				Type:      item.Type,
				Name:      item.Name,
				Price:     item.Price,
				Quantity:  item.Quantity,
				Tax:       item.Tax,
				Meta:      item.AllMeta(),
			})
		}
	}
	if v, ok := state["billing_address"].(order.Address); ok {
		rec.BillingAddress = v
	}
	if v, ok := state["shipping_address"].(order.Address); ok {
		rec.ShippingAddress = v
	}
	if customer, ok := state["customer"].(order.Customer); ok {
		rec.CustomerID = customer.ID
		rec.CustomerEmail = customer.Email
		rec.CustomerName = customer.Name
	}
	if v, ok := state["shipping"].(order.Shipping); ok {
		rec.Shipping = v
	}
	if v, ok := state["payment"].(string); ok {
		rec.Payment = v
	}
	if v, ok := state["customer_note"].(string); ok {
		rec.CustomerNote = v
	}
	if v, ok := state["status"].(string); ok {
		rec.Status = v
	}
	if v, ok := state["product_subtotal"].(float64); ok {
		rec.ProductSubtotal = v
	}
	if v, ok := state["subtotal"].(float64); ok {
		rec.Subtotal = v
	}
	if v, ok := state["total"].(float64); ok {
		rec.Total = v
	}
	if v, ok := state["discount"].(float64); ok {
		rec.Discount = v
	}
	if v, ok := state["shipping_tax"].(map[string]float64); ok {
		rec.ShippingTax = v
	}
	return rec
}

// toState rebuilds the flat state the aggregate imports. resolve binds item
// product references back to live catalog products; it may be nil, leaving
// references unresolved.
func (rec record) toState(resolve ProductResolver) order.State {
	items := make([]*order.Item, 0, len(rec.Items))
	for _, ir := range rec.Items {
		item := &order.Item{
			ID:        ir.ItemID,
			ProductID: ir.ProductID,
			Type:      ir.Type,
			Name:      ir.Name,
			Price:     ir.Price,
			Quantity:  ir.Quantity,
			Tax:       ir.Tax,
		}
		if item.Tax == nil {
			item.Tax = map[string]float64{}
		}
		if resolve != nil {
			item.Product = resolve(ir.ProductID)
		}
		item.SetMeta(ir.Meta)
		items = append(items, item)
	}

	return order.State{
		"id":               rec.OrderID,
		"number":           rec.Number,
		"created_at":       rec.CreatedAt,
		"updated_at":       rec.UpdatedAt,
		"items":            items,
		"billing_address":  rec.BillingAddress,
		"shipping_address": rec.ShippingAddress,
		"customer":         order.Customer{ID: rec.CustomerID, Email: rec.CustomerEmail, Name: rec.CustomerName},
		"shipping":         rec.Shipping,
		"payment":          rec.Payment,
		"customer_note":    rec.CustomerNote,
		"status":           rec.Status,
		"product_subtotal": rec.ProductSubtotal,
		"subtotal":         rec.Subtotal,
		"discount":         rec.Discount,
		"shipping_tax":     rec.ShippingTax,
	}
}
