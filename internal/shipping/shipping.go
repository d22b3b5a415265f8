// Package shipping provides shipping method implementations satisfying the
// order aggregate's ShippingMethod contract.
package shipping

import (
	"strconv"

	"github.com/merchkit/go-commerce-orderflow/internal/order"
)

// FlatRate charges a fixed base price plus a per-item amount.
type FlatRate struct {
	id         string
	basePrice  float64
	perItem    float64
	taxClasses []string
}

// NewFlatRate builds a flat rate method. taxClasses are the classes the
// shipping price is taxed under.
func NewFlatRate(id string, basePrice, perItem float64, taxClasses []string) *FlatRate {
	return &FlatRate{
		id:         id,
		basePrice:  basePrice,
		perItem:    perItem,
		taxClasses: taxClasses,
	}
}

// ID returns the method identifier.
func (m *FlatRate) ID() string { return m.id }

// Calculate returns the shipping price for the order: base price plus the
// per-item amount for every unit in the cart.
func (m *FlatRate) Calculate(o *order.Order) float64 {
	var units int
	for _, item := range o.Items() {
		units += item.Quantity
	}
	return m.basePrice + m.perItem*float64(units)
}

// TaxClasses returns the tax classes applied to the shipping price.
func (m *FlatRate) TaxClasses() []string {
	out := make([]string, len(m.taxClasses))
	copy(out, m.taxClasses)
	return out
}

// State returns the opaque serializable method state stored with the order.
func (m *FlatRate) State() map[string]string {
	return map[string]string{
		"id":         m.id,
		"base_price": strconv.FormatFloat(m.basePrice, 'f', -1, 64),
		"per_item":   strconv.FormatFloat(m.perItem, 'f', -1, 64),
	}
}
