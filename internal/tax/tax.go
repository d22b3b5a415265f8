// Package tax provides the tax calculation collaborators the order
// aggregate consumes. The aggregate trusts returned amounts verbatim.
package tax

import (
	"github.com/merchkit/go-commerce-orderflow/internal/order"
)

// RateTable is a per-class percentage rate tax service. Rates are fixed at
// construction.
type RateTable struct {
	rates map[string]float64
}

// NewRateTable builds a tax service from a class -> percent rate mapping.
func NewRateTable(rates map[string]float64) *RateTable {
	copied := make(map[string]float64, len(rates))
	for class, rate := range rates {
		copied[class] = rate
	}
	return &RateTable{rates: copied}
}

// Classes returns the configured tax class identifiers.
func (t *RateTable) Classes() []string {
	classes := make([]string, 0, len(t.rates))
	for class := range t.rates {
		classes = append(classes, class)
	}
	return classes
}

// Rate returns the percentage rate for a class, zero when unconfigured.
func (t *RateTable) Rate(class string) float64 {
	return t.rates[class]
}

// Amount returns the tax amount on a price under the given class, zero when
// the class is unconfigured. Used for items whose price snapshot differs
// from the catalog product's, e.g. resolved variations.
func (t *RateTable) Amount(class string, price float64) float64 {
	return price * t.rates[class] / 100.0
}

// Get returns the per-unit tax amount of the product under the given class.
// Classes the product is not sold under yield zero.
func (t *RateTable) Get(product order.Product, taxClass string) float64 {
	rate, ok := t.rates[taxClass]
	if !ok {
		return 0.0
	}
	for _, class := range product.TaxClasses() {
		if class == taxClass {
			return product.Price() * rate / 100.0
		}
	}
	return 0.0
}

// CalculateShipping returns the full tax amount on a shipping price, summed
// over the method's declared tax classes. Always equals the sum of
// GetShipping across those classes, which keeps shipping attach and detach
// symmetric on the aggregate.
func (t *RateTable) CalculateShipping(method order.ShippingMethod, price float64, customer order.Customer) float64 {
	var total float64
	for _, class := range method.TaxClasses() {
		total += t.GetShipping(method, price, class, customer)
	}
	return total
}

// GetShipping returns the shipping tax amount under one class.
func (t *RateTable) GetShipping(method order.ShippingMethod, price float64, taxClass string, customer order.Customer) float64 {
	for _, class := range method.TaxClasses() {
		if class == taxClass {
			return price * t.rates[taxClass] / 100.0
		}
	}
	return 0.0
}
