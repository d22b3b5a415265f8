// Package catalog models purchasable products as a closed set of types and
// resolves variable products into concrete cart items.
package catalog

import (
	"strconv"
	"strings"
	"time"
)

// Product type discriminators.
const (
	TypeSimple   = "simple"
	TypeVariable = "variable"
)

// Sale is an optional discounted price on a simple product. Price is either
// an absolute amount ("5.50") or a percentage ("10%").
type Sale struct {
	Enabled bool
	Price   string
	From    time.Time
	To      time.Time
}

func (s *Sale) active(now time.Time) bool {
	if s == nil || !s.Enabled {
		return false
	}
	if !s.From.IsZero() && now.Before(s.From) {
		return false
	}
	if !s.To.IsZero() && now.After(s.To) {
		return false
	}
	return true
}

// Simple is a concrete priced product. It is also the sub-product owned by a
// variation of a variable product.
type Simple struct {
	id           string
	name         string
	regularPrice float64
	sale         *Sale
	taxClasses   []string
	shippable    bool
	inStock      bool

	nowFunc func() time.Time
}

// NewSimple builds a simple product. It is shippable and in stock by
// default.
func NewSimple(id, name string, regularPrice float64, taxClasses []string) *Simple {
	return &Simple{
		id:           id,
		name:         name,
		regularPrice: regularPrice,
		taxClasses:   taxClasses,
		shippable:    true,
		inStock:      true,
		nowFunc:      time.Now,
	}
}

// ID returns the product id.
func (p *Simple) ID() string { return p.id }

// Type returns the product type discriminator.
func (p *Simple) Type() string { return TypeSimple }

// Name returns the product name.
func (p *Simple) Name() string { return p.name }

// RegularPrice returns the undiscounted price.
func (p *Simple) RegularPrice() float64 { return p.regularPrice }

// Price returns the current price: the regular price, or the sale price when
// a sale is active and lower.
func (p *Simple) Price() float64 {
	price := p.regularPrice
	if p.sale.active(p.nowFunc()) {
		sale := price
		if strings.Contains(p.sale.Price, "%") {
			discount, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(p.sale.Price), "%"), 64)
			if err == nil {
				sale = p.regularPrice * (1 - discount/100.0)
			}
		} else if amount, err := strconv.ParseFloat(strings.TrimSpace(p.sale.Price), 64); err == nil {
			sale = p.regularPrice - amount
		}
		if sale < price {
			price = sale
		}
	}
	return price
}

// SetSale attaches or clears a sale.
func (p *Simple) SetSale(sale *Sale) { p.sale = sale }

// TaxClasses returns the tax classes the product is sold under.
func (p *Simple) TaxClasses() []string {
	out := make([]string, len(p.taxClasses))
	copy(out, p.taxClasses)
	return out
}

// Shippable reports whether the product requires shipping.
func (p *Simple) Shippable() bool { return p.shippable }

// SetShippable marks the product as requiring shipping or not.
func (p *Simple) SetShippable(shippable bool) { p.shippable = shippable }

// InStock reports whether the product can currently be purchased.
func (p *Simple) InStock() bool { return p.inStock }

// SetInStock sets the stock availability flag.
func (p *Simple) SetInStock(inStock bool) { p.inStock = inStock }
