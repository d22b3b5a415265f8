package catalog

import "github.com/merchkit/go-commerce-orderflow/internal/order"

// Memory is an in-memory product lookup, enough for handlers and tests. A
// relational catalog sits behind the same Find contract in production.
type Memory struct {
	products map[string]order.Product
}

// NewMemory returns an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{products: map[string]order.Product{}}
}

// Add registers a product under its id, replacing any previous entry.
func (m *Memory) Add(p order.Product) {
	m.products[p.ID()] = p
}

// Find returns the product with the given id.
func (m *Memory) Find(productID string) (order.Product, bool) {
	p, ok := m.products[productID]
	return p, ok
}
