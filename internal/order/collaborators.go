package order

// Product is the catalog-side view the aggregate needs of a purchased
// product. The catalog owns the product; items only borrow the reference.
type Product interface {
	ID() string
	Type() string
	Name() string
	Price() float64
	TaxClasses() []string
}

// ShippingMethod calculates shipping cost for an order and declares the tax
// classes its price is taxed under.
type ShippingMethod interface {
	ID() string
	Calculate(o *Order) float64
	TaxClasses() []string
	State() map[string]string
}

// TaxCalculator resolves the per-unit tax amount of a product under a tax
// class. UpdateQuantity requires it explicitly; the aggregate holds no tax
// service of its own.
type TaxCalculator interface {
	Get(product Product, taxClass string) float64
}

// TaxService extends TaxCalculator with shipping tax calculation. Returned
// values are trusted verbatim.
type TaxService interface {
	TaxCalculator
	CalculateShipping(method ShippingMethod, price float64, customer Customer) float64
	GetShipping(method ShippingMethod, price float64, taxClass string, customer Customer) float64
}
