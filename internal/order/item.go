package order

// Meta is a single ordered key/value metadata entry on an item. Insertion
// order is preserved because cart item keys are derived from it.
type Meta struct {
	Key   string `json:"key" dynamodbav:"key"`
	Value string `json:"value" dynamodbav:"value"`
}

// Item is one purchasable line of an order. Name and Price are snapshots
// taken when the item is built; later catalog changes do not touch them.
type Item struct {
	ID        string
	Product   Product
	ProductID string
	Type      string
	Name      string
	Price     float64
	Quantity  int
	// Tax holds the per-unit tax amount for each tax class, fixed when the
	// item is built.
	Tax map[string]float64

	meta []Meta
}

// NewItem builds an item snapshot for the given product and quantity.
func NewItem(id string, product Product, quantity int) *Item {
	return &Item{
		ID:        id,
		Product:   product,
		ProductID: product.ID(),
		Type:      product.Type(),
		Name:      product.Name(),
		Price:     product.Price(),
		Quantity:  quantity,
		Tax:       map[string]float64{},
	}
}

// Cost returns the total cost of the item.
func (i *Item) Cost() float64 {
	return i.Price * float64(i.Quantity)
}

// TotalTax returns the summed tax of the item across all tax classes.
func (i *Item) TotalTax() float64 {
	var total float64
	for _, tax := range i.Tax {
		total += tax * float64(i.Quantity)
	}
	return total
}

// AddMeta sets a metadata entry. A new key is appended; an existing key keeps
// its position and gets the new value.
func (i *Item) AddMeta(key, value string) {
	for idx := range i.meta {
		if i.meta[idx].Key == key {
			i.meta[idx].Value = value
			return
		}
	}
	i.meta = append(i.meta, Meta{Key: key, Value: value})
}

// MetaValue returns the value stored under key and whether it was present.
func (i *Item) MetaValue(key string) (string, bool) {
	for _, m := range i.meta {
		if m.Key == key {
			return m.Value, true
		}
	}
	return "", false
}

// AllMeta returns the metadata entries in insertion order.
func (i *Item) AllMeta() []Meta {
	out := make([]Meta, len(i.meta))
	copy(out, i.meta)
	return out
}

// SetMeta replaces all metadata entries, preserving the given order. Used
// when restoring items from persisted state.
func (i *Item) SetMeta(meta []Meta) {
	i.meta = make([]Meta, len(meta))
	copy(i.meta, meta)
}
