package catalog

import (
	"strings"

	"github.com/merchkit/go-commerce-orderflow/internal/order"
)

// MetaVariationID is the metadata key carrying the resolved variation id on
// a cart item.
const MetaVariationID = "variation_id"

// ResolveVariation turns a variable product, a requested variation id and
// the customer-selected attribute values into a ready-to-add line item.
//
// Wildcard attributes of the matched variation are resolved from selections
// and copied into the item metadata under the attribute slug, in the
// parent's declaration order. Attributes with a concrete declared value are
// implied by the variation id and are not copied: the identity key stays
// minimal. The variation id itself is recorded as the last metadata entry.
func ResolveVariation(product order.Product, variationID string, selections map[string]string, quantity int) (*order.Item, error) {
	variable, ok := product.(*Variable)
	if !ok {
		return nil, &order.InvalidStateError{Reason: "product is not variable - unable to resolve variation"}
	}
	variation, ok := variable.Variation(variationID)
	if !ok {
		return nil, order.NewNotFound("variation", variationID)
	}
	if quantity <= 0 {
		return nil, &order.InvalidInputError{Field: "quantity", Reason: "must be positive"}
	}

	item := order.NewItem("", variable, quantity)
	for _, attr := range variation.attributes {
		if attr.Value != "" {
			continue
		}
		value, ok := selections[attr.AttributeID]
		if !ok {
			return nil, order.NewNotFound("attribute", attr.AttributeID)
		}
		declared, _ := variable.attribute(attr.AttributeID)
		item.AddMeta(declared.Slug, value)
	}

	item.Name = variation.Title()
	item.Price = variation.product.Price()
	item.AddMeta(MetaVariationID, variation.id)

	return item, nil
}

// GenerateItemKey derives the cart line identity key of an item. For a
// variable product's item the key is the concatenation of every metadata
// value in insertion order, so two selections merge into one line if and
// only if they resolved to the same attribute values and the same variation
// id. Simple products key on the product id.
func GenerateItemKey(item *order.Item) string {
	if item.Type != TypeVariable {
		return item.ProductID
	}
	meta := item.AllMeta()
	parts := make([]string, 0, len(meta))
	for _, m := range meta {
		parts = append(parts, m.Value)
	}
	return strings.Join(parts, "|")
}

// IsShippingRequired folds an item into the cart-level shipping requirement.
// A variable item ships iff its resolved variation's sub-product does; an
// already-required cart is never downgraded.
func IsShippingRequired(current bool, item *order.Item) bool {
	if current {
		return true
	}
	switch product := item.Product.(type) {
	case *Simple:
		return product.Shippable()
	case *Variable:
		variationID, ok := item.MetaValue(MetaVariationID)
		if !ok {
			return false
		}
		variation, ok := product.Variation(variationID)
		if !ok {
			return false
		}
		return variation.product.Shippable()
	}
	return false
}

// VariationSnapshot is the price/availability view of one variation exposed
// to the storefront.
type VariationSnapshot struct {
	VariationID string            `json:"variation_id"`
	Price       float64           `json:"price"`
	InStock     bool              `json:"in_stock"`
	Attributes  map[string]string `json:"attributes"`
}

// Snapshots builds the storefront view of every variation of a variable
// product, in registration order. Attribute values map attribute id to the
// declared value, the empty string marking wildcards the customer must
// choose.
func Snapshots(product *Variable) []VariationSnapshot {
	out := make([]VariationSnapshot, 0, len(product.variationOrder))
	for _, variation := range product.Variations() {
		snapshot := VariationSnapshot{
			VariationID: variation.id,
			Price:       variation.product.Price(),
			InStock:     variation.product.InStock(),
			Attributes:  map[string]string{},
		}
		for _, attr := range variation.attributes {
			snapshot.Attributes[attr.AttributeID] = attr.Value
		}
		out = append(out, snapshot)
	}
	return out
}
