package catalog

import (
	"fmt"
	"strings"

	"github.com/merchkit/go-commerce-orderflow/internal/order"
)

// Attribute is a declared attribute of a variable product. Attributes marked
// Variable take part in variation matching.
type Attribute struct {
	ID       string
	Slug     string
	Label    string
	Variable bool
}

// VariationAttribute is one attribute selection of a variation. An empty
// Value is the wildcard: any customer-chosen value of the attribute matches
// and is resolved per purchase.
type VariationAttribute struct {
	AttributeID string
	Value       string
}

// Variation is one concrete purchasable configuration of a variable product.
// It owns exactly one simple sub-product carrying price and stock.
type Variation struct {
	id         string
	parent     *Variable
	product    *Simple
	attributes []VariationAttribute
}

// ID returns the variation id.
func (v *Variation) ID() string { return v.id }

// Product returns the owned sub-product.
func (v *Variation) Product() *Simple { return v.product }

// Attributes returns the attribute selections in the parent's declaration
// order.
func (v *Variation) Attributes() []VariationAttribute {
	out := make([]VariationAttribute, len(v.attributes))
	copy(out, v.attributes)
	return out
}

// Title returns the display title: the parent name plus the variation's
// distinguishing concrete attribute values.
func (v *Variation) Title() string {
	var values []string
	for _, attr := range v.attributes {
		if attr.Value != "" {
			values = append(values, attr.Value)
		}
	}
	if len(values) == 0 {
		return v.parent.Name()
	}
	return fmt.Sprintf("%s (%s)", v.parent.Name(), strings.Join(values, ", "))
}

// Variable is a product purchasable only through one of its variations.
type Variable struct {
	id             string
	name           string
	attributes     []Attribute
	variations     map[string]*Variation
	variationOrder []string
	taxClasses     []string
}

// NewVariable builds a variable product with its attribute declarations. The
// declaration order is load-bearing: variation selections and item metadata
// follow it.
func NewVariable(id, name string, attributes []Attribute, taxClasses []string) *Variable {
	p := &Variable{
		id:         id,
		name:       name,
		attributes: attributes,
		variations: map[string]*Variation{},
		taxClasses: taxClasses,
	}
	return p
}

// ID returns the product id.
func (p *Variable) ID() string { return p.id }

// Type returns the product type discriminator.
func (p *Variable) Type() string { return TypeVariable }

// Name returns the product name.
func (p *Variable) Name() string { return p.name }

// Price returns the lowest price among the variations' sub-products, zero
// when the product has no variations yet.
func (p *Variable) Price() float64 {
	var lowest float64
	for i, id := range p.variationOrder {
		price := p.variations[id].product.Price()
		if i == 0 || price < lowest {
			lowest = price
		}
	}
	return lowest
}

// TaxClasses returns the tax classes the product is sold under.
func (p *Variable) TaxClasses() []string {
	out := make([]string, len(p.taxClasses))
	copy(out, p.taxClasses)
	return out
}

// Attributes returns the declared attributes in declaration order.
func (p *Variable) Attributes() []Attribute {
	out := make([]Attribute, len(p.attributes))
	copy(out, p.attributes)
	return out
}

// VariableAttributes returns only the attributes flagged variable.
func (p *Variable) VariableAttributes() []Attribute {
	var out []Attribute
	for _, attr := range p.attributes {
		if attr.Variable {
			out = append(out, attr)
		}
	}
	return out
}

func (p *Variable) attribute(id string) (Attribute, bool) {
	for _, attr := range p.attributes {
		if attr.ID == id {
			return attr, true
		}
	}
	return Attribute{}, false
}

// AddVariation registers a variation. selections maps attribute id to the
// declared value, the empty string meaning any value matches. The selections
// must cover exactly the parent's variable-flagged attributes; the stored
// order follows the parent's declaration order regardless of map iteration.
func (p *Variable) AddVariation(id string, product *Simple, selections map[string]string) (*Variation, error) {
	if product == nil {
		return nil, &order.InvalidInputError{Field: "variation", Reason: "missing sub-product"}
	}
	for attrID := range selections {
		attr, ok := p.attribute(attrID)
		if !ok {
			return nil, order.NewNotFound("attribute", attrID)
		}
		if !attr.Variable {
			return nil, &order.InvalidInputError{
				Field:  "variation",
				Reason: fmt.Sprintf("attribute %s is not variable", attrID),
			}
		}
	}

	variation := &Variation{id: id, parent: p, product: product}
	for _, attr := range p.attributes {
		if !attr.Variable {
			continue
		}
		value, ok := selections[attr.ID]
		if !ok {
			return nil, &order.InvalidInputError{
				Field:  "variation",
				Reason: fmt.Sprintf("attribute %s not covered", attr.ID),
			}
		}
		variation.attributes = append(variation.attributes, VariationAttribute{
			AttributeID: attr.ID,
			Value:       value,
		})
	}

	if _, exists := p.variations[id]; !exists {
		p.variationOrder = append(p.variationOrder, id)
	}
	p.variations[id] = variation
	return variation, nil
}

// Variation returns the variation with the given id.
func (p *Variable) Variation(id string) (*Variation, bool) {
	v, ok := p.variations[id]
	return v, ok
}

// Variations returns the variations in registration order.
func (p *Variable) Variations() []*Variation {
	out := make([]*Variation, 0, len(p.variationOrder))
	for _, id := range p.variationOrder {
		out = append(out, p.variations[id])
	}
	return out
}
