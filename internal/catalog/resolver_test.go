package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchkit/go-commerce-orderflow/internal/order"
)

func newShirt(t *testing.T) *Variable {
	t.Helper()
	shirt := NewVariable("prod-shirt", "Band Shirt", []Attribute{
		{ID: "attr-size", Slug: "size", Label: "Size", Variable: true},
		{ID: "attr-color", Slug: "color", Label: "Color", Variable: false},
	}, []string{"standard"})

	_, err := shirt.AddVariation("var-any", NewSimple("var-any", "Band Shirt", 18, []string{"standard"}),
		map[string]string{"attr-size": ""})
	require.NoError(t, err)

	_, err = shirt.AddVariation("var-xl", NewSimple("var-xl", "Band Shirt", 21, []string{"standard"}),
		map[string]string{"attr-size": "XL"})
	require.NoError(t, err)

	return shirt
}

func TestResolveVariation_WildcardCopiesSelection(t *testing.T) {
	shirt := newShirt(t)

	item, err := ResolveVariation(shirt, "var-any", map[string]string{"attr-size": "M"}, 2)
	require.NoError(t, err)

	meta := item.AllMeta()
	require.Len(t, meta, 2)
	assert.Equal(t, order.Meta{Key: "size", Value: "M"}, meta[0])
	assert.Equal(t, order.Meta{Key: MetaVariationID, Value: "var-any"}, meta[1])

	assert.Equal(t, "Band Shirt", item.Name)
	assert.Equal(t, 18.0, item.Price)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, TypeVariable, item.Type)
	assert.Equal(t, "prod-shirt", item.ProductID)
}

func TestResolveVariation_ConcreteValueNotCopied(t *testing.T) {
	shirt := newShirt(t)

	item, err := ResolveVariation(shirt, "var-xl", nil, 1)
	require.NoError(t, err)

	meta := item.AllMeta()
	require.Len(t, meta, 1)
	assert.Equal(t, order.Meta{Key: MetaVariationID, Value: "var-xl"}, meta[0])
	assert.Equal(t, "Band Shirt (XL)", item.Name)
	assert.Equal(t, 21.0, item.Price)
}

func TestResolveVariation_Errors(t *testing.T) {
	shirt := newShirt(t)
	simple := NewSimple("prod-mug", "Mug", 5, nil)

	var invalidState *order.InvalidStateError
	_, err := ResolveVariation(simple, "var-any", nil, 1)
	require.ErrorAs(t, err, &invalidState)

	var notFound *order.NotFoundError
	_, err = ResolveVariation(shirt, "var-missing", nil, 1)
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "variation", notFound.Kind)

	_, err = ResolveVariation(shirt, "var-any", map[string]string{}, 1)
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "attribute", notFound.Kind)

	var invalidInput *order.InvalidInputError
	_, err = ResolveVariation(shirt, "var-any", map[string]string{"attr-size": "M"}, 0)
	require.ErrorAs(t, err, &invalidInput)
}

func TestGenerateItemKey(t *testing.T) {
	shirt := newShirt(t)

	medium, err := ResolveVariation(shirt, "var-any", map[string]string{"attr-size": "M"}, 1)
	require.NoError(t, err)
	assert.Equal(t, "M|var-any", GenerateItemKey(medium))

	large, err := ResolveVariation(shirt, "var-any", map[string]string{"attr-size": "L"}, 1)
	require.NoError(t, err)
	assert.NotEqual(t, GenerateItemKey(medium), GenerateItemKey(large))

	same, err := ResolveVariation(shirt, "var-any", map[string]string{"attr-size": "M"}, 3)
	require.NoError(t, err)
	assert.Equal(t, GenerateItemKey(medium), GenerateItemKey(same))
}

func TestGenerateItemKey_SimpleUsesProductID(t *testing.T) {
	mug := NewSimple("prod-mug", "Mug", 5, nil)
	item := order.NewItem("", mug, 1)

	assert.Equal(t, "prod-mug", GenerateItemKey(item))
}

func TestIsShippingRequired(t *testing.T) {
	shirt := newShirt(t)
	mug := NewSimple("prod-mug", "Mug", 5, nil)
	poster := NewSimple("prod-poster", "Poster", 3, nil)
	poster.SetShippable(false)

	mugItem := order.NewItem("", mug, 1)
	posterItem := order.NewItem("", poster, 1)
	shirtItem, err := ResolveVariation(shirt, "var-xl", nil, 1)
	require.NoError(t, err)

	assert.True(t, IsShippingRequired(false, mugItem))
	assert.False(t, IsShippingRequired(false, posterItem))
	assert.True(t, IsShippingRequired(true, posterItem), "required cart is never downgraded")
	assert.True(t, IsShippingRequired(false, shirtItem))

	xl, ok := shirt.Variation("var-xl")
	require.True(t, ok)
	xl.Product().SetShippable(false)
	assert.False(t, IsShippingRequired(false, shirtItem))
}

func TestSnapshots(t *testing.T) {
	shirt := newShirt(t)
	xl, ok := shirt.Variation("var-xl")
	require.True(t, ok)
	xl.Product().SetInStock(false)

	snapshots := Snapshots(shirt)
	require.Len(t, snapshots, 2)

	assert.Equal(t, "var-any", snapshots[0].VariationID)
	assert.Equal(t, 18.0, snapshots[0].Price)
	assert.True(t, snapshots[0].InStock)
	assert.Equal(t, map[string]string{"attr-size": ""}, snapshots[0].Attributes)

	assert.Equal(t, "var-xl", snapshots[1].VariationID)
	assert.False(t, snapshots[1].InStock)
	assert.Equal(t, map[string]string{"attr-size": "XL"}, snapshots[1].Attributes)
}
