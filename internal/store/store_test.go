package store

import (
	"context"
	"testing"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/merchkit/go-commerce-orderflow/internal/order"
)

// --- mock implementations ---

type mockDynamo struct {
	tables map[string]map[string]map[string]types.AttributeValue
}

func newMockDynamo(tables ...string) *mockDynamo {
	m := &mockDynamo{tables: map[string]map[string]map[string]types.AttributeValue{}}
	for _, t := range tables {
		m.tables[t] = map[string]map[string]types.AttributeValue{}
	}
	return m
}

func itemKey(item map[string]types.AttributeValue) string {
	for _, attr := range []string{"order_id", "idempotency_key"} {
		if v, ok := item[attr].(*types.AttributeValueMemberS); ok {
			return v.Value
		}
	}
	return ""
}

func (m *mockDynamo) checkCondition(table string, item map[string]types.AttributeValue, cond *string, values map[string]types.AttributeValue) error {
	if cond == nil {
		return nil
	}
	existing, exists := m.tables[table][itemKey(item)]
	switch *cond {
	case "attribute_not_exists(order_id)", "attribute_not_exists(idempotency_key)":
		if exists {
			return &types.ConditionalCheckFailedException{}
		}
	case "updated_at = :expected":
		if !exists {
			return &types.ConditionalCheckFailedException{}
		}
		stored, _ := existing["updated_at"].(*types.AttributeValueMemberN)
		expected, _ := values[":expected"].(*types.AttributeValueMemberN)
		if stored == nil || expected == nil || stored.Value != expected.Value {
			return &types.ConditionalCheckFailedException{}
		}
	}
	return nil
}

func (m *mockDynamo) PutItem(ctx context.Context, in *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	table := *in.TableName
	if err := m.checkCondition(table, in.Item, in.ConditionExpression, in.ExpressionAttributeValues); err != nil {
		return nil, err
	}
	m.tables[table][itemKey(in.Item)] = in.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, in *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	item, ok := m.tables[*in.TableName][itemKey(in.Key)]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, in *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	return &dyn.UpdateItemOutput{}, nil
}

func (m *mockDynamo) TransactWriteItems(ctx context.Context, in *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	for _, item := range in.TransactItems {
		if item.Put == nil {
			continue
		}
		if err := m.checkCondition(*item.Put.TableName, item.Put.Item, item.Put.ConditionExpression, item.Put.ExpressionAttributeValues); err != nil {
			return nil, &types.TransactionCanceledException{}
		}
	}
	for _, item := range in.TransactItems {
		if item.Put == nil {
			continue
		}
		m.tables[*item.Put.TableName][itemKey(item.Put.Item)] = item.Put.Item
	}
	return &dyn.TransactWriteItemsOutput{}, nil
}

// --- fixtures ---

type storedProduct struct {
	id string
}

func (p *storedProduct) ID() string           { return p.id }
func (p *storedProduct) Type() string         { return "simple" }
func (p *storedProduct) Name() string         { return "Stored Product" }
func (p *storedProduct) Price() float64       { return 10 }
func (p *storedProduct) TaxClasses() []string { return []string{"standard"} }

func sampleOrder(id string) *order.Order {
	o := order.New([]string{"standard"}, nil)
	o.SetID(id)
	o.SetNumber("1001")
	o.SetCustomer(order.Customer{ID: "c1", Email: "c1@example.com"})
	o.SetPayment("card")

	item := &order.Item{
		ID:        "key-1",
		ProductID: "prod-1",
		Type:      "simple",
		Name:      "Stored Product",
		Price:     10,
		Quantity:  2,
		Tax:       map[string]float64{"standard": 2},
	}
	item.AddMeta("size", "M")
	o.AddItem(item)
	o.SetDiscount(3)
	o.AddNote("packed", true)
	return o
}

// --- test cases ---

func TestSaveGet_RoundTrip(t *testing.T) {
	mock := newMockDynamo("orders")
	store := NewStore(mock, "orders", []string{"standard"}, nil, nil)
	ctx := context.Background()

	o := sampleOrder("o1")
	if err := store.Save(ctx, o, 0); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, version, err := store.Get(ctx, "o1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded == nil {
		t.Fatal("order not found after save")
	}
	if version != o.UpdatedAt().Unix() {
		t.Fatalf("version: got %d, want %d", version, o.UpdatedAt().Unix())
	}

	if loaded.ID() != "o1" || loaded.Number() != "1001" {
		t.Fatalf("identity: %s / %s", loaded.ID(), loaded.Number())
	}
	if loaded.Customer().ID != "c1" {
		t.Fatalf("customer: %+v", loaded.Customer())
	}
	if loaded.Total() != o.Total() {
		t.Fatalf("total: got %v, want %v", loaded.Total(), o.Total())
	}
	if loaded.Tax()["standard"] != o.Tax()["standard"] {
		t.Fatalf("tax: got %v, want %v", loaded.Tax()["standard"], o.Tax()["standard"])
	}

	item, err := loaded.Item("key-1")
	if err != nil {
		t.Fatalf("item: %v", err)
	}
	if item.Quantity != 2 || item.Price != 10 {
		t.Fatalf("item fields: %+v", item)
	}
	if v, ok := item.MetaValue("size"); !ok || v != "M" {
		t.Fatalf("item meta: %q, %v", v, ok)
	}

	notes := loaded.Notes()
	if len(notes) != 1 || notes[0].Text != "packed" {
		t.Fatalf("notes: %+v", notes)
	}
}

func TestSave_RequiresID(t *testing.T) {
	store := NewStore(newMockDynamo("orders"), "orders", nil, nil, nil)
	err := store.Save(context.Background(), order.New(nil, nil), 0)
	if err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestSave_NewOrderAlreadyExists(t *testing.T) {
	mock := newMockDynamo("orders")
	store := NewStore(mock, "orders", []string{"standard"}, nil, nil)
	ctx := context.Background()

	if err := store.Save(ctx, sampleOrder("o1"), 0); err != nil {
		t.Fatalf("first save: %v", err)
	}
	err := store.Save(ctx, sampleOrder("o1"), 0)
	if err != ErrVersionConflict {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestSave_StaleVersionConflicts(t *testing.T) {
	mock := newMockDynamo("orders")
	store := NewStore(mock, "orders", []string{"standard"}, nil, nil)
	ctx := context.Background()

	o := sampleOrder("o1")
	if err := store.Save(ctx, o, 0); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, version, err := store.Get(ctx, "o1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if err := store.Save(ctx, loaded, version-1); err != ErrVersionConflict {
		t.Fatalf("expected ErrVersionConflict on stale version, got %v", err)
	}
	if err := store.Save(ctx, loaded, version); err != nil {
		t.Fatalf("save with current version: %v", err)
	}
}

func TestGet_Missing(t *testing.T) {
	store := NewStore(newMockDynamo("orders"), "orders", nil, nil, nil)

	o, version, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if o != nil || version != 0 {
		t.Fatalf("expected nil order and zero version, got %v / %d", o, version)
	}
}

func TestGet_ResolvesProducts(t *testing.T) {
	mock := newMockDynamo("orders")
	ctx := context.Background()

	resolver := func(productID string) order.Product {
		if productID == "prod-1" {
			return &storedProduct{id: productID}
		}
		return nil
	}
	store := NewStore(mock, "orders", []string{"standard"}, nil, resolver)

	if err := store.Save(ctx, sampleOrder("o1"), 0); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, _, err := store.Get(ctx, "o1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	item, err := loaded.Item("key-1")
	if err != nil {
		t.Fatalf("item: %v", err)
	}
	if item.Product == nil || item.Product.ID() != "prod-1" {
		t.Fatalf("product not resolved: %+v", item.Product)
	}
}

func TestMarshalOrder_RoundTripsThroughGet(t *testing.T) {
	mock := newMockDynamo("orders")
	store := NewStore(mock, "orders", []string{"standard"}, nil, nil)
	ctx := context.Background()

	o := sampleOrder("o1")
	item, err := store.MarshalOrder(o)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	mock.tables["orders"]["o1"] = item

	loaded, _, err := store.Get(ctx, "o1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded == nil || loaded.Total() != o.Total() {
		t.Fatalf("marshaled row did not load: %+v", loaded)
	}
}
