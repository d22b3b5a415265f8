// Package store persists order aggregates in DynamoDB through their state
// export/import contract. Concurrency control lives here, not in the
// aggregate: writes are conditional on the version read.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/merchkit/go-commerce-orderflow/internal/aws"
	"github.com/merchkit/go-commerce-orderflow/internal/order"
)

// ProductResolver binds a stored product id back to a live catalog product.
type ProductResolver func(productID string) order.Product

// ErrVersionConflict indicates the row changed since it was read.
var ErrVersionConflict = errors.New("order was modified concurrently")

// Store reads and writes order aggregates in an orders table.
type Store struct {
	client     aws.DynamoDBAPI
	tableName  string
	taxClasses []string
	resolve    ProductResolver
	hooks      *order.Hooks
}

// NewStore creates an orders Store. taxClasses is the tax class
// configuration new aggregates are constructed with; hooks (may be nil) are
// attached to every loaded aggregate; resolve (may be nil) rebinds item
// product references.
func NewStore(client aws.DynamoDBAPI, tableName string, taxClasses []string, hooks *order.Hooks, resolve ProductResolver) *Store {
	return &Store{
		client:     client,
		tableName:  tableName,
		taxClasses: taxClasses,
		resolve:    resolve,
		hooks:      hooks,
	}
}

// Save writes the aggregate's exported state. expectedVersion is the
// updated_at value returned by Get for the row being replaced; pass zero for
// a new order, in which case the write requires the row not to exist.
// Returns ErrVersionConflict when the optimistic check fails.
func (s *Store) Save(ctx context.Context, o *order.Order, expectedVersion int64) error {
	rec := recordFromState(o.ExportState())
	if rec.OrderID == "" {
		return &order.InvalidInputError{Field: "order", Reason: "missing id"}
	}
	rec.Notes = o.Notes()

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal order record: %w", err)
	}

	input := &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	}
	if expectedVersion == 0 {
		input.ConditionExpression = awsString("attribute_not_exists(order_id)")
	} else {
		input.ConditionExpression = awsString("updated_at = :expected")
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(expectedVersion, 10)},
		}
	}

	_, err = s.client.PutItem(ctx, input)
	if err != nil {
		var cond *types.ConditionalCheckFailedException
		if errors.As(err, &cond) {
			return ErrVersionConflict
		}
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// Get loads an order by id onto a freshly constructed aggregate and returns
// it with the version token to pass back to Save. Returns (nil, 0, nil)
// when not found.
func (s *Store) Get(ctx context.Context, orderID string) (*order.Order, int64, error) {
	key := map[string]types.AttributeValue{
		"order_id": &types.AttributeValueMemberS{Value: orderID},
	}
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key:       key,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, 0, nil
	}

	var rec record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, 0, fmt.Errorf("unmarshal order record: %w", err)
	}

	o := order.New(s.taxClasses, s.hooks)
	o.ImportState(rec.toState(s.resolve))
	o.RestoreNotes(rec.Notes)
	return o, rec.UpdatedAt, nil
}

// MarshalOrder marshals the aggregate's exported state into a DynamoDB item
// map, for callers composing multi-table transactions (idempotent checkout).
func (s *Store) MarshalOrder(o *order.Order) (map[string]types.AttributeValue, error) {
	rec := recordFromState(o.ExportState())
	if rec.OrderID == "" {
		return nil, &order.InvalidInputError{Field: "order", Reason: "missing id"}
	}
	rec.Notes = o.Notes()
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal order record: %w", err)
	}
	return item, nil
}

// TableName returns the orders table this store writes to.
func (s *Store) TableName() string { return s.tableName }

func awsString(s string) *string { return &s }
