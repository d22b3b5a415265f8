// Package checkout makes order placement idempotent: one checkout record
// per client-supplied Idempotency-Key, written atomically with the order
// row so a retried request replays the stored response instead of creating
// a second order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/merchkit/go-commerce-orderflow/internal/aws"
)

// ErrKeyExists indicates the idempotency key was already claimed; callers
// should Get the record and replay or report its outcome.
var ErrKeyExists = errors.New("idempotency key already exists")

// Store encapsulates checkout idempotency operations against DynamoDB.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	ttlWindow time.Duration
	nowFunc   func() time.Time
}

// NewStore returns a configured Store. ttlWindow bounds how long a claimed
// key blocks duplicates (e.g. 48h).
func NewStore(client aws.DynamoDBAPI, tableName string, ttlWindow time.Duration) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

// PlaceOrder atomically claims the idempotency key and writes the order row
// in a single TransactWriteItems call. orderItem is the marshaled order
// record (see store.MarshalOrder) destined for ordersTable. Returns
// ErrKeyExists when the key was already claimed.
func (s *Store) PlaceOrder(ctx context.Context, key, orderID, orderNumber string, total float64, ordersTable string, orderItem map[string]types.AttributeValue) error {
	now := s.nowFunc()
	rec := Record{
		IdempotencyKey: key,
		Status:         StatusInProgress,
		OrderID:        orderID,
		OrderNumber:    orderNumber,
		Total:          total,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(s.ttlWindow).Unix(),
	}
	recMap, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal checkout record: %w", err)
	}

	input := &dyn.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           &s.tableName,
					Item:                recMap,
					ConditionExpression: awsString("attribute_not_exists(idempotency_key)"),
				},
			},
			{
				Put: &types.Put{
					TableName: &ordersTable,
					Item:      orderItem,
				},
			},
		},
	}

	_, err = s.client.TransactWriteItems(ctx, input)
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			return ErrKeyExists
		}
		return fmt.Errorf("transact write: %w", err)
	}
	return nil
}

// Get retrieves a checkout record by key. Returns (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, key string) (*Record, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"idempotency_key": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal checkout record: %w", err)
	}
	return &rec, nil
}

// MarkDone stores the response to replay for duplicate requests and flips
// the record to DONE.
func (s *Store) MarkDone(ctx context.Context, key, responseBody string, responseStatus int) error {
	return s.update(ctx, key, StatusDone, map[string]types.AttributeValue{
		":body":   &types.AttributeValueMemberS{Value: responseBody},
		":code":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", responseStatus)},
		":status": &types.AttributeValueMemberS{Value: StatusDone},
	}, "SET #s = :status, response_body = :body, response_status = :code, updated_at = :ua")
}

// MarkFailed flips the record to FAILED with a note so the client can retry.
func (s *Store) MarkFailed(ctx context.Context, key, note string) error {
	return s.update(ctx, key, StatusFailed, map[string]types.AttributeValue{
		":note":   &types.AttributeValueMemberS{Value: note},
		":status": &types.AttributeValueMemberS{Value: StatusFailed},
	}, "SET #s = :status, note = :note, updated_at = :ua")
}

func (s *Store) update(ctx context.Context, key, status string, values map[string]types.AttributeValue, expr string) error {
	values[":ua"] = &types.AttributeValueMemberS{Value: s.nowFunc().Format(time.RFC3339)}
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"idempotency_key": &types.AttributeValueMemberS{Value: key},
		},
		UpdateExpression:          &expr,
		ExpressionAttributeNames:  map[string]string{"#s": "status"},
		ExpressionAttributeValues: values,
	}
	_, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return fmt.Errorf("mark %s: %w", status, err)
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
