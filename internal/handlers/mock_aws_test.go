package handlers

import (
	"context"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
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
	for _, attr := range []string{"idempotency_key", "order_id"} {
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

// UpdateItem copies well-known expression values onto the stored item,
// enough for the checkout record updates.
func (m *mockDynamo) UpdateItem(ctx context.Context, in *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	item, ok := m.tables[*in.TableName][itemKey(in.Key)]
	if !ok {
		return nil, &types.ConditionalCheckFailedException{}
	}
	assign := map[string]string{
		":status": "status",
		":body":   "response_body",
		":code":   "response_status",
		":note":   "note",
		":ua":     "updated_at",
	}
	for placeholder, attr := range assign {
		if value, ok := in.ExpressionAttributeValues[placeholder]; ok {
			item[attr] = value
		}
	}
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

type mockSQS struct {
	sent []awssqs.SendMessageInput
	err  error
}

func (m *mockSQS) SendMessage(ctx context.Context, in *awssqs.SendMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.SendMessageOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, *in)
	return &awssqs.SendMessageOutput{}, nil
}
