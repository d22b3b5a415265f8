package aws

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/merchkit/go-commerce-orderflow/internal/order"
)

// SalesMetrics emits fulfillment-derived counters to CloudWatch. It is the
// downstream bookkeeping collaborator for completed orders: the aggregate
// only fires the hook, the counters live here.
type SalesMetrics struct {
	client    CloudWatchAPI
	namespace string
	nowFunc   func() time.Time
}

// NewSalesMetrics returns an emitter publishing under the given namespace.
func NewSalesMetrics(client CloudWatchAPI, namespace string) *SalesMetrics {
	return &SalesMetrics{
		client:    client,
		namespace: namespace,
		nowFunc:   time.Now,
	}
}

// RecordCompleted publishes one QuantitySold datum per line item plus an
// OrderTotal datum for the order.
func (m *SalesMetrics) RecordCompleted(ctx context.Context, o *order.Order) error {
	now := m.nowFunc()
	var data []cwtypes.MetricDatum

	for _, item := range o.Items() {
		data = append(data, cwtypes.MetricDatum{
			MetricName: sdkaws.String("QuantitySold"),
			Value:      sdkaws.Float64(float64(item.Quantity)),
			Unit:       cwtypes.StandardUnitCount,
			Timestamp:  &now,
			Dimensions: []cwtypes.Dimension{
				{Name: sdkaws.String("ProductID"), Value: sdkaws.String(item.ProductID)},
			},
		})
	}
	data = append(data, cwtypes.MetricDatum{
		MetricName: sdkaws.String("OrderTotal"),
		Value:      sdkaws.Float64(o.Total()),
		Unit:       cwtypes.StandardUnitNone,
		Timestamp:  &now,
	})

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  &m.namespace,
		MetricData: data,
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}

// CompletionHook adapts the emitter into an order status hook for COMPLETED.
func (m *SalesMetrics) CompletionHook(ctx context.Context) order.Hook {
	return func(o *order.Order) error {
		return m.RecordCompleted(ctx, o)
	}
}
