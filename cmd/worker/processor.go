package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/events"

	"github.com/merchkit/go-commerce-orderflow/internal/aws"
	"github.com/merchkit/go-commerce-orderflow/internal/order"
	"github.com/merchkit/go-commerce-orderflow/internal/store"
)

// Processor handles SQS messages and performs order lifecycle transitions.
type Processor struct {
	orderStore *store.Store
	metrics    *aws.SalesMetrics
}

// NewProcessor creates a worker processor with AWS clients injected. Hooks
// fired during fulfillment transitions are registered here, including the
// CloudWatch emitter for completed orders.
func NewProcessor(clients *aws.AWSClients, ordersTable string, taxClasses []string) *Processor {
	metrics := aws.NewSalesMetrics(clients.CloudWatch, "OrderFlow/Sales")

	hooks := order.NewHooks()
	hooks.OnAfter(order.StatusCompleted, metrics.CompletionHook(context.Background()))

	orderStore := store.NewStore(clients.DynamoDB, ordersTable, taxClasses, hooks, nil)

	return &Processor{
		orderStore: orderStore,
		metrics:    metrics,
	}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Return error: Lambda will retry. If failed too many times, message goes to DLQ.
			log.Printf("worker error: %v", err)
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg WorkerMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}

	log.Printf("[worker] received order=%s transition=%s->%s", msg.OrderID, msg.FromStatus, msg.ToStatus)

	// Only placement events trigger fulfillment. Other transitions are
	// already handled by whoever committed them.
	if order.Status(msg.ToStatus) != order.StatusPending {
		log.Printf("[worker] ignoring non-placement event for order=%s", msg.OrderID)
		return nil
	}

	o, version, err := p.orderStore.Get(ctx, msg.OrderID)
	if err != nil {
		return fmt.Errorf("failed to fetch order: %w", err)
	}
	if o == nil {
		// Should never happen, DLQ if it does
		return fmt.Errorf("order not found: %s", msg.OrderID)
	}

	switch o.Status() {
	case order.StatusCompleted:
		log.Printf("[worker] already completed order=%s", msg.OrderID)
		return nil
	case order.StatusProcessing:
		log.Printf("[worker] duplicate processing event for order=%s", msg.OrderID)
		return nil
	case order.StatusCancelled, order.StatusRefunded:
		log.Printf("[worker] order=%s is %s, skipping fulfillment", msg.OrderID, o.Status().Name())
		return nil
	case order.StatusPending:
		// fall through to fulfillment
	default:
		return fmt.Errorf("unexpected status for order=%s: %s", msg.OrderID, o.Status())
	}

	if err := o.UpdateStatus(order.StatusProcessing, "Fulfillment started."); err != nil {
		return fmt.Errorf("failed to update status to PROCESSING: %w", err)
	}
	if err := p.orderStore.Save(ctx, o, version); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			// Competing worker took the order; swallow the duplicate.
			log.Printf("[worker] lost claim race for order=%s", msg.OrderID)
			return nil
		}
		return fmt.Errorf("failed to persist PROCESSING: %w", err)
	}

	claimVersion := o.UpdatedAt().Unix()

	// Actual fulfillment work (payment capture, stock reservation) would
	// run here.

	if err := o.UpdateStatus(order.StatusCompleted, "Fulfillment finished."); err != nil {
		return fmt.Errorf("failed to update status to COMPLETED: %w", err)
	}
	if err := p.orderStore.Save(ctx, o, claimVersion); err != nil {
		return fmt.Errorf("failed to persist COMPLETED: %w", err)
	}

	log.Printf("[worker] completed order=%s", msg.OrderID)
	return nil
}
