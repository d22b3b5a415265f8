package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/merchkit/go-commerce-orderflow/internal/aws"
	"github.com/merchkit/go-commerce-orderflow/internal/checkout"
	"github.com/merchkit/go-commerce-orderflow/internal/order"
	"github.com/merchkit/go-commerce-orderflow/internal/store"
	"github.com/merchkit/go-commerce-orderflow/internal/tax"
	"github.com/merchkit/go-commerce-orderflow/internal/validation"
)

// registerOrderRoutes wires order placement and lifecycle routes.
func registerOrderRoutes(r *gin.Engine, cfg HandlerConfig, rates *tax.RateTable, orderStore *store.Store) {
	v := validation.New()
	checkoutStore := checkout.NewStore(cfg.DynamoDBClient, cfg.CheckoutTable, cfg.TTLWindow)
	publisher := aws.NewPublisher(cfg.SQSClient, cfg.QueueURL)

	r.POST("/orders", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.PlaceOrderRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing_idempotency_key"})
			return
		}

		orderID := uuid.NewString()
		o := order.New(cfg.taxClasses(), cfg.Hooks)
		o.SetID(orderID)
		o.SetNumber(orderID[:8])
		if req.CustomerID != "" {
			o.SetCustomer(order.Customer{ID: req.CustomerID})
		}
		o.SetCustomerNote(req.CustomerNote)
		o.SetPayment(req.Payment)

		for _, line := range req.Items {
			item, err := buildItem(cfg.Catalog, rates, line.ProductID, line.VariationID, line.Attributes, line.Quantity)
			if err != nil {
				writeDomainError(c, err)
				return
			}
			if existing, err := o.Item(item.ID); err == nil {
				item.Quantity += existing.Quantity
			}
			o.AddItem(item)
		}
		o.SetDiscount(req.Discount)

		if err := o.UpdateStatus(order.StatusPending, "Order placed."); err != nil {
			writeDomainError(c, err)
			return
		}

		orderItem, err := orderStore.MarshalOrder(o)
		if err != nil {
			writeDomainError(c, err)
			return
		}

		err = checkoutStore.PlaceOrder(ctx, idempKey, orderID, o.Number(), o.Total(), orderStore.TableName(), orderItem)
		if err != nil {
			if !errors.Is(err, checkout.ErrKeyExists) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "order_placement_failed", "detail": err.Error()})
				return
			}
			// Duplicate request: replay the stored outcome instead of
			// creating a second order.
			rec, getErr := checkoutStore.Get(ctx, idempKey)
			if getErr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "detail": getErr.Error()})
				return
			}
			if rec == nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "transaction_failed_no_checkout_record", "detail": err.Error()})
				return
			}
			switch rec.Status {
			case checkout.StatusDone:
				if rec.ResponseBody != "" {
					c.Data(rec.ResponseStatus, "application/json", []byte(rec.ResponseBody))
					return
				}
				c.JSON(http.StatusOK, gin.H{"order_id": rec.OrderID})
				return
			case checkout.StatusInProgress:
				c.JSON(http.StatusAccepted, gin.H{"message": "request already in progress", "order_id": rec.OrderID})
				return
			case checkout.StatusFailed:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "previous_attempt_failed", "order_id": rec.OrderID})
				return
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_checkout_status"})
				return
			}
		}

		event := aws.StatusEvent{
			OrderID:    orderID,
			Number:     o.Number(),
			FromStatus: string(order.StatusCreated),
			ToStatus:   string(order.StatusPending),
		}
		attrs := map[string]string{
			"idempotency_key": idempKey,
			"order_id":        orderID,
			"correlation_id":  c.GetHeader("X-Request-Id"),
		}
		if err := publisher.PublishStatusEvent(ctx, event, attrs); err != nil {
			_ = checkoutStore.MarkFailed(ctx, idempKey, fmt.Sprintf("sqs_send_failed: %v", err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue_failed", "detail": err.Error()})
			return
		}

		responseBody, _ := json.Marshal(gin.H{"order_id": orderID, "number": o.Number(), "status": string(o.Status()), "total": o.Total()})
		_ = checkoutStore.MarkDone(ctx, idempKey, string(responseBody), http.StatusCreated)

		c.Header("Location", fmt.Sprintf("/orders/%s", orderID))
		c.Data(http.StatusCreated, "application/json", responseBody)
	})

	r.GET("/orders/:orderID", func(c *gin.Context) {
		o, _, err := orderStore.Get(c.Request.Context(), c.Param("orderID"))
		if err != nil {
			writeDomainError(c, err)
			return
		}
		if o == nil {
			writeDomainError(c, order.NewNotFound("order", c.Param("orderID")))
			return
		}
		c.JSON(http.StatusOK, orderResponse(o))
	})

	r.POST("/orders/:orderID/status", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.UpdateStatusRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		status := order.Status(req.Status)
		if !status.Known() {
			writeDomainError(c, &order.InvalidInputError{Field: "status", Reason: "unknown status " + req.Status})
			return
		}

		o, version, err := orderStore.Get(ctx, c.Param("orderID"))
		if err != nil {
			writeDomainError(c, err)
			return
		}
		if o == nil {
			writeDomainError(c, order.NewNotFound("order", c.Param("orderID")))
			return
		}

		from := o.Status()
		if err := o.UpdateStatus(status, req.Message); err != nil {
			writeDomainError(c, err)
			return
		}
		if err := orderStore.Save(ctx, o, version); err != nil {
			writeDomainError(c, err)
			return
		}

		if from != status {
			event := aws.StatusEvent{
				OrderID:    o.ID(),
				Number:     o.Number(),
				FromStatus: string(from),
				ToStatus:   string(status),
				Message:    req.Message,
			}
			if err := publisher.PublishStatusEvent(ctx, event, map[string]string{"order_id": o.ID()}); err != nil {
				// The transition is committed; event delivery failures are
				// the caller's to retry.
				c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue_failed", "detail": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"order_id": o.ID(), "status": string(o.Status())})
	})
}

func orderResponse(o *order.Order) gin.H {
	items := make([]gin.H, 0, len(o.Items()))
	for _, item := range o.Items() {
		meta := gin.H{}
		for _, m := range item.AllMeta() {
			meta[m.Key] = m.Value
		}
		items = append(items, gin.H{
			"id":       item.ID,
			"name":     item.Name,
			"price":    item.Price,
			"quantity": item.Quantity,
			"cost":     item.Cost(),
			"meta":     meta,
		})
	}
	notes := make([]gin.H, 0, len(o.Notes()))
	for _, note := range o.Notes() {
		notes = append(notes, gin.H{"id": note.ID, "text": note.Text, "created_at": note.CreatedAt})
	}
	return gin.H{
		"order_id":         o.ID(),
		"number":           o.Number(),
		"status":           string(o.Status()),
		"customer_id":      o.Customer().ID,
		"items":            items,
		"product_subtotal": o.ProductSubtotal(),
		"subtotal":         o.Subtotal(),
		"total":            o.Total(),
		"discount":         o.Discount(),
		"tax":              o.Tax(),
		"shipping_tax":     o.ShippingTax(),
		"shipping_price":   o.ShippingPrice(),
		"notes":            notes,
	}
}
