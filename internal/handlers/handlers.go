package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/merchkit/go-commerce-orderflow/internal/aws"
	"github.com/merchkit/go-commerce-orderflow/internal/order"
	"github.com/merchkit/go-commerce-orderflow/internal/store"
	"github.com/merchkit/go-commerce-orderflow/internal/tax"
)

// Catalog is the product lookup handlers resolve ids against.
type Catalog interface {
	Find(productID string) (order.Product, bool)
}

// HandlerConfig groups dependencies for the storefront handlers.
type HandlerConfig struct {
	DynamoDBClient aws.DynamoDBAPI
	SQSClient      aws.SQSAPI
	CheckoutTable  string
	OrdersTable    string
	QueueURL       string
	TTLWindow      time.Duration

	Catalog  Catalog
	TaxRates map[string]float64 // tax class -> percent rate
	Hooks    *order.Hooks
}

func (cfg HandlerConfig) taxClasses() []string {
	classes := make([]string, 0, len(cfg.TaxRates))
	for class := range cfg.TaxRates {
		classes = append(classes, class)
	}
	return classes
}

// RegisterRoutes wires the cart, order and catalog routes.
func RegisterRoutes(r *gin.Engine, cfg HandlerConfig) {
	rates := tax.NewRateTable(cfg.TaxRates)
	orderStore := store.NewStore(cfg.DynamoDBClient, cfg.OrdersTable, cfg.taxClasses(), cfg.Hooks, func(productID string) order.Product {
		p, ok := cfg.Catalog.Find(productID)
		if !ok {
			return nil
		}
		return p
	})

	registerCatalogRoutes(r, cfg)
	registerCartRoutes(r, cfg, rates, orderStore)
	registerOrderRoutes(r, cfg, rates, orderStore)
}

// writeDomainError maps the core's error taxonomy onto HTTP statuses.
func writeDomainError(c *gin.Context, err error) {
	var notFound *order.NotFoundError
	var invalidInput *order.InvalidInputError
	var invalidState *order.InvalidStateError

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "msg": err.Error()})
	case errors.As(err, &invalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "msg": err.Error()})
	case errors.As(err, &invalidState):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid_state", "msg": err.Error()})
	case errors.Is(err, store.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "version_conflict", "msg": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "msg": err.Error()})
	}
}
