package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/merchkit/go-commerce-orderflow/internal/aws"
	"github.com/merchkit/go-commerce-orderflow/internal/catalog"
	"github.com/merchkit/go-commerce-orderflow/internal/handlers"
	"github.com/merchkit/go-commerce-orderflow/internal/order"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterRoutes(r, cfg)

	return r
}

// seedCatalog builds the demo product set served when no catalog
// backend is configured.
func seedCatalog() *catalog.Memory {
	mem := catalog.NewMemory()

	mug := catalog.NewSimple("prod-mug", "Coffee Mug", 12.50, []string{"standard"})
	mem.Add(mug)

	poster := catalog.NewSimple("prod-poster", "Gig Poster", 8.00, []string{"reduced"})
	poster.SetShippable(false)
	mem.Add(poster)

	shirt := catalog.NewVariable("prod-shirt", "Band Shirt", []catalog.Attribute{
		{ID: "attr-size", Slug: "size", Label: "Size", Variable: true},
		{ID: "attr-color", Slug: "color", Label: "Color", Variable: false},
	}, []string{"standard"})
	for _, v := range []struct {
		id    string
		size  string
		price float64
	}{
		{"var-shirt-s", "S", 18.00},
		{"var-shirt-m", "M", 18.00},
		{"var-shirt-l", "L", 19.50},
	} {
		sub := catalog.NewSimple(v.id, "Band Shirt", v.price, []string{"standard"})
		if _, err := shirt.AddVariation(v.id, sub, map[string]string{"attr-size": v.size}); err != nil {
			log.Fatalf("seed catalog: %v", err)
		}
	}
	mem.Add(shirt)

	return mem
}

func main() {
	clients, err := aws.NewAWSClients(context.Background())

	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	cfg := handlers.HandlerConfig{
		DynamoDBClient: clients.DynamoDB,
		SQSClient:      clients.SQS,
		CheckoutTable:  os.Getenv("CHECKOUT_TABLE"),
		OrdersTable:    os.Getenv("ORDERS_TABLE"),
		QueueURL:       os.Getenv("ORDERS_QUEUE_URL"),
		TTLWindow:      48 * time.Hour,

		Catalog:  seedCatalog(),
		TaxRates: map[string]float64{"standard": 20, "reduced": 5},
		Hooks:    order.NewHooks(),
	}

	r := setupRouter(cfg)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		log.Printf("running local server on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		// the adapter handles proxying; use adapter.ProxyWithContext for proper context propagation
		return adapter.ProxyWithContext(ctx, req)
	})
}
