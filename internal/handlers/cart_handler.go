package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/merchkit/go-commerce-orderflow/internal/catalog"
	"github.com/merchkit/go-commerce-orderflow/internal/order"
	"github.com/merchkit/go-commerce-orderflow/internal/store"
	"github.com/merchkit/go-commerce-orderflow/internal/tax"
	"github.com/merchkit/go-commerce-orderflow/internal/validation"
)

// registerCartRoutes wires the cart mutation routes. A cart is an order row
// still in CREATED status, keyed by the cart id.
func registerCartRoutes(r *gin.Engine, cfg HandlerConfig, rates *tax.RateTable, orderStore *store.Store) {
	v := validation.New()

	r.POST("/carts/:cartID/items", func(c *gin.Context) {
		ctx := c.Request.Context()
		cartID := c.Param("cartID")

		var req validation.AddItemRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		quantity, err := validation.ParseQuantity(req.Quantity)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		if quantity <= 0 {
			writeDomainError(c, &order.InvalidInputError{Field: "quantity", Reason: "must be positive"})
			return
		}

		cart, version, err := orderStore.Get(ctx, cartID)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		if cart == nil {
			cart = order.New(cfg.taxClasses(), cfg.Hooks)
			cart.SetID(cartID)
		}

		item, err := buildItem(cfg.Catalog, rates, req.ProductID, req.VariationID, req.Attributes, quantity)
		if err != nil {
			writeDomainError(c, err)
			return
		}

		// Identical selections merge into one line: the identity key is the
		// item id, so an existing line only grows in quantity.
		if existing, err := cart.Item(item.ID); err == nil {
			item.Quantity += existing.Quantity
		}
		cart.AddItem(item)

		if err := orderStore.Save(ctx, cart, version); err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	})

	r.PATCH("/carts/:cartID/items/:itemID", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req struct {
			Quantity string `json:"quantity" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body", "msg": err.Error()})
			return
		}
		quantity, err := validation.ParseQuantity(req.Quantity)
		if err != nil {
			writeDomainError(c, err)
			return
		}

		cart, version, err := orderStore.Get(ctx, c.Param("cartID"))
		if err != nil {
			writeDomainError(c, err)
			return
		}
		if cart == nil {
			writeDomainError(c, order.NewNotFound("cart", c.Param("cartID")))
			return
		}

		if err := cart.UpdateQuantity(c.Param("itemID"), quantity, rates); err != nil {
			writeDomainError(c, err)
			return
		}
		if err := orderStore.Save(ctx, cart, version); err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	})

	r.DELETE("/carts/:cartID/items", func(c *gin.Context) {
		ctx := c.Request.Context()

		cart, version, err := orderStore.Get(ctx, c.Param("cartID"))
		if err != nil {
			writeDomainError(c, err)
			return
		}
		if cart == nil {
			writeDomainError(c, order.NewNotFound("cart", c.Param("cartID")))
			return
		}

		cart.RemoveAllItems()
		if err := orderStore.Save(ctx, cart, version); err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	})

	r.DELETE("/carts/:cartID/items/:itemID", func(c *gin.Context) {
		ctx := c.Request.Context()

		cart, version, err := orderStore.Get(ctx, c.Param("cartID"))
		if err != nil {
			writeDomainError(c, err)
			return
		}
		if cart == nil {
			writeDomainError(c, order.NewNotFound("cart", c.Param("cartID")))
			return
		}

		if _, err := cart.RemoveItem(c.Param("itemID")); err != nil {
			writeDomainError(c, err)
			return
		}
		if err := orderStore.Save(ctx, cart, version); err != nil {
			writeDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	})
}

// buildItem resolves a product reference into a ready line item with its
// per-unit tax snapshot and identity key.
func buildItem(cat Catalog, rates *tax.RateTable, productID, variationID string, attributes map[string]string, quantity int) (*order.Item, error) {
	product, ok := cat.Find(productID)
	if !ok {
		return nil, order.NewNotFound("product", productID)
	}

	var item *order.Item
	if product.Type() == catalog.TypeVariable || variationID != "" {
		resolved, err := catalog.ResolveVariation(product, variationID, attributes, quantity)
		if err != nil {
			return nil, err
		}
		item = resolved
	} else {
		item = order.NewItem("", product, quantity)
	}

	for _, class := range product.TaxClasses() {
		item.Tax[class] = rates.Amount(class, item.Price)
	}
	item.ID = catalog.GenerateItemKey(item)
	return item, nil
}

func cartResponse(o *order.Order) gin.H {
	items := make([]gin.H, 0, len(o.Items()))
	shippingRequired := false
	for _, item := range o.Items() {
		items = append(items, gin.H{
			"id":       item.ID,
			"name":     item.Name,
			"price":    item.Price,
			"quantity": item.Quantity,
			"cost":     item.Cost(),
		})
		shippingRequired = catalog.IsShippingRequired(shippingRequired, item)
	}
	return gin.H{
		"cart_id":           o.ID(),
		"items":             items,
		"product_subtotal":  o.ProductSubtotal(),
		"subtotal":          o.Subtotal(),
		"total":             o.Total(),
		"discount":          o.Discount(),
		"tax":               o.Tax(),
		"shipping_required": shippingRequired,
	}
}
