package validation

import (
	"fmt"
	"math"
	"strconv"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/merchkit/go-commerce-orderflow/internal/order"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// register struct-level validation for PlaceOrderRequest to ensure
	// the provided Amount matches the sum of (price * quantity) of items.
	v.RegisterStructValidation(placeOrderStructValidation, PlaceOrderRequest{})

	return v
}

// placeOrderStructValidation verifies the aggregated total of items equals Amount (within cents)
func placeOrderStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(PlaceOrderRequest)

	var sum float64
	for _, it := range req.Items {
		sum += float64(it.Quantity) * it.Price
	}
	sum -= req.Discount

	sumCents := int(math.Round(sum * 100))
	amountCents := int(math.Round(req.Amount * 100))
	if sumCents != amountCents {
		sl.ReportError(req.Amount, "amount", "Amount", "amount_match_items", fmt.Sprintf("items sum %.2f != amount %.2f", sum, req.Amount))
	}
}

// ParseQuantity parses a quantity the storefront posted as a string. A
// non-numeric value is an InvalidInputError per the core's error taxonomy;
// zero and negative values are valid input and mean removal downstream.
func ParseQuantity(raw string) (int, error) {
	quantity, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &order.InvalidInputError{Field: "quantity", Reason: "must be numeric"}
	}
	return quantity, nil
}
