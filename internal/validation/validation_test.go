package validation

import (
	"errors"
	"testing"

	"github.com/merchkit/go-commerce-orderflow/internal/order"
)

func TestPlaceOrderRequest_Valid(t *testing.T) {
	v := New()

	req := PlaceOrderRequest{
		CustomerID: "cust-123",
		Items: []OrderItem{
			{ProductID: "prod-1", Quantity: 2, Price: 10.0},
			{ProductID: "prod-shirt", VariationID: "var-any", Attributes: map[string]string{"attr-size": "M"}, Quantity: 1, Price: 18.0},
		},
		Amount: 38.0, // 2*10 + 1*18
	}

	if err := v.Struct(req); err != nil {
		t.Fatalf("expected valid, got error: %v", err)
	}
}

func TestPlaceOrderRequest_DiscountInAmount(t *testing.T) {
	v := New()

	req := PlaceOrderRequest{
		Items: []OrderItem{
			{ProductID: "prod-1", Quantity: 2, Price: 10.0},
		},
		Discount: 5.0,
		Amount:   15.0, // 20 - 5
	}

	if err := v.Struct(req); err != nil {
		t.Fatalf("expected valid, got error: %v", err)
	}
}

func TestPlaceOrderRequest_AmountMismatch(t *testing.T) {
	v := New()

	req := PlaceOrderRequest{
		Items: []OrderItem{
			{ProductID: "prod-1", Quantity: 1, Price: 10.0},
		},
		Amount: 9.99, // mismatch
	}

	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation error for amount mismatch, got nil")
	}
}

func TestPlaceOrderRequest_MissingFields(t *testing.T) {
	v := New()

	req := PlaceOrderRequest{
		Items:  []OrderItem{},
		Amount: 0,
	}

	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation errors for missing required fields, got nil")
	}
}

func TestAddItemRequest_RequiresProductAndQuantity(t *testing.T) {
	v := New()

	if err := v.Struct(AddItemRequest{ProductID: "prod-1", Quantity: "2"}); err != nil {
		t.Fatalf("expected valid, got error: %v", err)
	}
	if err := v.Struct(AddItemRequest{Quantity: "2"}); err == nil {
		t.Fatal("expected error for missing product id, got nil")
	}
	if err := v.Struct(AddItemRequest{ProductID: "prod-1"}); err == nil {
		t.Fatal("expected error for missing quantity, got nil")
	}
}

func TestParseQuantity(t *testing.T) {
	if q, err := ParseQuantity("3"); err != nil || q != 3 {
		t.Fatalf("got %d, %v", q, err)
	}
	// Zero and negative are valid input; they mean removal downstream.
	if q, err := ParseQuantity("0"); err != nil || q != 0 {
		t.Fatalf("got %d, %v", q, err)
	}
	if q, err := ParseQuantity("-1"); err != nil || q != -1 {
		t.Fatalf("got %d, %v", q, err)
	}

	_, err := ParseQuantity("banana")
	var invalidInput *order.InvalidInputError
	if !errors.As(err, &invalidInput) {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}
}
