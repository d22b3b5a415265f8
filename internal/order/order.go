package order

import (
	"fmt"
	"time"
)

// Order is the cart/order monetary aggregate. It owns the item collection,
// shipping attachment, discount, per-class tax buckets and the status
// lifecycle. Totals are updated incrementally on every mutation, so they are
// always consistent with the current item, shipping and discount set.
//
// One request owns one Order at a time; the aggregate does no locking.
// Concurrency control belongs to the persistence collaborator.
type Order struct {
	id        string
	number    string
	createdAt time.Time
	updatedAt time.Time
	customer  Customer

	items     map[string]*Item
	itemOrder []string

	billingAddress  Address
	shippingAddress Address

	shippingMethod ShippingMethod
	shippingPrice  float64
	paymentID      string

	productSubtotal float64
	subtotal        float64
	total           float64
	discount        float64

	tax         map[string]float64
	shippingTax map[string]float64

	status       Status
	customerNote string
	notes        []Note

	hooks   *Hooks
	nowFunc func() time.Time
}

// New constructs an empty order. taxClasses is the full immutable tax class
// configuration: both tax maps carry every class from construction on, even
// when zero. hooks may be nil.
func New(taxClasses []string, hooks *Hooks) *Order {
	o := &Order{
		customer:    Guest(),
		items:       map[string]*Item{},
		tax:         map[string]float64{},
		shippingTax: map[string]float64{},
		status:      StatusCreated,
		hooks:       hooks,
		nowFunc:     time.Now,
	}
	for _, class := range taxClasses {
		o.tax[class] = 0.0
		o.shippingTax[class] = 0.0
	}
	o.createdAt = o.nowFunc()
	o.updatedAt = o.createdAt
	return o
}

func (o *Order) touch() {
	o.updatedAt = o.nowFunc()
}

// ID returns the order id.
func (o *Order) ID() string { return o.id }

// SetID sets the order id.
func (o *Order) SetID(id string) { o.id = id }

// Number returns the customer-facing order number.
func (o *Order) Number() string { return o.number }

// SetNumber sets the customer-facing order number.
func (o *Order) SetNumber(number string) { o.number = number }

// Title returns the display title of the order.
func (o *Order) Title() string {
	return fmt.Sprintf("Order %s", o.number)
}

// CreatedAt returns the creation time.
func (o *Order) CreatedAt() time.Time { return o.createdAt }

// UpdatedAt returns the last mutation time.
func (o *Order) UpdatedAt() time.Time { return o.updatedAt }

// Customer returns the customer the order belongs to.
func (o *Order) Customer() Customer { return o.customer }

// SetCustomer replaces the order's customer.
func (o *Order) SetCustomer(c Customer) { o.customer = c }

// BillingAddress returns the billing address.
func (o *Order) BillingAddress() Address { return o.billingAddress }

// SetBillingAddress replaces the billing address.
func (o *Order) SetBillingAddress(a Address) { o.billingAddress = a }

// ShippingAddress returns the shipping address.
func (o *Order) ShippingAddress() Address { return o.shippingAddress }

// SetShippingAddress replaces the shipping address.
func (o *Order) SetShippingAddress(a Address) { o.shippingAddress = a }

// Payment returns the payment method identity.
func (o *Order) Payment() string { return o.paymentID }

// SetPayment sets the payment method identity.
func (o *Order) SetPayment(id string) { o.paymentID = id }

// CustomerNote returns the customer's note on the order.
func (o *Order) CustomerNote() string { return o.customerNote }

// SetCustomerNote sets the customer's note on the order.
func (o *Order) SetCustomerNote(note string) { o.customerNote = note }

// Discount returns the order-level discount.
func (o *Order) Discount() float64 { return o.discount }

// SetDiscount sets the order-level discount and adjusts the total by the
// difference.
func (o *Order) SetDiscount(discount float64) {
	o.total += o.discount - discount
	o.discount = discount
	o.touch()
}

// Items returns the items in insertion order.
func (o *Order) Items() []*Item {
	out := make([]*Item, 0, len(o.itemOrder))
	for _, id := range o.itemOrder {
		out = append(out, o.items[id])
	}
	return out
}

// Item returns the item with the given id.
func (o *Order) Item(id string) (*Item, error) {
	item, ok := o.items[id]
	if !ok {
		return nil, NewNotFound("item", id)
	}
	return item, nil
}

// AddItem adds the item under its id and applies its cost and taxes to the
// running totals. Re-adding an id silently replaces the previous item; its
// contribution is reverted first so totals stay consistent.
func (o *Order) AddItem(item *Item) {
	if old, ok := o.items[item.ID]; ok {
		o.revertItem(old)
	} else {
		o.itemOrder = append(o.itemOrder, item.ID)
	}
	o.items[item.ID] = item
	o.applyItem(item)
	o.touch()
}

// RemoveItem reverts the item's contribution to the totals, removes it and
// returns it so callers can reuse it.
func (o *Order) RemoveItem(id string) (*Item, error) {
	item, ok := o.items[id]
	if !ok {
		return nil, NewNotFound("item", id)
	}
	o.revertItem(item)
	delete(o.items, id)
	for idx, itemID := range o.itemOrder {
		if itemID == id {
			o.itemOrder = append(o.itemOrder[:idx], o.itemOrder[idx+1:]...)
			break
		}
	}
	o.touch()
	return item, nil
}

func (o *Order) applyItem(item *Item) {
	o.productSubtotal += item.Cost()
	o.subtotal += item.Cost()
	o.total += item.Cost() + item.TotalTax()
	for class, tax := range item.Tax {
		o.tax[class] += tax * float64(item.Quantity)
	}
}

func (o *Order) revertItem(item *Item) {
	o.productSubtotal -= item.Cost()
	o.subtotal -= item.Cost()
	o.total -= item.Cost() + item.TotalTax()
	for class, tax := range item.Tax {
		o.tax[class] -= tax * float64(item.Quantity)
	}
}

// UpdateQuantity changes the quantity of the item with the given id,
// adjusting totals and tax buckets by the per-unit delta rather than
// recomputing. A quantity of zero or less removes the item. taxCalc supplies
// current per-unit tax amounts; when nil, the item's snapshot amounts are
// used.
func (o *Order) UpdateQuantity(id string, quantity int, taxCalc TaxCalculator) error {
	item, ok := o.items[id]
	if !ok {
		return NewNotFound("item", id)
	}
	if quantity <= 0 {
		_, err := o.RemoveItem(id)
		return err
	}

	diff := float64(quantity - item.Quantity)
	o.total += item.Price * diff
	o.subtotal += item.Price * diff
	o.productSubtotal += item.Price * diff
	for class := range item.Tax {
		perUnit := item.Tax[class]
		if taxCalc != nil && item.Product != nil {
			perUnit = taxCalc.Get(item.Product, class)
		}
		o.tax[class] += perUnit * diff
		o.total += perUnit * diff
	}
	item.Quantity = quantity
	o.touch()
	return nil
}

// RemoveAllItems detaches shipping and clears the item collection, zeroing
// every item-derived total and tax bucket. The discount is order-level and
// stays.
func (o *Order) RemoveAllItems() {
	o.RemoveShippingMethod()
	o.items = map[string]*Item{}
	o.itemOrder = nil
	o.productSubtotal = 0.0
	o.subtotal = 0.0
	o.total = 0.0
	for class := range o.tax {
		o.tax[class] = 0.0
	}
	o.touch()
}

// ShippingPrice returns the attached shipping cost.
func (o *Order) ShippingPrice() float64 { return o.shippingPrice }

// ShippingMethodRef returns the attached shipping method, or nil.
func (o *Order) ShippingMethodRef() ShippingMethod { return o.shippingMethod }

// SetShippingMethod attaches a shipping method, replacing any previous one,
// and applies its price and per-class shipping tax to the totals.
func (o *Order) SetShippingMethod(method ShippingMethod, taxService TaxService, customer Customer) {
	o.RemoveShippingMethod()

	o.shippingMethod = method
	o.shippingPrice = method.Calculate(o)
	o.subtotal += o.shippingPrice
	o.total += o.shippingPrice + taxService.CalculateShipping(method, o.shippingPrice, customer)
	for _, class := range method.TaxClasses() {
		o.shippingTax[class] = taxService.GetShipping(method, o.shippingPrice, class, customer)
	}
	o.touch()
}

// RemoveShippingMethod detaches the shipping method, reverting its price and
// shipping tax from the totals and zeroing the shipping tax buckets.
func (o *Order) RemoveShippingMethod() {
	o.subtotal -= o.shippingPrice
	o.total -= o.shippingPrice + o.TotalShippingTax()

	o.shippingMethod = nil
	o.shippingPrice = 0.0
	for class := range o.shippingTax {
		o.shippingTax[class] = 0.0
	}
	o.touch()
}

// HasShippingMethod reports whether the given method is the one attached.
func (o *Order) HasShippingMethod(method ShippingMethod) bool {
	if o.shippingMethod != nil {
		return o.shippingMethod.ID() == method.ID()
	}
	return false
}

// ProductSubtotal returns the item-only subtotal.
func (o *Order) ProductSubtotal() float64 { return o.productSubtotal }

// Subtotal returns the subtotal (items plus shipping price).
func (o *Order) Subtotal() float64 { return o.subtotal }

// Total returns the grand total.
func (o *Order) Total() float64 { return o.total }

// Tax returns a copy of the per-class tax buckets.
func (o *Order) Tax() map[string]float64 {
	return copyTax(o.tax)
}

// ShippingTax returns a copy of the per-class shipping tax buckets.
func (o *Order) ShippingTax() map[string]float64 {
	return copyTax(o.shippingTax)
}

// UpdateTaxes adds the provided per-class values to the tax buckets.
func (o *Order) UpdateTaxes(tax map[string]float64) {
	for class, value := range tax {
		o.tax[class] += value
	}
	o.touch()
}

// TotalTax returns the summed tax across all classes.
func (o *Order) TotalTax() float64 {
	return sumTax(o.tax)
}

// TotalShippingTax returns the summed shipping tax across all classes.
func (o *Order) TotalShippingTax() float64 {
	return sumTax(o.shippingTax)
}

// Status returns the current order status.
func (o *Order) Status() Status { return o.status }

// SetStatus sets the status directly, without hooks or notes. Use
// UpdateStatus for lifecycle transitions.
func (o *Order) SetStatus(status Status) { o.status = status }

// UpdateStatus moves the order to a new status. A self-transition is a
// no-op: no note is added and no hook fires. On an actual change the
// sequence is: before hook for the new status, hook for the exact (old, new)
// pair, audit note, status commit, after hook for the new status. A hook
// error aborts the sequence there; earlier steps stay applied, so a failed
// after hook leaves the note and status in place while a failed transition
// hook leaves neither.
func (o *Order) UpdateStatus(status Status, message string) error {
	if status == "" || status == o.status {
		return nil
	}

	old := o.status
	if err := o.hooks.fireBefore(status, o); err != nil {
		return err
	}
	if err := o.hooks.fireTransition(old, status, o); err != nil {
		return err
	}

	note := fmt.Sprintf("Order status changed from %s to %s.", old.Name(), status.Name())
	if message != "" {
		note = message + " " + note
	}
	o.AddNote(note, true)

	o.status = status
	o.touch()

	return o.hooks.fireAfter(status, o)
}

func copyTax(src map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(src))
	for class, value := range src {
		out[class] = value
	}
	return out
}

func sumTax(src map[string]float64) float64 {
	var total float64
	for _, value := range src {
		total += value
	}
	return total
}
