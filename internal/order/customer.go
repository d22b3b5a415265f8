package order

// Customer identifies the buying party for tax calculation and persistence.
type Customer struct {
	ID    string
	Email string
	Name  string
}

// GuestID marks the anonymous placeholder customer every order starts with.
const GuestID = "guest"

// Guest returns the anonymous customer placeholder.
func Guest() Customer {
	return Customer{ID: GuestID, Name: "Guest"}
}

// IsGuest reports whether the customer is the anonymous placeholder.
func (c Customer) IsGuest() bool {
	return c.ID == GuestID || c.ID == ""
}

// Address is a billing or shipping address value object.
type Address struct {
	FirstName string `json:"first_name" dynamodbav:"first_name"`
	LastName  string `json:"last_name" dynamodbav:"last_name"`
	Street    string `json:"street" dynamodbav:"street"`
	City      string `json:"city" dynamodbav:"city"`
	PostCode  string `json:"post_code" dynamodbav:"post_code"`
	Country   string `json:"country" dynamodbav:"country"`
	Phone     string `json:"phone,omitempty" dynamodbav:"phone,omitempty"`
}
