// Package store holds the persistence side of the sample shop domain used by
// the tests and the plan command.
package store

import (
	"time"
)

// Customer is the user placing orders.
type Customer struct {
	ID       int64    `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Address  *Address `json:"address"`
	Orders   []*Order `json:"orders"`
	IsActive bool     `json:"is_active"`

	password string
}

// Password exposes the unexported hash to mappers through a getter.
func (c *Customer) Password() string {
	return c.password
}

func (c *Customer) SetPassword(password string) {
	c.password = password
}

// Address is a postal address.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// Order is a transaction made by a customer. Orders point back at their
// customer, so customer graphs are cyclic.
type Order struct {
	ID         int64       `json:"id"`
	Status     OrderStatus `json:"status"`
	TotalCents int64       `json:"total_cents"`
	Currency   string      `json:"currency"`
	Items      []OrderItem `json:"items"`
	OrderedAt  time.Time   `json:"ordered_at"`
	Customer   *Customer   `json:"customer"`
	Tags       []string    `json:"tags"`
	Delivery   Delivery    `json:"delivery"`
}

// OrderItem is a product line within an order.
type OrderItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// Catalog is a category tree keyed by category name. Leaf categories map
// to an empty Catalog.
type Catalog map[string]Catalog

// OrderStatus is a custom type for type-safe status handling.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// Delivery is how an order reaches the customer.
type Delivery interface {
	Carrier() string
}

// Courier delivers to the door.
type Courier struct {
	Company string `json:"company"`
	Phone   string `json:"phone"`
}

func (c *Courier) Carrier() string { return c.Company }

// Pickup is collected by the customer at a point.
type Pickup struct {
	Point string `json:"point"`
}

func (p *Pickup) Carrier() string { return "pickup" }
