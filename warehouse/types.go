// Package warehouse holds the fulfilment side of the sample shop domain: the
// targets the store entities are mapped to.
package warehouse

import (
	"errors"
)

// Customer is the fulfilment view of a store customer.
type Customer struct {
	ID       int64    `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Address  *Address `json:"address"`
	Orders   []*Order `json:"orders"         automap:",maxDepth=1"`
	Notes    string   `json:"notes"          automap:",groups=internal"`
	Password string   `automap:"-"`
}

// Address is a shipping address.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Order is an order being picked and shipped.
type Order struct {
	ID        uint      `json:"id"`
	Status    string    `json:"status"`
	Total     Money     `json:"total"`
	Items     []Item    `json:"items"`
	OrderedAt string    `json:"ordered_at" automap:",dateFormat=2006-01-02"`
	Customer  *Customer `json:"customer"`
	Parcel    Parcel    `json:"delivery"`

	tags []string
}

// AddTag appends a tag; mappers fill tags through it.
func (o *Order) AddTag(tag string) {
	o.tags = append(o.tags, tag)
}

func (o *Order) RemoveTag(tag string) {
	for i, t := range o.tags {
		if t == tag {
			o.tags = append(o.tags[:i], o.tags[i+1:]...)
			return
		}
	}
}

func (o *Order) Tags() []string {
	return o.tags
}

// Item is a line to pick.
type Item struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  uint16 `json:"quantity"`
}

// Money is an immutable amount: it is only built through NewMoney.
type Money struct {
	amount   int64
	currency string
}

// NewMoney builds an amount in minor units.
func NewMoney(amount int64, currency string) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency is required")
	}

	return Money{amount: amount, currency: currency}, nil
}

func (m Money) Amount() int64 {
	return m.amount
}

func (m Money) Currency() string {
	return m.currency
}

// Parcel is the shipping label of an order.
type Parcel interface {
	Label() string
}

// DoorParcel is delivered by a courier.
type DoorParcel struct {
	Company string `json:"company"`
	Phone   string `json:"phone"`
}

func (p *DoorParcel) Label() string { return "door:" + p.Company }

// PointParcel waits at a pickup point.
type PointParcel struct {
	Point string `json:"point"`
}

func (p *PointParcel) Label() string { return "point:" + p.Point }
