package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Records live in the entity store under a fixed partition per kind, with the
// record ID as row key. ETag is filled in by the store on reads and only
// matters for guarded updates; it never travels over the wire.

const (
	KindCustomer = "Customer"
	KindProduct  = "Product"
	KindOrder    = "Order"
)

type Customer struct {
	ID      string `json:"CustomerId"`
	Name    string `json:"Name"`
	Surname string `json:"Surname"`

	ETag string `json:"-"`
}

// DisplayName is the snapshot form captured onto orders at creation time.
func (c Customer) DisplayName() string { return c.Name + " " + c.Surname }

type Product struct {
	ID             string          `json:"ProductId"`
	ProductName    string          `json:"ProductName"`
	Price          decimal.Decimal `json:"Price"`
	StockAvailable int             `json:"StockAvailable"`

	ETag string `json:"-"`
}

type Order struct {
	ID           string          `json:"OrderId"`
	CustomerID   string          `json:"CustomerId"`
	CustomerName string          `json:"Username"`
	ProductID    string          `json:"ProductId"`
	ProductName  string          `json:"ProductName"`
	OrderDate    time.Time       `json:"OrderDate"`
	Quantity     int             `json:"Quantity"`
	UnitPrice    decimal.Decimal `json:"UnitPrice"`
	TotalPrice   decimal.Decimal `json:"TotalPrice"`
	Status       string          `json:"Status"`

	// Reference to an uploaded proof-of-payment blob; carried, never read here.
	PaymentProofFileName string `json:"PaymentProofFileName,omitempty"`

	ETag string `json:"-"`
}

// ProductQuote is the read-only view served to the order form before submit.
type ProductQuote struct {
	ProductID   string          `json:"ProductId"`
	ProductName string          `json:"ProductName"`
	Price       decimal.Decimal `json:"Price"`
	Stock       int             `json:"Stock"`
}

type PlaceOrderRequest struct {
	CustomerID string    `json:"customer_id"`
	ProductID  string    `json:"product_id"`
	Quantity   int       `json:"quantity"`
	OrderDate  time.Time `json:"order_date,omitzero"`
	Status     string    `json:"status,omitempty"`
}
