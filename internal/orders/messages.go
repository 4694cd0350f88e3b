package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Channel names and payload field names are a compatibility contract with the
// queue consumers that predate this service; change neither.
const (
	ChannelOrderNotifications = "order-notifications"
	ChannelStockUpdates       = "stock-updates"
)

const (
	EventOrderCreated  = "OrderCreated"
	EventStockChanged  = "StockChanged"
	EventStatusChanged = "StatusChanged"
)

func init() {
	// Prices were plain JSON numbers before decimals came in; keep them so.
	decimal.MarshalJSONWithoutQuotes = true
}

type OrderCreatedMessage struct {
	OrderID      string          `json:"OrderId"`
	CustomerID   string          `json:"CustomerId"`
	CustomerName string          `json:"CustomerName"`
	ProductName  string          `json:"ProductName"`
	Quantity     int             `json:"Quantity"`
	TotalPrice   decimal.Decimal `json:"TotalPrice"`
	OrderDate    time.Time       `json:"OrderDate"`
	Status       string          `json:"Status"`
}

type StockUpdateMessage struct {
	ProductID     string    `json:"ProductId"`
	ProductName   string    `json:"ProductName"`
	PreviousStock int       `json:"PreviousStock"`
	NewStock      int       `json:"NewStock"`
	UpdatedBy     string    `json:"UpdatedBy"`
	UpdateDate    time.Time `json:"UpdateDate"`
}

type StatusChangeMessage struct {
	OrderID        string    `json:"OrderId"`
	CustomerID     string    `json:"CustomerId"`
	CustomerName   string    `json:"CustomerName"`
	ProductName    string    `json:"ProductName"`
	PreviousStatus string    `json:"PreviousStatus"`
	NewStatus      string    `json:"NewStatus"`
	UpdatedDate    time.Time `json:"UpdatedDate"`
	UpdatedBy      string    `json:"UpdatedBy"`
}

// PartitionKey keeps all events for one record on one partition so consumers
// see them in order.
func PartitionKey(id string) []byte { return []byte(id) }
