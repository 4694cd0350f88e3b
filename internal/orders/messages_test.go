package orders_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/abcretailers/go-order-workflow/internal/orders"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The downstream queue consumers parse these payloads by field name; the
// names below are frozen.

func jsonKeys(t *testing.T, v any) map[string]json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

func TestOrderCreatedMessageFieldNames(t *testing.T) {
	m := jsonKeys(t, orders.OrderCreatedMessage{
		OrderID:    "o1",
		TotalPrice: decimal.RequireFromString("59.97"),
		OrderDate:  time.Now().UTC(),
	})
	for _, k := range []string{
		"OrderId", "CustomerId", "CustomerName", "ProductName",
		"Quantity", "TotalPrice", "OrderDate", "Status",
	} {
		assert.Contains(t, m, k)
	}
	assert.Len(t, m, 8)
	// prices stay plain JSON numbers on the wire
	assert.Equal(t, "59.97", string(m["TotalPrice"]))
}

func TestStockUpdateMessageFieldNames(t *testing.T) {
	m := jsonKeys(t, orders.StockUpdateMessage{UpdateDate: time.Now().UTC()})
	for _, k := range []string{
		"ProductId", "ProductName", "PreviousStock", "NewStock",
		"UpdatedBy", "UpdateDate",
	} {
		assert.Contains(t, m, k)
	}
	assert.Len(t, m, 6)
}

func TestStatusChangeMessageFieldNames(t *testing.T) {
	m := jsonKeys(t, orders.StatusChangeMessage{UpdatedDate: time.Now().UTC()})
	for _, k := range []string{
		"OrderId", "CustomerId", "CustomerName", "ProductName",
		"PreviousStatus", "NewStatus", "UpdatedDate", "UpdatedBy",
	} {
		assert.Contains(t, m, k)
	}
	assert.Len(t, m, 8)
}

func TestChannelNames(t *testing.T) {
	assert.Equal(t, "order-notifications", orders.ChannelOrderNotifications)
	assert.Equal(t, "stock-updates", orders.ChannelStockUpdates)
}
