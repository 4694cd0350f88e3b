package httpx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/abcretailers/go-order-workflow/internal/httpx"
	"github.com/abcretailers/go-order-workflow/internal/orders"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memStore struct {
	mu        sync.Mutex
	customers map[string]orders.Customer
	products  map[string]orders.Product
	orders    map[string]orders.Order
	etagSeq   int
}

func newMemStore() *memStore {
	s := &memStore{
		customers: map[string]orders.Customer{},
		products:  map[string]orders.Product{},
		orders:    map[string]orders.Order{},
	}
	s.customers["C1"] = orders.Customer{ID: "C1", Name: "Jane", Surname: "Doe"}
	s.products["P1"] = orders.Product{
		ID:             "P1",
		ProductName:    "Mechanical Keyboard",
		Price:          decimal.RequireFromString("19.99"),
		StockAvailable: 10,
		ETag:           "1",
	}
	return s
}

func (s *memStore) GetCustomer(_ context.Context, id string) (orders.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return orders.Customer{}, orders.ErrNotFound
	}
	return c, nil
}

func (s *memStore) ListCustomers(context.Context) ([]orders.Customer, error) {
	return []orders.Customer{s.customers["C1"]}, nil
}

func (s *memStore) GetProduct(_ context.Context, id string) (orders.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return orders.Product{}, orders.ErrNotFound
	}
	return p, nil
}

func (s *memStore) ListProducts(context.Context) ([]orders.Product, error) {
	return []orders.Product{s.products["P1"]}, nil
}

func (s *memStore) UpdateProductGuarded(_ context.Context, p orders.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.products[p.ID]
	if !ok {
		return orders.ErrNotFound
	}
	if cur.ETag != p.ETag {
		return orders.ErrConflict
	}
	s.etagSeq++
	p.ETag = strconv.Itoa(s.etagSeq + 1)
	s.products[p.ID] = p
	return nil
}

func (s *memStore) AddOrder(_ context.Context, o orders.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
	return nil
}

func (s *memStore) GetOrder(_ context.Context, id string) (orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	return o, nil
}

func (s *memStore) ListOrders(context.Context) ([]orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]orders.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	return out, nil
}

func (s *memStore) UpdateOrder(_ context.Context, o orders.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.ID]; !ok {
		return orders.ErrNotFound
	}
	s.orders[o.ID] = o
	return nil
}

func (s *memStore) DeleteOrder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return orders.ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(_, _ []byte, _ ...kafkago.Header) {}

func newTestServer(t *testing.T) (*httptest.Server, *memStore) {
	t.Helper()
	s := newMemStore()
	engine := &orders.Engine{
		Store:         s,
		OrderNotifier: nopPublisher{},
		StockNotifier: nopPublisher{},
		Log:           zap.NewNop(),
	}
	router := httpx.NewRouter()
	h := &httpx.OrdersHandler{Engine: engine}
	h.Register(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, s
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var m map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	return m
}

func TestPlaceOrderEndpoint(t *testing.T) {
	srv, s := newTestServer(t)

	resp := postJSON(t, srv.URL+"/orders", map[string]any{
		"customer_id": "C1",
		"product_id":  "P1",
		"quantity":    3,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["OrderId"])
	assert.Equal(t, "Jane Doe", body["Username"])
	assert.Equal(t, "Mechanical Keyboard", body["ProductName"])
	assert.Equal(t, float64(3), body["Quantity"])
	assert.Equal(t, float64(59.97), body["TotalPrice"])
	assert.Equal(t, "Submitted", body["Status"])

	assert.Equal(t, 7, s.products["P1"].StockAvailable)
}

func TestPlaceOrderEndpointInsufficientStock(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/orders", map[string]any{
		"customer_id": "C1",
		"product_id":  "P1",
		"quantity":    11,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(10), body["available"])
}

func TestPlaceOrderEndpointValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/orders", map[string]any{
		"customer_id": "C1",
		"product_id":  "P1",
		"quantity":    0,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/orders", map[string]any{
		"customer_id": "ghost",
		"product_id":  "P1",
		"quantity":    1,
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestProductQuoteEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/products/P1/quote")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(19.99), body["price"])
	assert.Equal(t, float64(10), body["stock"])
	assert.Equal(t, "Mechanical Keyboard", body["productName"])

	// legacy contract: a miss is a 200 with success=false
	resp, err = http.Get(srv.URL + "/products/ghost/quote")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Product not found", body["message"])
}

func TestUpdateStatusEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/orders", map[string]any{
		"customer_id": "C1", "product_id": "P1", "quantity": 1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := decodeBody(t, resp)["OrderId"].(string)

	resp = postJSON(t, srv.URL+"/orders/"+orderID+"/status", map[string]any{"status": "Shipped"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Order status updated to Shipped", body["message"])

	resp = postJSON(t, srv.URL+"/orders/ghost/status", map[string]any{"status": "Shipped"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Order not found", body["message"])
}

func TestDeleteOrderEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/orders", map[string]any{
		"customer_id": "C1", "product_id": "P1", "quantity": 1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := decodeBody(t, resp)["OrderId"].(string)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/orders/"+orderID, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
