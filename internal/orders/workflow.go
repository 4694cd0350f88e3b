package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	kafkax "github.com/abcretailers/go-order-workflow/internal/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// How often a guarded stock decrement is retried after losing to a
// concurrent writer before the placement gives up.
const maxStockRetries = 3

// Engine runs the order workflow: validate, reconcile stock, persist, emit.
// One instance serves all requests; every invocation runs sequentially within
// its own request context.
type Engine struct {
	Store         Store
	OrderNotifier Publisher // order-notifications channel
	StockNotifier Publisher // stock-updates channel
	Quotes        QuoteCache
	Log           *zap.Logger
}

// PlaceOrder creates an order for an existing customer and product, decrements
// the product's stock, and emits the order-created and stock-changed messages.
//
// The order row is written before the stock decrement. The decrement itself is
// etag-guarded: when a concurrent placement wins the race the product is
// re-read and the decrement retried, and if stock no longer covers the
// quantity the freshly written order is withdrawn again. A store failure after
// the order is committed surfaces as PartialFailureError so the caller knows a
// mutation stands. Publish failures never fail the placement.
func (e *Engine) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (Order, error) {
	if req.CustomerID == "" {
		return Order{}, &ValidationError{Field: "customer_id", Reason: "required"}
	}
	if req.ProductID == "" {
		return Order{}, &ValidationError{Field: "product_id", Reason: "required"}
	}
	if req.Quantity < 1 {
		return Order{}, &ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}

	customer, err := e.Store.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Order{}, &NotFoundError{Kind: "customer", ID: req.CustomerID}
		}
		return Order{}, &PersistenceError{Op: "load customer", Err: err}
	}
	product, err := e.Store.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Order{}, &NotFoundError{Kind: "product", ID: req.ProductID}
		}
		return Order{}, &PersistenceError{Op: "load product", Err: err}
	}
	if req.Quantity > product.StockAvailable {
		return Order{}, &InsufficientStockError{
			ProductID: product.ID,
			Requested: req.Quantity,
			Available: product.StockAvailable,
		}
	}

	orderDate := req.OrderDate
	if orderDate.IsZero() {
		orderDate = time.Now().UTC()
	}
	status := req.Status
	if status == "" {
		status = StatusSubmitted
	}

	order := Order{
		ID:           uuid.NewString(),
		CustomerID:   customer.ID,
		CustomerName: customer.DisplayName(),
		ProductID:    product.ID,
		ProductName:  product.ProductName,
		OrderDate:    orderDate,
		Quantity:     req.Quantity,
		UnitPrice:    product.Price,
		TotalPrice:   product.Price.Mul(decimal.NewFromInt(int64(req.Quantity))),
		Status:       status,
	}

	if err := e.Store.AddOrder(ctx, order); err != nil {
		// Nothing has been mutated yet; safe to abort.
		return Order{}, &PersistenceError{Op: "persist order", Err: err}
	}

	previousStock, err := e.reserveStock(ctx, product, req.Quantity)
	if err != nil {
		var insufficient *InsufficientStockError
		if errors.As(err, &insufficient) || errors.Is(err, ErrConflict) {
			// No stock was taken; withdraw the order written above.
			if delErr := e.Store.DeleteOrder(ctx, order.ID); delErr != nil && !errors.Is(delErr, ErrNotFound) {
				return Order{}, &PartialFailureError{OrderID: order.ID, ProductID: product.ID, Err: delErr}
			}
			if insufficient != nil {
				return Order{}, err
			}
			return Order{}, &PersistenceError{Op: "reserve stock", Err: err}
		}
		return Order{}, &PartialFailureError{OrderID: order.ID, ProductID: product.ID, Err: err}
	}

	if e.Quotes != nil {
		e.Quotes.Invalidate(ctx, product.ID)
	}

	e.publishOrderCreated(order)
	e.publishStockChanged(product, previousStock, previousStock-req.Quantity)

	e.Log.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("customer_id", order.CustomerID),
		zap.String("product_id", order.ProductID),
		zap.Int("quantity", order.Quantity),
		zap.String("total_price", order.TotalPrice.String()),
	)
	return order, nil
}

// reserveStock decrements StockAvailable by qty via a guarded update,
// re-reading and retrying after each lost race. Returns the stock value the
// winning decrement started from.
func (e *Engine) reserveStock(ctx context.Context, product Product, qty int) (int, error) {
	for attempt := 0; ; attempt++ {
		updated := product
		updated.StockAvailable = product.StockAvailable - qty

		err := e.Store.UpdateProductGuarded(ctx, updated)
		if err == nil {
			return product.StockAvailable, nil
		}
		if !errors.Is(err, ErrConflict) || attempt >= maxStockRetries {
			return 0, err
		}

		product, err = e.Store.GetProduct(ctx, product.ID)
		if err != nil {
			return 0, err
		}
		if qty > product.StockAvailable {
			return 0, &InsufficientStockError{
				ProductID: product.ID,
				Requested: qty,
				Available: product.StockAvailable,
			}
		}
	}
}

// UpdateOrderStatus replaces the order's status with newStatus. Any string is
// accepted; there is no transition graph. Emits a status-changed message and
// returns a human-readable confirmation.
func (e *Engine) UpdateOrderStatus(ctx context.Context, orderID, newStatus string) (string, error) {
	order, err := e.Store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", &NotFoundError{Kind: "order", ID: orderID}
		}
		return "", &PersistenceError{Op: "load order", Err: err}
	}

	previous := order.Status
	order.Status = newStatus
	if err := e.Store.UpdateOrder(ctx, order); err != nil {
		return "", &PersistenceError{Op: "update order status", Err: err}
	}

	e.publishStatusChanged(order, previous, newStatus)
	return fmt.Sprintf("Order status updated to %s", newStatus), nil
}

// ReplaceOrder overwrites an existing order wholesale. Fields are taken as
// given; nothing is re-checked against stock.
func (e *Engine) ReplaceOrder(ctx context.Context, o Order) error {
	if o.ID == "" {
		return &ValidationError{Field: "OrderId", Reason: "required"}
	}
	if err := e.Store.UpdateOrder(ctx, o); err != nil {
		return &PersistenceError{Op: "replace order", Err: err}
	}
	return nil
}

// DeleteOrder removes the order record. A missing id comes back as a
// NotFoundError the caller can treat as recoverable.
func (e *Engine) DeleteOrder(ctx context.Context, orderID string) error {
	if err := e.Store.DeleteOrder(ctx, orderID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &NotFoundError{Kind: "order", ID: orderID}
		}
		return &PersistenceError{Op: "delete order", Err: err}
	}
	return nil
}

// GetProductQuote returns name, price and current stock for interactive
// pre-validation. A missing product is reported via ok=false, not an error.
func (e *Engine) GetProductQuote(ctx context.Context, productID string) (ProductQuote, bool, error) {
	if e.Quotes != nil {
		if q, ok := e.Quotes.Get(ctx, productID); ok {
			return q, true, nil
		}
	}

	p, err := e.Store.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ProductQuote{}, false, nil
		}
		return ProductQuote{}, false, &PersistenceError{Op: "load product", Err: err}
	}

	q := ProductQuote{ProductID: p.ID, ProductName: p.ProductName, Price: p.Price, Stock: p.StockAvailable}
	if e.Quotes != nil {
		e.Quotes.Set(ctx, q)
	}
	return q, true, nil
}

func (e *Engine) GetOrder(ctx context.Context, orderID string) (Order, error) {
	o, err := e.Store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Order{}, &NotFoundError{Kind: "order", ID: orderID}
		}
		return Order{}, &PersistenceError{Op: "load order", Err: err}
	}
	return o, nil
}

func (e *Engine) ListOrders(ctx context.Context) ([]Order, error) {
	return e.Store.ListOrders(ctx)
}

func (e *Engine) ListCustomers(ctx context.Context) ([]Customer, error) {
	return e.Store.ListCustomers(ctx)
}

func (e *Engine) ListProducts(ctx context.Context) ([]Product, error) {
	return e.Store.ListProducts(ctx)
}

func (e *Engine) publishOrderCreated(o Order) {
	msg := OrderCreatedMessage{
		OrderID:      o.ID,
		CustomerID:   o.CustomerID,
		CustomerName: o.CustomerName,
		ProductName:  o.ProductName,
		Quantity:     o.Quantity,
		TotalPrice:   o.TotalPrice,
		OrderDate:    o.OrderDate,
		Status:       o.Status,
	}
	e.OrderNotifier.Publish(PartitionKey(o.ID), kafkax.MustMarshal(msg),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderCreated)},
	)
}

func (e *Engine) publishStockChanged(p Product, previous, current int) {
	msg := StockUpdateMessage{
		ProductID:     p.ID,
		ProductName:   p.ProductName,
		PreviousStock: previous,
		NewStock:      current,
		UpdatedBy:     "Order System",
		UpdateDate:    time.Now().UTC(),
	}
	e.StockNotifier.Publish(PartitionKey(p.ID), kafkax.MustMarshal(msg),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventStockChanged)},
	)
}

func (e *Engine) publishStatusChanged(o Order, previous, current string) {
	msg := StatusChangeMessage{
		OrderID:        o.ID,
		CustomerID:     o.CustomerID,
		CustomerName:   o.CustomerName,
		ProductName:    o.ProductName,
		PreviousStatus: previous,
		NewStatus:      current,
		UpdatedDate:    time.Now().UTC(),
		UpdatedBy:      "System",
	}
	e.OrderNotifier.Publish(PartitionKey(o.ID), kafkax.MustMarshal(msg),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventStatusChanged)},
	)
}
