package orders

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// Store is the slice of the entity store the workflow needs. Get/List return
// records with their ETag set; UpdateProductGuarded performs a full replace
// conditional on the ETag the product was read with and fails with
// ErrConflict when it lost a race.
type Store interface {
	GetCustomer(ctx context.Context, id string) (Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)

	GetProduct(ctx context.Context, id string) (Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	UpdateProductGuarded(ctx context.Context, p Product) error

	AddOrder(ctx context.Context, o Order) error
	GetOrder(ctx context.Context, id string) (Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	UpdateOrder(ctx context.Context, o Order) error
	DeleteOrder(ctx context.Context, id string) error
}

// Publisher is a fire-and-forget channel: Publish enqueues and returns, the
// producer owns delivery and logs failures. One Publisher per channel.
type Publisher interface {
	Publish(key, value []byte, headers ...kafka.Header)
}

// QuoteCache fronts GetProductQuote. All methods are best-effort: a miss or a
// cache error only costs a store read.
type QuoteCache interface {
	Get(ctx context.Context, productID string) (ProductQuote, bool)
	Set(ctx context.Context, q ProductQuote)
	Invalidate(ctx context.Context, productID string)
}
