package redisx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abcretailers/go-order-workflow/internal/orders"
	"github.com/redis/go-redis/v9"
)

// QuoteCache is a best-effort read-through cache for product quotes. Errors
// are swallowed: a broken cache only costs a store read.
type QuoteCache struct {
	R *redis.Client
}

func (c *QuoteCache) Get(ctx context.Context, productID string) (orders.ProductQuote, bool) {
	s, err := c.R.Get(ctx, fmt.Sprintf(KeyProductQuote, productID)).Result()
	if err != nil {
		return orders.ProductQuote{}, false
	}
	var q orders.ProductQuote
	if err := json.Unmarshal([]byte(s), &q); err != nil {
		return orders.ProductQuote{}, false
	}
	return q, true
}

func (c *QuoteCache) Set(ctx context.Context, q orders.ProductQuote) {
	b, err := json.Marshal(q)
	if err != nil {
		return
	}
	_ = c.R.Set(ctx, fmt.Sprintf(KeyProductQuote, q.ProductID), b, TTLQuote).Err()
}

func (c *QuoteCache) Invalidate(ctx context.Context, productID string) {
	_ = c.R.Del(ctx, fmt.Sprintf(KeyProductQuote, productID)).Err()
}
