package redisx

import "time"

const (
	// Product quote for the order form: quote:product:{product_id} -> JSON
	KeyProductQuote = "quote:product:%s"
)

var (
	TTLQuote = 5 * time.Minute
)
