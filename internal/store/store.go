package store

import (
	"context"

	"github.com/abcretailers/go-order-workflow/internal/orders"
)

// Records keep their kind as partition key, id as row key, the layout the
// upstream retail system used.

func (t *Table) GetCustomer(ctx context.Context, id string) (orders.Customer, error) {
	c, etag, err := Get[orders.Customer](ctx, t, orders.KindCustomer, orders.KindCustomer, id)
	if err != nil {
		return orders.Customer{}, err
	}
	c.ETag = etag
	return c, nil
}

func (t *Table) ListCustomers(ctx context.Context) ([]orders.Customer, error) {
	cs, etags, err := GetAll[orders.Customer](ctx, t, orders.KindCustomer)
	if err != nil {
		return nil, err
	}
	for i := range cs {
		cs[i].ETag = etags[i]
	}
	return cs, nil
}

func (t *Table) GetProduct(ctx context.Context, id string) (orders.Product, error) {
	p, etag, err := Get[orders.Product](ctx, t, orders.KindProduct, orders.KindProduct, id)
	if err != nil {
		return orders.Product{}, err
	}
	p.ETag = etag
	return p, nil
}

func (t *Table) ListProducts(ctx context.Context) ([]orders.Product, error) {
	ps, etags, err := GetAll[orders.Product](ctx, t, orders.KindProduct)
	if err != nil {
		return nil, err
	}
	for i := range ps {
		ps[i].ETag = etags[i]
	}
	return ps, nil
}

func (t *Table) UpdateProductGuarded(ctx context.Context, p orders.Product) error {
	return t.UpdateGuarded(ctx, orders.KindProduct, orders.KindProduct, p.ID, p.ETag, p)
}

func (t *Table) AddOrder(ctx context.Context, o orders.Order) error {
	return t.Add(ctx, orders.KindOrder, orders.KindOrder, o.ID, o)
}

func (t *Table) GetOrder(ctx context.Context, id string) (orders.Order, error) {
	o, etag, err := Get[orders.Order](ctx, t, orders.KindOrder, orders.KindOrder, id)
	if err != nil {
		return orders.Order{}, err
	}
	o.ETag = etag
	return o, nil
}

func (t *Table) ListOrders(ctx context.Context) ([]orders.Order, error) {
	os, etags, err := GetAll[orders.Order](ctx, t, orders.KindOrder)
	if err != nil {
		return nil, err
	}
	for i := range os {
		os[i].ETag = etags[i]
	}
	return os, nil
}

func (t *Table) UpdateOrder(ctx context.Context, o orders.Order) error {
	return t.Update(ctx, orders.KindOrder, orders.KindOrder, o.ID, o)
}

func (t *Table) DeleteOrder(ctx context.Context, id string) error {
	return t.Delete(ctx, orders.KindOrder, orders.KindOrder, id)
}
