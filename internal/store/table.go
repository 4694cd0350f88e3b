// Package store is the entity store client: typed records keyed by
// (partition key, row key) in a single JSONB table, one etag per record.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/abcretailers/go-order-workflow/internal/orders"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Table struct{ DB *pgxpool.Pool }

const schema = `
CREATE TABLE IF NOT EXISTS entities (
	entity_kind   text        NOT NULL,
	partition_key text        NOT NULL,
	row_key       text        NOT NULL,
	etag          text        NOT NULL,
	body          jsonb       NOT NULL,
	updated_at    timestamptz NOT NULL DEFAULT now(),
	PRIMARY KEY (entity_kind, partition_key, row_key)
)`

func (t *Table) Init(ctx context.Context) error {
	_, err := t.DB.Exec(ctx, schema)
	return err
}

// Get loads one record and its current etag.
func Get[T any](ctx context.Context, t *Table, kind, pk, rk string) (T, string, error) {
	var (
		v    T
		body []byte
		etag string
	)
	err := t.DB.QueryRow(ctx, `
		SELECT body, etag FROM entities
		WHERE entity_kind=$1 AND partition_key=$2 AND row_key=$3`,
		kind, pk, rk).Scan(&body, &etag)
	if errors.Is(err, pgx.ErrNoRows) {
		return v, "", orders.ErrNotFound
	}
	if err != nil {
		return v, "", err
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return v, "", err
	}
	return v, etag, nil
}

// GetAll loads every record of a kind. Each returns the decoded value plus
// its etag, in row-key order.
func GetAll[T any](ctx context.Context, t *Table, kind string) ([]T, []string, error) {
	rows, err := t.DB.Query(ctx, `
		SELECT body, etag FROM entities
		WHERE entity_kind=$1 ORDER BY row_key`, kind)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var (
		out   []T
		etags []string
	)
	for rows.Next() {
		var (
			body []byte
			etag string
		)
		if err := rows.Scan(&body, &etag); err != nil {
			return nil, nil, err
		}
		var v T
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, nil, err
		}
		out = append(out, v)
		etags = append(etags, etag)
	}
	return out, etags, rows.Err()
}

func (t *Table) Add(ctx context.Context, kind, pk, rk string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = t.DB.Exec(ctx, `
		INSERT INTO entities(entity_kind, partition_key, row_key, etag, body)
		VALUES ($1,$2,$3,$4,$5)`,
		kind, pk, rk, uuid.NewString(), body)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return orders.ErrAlreadyExists
	}
	return err
}

// Update replaces the record body unconditionally; fails if the identity is
// absent.
func (t *Table) Update(ctx context.Context, kind, pk, rk string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ct, err := t.DB.Exec(ctx, `
		UPDATE entities SET body=$4, etag=$5, updated_at=now()
		WHERE entity_kind=$1 AND partition_key=$2 AND row_key=$3`,
		kind, pk, rk, body, uuid.NewString())
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return orders.ErrNotFound
	}
	return nil
}

// UpdateGuarded replaces the record body only when etag still matches the one
// the record was read with, so two racing writers cannot both win.
func (t *Table) UpdateGuarded(ctx context.Context, kind, pk, rk, etag string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ct, err := t.DB.Exec(ctx, `
		UPDATE entities SET body=$4, etag=$5, updated_at=now()
		WHERE entity_kind=$1 AND partition_key=$2 AND row_key=$3 AND etag=$6`,
		kind, pk, rk, body, uuid.NewString(), etag)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	var n int
	err = t.DB.QueryRow(ctx, `
		SELECT 1 FROM entities
		WHERE entity_kind=$1 AND partition_key=$2 AND row_key=$3`,
		kind, pk, rk).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.ErrNotFound
	}
	if err != nil {
		return err
	}
	return orders.ErrConflict
}

func (t *Table) Delete(ctx context.Context, kind, pk, rk string) error {
	ct, err := t.DB.Exec(ctx, `
		DELETE FROM entities
		WHERE entity_kind=$1 AND partition_key=$2 AND row_key=$3`,
		kind, pk, rk)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return orders.ErrNotFound
	}
	return nil
}
