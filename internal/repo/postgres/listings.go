package postgres

import (
	"context"
	"errors"

	"github.com/automartines/autoonline/internal/domain/listing"
	"github.com/automartines/autoonline/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	insertListing = insertListingSQL()
	updateListing = updateListingSQL()
)

type ListingsRepo struct {
	pool *pgxpool.Pool
	observer
}

func NewListingsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ListingsRepo {
	return &ListingsRepo{pool: pool, observer: observer{prom: prom}}
}

func (r *ListingsRepo) Create(ctx context.Context, l listing.Listing) (listing.Listing, error) {
	l.Normalize()
	args := append(writeArgs(&l), l.UserID)

	err := r.observe("listings.create", func() error {
		return r.pool.QueryRow(ctx, insertListing, args...).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	})

	if err != nil {
		return listing.Listing{}, err
	}
	return l, nil
}

func (r *ListingsRepo) GetByID(ctx context.Context, id int64) (listing.Listing, error) {
	var l listing.Listing

	err := r.observe("listings.get_by_id", func() error {
		return r.pool.QueryRow(ctx, selectListing+"\nWHERE l.id = $1", id).Scan(scanDest(&l)...)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return listing.Listing{}, listing.ErrNotFound
		}
		return listing.Listing{}, err
	}

	l.Normalize()
	return l, nil
}

// Update overwrites every writable column of the row; ownership is kept.
func (r *ListingsRepo) Update(ctx context.Context, l listing.Listing) (listing.Listing, error) {
	l.Normalize()
	args := append([]any{l.ID}, writeArgs(&l)...)

	err := r.observe("listings.update", func() error {
		return r.pool.QueryRow(ctx, updateListing, args...).Scan(&l.UserID, &l.CreatedAt, &l.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return listing.Listing{}, listing.ErrNotFound
		}
		return listing.Listing{}, err
	}
	return l, nil
}

func (r *ListingsRepo) Delete(ctx context.Context, id int64) error {
	var affected int64

	err := r.observe("listings.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})

	if err != nil {
		return err
	}
	if affected == 0 {
		return listing.ErrNotFound
	}
	return nil
}

func (r *ListingsRepo) List(ctx context.Context, f listing.ListFilter) ([]listing.Listing, error) {
	query, args := buildListQuery(f)

	var rows pgx.Rows
	var err error

	err = r.observe("listings.list", func() error {
		rows, err = r.pool.Query(ctx, query, args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]listing.Listing, 0)
	for rows.Next() {
		var l listing.Listing
		if err := rows.Scan(scanDest(&l)...); err != nil {
			return nil, err
		}
		l.Normalize()
		out = append(out, l)
	}

	if err := rows.Err(); err != nil {
		if r.prom != nil {
			r.prom.DbErrorsTotal.WithLabelValues("listings.list", "rows_err").Inc()
		}
		return nil, err
	}
	return out, nil
}
