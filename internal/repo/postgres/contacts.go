package postgres

import (
	"context"

	"github.com/automartines/autoonline/internal/domain/contact"
	"github.com/automartines/autoonline/internal/observability"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ContactsRepo struct {
	pool *pgxpool.Pool
	observer
}

func NewContactsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ContactsRepo {
	return &ContactsRepo{pool: pool, observer: observer{prom: prom}}
}

func (r *ContactsRepo) Create(ctx context.Context, in contact.Inquiry) (contact.Inquiry, error) {
	err := r.observe("contacts.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO contacts (from_user_id, to_user_id, listing_id, message)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, created_at`,
			in.FromUserID, in.ToUserID, in.ListingID, in.Message,
		).Scan(&in.ID, &in.CreatedAt)
	})

	if err != nil {
		if isForeignKeyViolation(err) {
			return contact.Inquiry{}, contact.ErrUnknownTarget
		}
		return contact.Inquiry{}, err
	}
	return in, nil
}
