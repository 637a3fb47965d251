package postgres

import (
	"context"
	"errors"

	"github.com/automartines/autoonline/internal/domain/user"
	"github.com/automartines/autoonline/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	observer
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, observer: observer{prom: prom}}
}

const userColumns = `id, email, password_hash, first_name, last_name, full_name, role,
	phone, address, city, postal_code, country, created_at, updated_at`

func scanUser(row pgx.Row, u *user.User) error {
	return row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.FullName,
		&u.Role,
		&u.Phone,
		&u.Address,
		&u.City,
		&u.PostalCode,
		&u.Country,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
}

func (r *UsersRepo) Create(ctx context.Context, nu user.NewUser) (user.User, error) {
	role := nu.Role
	if role == "" {
		role = user.RoleCustomer
	}

	var u user.User
	err := r.observe("users.create", func() error {
		return scanUser(r.pool.QueryRow(ctx,
			`INSERT INTO users (email, password_hash, first_name, last_name, full_name, role, country)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING `+userColumns,
			user.NormalizeEmail(nu.Email), nu.PasswordHash, nu.FirstName, nu.LastName,
			user.JoinName(nu.FirstName, nu.LastName), role, user.DefaultCountry,
		), &u)
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		return scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE lower(email) = $1`,
			user.NormalizeEmail(email),
		), &u)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

// GetByID backs the per-request role lookup in the auth middleware.
func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_id", func() error {
		return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id), &u)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

// UpdateProfile reads, merges and writes the row in one transaction.
func (r *UsersRepo) UpdateProfile(ctx context.Context, id int64, p user.ProfileUpdate) (user.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return user.User{}, err
	}
	defer tx.Rollback(ctx)

	var current user.User
	err = r.observe("users.lock_for_profile", func() error {
		return scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id), &current)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	next := p.Apply(current)

	var out user.User
	err = r.observe("users.update_profile", func() error {
		return scanUser(tx.QueryRow(ctx,
			`UPDATE users
			 SET first_name = $2, last_name = $3, full_name = $4, phone = $5,
			     address = $6, city = $7, postal_code = $8, country = $9, updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+userColumns,
			id, next.FirstName, next.LastName, next.FullName, next.Phone,
			next.Address, next.City, next.PostalCode, next.Country,
		), &out)
	})
	if err != nil {
		return user.User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return user.User{}, err
	}
	return out, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var rows pgx.Rows
	var err error

	err = r.observe("users.list", func() error {
		rows, err = r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
		return err
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]user.User, 0)
	for rows.Next() {
		var u user.User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
