package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/automartines/autoonline/internal/domain/user"
)

type UsersRepo struct {
	mu     sync.RWMutex
	items  map[int64]user.User
	nextID int64
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{items: make(map[int64]user.User)}
}

func (r *UsersRepo) Create(_ context.Context, nu user.NewUser) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := user.NormalizeEmail(nu.Email)
	for _, u := range r.items {
		if u.Email == email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	role := nu.Role
	if role == "" {
		role = user.RoleCustomer
	}
	now := time.Now().UTC()
	r.nextID++
	u := user.User{
		ID:           r.nextID,
		Email:        email,
		PasswordHash: nu.PasswordHash,
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		FullName:     user.JoinName(nu.FirstName, nu.LastName),
		Role:         role,
		Country:      user.DefaultCountry,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.items[u.ID] = u
	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = user.NormalizeEmail(email)
	for _, u := range r.items {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(_ context.Context, id int64) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) UpdateProfile(_ context.Context, id int64, p user.ProfileUpdate) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	u = p.Apply(u)
	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u
	return u, nil
}

// SetRole exists for tests that demote or promote a user mid-session.
func (r *UsersRepo) SetRole(id int64, role string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.items[id]; ok {
		u.Role = role
		r.items[id] = u
	}
}

func (r *UsersRepo) List(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *UsersRepo) exists(id int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[id]
	return ok
}
