package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/automartines/autoonline/internal/domain/listing"
)

type ListingsRepo struct {
	mu     sync.RWMutex
	items  map[int64]listing.Listing
	nextID int64
	now    func() time.Time
}

func NewListingsRepo() *ListingsRepo {
	return &ListingsRepo{
		items: make(map[int64]listing.Listing),
		now:   time.Now,
	}
}

func (r *ListingsRepo) Create(_ context.Context, l listing.Listing) (listing.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := r.now()
	l = l.Clone()
	l.ID = r.nextID
	l.CreatedAt = now
	l.UpdatedAt = now
	r.items[l.ID] = l

	return l.Clone(), nil
}

func (r *ListingsRepo) GetByID(_ context.Context, id int64) (listing.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.items[id]
	if !ok {
		return listing.Listing{}, listing.ErrNotFound
	}
	return l.Clone(), nil
}

func (r *ListingsRepo) Update(_ context.Context, l listing.Listing) (listing.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.items[l.ID]
	if !ok {
		return listing.Listing{}, listing.ErrNotFound
	}
	l = l.Clone()
	l.UserID = prev.UserID
	l.CreatedAt = prev.CreatedAt
	l.UpdatedAt = r.now()
	r.items[l.ID] = l

	return l.Clone(), nil
}

func (r *ListingsRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return listing.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// List orders newest first, ties broken by id.
func (r *ListingsRepo) List(_ context.Context, f listing.ListFilter) ([]listing.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]listing.Listing, 0, len(r.items))
	for _, l := range r.items {
		if f.Matches(l) {
			out = append(out, l.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
