package memory

import (
	"context"
	"sync"
	"time"

	"github.com/automartines/autoonline/internal/domain/contact"
)

// ContactsRepo keeps inquiries in memory. lookup reports whether a user
// exists; nil accepts any recipient.
type ContactsRepo struct {
	mu     sync.Mutex
	nextID int64
	items  []contact.Inquiry
	lookup func(id int64) bool
}

func NewContactsRepo(users *UsersRepo) *ContactsRepo {
	r := &ContactsRepo{}
	if users != nil {
		r.lookup = users.exists
	}
	return r
}

func (r *ContactsRepo) Create(_ context.Context, in contact.Inquiry) (contact.Inquiry, error) {
	if r.lookup != nil && !r.lookup(in.ToUserID) {
		return contact.Inquiry{}, contact.ErrUnknownTarget
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	in.ID = r.nextID
	in.CreatedAt = time.Now().UTC()
	r.items = append(r.items, in)
	return in, nil
}

func (r *ContactsRepo) All() []contact.Inquiry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]contact.Inquiry(nil), r.items...)
}
