package listings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/automartines/autoonline/internal/domain/listing"
	"github.com/automartines/autoonline/internal/observability"
	"github.com/automartines/autoonline/internal/storage/images"
)

// Repository is the listing store the service needs. Update writes the
// whole row; there is no version check.
type Repository interface {
	Create(ctx context.Context, l listing.Listing) (listing.Listing, error)
	GetByID(ctx context.Context, id int64) (listing.Listing, error)
	Update(ctx context.Context, l listing.Listing) (listing.Listing, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f listing.ListFilter) ([]listing.Listing, error)
}

type Service struct {
	repo   Repository
	images images.Store
	policy images.Policy
	log    *slog.Logger
	prom   *observability.Prom
}

func NewService(repo Repository, store images.Store, policy images.Policy, log *slog.Logger, prom *observability.Prom) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, images: store, policy: policy, log: log, prom: prom}
}

func (s *Service) Get(ctx context.Context, id int64) (listing.Listing, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f listing.ListFilter) ([]listing.Listing, error) {
	return s.repo.List(ctx, f)
}

// ListByUser returns every listing of userID, sold ones included.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]listing.Listing, error) {
	return s.repo.List(ctx, listing.ListFilter{UserID: &userID, IncludeSold: true})
}

// Create stores the uploads and then inserts the row owned by the caller.
// A failed insert leaves the stored files behind for the offline prune.
func (s *Service) Create(ctx context.Context, actor listing.Actor, p listing.Patch, uploads []images.Upload) (created listing.Listing, err error) {
	defer func() { s.prom.ObserveListingWrite("create", err) }()

	if err := s.checkUploads(uploads); err != nil {
		return listing.Listing{}, err
	}

	draft, err := p.Draft(actor.UserID)
	if err != nil {
		return listing.Listing{}, err
	}

	refs, err := s.save(ctx, uploads)
	if err != nil {
		return listing.Listing{}, err
	}
	draft.Images = append(draft.Images, refs...)

	created, err = s.repo.Create(ctx, draft)
	if err != nil {
		return listing.Listing{}, fmt.Errorf("insert listing: %w", err)
	}
	return created, nil
}

// Update applies a sparse patch and reconciles the image list.
func (s *Service) Update(ctx context.Context, actor listing.Actor, id int64, p listing.Patch, uploads []images.Upload) (updated listing.Listing, err error) {
	defer func() { s.prom.ObserveListingWrite("update", err) }()

	current, err := s.authorize(ctx, actor, id)
	if err != nil {
		return listing.Listing{}, err
	}
	if err := s.checkUploads(uploads); err != nil {
		return listing.Listing{}, err
	}

	next := current.Clone()
	if err := p.ApplyTo(&next); err != nil {
		return listing.Listing{}, err
	}

	changes := p.ImageChanges()
	base := changes.BaseSet(current.Images)

	// requested deletions are honored even when the ref is still in base
	for _, ref := range changes.Delete {
		s.removeImage(ctx, id, ref)
	}

	refs, err := s.save(ctx, uploads)
	if err != nil {
		return listing.Listing{}, err
	}

	next.ID = current.ID
	next.UserID = current.UserID
	next.Images = append(base, refs...)

	updated, err = s.repo.Update(ctx, next)
	if err != nil {
		return listing.Listing{}, fmt.Errorf("update listing %d: %w", id, err)
	}
	return updated, nil
}

// Delete removes the images first and then the row.
func (s *Service) Delete(ctx context.Context, actor listing.Actor, id int64) (err error) {
	defer func() { s.prom.ObserveListingWrite("delete", err) }()

	current, err := s.authorize(ctx, actor, id)
	if err != nil {
		return err
	}

	for _, ref := range current.Images {
		s.removeImage(ctx, id, ref)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete listing %d: %w", id, err)
	}
	return nil
}

// ReferencedImages collects every ref held by any listing.
func (s *Service) ReferencedImages(ctx context.Context) (map[string]struct{}, error) {
	all, err := s.repo.List(ctx, listing.ListFilter{IncludeSold: true})
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{})
	for _, l := range all {
		for _, ref := range l.Images {
			out[ref] = struct{}{}
		}
	}
	return out, nil
}

func (s *Service) authorize(ctx context.Context, actor listing.Actor, id int64) (listing.Listing, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return listing.Listing{}, err
	}
	if !actor.CanModify(current) {
		return listing.Listing{}, listing.ErrForbidden
	}
	return current, nil
}

func (s *Service) checkUploads(uploads []images.Upload) error {
	err := s.policy.Check(uploads)
	if errors.Is(err, images.ErrTooMany) {
		return listing.Invalid("images", "max", strconv.Itoa(s.policy.MaxFiles), "at most "+strconv.Itoa(s.policy.MaxFiles)+" images per request")
	}
	return err
}

func (s *Service) save(ctx context.Context, uploads []images.Upload) ([]string, error) {
	refs := make([]string, 0, len(uploads))
	for _, u := range uploads {
		ref, err := s.images.Save(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("store image %s: %w", u.Filename, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (s *Service) removeImage(ctx context.Context, listingID int64, ref string) {
	if err := s.images.Remove(ctx, ref); err != nil {
		s.log.WarnContext(ctx, "image cleanup failed", "listing_id", listingID, "ref", ref, "err", err)
	}
}
