package listings_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automartines/autoonline/internal/domain/listing"
	"github.com/automartines/autoonline/internal/domain/user"
	"github.com/automartines/autoonline/internal/listings"
	"github.com/automartines/autoonline/internal/observability"
	"github.com/automartines/autoonline/internal/repo/memory"
	"github.com/automartines/autoonline/internal/storage/images"
)

var (
	owner    = listing.Actor{UserID: 1, Role: user.RoleCustomer}
	stranger = listing.Actor{UserID: 2, Role: user.RoleCustomer}
	admin    = listing.Actor{UserID: 3, Role: user.RoleAdmin}
)

type fixture struct {
	svc   *listings.Service
	repo  *memory.ListingsRepo
	store *images.Local
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store, err := images.NewLocal(t.TempDir(), images.NewPaths("/uploads"))
	require.NoError(t, err)
	repo := memory.NewListingsRepo()
	policy := images.Policy{MaxBytes: 5 << 20, MaxFiles: 15}
	return fixture{
		svc:   listings.NewService(repo, store, policy, observability.NopLogger(), nil),
		repo:  repo,
		store: store,
	}
}

func (f fixture) exists(t *testing.T, ref string) bool {
	t.Helper()
	name := strings.TrimPrefix(ref, "/uploads/listings/")
	_, err := os.Stat(filepath.Join(f.store.Root(), "listings", name))
	return err == nil
}

func jpeg(name string) images.Upload {
	return images.Upload{
		Filename:    name,
		ContentType: "image/jpeg",
		Size:        4,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("jpeg")), nil
		},
	}
}

func patch(kv ...string) listing.Patch {
	m := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return listing.NewPatch(m)
}

func (f fixture) create(t *testing.T, uploads ...images.Upload) listing.Listing {
	t.Helper()
	l, err := f.svc.Create(context.Background(), owner, patch("title", "Test Car", "price", "10000", "make", "BMW"), uploads)
	require.NoError(t, err)
	return l
}

func TestCreate_OwnerIsCaller(t *testing.T) {
	f := newFixture(t)

	l, err := f.svc.Create(context.Background(), owner, patch("title", "Test Car", "price", "10000", "userId", "99"), nil)
	require.NoError(t, err)

	got, err := f.repo.GetByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.UserID)
	assert.Equal(t, "sale", got.Category)
	assert.Equal(t, "used", got.Condition)
	assert.False(t, got.Sold)
	assert.Equal(t, []string{}, got.Images)
}

func TestCreate_StoresImagesInUploadOrder(t *testing.T) {
	f := newFixture(t)

	l := f.create(t, jpeg("front.jpg"), jpeg("back.jpg"))

	require.Len(t, l.Images, 2)
	for _, ref := range l.Images {
		assert.True(t, strings.HasPrefix(ref, "/uploads/listings/"))
		assert.True(t, f.exists(t, ref), ref)
	}
	assert.NotEqual(t, l.Images[0], l.Images[1])
}

func TestCreate_RejectsBadUploadsBeforeStoring(t *testing.T) {
	f := newFixture(t)

	doc := jpeg("notes.txt")
	doc.ContentType = "text/plain"
	_, err := f.svc.Create(context.Background(), owner, patch("title", "x", "price", "1"), []images.Upload{jpeg("a.jpg"), doc})
	assert.ErrorIs(t, err, images.ErrUnsupportedType)

	refs, err := f.store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, refs)

	many := make([]images.Upload, 16)
	for i := range many {
		many[i] = jpeg("a.jpg")
	}
	_, err = f.svc.Create(context.Background(), owner, patch("title", "x", "price", "1"), many)
	var verr *listing.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "images", verr.Fields[0].Field)
}

func TestCreate_ValidationFailureStoresNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), owner, patch("price", "-3"), []images.Upload{jpeg("a.jpg")})
	var verr *listing.ValidationError
	require.True(t, errors.As(err, &verr))

	refs, _ := f.store.List(context.Background())
	assert.Empty(t, refs)
	all, _ := f.repo.List(context.Background(), listing.ListFilter{IncludeSold: true})
	assert.Empty(t, all)
}

func TestUpdate_SoldToggleOnly(t *testing.T) {
	f := newFixture(t)
	before := f.create(t, jpeg("a.jpg"))

	_, err := f.svc.Update(context.Background(), owner, before.ID, patch("sold", "1"), nil)
	require.NoError(t, err)

	after, err := f.repo.GetByID(context.Background(), before.ID)
	require.NoError(t, err)
	assert.True(t, after.Sold)

	after.Sold = false
	after.UpdatedAt = before.UpdatedAt
	assert.Equal(t, before, after)
}

func TestUpdate_EmptyExistingImagesKeepsImages(t *testing.T) {
	f := newFixture(t)
	before := f.create(t, jpeg("a.jpg"), jpeg("b.jpg"))

	for _, p := range []listing.Patch{
		patch("existingImages", "[]"),
		patch("existingImages", "[]", "imagesToDelete", "[]"),
		patch("existingImages", "[]", "imagesToDelete", ""),
	} {
		after, err := f.svc.Update(context.Background(), owner, before.ID, p, nil)
		require.NoError(t, err)
		assert.Equal(t, before.Images, after.Images)
	}
	for _, ref := range before.Images {
		assert.True(t, f.exists(t, ref))
	}
}

func TestUpdate_ExplicitDeleteReordersAndAppends(t *testing.T) {
	f := newFixture(t)
	before := f.create(t, jpeg("a.jpg"), jpeg("b.jpg"), jpeg("c.jpg"))
	a, b, c := before.Images[0], before.Images[1], before.Images[2]

	after, err := f.svc.Update(context.Background(), owner, before.ID,
		patch("existingImages", `["`+c+`","`+a+`"]`, "imagesToDelete", `["`+b+`"]`),
		[]images.Upload{jpeg("d.jpg")},
	)
	require.NoError(t, err)

	require.Len(t, after.Images, 3)
	assert.Equal(t, []string{c, a}, after.Images[:2])
	assert.True(t, f.exists(t, after.Images[2]))
	assert.False(t, f.exists(t, b))
	assert.True(t, f.exists(t, a))
}

func TestUpdate_DeleteAllImages(t *testing.T) {
	f := newFixture(t)
	before := f.create(t, jpeg("a.jpg"))

	after, err := f.svc.Update(context.Background(), owner, before.ID,
		patch("existingImages", "[]", "imagesToDelete", `["`+before.Images[0]+`"]`), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{}, after.Images)
	assert.False(t, f.exists(t, before.Images[0]))
}

func TestUpdate_DeleteOutsidePrefixIsIgnored(t *testing.T) {
	f := newFixture(t)
	before := f.create(t)

	outside := filepath.Join(filepath.Dir(f.store.Root()), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	_, err := f.svc.Update(context.Background(), owner, before.ID,
		patch("imagesToDelete", `["/uploads/listings/../secret.txt"]`), nil)
	require.NoError(t, err)
	assert.FileExists(t, outside)
}

func TestUpdate_NonOwnerForbiddenAndUnchanged(t *testing.T) {
	f := newFixture(t)
	before := f.create(t, jpeg("a.jpg"))

	_, err := f.svc.Update(context.Background(), stranger, before.ID,
		patch("price", "1", "imagesToDelete", `["`+before.Images[0]+`"]`), []images.Upload{jpeg("b.jpg")})
	assert.ErrorIs(t, err, listing.ErrForbidden)

	after, err := f.repo.GetByID(context.Background(), before.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.True(t, f.exists(t, before.Images[0]))

	refs, _ := f.store.List(context.Background())
	assert.Len(t, refs, 1)
}

func TestUpdate_AdminMayEdit(t *testing.T) {
	f := newFixture(t)
	before := f.create(t)

	after, err := f.svc.Update(context.Background(), admin, before.ID, patch("price", "9000"), nil)
	require.NoError(t, err)
	assert.Equal(t, 9000.0, after.Price)
	assert.Equal(t, owner.UserID, after.UserID)
}

func TestUpdate_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Update(context.Background(), admin, 404, patch("price", "1"), nil)
	assert.ErrorIs(t, err, listing.ErrNotFound)
}

func TestUpdate_ValidationErrorLeavesRowAndImages(t *testing.T) {
	f := newFixture(t)
	before := f.create(t, jpeg("a.jpg"))

	_, err := f.svc.Update(context.Background(), owner, before.ID,
		patch("mileage", "far", "imagesToDelete", `["`+before.Images[0]+`"]`), nil)
	var verr *listing.ValidationError
	require.True(t, errors.As(err, &verr))

	after, _ := f.repo.GetByID(context.Background(), before.ID)
	assert.Equal(t, before, after)
	assert.True(t, f.exists(t, before.Images[0]))
}

func TestDelete_ReclaimsImages(t *testing.T) {
	f := newFixture(t)
	l := f.create(t, jpeg("a.jpg"), jpeg("b.jpg"))

	require.ErrorIs(t, f.svc.Delete(context.Background(), stranger, l.ID), listing.ErrForbidden)

	require.NoError(t, f.svc.Delete(context.Background(), owner, l.ID))

	_, err := f.repo.GetByID(context.Background(), l.ID)
	assert.ErrorIs(t, err, listing.ErrNotFound)
	for _, ref := range l.Images {
		assert.False(t, f.exists(t, ref), ref)
	}
}

func TestList_HidesSoldAndOrdersNewestFirst(t *testing.T) {
	f := newFixture(t)
	first := f.create(t)
	second := f.create(t)
	_, err := f.svc.Update(context.Background(), owner, first.ID, patch("sold", "true"), nil)
	require.NoError(t, err)

	visible, err := f.svc.List(context.Background(), listing.ListFilter{})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, second.ID, visible[0].ID)

	all, err := f.svc.ListByUser(context.Background(), owner.UserID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)
}

func TestReferencedImages(t *testing.T) {
	f := newFixture(t)
	l := f.create(t, jpeg("a.jpg"))

	refs, err := f.svc.ReferencedImages(context.Background())
	require.NoError(t, err)
	assert.Contains(t, refs, l.Images[0])
}
