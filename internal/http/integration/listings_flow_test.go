package integration_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/automartines/autoonline/internal/domain/listing"
	"github.com/automartines/autoonline/internal/domain/user"
)

var jpeg = image{name: "front.jpg", contentType: "image/jpeg", body: []byte("\xff\xd8\xff fake jpeg")}

type listingsResponse struct {
	Listings []listing.Listing `json:"listings"`
	Count    int               `json:"count"`
}

func createListing(t *testing.T, app *testApp, s session, fields map[string]string, files ...image) listing.Listing {
	t.Helper()

	w := app.doForm(t, http.MethodPost, "/listings", fields, files, withToken(s.token))
	mustStatus(t, w, http.StatusCreated)

	var resp struct {
		ListingID int64           `json:"listingId"`
		Listing   listing.Listing `json:"listing"`
	}
	mustReadJSON(t, w, &resp)
	if resp.ListingID == 0 || resp.ListingID != resp.Listing.ID {
		t.Fatalf("unexpected create response %s", w.Body.String())
	}
	return resp.Listing
}

func TestCreateListingLifecycle(t *testing.T) {
	app := newTestApp(t)
	owner := app.register(t, "owner@example.com")

	created := createListing(t, app, owner, map[string]string{
		"title":    "Test Car",
		"price":    "10000",
		"make":     "VW",
		"year":     "2018",
		"mileage":  "",
		"features": `["ABS","Navi"]`,
		"userId":   "999",
		"sold":     "true",
	}, jpeg)

	if created.UserID != owner.userID {
		t.Fatalf("owner must come from the token, got %d", created.UserID)
	}
	if created.Sold {
		t.Fatalf("a new listing is never sold")
	}
	if created.Mileage != nil || created.Year == nil || *created.Year != 2018 {
		t.Fatalf("unexpected numeric columns year=%v mileage=%v", created.Year, created.Mileage)
	}
	if created.Category != listing.CategorySale || created.Condition != listing.ConditionUsed {
		t.Fatalf("defaults not applied: %q %q", created.Category, created.Condition)
	}
	if len(created.Images) != 1 || !strings.HasPrefix(created.Images[0], "/uploads/listings/") {
		t.Fatalf("unexpected images %v", created.Images)
	}

	// the stored image is served under the public prefix
	w := app.do(httptest.NewRequest(http.MethodGet, created.Images[0], nil))
	mustStatus(t, w, http.StatusOK)
	if w.Body.String() != string(jpeg.body) {
		t.Fatalf("served image differs from upload")
	}

	id := strconv.FormatInt(created.ID, 10)

	w = app.doJSON(http.MethodGet, "/listings/"+id, "")
	mustStatus(t, w, http.StatusOK)

	// mark sold: hidden from the public list unless includeSold
	w = app.doForm(t, http.MethodPut, "/listings/"+id, map[string]string{"sold": "1"}, nil, withToken(owner.token))
	mustStatus(t, w, http.StatusOK)

	var list listingsResponse
	mustReadJSON(t, app.doJSON(http.MethodGet, "/listings", ""), &list)
	if list.Count != 0 {
		t.Fatalf("sold listing should be hidden, got %d", list.Count)
	}
	mustReadJSON(t, app.doJSON(http.MethodGet, "/api/listings?includeSold=true", ""), &list)
	if list.Count != 1 || !list.Listings[0].Sold {
		t.Fatalf("includeSold should return the sold listing: %+v", list)
	}
	if list.Listings[0].Title != "Test Car" || len(list.Listings[0].Images) != 1 {
		t.Fatalf("sparse update must keep untouched columns: %+v", list.Listings[0])
	}

	mustReadJSON(t, app.doJSON(http.MethodGet, "/listings/user/"+strconv.FormatInt(owner.userID, 10), ""), &list)
	if len(list.Listings) != 1 {
		t.Fatalf("user listings include sold ones, got %d", len(list.Listings))
	}

	// delete removes the row and the file
	file := filepath.Join(app.store.Root(), "listings", filepath.Base(created.Images[0]))
	if _, err := os.Stat(file); err != nil {
		t.Fatalf("image file missing before delete: %v", err)
	}

	w = app.doJSON(http.MethodDelete, "/listings/"+id, "", withToken(owner.token))
	mustStatus(t, w, http.StatusOK)

	mustStatus(t, app.doJSON(http.MethodGet, "/listings/"+id, ""), http.StatusNotFound)
	if _, err := os.Stat(file); !os.IsNotExist(err) {
		t.Fatalf("image file should be removed, stat err=%v", err)
	}
}

func TestUpdateReconcilesImages(t *testing.T) {
	app := newTestApp(t)
	owner := app.register(t, "owner@example.com")

	created := createListing(t, app, owner, map[string]string{"title": "Test Car", "price": "10000"}, jpeg, jpeg)
	if len(created.Images) != 2 {
		t.Fatalf("want 2 images, got %v", created.Images)
	}
	keep, drop := created.Images[0], created.Images[1]
	id := strconv.FormatInt(created.ID, 10)

	png := image{name: "side.png", contentType: "image/png", body: []byte("\x89PNG fake")}
	w := app.doForm(t, http.MethodPut, "/listings/"+id, map[string]string{
		"existingImages": `["` + keep + `"]`,
		"imagesToDelete": `["` + drop + `"]`,
	}, []image{png}, withToken(owner.token))
	mustStatus(t, w, http.StatusOK)

	var got struct {
		Listing listing.Listing `json:"listing"`
	}
	mustReadJSON(t, app.doJSON(http.MethodGet, "/listings/"+id, ""), &got)

	imgs := got.Listing.Images
	if len(imgs) != 2 || imgs[0] != keep || !strings.HasSuffix(imgs[1], ".png") {
		t.Fatalf("unexpected images after reconcile: %v", imgs)
	}
	if _, err := os.Stat(filepath.Join(app.store.Root(), "listings", filepath.Base(drop))); !os.IsNotExist(err) {
		t.Fatalf("deleted image still on disk, stat err=%v", err)
	}
}

func TestListingWriteRejections(t *testing.T) {
	app := newTestApp(t)
	owner := app.register(t, "owner@example.com")
	other := app.register(t, "other@example.com")

	created := createListing(t, app, owner, map[string]string{"title": "Test Car", "price": "10000"})
	id := strconv.FormatInt(created.ID, 10)

	tests := []struct {
		name string
		w    func() *httptest.ResponseRecorder
		want int
	}{
		{
			name: "anonymous create",
			w: func() *httptest.ResponseRecorder {
				return app.doForm(t, http.MethodPost, "/listings", map[string]string{"title": "x", "price": "1"}, nil)
			},
			want: http.StatusUnauthorized,
		},
		{
			name: "missing price",
			w: func() *httptest.ResponseRecorder {
				return app.doForm(t, http.MethodPost, "/listings", map[string]string{"title": "x"}, nil, withToken(owner.token))
			},
			want: http.StatusBadRequest,
		},
		{
			name: "json body",
			w: func() *httptest.ResponseRecorder {
				return app.doJSON(http.MethodPost, "/listings", `{"title":"x","price":1}`, withToken(owner.token))
			},
			want: http.StatusUnsupportedMediaType,
		},
		{
			name: "non image upload",
			w: func() *httptest.ResponseRecorder {
				doc := image{name: "notes.txt", contentType: "text/plain", body: []byte("hi")}
				return app.doForm(t, http.MethodPost, "/listings", map[string]string{"title": "x", "price": "1"}, []image{doc}, withToken(owner.token))
			},
			want: http.StatusUnsupportedMediaType,
		},
		{
			name: "too many images",
			w: func() *httptest.ResponseRecorder {
				files := []image{jpeg, jpeg, jpeg, jpeg, jpeg}
				return app.doForm(t, http.MethodPost, "/listings", map[string]string{"title": "x", "price": "1"}, files, withToken(owner.token))
			},
			want: http.StatusBadRequest,
		},
		{
			name: "non owner update",
			w: func() *httptest.ResponseRecorder {
				return app.doForm(t, http.MethodPut, "/listings/"+id, map[string]string{"title": "Mine now"}, nil, withToken(other.token))
			},
			want: http.StatusForbidden,
		},
		{
			name: "non owner delete",
			w: func() *httptest.ResponseRecorder {
				return app.doJSON(http.MethodDelete, "/listings/"+id, "", withToken(other.token))
			},
			want: http.StatusForbidden,
		},
		{
			name: "update missing listing",
			w: func() *httptest.ResponseRecorder {
				return app.doForm(t, http.MethodPut, "/listings/4242", map[string]string{"title": "x"}, nil, withToken(owner.token))
			},
			want: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustStatus(t, tt.w(), tt.want)
		})
	}

	var got struct {
		Listing listing.Listing `json:"listing"`
	}
	mustReadJSON(t, app.doJSON(http.MethodGet, "/listings/"+id, ""), &got)
	if got.Listing.Title != "Test Car" {
		t.Fatalf("rejected update must not write, got title %q", got.Listing.Title)
	}
}

func TestAdminCanModifyAnyListing(t *testing.T) {
	app := newTestApp(t)
	owner := app.register(t, "owner@example.com")
	staff := app.register(t, "staff@example.com")

	created := createListing(t, app, owner, map[string]string{"title": "Test Car", "price": "10000"})
	id := strconv.FormatInt(created.ID, 10)

	mustStatus(t, app.doForm(t, http.MethodPut, "/listings/"+id, map[string]string{"price": "9000"}, nil, withToken(staff.token)), http.StatusForbidden)

	// promotion is seen without a new token
	app.users.SetRole(staff.userID, user.RoleAdmin)

	mustStatus(t, app.doForm(t, http.MethodPut, "/listings/"+id, map[string]string{"price": "9000"}, nil, withToken(staff.token)), http.StatusOK)
	mustStatus(t, app.doJSON(http.MethodGet, "/admin/listings?status=available", "", withToken(staff.token)), http.StatusOK)
	mustStatus(t, app.doJSON(http.MethodGet, "/admin/listings", "", withToken(owner.token)), http.StatusForbidden)
}
