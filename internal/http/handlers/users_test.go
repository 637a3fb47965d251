package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/automartines/autoonline/internal/domain/user"
	"github.com/automartines/autoonline/internal/http/handlers"
)

type fakeProfileStore struct {
	users map[int64]user.User
}

func (f *fakeProfileStore) GetByID(ctx context.Context, id int64) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeProfileStore) UpdateProfile(ctx context.Context, id int64, p user.ProfileUpdate) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	u = p.Apply(u)
	f.users[id] = u
	return u, nil
}

func TestGetPublicUserHandler(t *testing.T) {
	store := &fakeProfileStore{users: map[int64]user.User{
		3: {ID: 3, Email: "ann@example.com", FullName: "Ann Lee", Phone: "0151 123", Role: user.RoleAdmin},
	}}
	h := handlers.NewUsersHandler(store)
	r := setupRouter(http.MethodGet, "/users/:id", h.GetPublic)

	w := do(r, httptest.NewRequest(http.MethodGet, "/users/3", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}
	body := w.Body.String()
	if strings.Contains(body, "0151") || strings.Contains(body, "role") {
		t.Fatalf("public profile leaks private fields: %s", body)
	}
	if !strings.Contains(body, `"fullName":"Ann Lee"`) {
		t.Fatalf("missing fullName: %s", body)
	}

	if w := do(r, httptest.NewRequest(http.MethodGet, "/users/4", nil)); w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusNotFound)
	}
	if w := do(r, httptest.NewRequest(http.MethodGet, "/users/x", nil)); w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUpdateProfileHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		wantStatusCode int
		wantFullName   string
		wantCity       string
	}{
		{
			name:           "sparse update keeps other columns",
			body:           `{"city":"Berlin"}`,
			wantStatusCode: http.StatusOK,
			wantFullName:   "Ann Lee",
			wantCity:       "Berlin",
		},
		{
			name:           "name change recomputes full name",
			body:           `{"lastName":"Park"}`,
			wantStatusCode: http.StatusOK,
			wantFullName:   "Ann Park",
			wantCity:       "Hamburg",
		},
		{
			name:           "too long",
			body:           `{"postalCode":"` + strings.Repeat("1", 21) + `"}`,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeProfileStore{users: map[int64]user.User{
				3: {ID: 3, Email: "ann@example.com", FirstName: "Ann", LastName: "Lee", FullName: "Ann Lee", City: "Hamburg"},
			}}
			h := handlers.NewUsersHandler(store)
			r := setupRouter(http.MethodPut, "/users/profile", as(3, user.RoleCustomer), h.UpdateProfile)

			w := do(r, jsonRequest(http.MethodPut, "/users/profile", tt.body))

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
			if tt.wantStatusCode != http.StatusOK {
				return
			}

			var resp struct {
				User user.User `json:"user"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal: %v", err)
			}
			if resp.User.FullName != tt.wantFullName || resp.User.City != tt.wantCity {
				t.Fatalf("got %+v", resp.User)
			}
		})
	}
}
