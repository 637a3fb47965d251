package integration_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/automartines/autoonline/internal/auth"
	"github.com/automartines/autoonline/internal/config"
	apphttp "github.com/automartines/autoonline/internal/http"
	"github.com/automartines/autoonline/internal/listings"
	"github.com/automartines/autoonline/internal/observability"
	"github.com/automartines/autoonline/internal/repo/memory"
	"github.com/automartines/autoonline/internal/storage/images"
	"github.com/gin-gonic/gin"
)

func testConfig(uploadsDir string) config.Config {
	return config.Config{
		Env:            "test",
		JWTSecret:      "test-secret-key",
		JWTTTLHours:    1,
		StorageDriver:  "local",
		UploadsDir:     uploadsDir,
		UploadsPrefix:  "/uploads",
		MaxUploadBytes: 1 << 20,
		MaxUploadFiles: 4,
		ServiceName:    "autoonline-test",
	}
}

// testApp is the full router over in-memory repositories and a temp
// uploads directory.
type testApp struct {
	router http.Handler
	users  *memory.UsersRepo
	store  *images.Local
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig(t.TempDir())
	log := observability.NopLogger()

	store, err := images.NewLocal(cfg.UploadsDir, images.NewPaths(cfg.UploadsPrefix))
	if err != nil {
		t.Fatalf("failed to create image store: %v", err)
	}

	users := memory.NewUsersRepo()
	svc := listings.NewService(
		memory.NewListingsRepo(),
		store,
		images.Policy{MaxBytes: cfg.MaxUploadBytes, MaxFiles: cfg.MaxUploadFiles},
		log,
		nil,
	)

	router := apphttp.NewRouter(apphttp.Deps{
		Config:      cfg,
		Log:         log,
		Tokens:      auth.NewManager(cfg.JWTSecret, time.Hour),
		Users:       users,
		Listings:    svc,
		Contacts:    memory.NewContactsRepo(users),
		UploadsRoot: store.Root(),
	})

	return &testApp{router: router, users: users, store: store}
}

type requestOption func(*http.Request)

func withToken(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withCookie(c *http.Cookie) requestOption {
	return func(r *http.Request) { r.AddCookie(c) }
}

func (a *testApp) do(req *http.Request, opts ...requestOption) *httptest.ResponseRecorder {
	for _, o := range opts {
		o(req)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) doJSON(method, path, body string, opts ...requestOption) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.do(req, opts...)
}

type image struct {
	name        string
	contentType string
	body        []byte
}

func (a *testApp) doForm(t *testing.T, method, path string, fields map[string]string, files []image, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="images"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		_, _ = part.Write(f.body)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.do(req, opts...)
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, want, w.Body.String())
	}
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

type session struct {
	userID int64
	token  string
	cookie *http.Cookie
}

// register creates a customer and returns its token and session cookie.
func (a *testApp) register(t *testing.T, email string) session {
	t.Helper()

	w := a.doJSON(http.MethodPost, "/auth/register",
		`{"email":"`+email+`","password":"secret123","firstName":"Test","lastName":"User"}`)
	mustStatus(t, w, http.StatusCreated)

	var resp struct {
		User struct {
			ID int64 `json:"id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	mustReadJSON(t, w, &resp)

	s := session{userID: resp.User.ID, token: resp.Token}
	for _, c := range w.Result().Cookies() {
		if c.Name == "token" {
			s.cookie = c
		}
	}
	if s.token == "" || s.cookie == nil {
		t.Fatalf("register returned no token or cookie: %s", w.Body.String())
	}
	return s
}
