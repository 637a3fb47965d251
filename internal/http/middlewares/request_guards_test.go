package middlewares_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/automartines/autoonline/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func ok(c *gin.Context) { c.Status(http.StatusNoContent) }

func TestRequireContentType(t *testing.T) {
	tests := []struct {
		name           string
		mw             gin.HandlerFunc
		method         string
		contentType    string
		wantStatusCode int
	}{
		{"json ok", middlewares.RequireJSON(), http.MethodPost, "application/json; charset=utf-8", http.StatusNoContent},
		{"json rejected", middlewares.RequireJSON(), http.MethodPost, "text/plain", http.StatusUnsupportedMediaType},
		{"get is not checked", middlewares.RequireJSON(), http.MethodGet, "", http.StatusNoContent},
		{"multipart ok", middlewares.RequireMultipart(), http.MethodPut, "multipart/form-data; boundary=x", http.StatusNoContent},
		{"urlencoded ok", middlewares.RequireMultipart(), http.MethodPut, "application/x-www-form-urlencoded", http.StatusNoContent},
		{"json rejected for forms", middlewares.RequireMultipart(), http.MethodPost, "application/json", http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Handle(tt.method, "/x", tt.mw, ok)

			req := httptest.NewRequest(tt.method, "/x", nil)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d", w.Code, tt.wantStatusCode)
			}
		})
	}
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.POST("/x", middlewares.MaxBodyBytes(8, 64), func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusNoContent)
	})

	send := func(contentType string, n int) int {
		req := httptest.NewRequest(http.MethodPost, "/x", bytes.NewBufferString(strings.Repeat("a", n)))
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if got := send("application/json", 16); got != http.StatusRequestEntityTooLarge {
		t.Fatalf("json over cap: got %d", got)
	}
	if got := send("multipart/form-data; boundary=x", 16); got != http.StatusNoContent {
		t.Fatalf("multipart under its own cap: got %d", got)
	}
	if got := send("multipart/form-data; boundary=x", 128); got != http.StatusRequestEntityTooLarge {
		t.Fatalf("multipart over cap: got %d", got)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := middlewares.NewRateLimiter(2, time.Minute)
	r := gin.New()
	r.POST("/login", rl.RateLimiterMiddleware(middlewares.KeyByIP), ok)

	hit := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := hit("10.0.0.1"); w.Code != http.StatusNoContent {
			t.Fatalf("request %d: got %d", i, w.Code)
		}
	}

	w := hit("10.0.0.1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	if w := hit("10.0.0.2"); w.Code != http.StatusNoContent {
		t.Fatalf("other client should not share the bucket, got %d", w.Code)
	}
}
