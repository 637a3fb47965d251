package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/automartines/autoonline/internal/http/handlers"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthz(t *testing.T) {
	h := handlers.NewHealthHandler(nil)
	r := setupRouter(http.MethodGet, "/healthz", h.Healthz)

	w := do(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name           string
		ping           error
		wantStatusCode int
	}{
		{name: "db up", wantStatusCode: http.StatusOK},
		{name: "db down", ping: errors.New("connection refused"), wantStatusCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewHealthHandler(pingerFunc(func(ctx context.Context) error { return tt.ping }))
			r := setupRouter(http.MethodGet, "/readyz", h.Readyz)

			w := do(r, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
