package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestTraceHandler_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "dev")

	ctx := WithRequestID(context.Background(), "req-123")
	log.InfoContext(ctx, "hello")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, buf.String())
	}
	if rec["request_id"] != "req-123" {
		t.Fatalf("got request_id %v, want req-123", rec["request_id"])
	}
	if _, ok := rec["trace_id"]; ok {
		t.Fatalf("trace_id must be absent without a span")
	}
}

func TestClassifyDBErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unique", &pgconn.PgError{Code: "23505"}, "unique_violation"},
		{"fk", &pgconn.PgError{Code: "23503"}, "foreign_key_violation"},
		{"other_pg", &pgconn.PgError{Code: "42P01"}, "pg_42P01"},
		{"timeout", errors.New("context deadline exceeded"), "timeout"},
		{"unknown", errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyDBErr(tt.err); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestObserveDB_CountsErrorsButNotMisses(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	_ = p.ObserveDB("listings.get", func() error { return pgx.ErrNoRows })
	_ = p.ObserveDB("listings.get", func() error { return &pgconn.PgError{Code: "23505"} })

	if got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("listings.get", "unique_violation")); got != 1 {
		t.Fatalf("got %v unique violations, want 1", got)
	}
	if got := testutil.CollectAndCount(p.DbErrorsTotal); got != 1 {
		t.Fatalf("got %d error series, want 1", got)
	}
}

func TestObserveDB_NilProm(t *testing.T) {
	var p *Prom
	called := false

	err := p.ObserveDB("noop", func() error {
		called = true
		return nil
	})

	if err != nil || !called {
		t.Fatalf("nil prom must still run fn")
	}
}
