package vehicle

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/automartines/autoonline/internal/cache"
)

type Fetcher interface {
	Fetch(ctx context.Context, hsn, tsn string) (Record, error)
}

// Service resolves HSN/TSN pairs to form prefill data and caches hits.
type Service struct {
	fetcher Fetcher
	cache   cache.Store
	log     *slog.Logger
}

func NewService(fetcher Fetcher, store cache.Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{fetcher: fetcher, cache: store, log: log}
}

func (s *Service) Lookup(ctx context.Context, hsn, tsn string) (Prefill, error) {
	hsn, tsn, err := NormalizeCode(hsn, tsn)
	if err != nil {
		return Prefill{}, err
	}
	key := "kba:" + hsn + "/" + tsn

	if s.cache != nil {
		b, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.WarnContext(ctx, "vehicle cache read failed", "key", key, "err", err)
		}
		if ok {
			var p Prefill
			if err := json.Unmarshal(b, &p); err == nil {
				return p, nil
			}
		}
	}

	rec, err := s.fetcher.Fetch(ctx, hsn, tsn)
	if err != nil {
		return Prefill{}, err
	}
	p := rec.Prefill()

	if s.cache != nil {
		if b, err := json.Marshal(p); err == nil {
			if err := s.cache.Set(ctx, key, b); err != nil {
				s.log.WarnContext(ctx, "vehicle cache write failed", "key", key, "err", err)
			}
		}
	}
	return p, nil
}
