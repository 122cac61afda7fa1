// Package cached decora un identity store cacheando los lookups de dominio.
//
// El dominio primario se consulta en cada listado sin dominio explícito,
// por eso se cachea con TTL corto. Los misses concurrentes se colapsan
// en una sola llamada al store.
//
// Cada Wrap usa su propia generación de claves: tras un rebind el store
// nuevo nunca lee lo que escribió un fill tardío del anterior.
package cached

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/dropDatabas3/dirportal/internal/cache"
	"github.com/dropDatabas3/dirportal/internal/domain/repository"
	"github.com/dropDatabas3/dirportal/internal/metrics"
	"github.com/dropDatabas3/dirportal/internal/observability/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Nombres lógicos; también son el label de métricas.
const (
	keyPrimary = "primary"
	keyNames   = "names"
)

// Store es el identity store decorado. Todo lo que no es lookup de
// dominios pasa directo al store envuelto.
type Store struct {
	repository.IdentityStore
	cache cache.Client
	ttl    time.Duration
	gen    string
	sf     singleflight.Group
	closed atomic.Bool
}

// Wrap decora next. ttl <= 0 usa un minuto.
func Wrap(next repository.IdentityStore, c cache.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Store{IdentityStore: next, cache: c, ttl: ttl, gen: uuid.NewString()}
}

func (s *Store) GetPrimaryDomainName(ctx context.Context) (string, error) {
	if v, ok := s.lookup(ctx, keyPrimary); ok {
		return v, nil
	}
	v, err, _ := s.sf.Do(keyPrimary, func() (any, error) {
		name, err := s.IdentityStore.GetPrimaryDomainName(ctx)
		if err != nil {
			return "", err
		}
		s.store(ctx, keyPrimary, name)
		return name, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *Store) GetDomainNames(ctx context.Context) ([]string, error) {
	if v, ok := s.lookup(ctx, keyNames); ok {
		var names []string
		if err := json.Unmarshal([]byte(v), &names); err == nil {
			return names, nil
		}
	}
	v, err, _ := s.sf.Do(keyNames, func() (any, error) {
		names, err := s.IdentityStore.GetDomainNames(ctx)
		if err != nil {
			return nil, err
		}
		if b, err := json.Marshal(names); err == nil {
			s.store(ctx, keyNames, string(b))
		}
		return names, nil
	})
	if err != nil {
		return nil, err
	}
	names := v.([]string)
	return append([]string(nil), names...), nil
}

// Invalidate descarta los lookups cacheados de esta generación.
func (s *Store) Invalidate(ctx context.Context) {
	_ = s.cache.Delete(ctx, s.key(keyPrimary))
	_ = s.cache.Delete(ctx, s.key(keyNames))
}

// Close invalida el cache y cierra el store envuelto. Los fills que
// terminen después ya no escriben.
func (s *Store) Close() error {
	s.closed.Store(true)
	s.Invalidate(context.Background())
	return s.IdentityStore.Close()
}

func (s *Store) key(name string) string {
	return "domains:" + s.gen + ":" + name
}

func (s *Store) lookup(ctx context.Context, key string) (string, bool) {
	v, err := s.cache.Get(ctx, s.key(key))
	switch {
	case err == nil:
		metrics.CacheLookups.WithLabelValues(key, "hit").Inc()
		return v, true
	case cache.IsNotFound(err):
		metrics.CacheLookups.WithLabelValues(key, "miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues(key, "error").Inc()
		logger.From(ctx).Warn("domain cache get failed",
			logger.Component("store.cached"), logger.String("key", key), logger.Err(err))
	}
	return "", false
}

func (s *Store) store(ctx context.Context, key, value string) {
	if s.closed.Load() {
		return
	}
	if err := s.cache.Set(ctx, s.key(key), value, s.ttl); err != nil {
		logger.From(ctx).Warn("domain cache set failed",
			logger.Component("store.cached"), logger.String("key", key), logger.Err(err))
	}
}
