// Package app es el contenedor de dependencias del portal: arma el stack
// del identity store, lo bindea y lo rebindea en caliente.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/dirportal/internal/cache"
	"github.com/dropDatabas3/dirportal/internal/config"
	"github.com/dropDatabas3/dirportal/internal/directory"
	"github.com/dropDatabas3/dirportal/internal/domain/repository"
	dirctrl "github.com/dropDatabas3/dirportal/internal/http/controllers/directory"
	healthctrl "github.com/dropDatabas3/dirportal/internal/http/controllers/health"
	"github.com/dropDatabas3/dirportal/internal/http/router"
	jwtx "github.com/dropDatabas3/dirportal/internal/jwt"
	"github.com/dropDatabas3/dirportal/internal/metrics"
	"github.com/dropDatabas3/dirportal/internal/observability/logger"
	"github.com/dropDatabas3/dirportal/internal/rate"
	"github.com/dropDatabas3/dirportal/internal/store"
	"github.com/dropDatabas3/dirportal/internal/store/adapters/cached"
	"github.com/dropDatabas3/dirportal/internal/util"
)

// Container es el contenedor DI simple que usa el binario.
type Container struct {
	Binding   *store.Binding
	Directory directory.Service
	Issuer    *jwtx.Issuer
	Cache     cache.Client
	Limiter   rate.Limiter
	Handler   http.Handler

	redis   *rdb.Client
	version string

	// rebindMu serializa Rebind/Close
	rebindMu sync.Mutex
}

// New arma el contenedor completo y bindea el identity store configurado.
func New(ctx context.Context, cfg *config.Config, version string) (*Container, error) {
	c := &Container{Binding: store.NewBinding(nil), version: version}

	if err := c.initCache(ctx, cfg); err != nil {
		return nil, err
	}

	issuer, err := jwtx.NewIssuer(cfg.Session.Issuer, []byte(cfg.Session.Secret), cfg.Session.TTL)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Issuer = issuer

	if cfg.Rate.Enabled {
		if c.redis != nil {
			c.Limiter = rate.NewRedisLimiter(c.redis, cfg.Cache.Prefix+"rl:", cfg.Rate.Max, cfg.Rate.Window)
		} else {
			c.Limiter = rate.NewMemoryLimiter(cfg.Rate.Max, cfg.Rate.Window)
		}
	}

	c.Directory = directory.NewService(directory.Deps{
		Stores: c.Binding,
		Claims: directory.ClaimsConfig{
			DialectURI:        cfg.Claims.Dialect,
			UsernameClaimURI:  cfg.Claims.UsernameURI,
			GroupNameClaimURI: cfg.Claims.GroupNameURI,
		},
	})

	deps := router.Deps{
		Directory:    dirctrl.NewControllers(c.Directory, c.Issuer, cfg.Session.AdminGroup),
		Health:       healthctrl.NewHealthController(c.Binding, version),
		Issuer:       c.Issuer,
		LoginLimiter: c.Limiter,
	}
	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.Handler()
		deps.MetricsPath = cfg.Metrics.Path
	}
	c.Handler = router.New(deps)

	if err := c.Rebind(ctx, cfg); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) initCache(ctx context.Context, cfg *config.Config) error {
	if cfg.Cache.Driver != "redis" {
		c.Cache = cache.NewMemory(cfg.Cache.Prefix, cfg.Cache.TTL)
		return nil
	}
	// Un solo cliente para cache de dominios y rate limit.
	c.redis = rdb.NewClient(&rdb.Options{
		Addr:     cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.redis.Ping(pingCtx).Err(); err != nil {
		_ = c.redis.Close()
		return fmt.Errorf("app: redis ping failed: %w", err)
	}
	c.Cache = cache.NewRedisFromClient(c.redis, cfg.Cache.Prefix)
	return nil
}

// OpenStore abre el adapter configurado y lo decora con métricas y cache.
func (c *Container) OpenStore(ctx context.Context, cfg *config.Config) (repository.IdentityStore, error) {
	is, err := store.Open(ctx, store.AdapterConfig{
		Name:             cfg.Store.Driver,
		DSN:              cfg.Store.DSN,
		MaxConns:         int32(cfg.Store.MaxConns),
		MinConns:         int32(cfg.Store.MinConns),
		MaxConnLifetime:  cfg.Store.MaxConnLifetime,
		Migrate:          cfg.Store.Migrate,
		SeedFile:         cfg.Store.SeedFile,
		PrimaryDomain:    cfg.Store.PrimaryDomain,
		UsernameClaimURI: cfg.Claims.UsernameURI,
	})
	if err != nil {
		return nil, err
	}
	return cached.Wrap(store.Instrument(is, cfg.Store.Driver), c.Cache, cfg.Cache.TTL), nil
}

// Rebind abre un store nuevo con cfg, lo instala y cierra el anterior.
// Si abrir falla, el store actual queda bindeado.
func (c *Container) Rebind(ctx context.Context, cfg *config.Config) error {
	c.rebindMu.Lock()
	defer c.rebindMu.Unlock()

	log := logger.From(ctx).With(logger.Component("app"), logger.Driver(cfg.Store.Driver),
		logger.String("dsn", util.MaskDSN(cfg.Store.DSN)))

	next, err := c.OpenStore(ctx, cfg)
	if err != nil {
		log.Error("failed to open identity store", logger.Err(err))
		return fmt.Errorf("app: open store: %w", err)
	}

	prev := c.Binding.Bind(next)
	metrics.StoreBound.Set(1)
	if prev == nil {
		log.Info("identity store bound")
		return nil
	}

	metrics.StoreRebinds.Inc()
	log.Info("identity store rebound")
	if err := prev.Close(); err != nil {
		log.Warn("failed to close previous identity store", logger.Err(err))
	}
	return nil
}

// Close desbindea y cierra el store, el cache y redis.
func (c *Container) Close() error {
	c.rebindMu.Lock()
	defer c.rebindMu.Unlock()

	var errs []error
	if prev := c.Binding.Unbind(); prev != nil {
		errs = append(errs, prev.Close())
	}
	metrics.StoreBound.Set(0)
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.redis != nil {
		errs = append(errs, c.redis.Close())
	}
	return errors.Join(errs...)
}
