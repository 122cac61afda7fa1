// Package metrics define las métricas Prometheus del portal.
// Vive en un paquete propio para que store, cache y http las compartan
// sin ciclos de import.
package metrics

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// StoreCalls cuenta llamadas al identity store por operación y resultado.
	StoreCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "identity_store_calls_total",
		Help: "Llamadas al identity store por operación y resultado",
	}, []string{"driver", "op", "result"}) // result: ok|auth_failure|not_found|error

	// StoreLatency mide la latencia de cada operación del identity store.
	StoreLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "identity_store_call_duration_seconds",
		Help:    "Latencia de las llamadas al identity store",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"driver", "op"})

	// StoreBound vale 1 si hay un identity store bindeado.
	StoreBound = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "identity_store_bound",
		Help: "1 si hay un identity store bindeado, 0 si no",
	})

	// StoreRebinds cuenta los cambios de identity store en caliente.
	StoreRebinds = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "identity_store_rebinds_total",
		Help: "Cambios de identity store en caliente",
	})

	// CacheLookups cuenta hits y misses del cache de dominios.
	CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "domain_cache_lookups_total",
		Help: "Lookups al cache de dominios",
	}, []string{"key", "result"}) // result: hit|miss|error

	// HTTPRequests cuenta requests por método, ruta y status.
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Número total de requests procesadas",
	}, []string{"method", "route", "status"})

	// HTTPDuration mide la latencia de los requests HTTP.
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latencia de los requests HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// LoginRateLimited cuenta logins rechazados por rate limit.
	LoginRateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "login_rate_limited_total",
		Help: "Logins rechazados por rate limit",
	})
)

var (
	registerOnce sync.Once
	registerErr  error
)

// Register registra todas las métricas en reg (o el default si es nil).
// Idempotente; tolera colectores ya registrados.
func Register(reg prometheus.Registerer) error {
	registerOnce.Do(func() {
		for _, c := range []prometheus.Collector{
			StoreCalls, StoreLatency, StoreBound, StoreRebinds,
			CacheLookups, HTTPRequests, HTTPDuration, LoginRateLimited,
		} {
			if err := RegisterCollector(reg, c); err != nil {
				registerErr = err
				return
			}
		}
	})
	return registerErr
}

// RegisterCollector registra un collector ignorando duplicados.
func RegisterCollector(reg prometheus.Registerer, c prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return err
	}
	return nil
}

// Handler expone /metrics desde el gatherer por defecto.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveStoreCall registra resultado y latencia de una llamada al store.
func ObserveStoreCall(driver, op, result string, started time.Time) {
	StoreCalls.WithLabelValues(driver, op, result).Inc()
	StoreLatency.WithLabelValues(driver, op).Observe(time.Since(started).Seconds())
}
