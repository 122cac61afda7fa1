// Package store provee el registry de adapters de identity store y el
// binding dinámico que consume el directorio.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dropDatabas3/dirportal/internal/domain/repository"
)

// Adapter abre identity stores de un driver concreto.
type Adapter interface {
	// Name retorna el nombre del driver (ej: "postgres", "memory").
	Name() string

	// Open establece conexión y devuelve el store listo para usar.
	Open(ctx context.Context, cfg AdapterConfig) (repository.IdentityStore, error)
}

// AdapterConfig configuración para abrir un identity store.
type AdapterConfig struct {
	// Name del driver: "postgres" | "memory"
	Name string

	// DSN connection string (postgres)
	DSN string

	// Pool settings (postgres)
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration

	// Migrate aplica las migraciones embebidas al abrir (postgres)
	Migrate bool

	// SeedFile YAML con dominios, usuarios y grupos iniciales (memory)
	SeedFile string

	// PrimaryDomain nombre del dominio primario (memory)
	PrimaryDomain string

	// UsernameClaimURI claim que identifica al usuario al autenticar
	UsernameClaimURI string
}

// ─── Registry Global ───

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// RegisterAdapter registra un adapter en el registry global.
// Llamar en init() de cada adapter.
func RegisterAdapter(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := a.Name()
	if _, exists := adapters[name]; exists {
		panic(fmt.Sprintf("adapter: %q already registered", name))
	}
	adapters[name] = a
}

// GetAdapter obtiene un adapter por nombre.
func GetAdapter(name string) (Adapter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[name]
	return a, ok
}

// ListAdapters retorna los nombres de los adapters registrados, ordenados.
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open abre un identity store usando el adapter indicado en la config.
func Open(ctx context.Context, cfg AdapterConfig) (repository.IdentityStore, error) {
	a, ok := GetAdapter(cfg.Name)
	if !ok {
		return nil, fmt.Errorf("adapter: %q not registered (available: %v)", cfg.Name, ListAdapters())
	}
	return a.Open(ctx, cfg)
}
