package store

import (
	"errors"
	"sync"

	"github.com/dropDatabas3/dirportal/internal/domain/repository"
)

// ErrIdentityStoreNotConfigured indica que no hay identity store bindeado.
var ErrIdentityStoreNotConfigured = errors.New("identity store not configured")

// Binding mantiene la referencia al identity store activo.
// El store puede bindearse y desbindearse en caliente mientras el
// directorio atiende requests.
type Binding struct {
	mu      sync.RWMutex
	current repository.IdentityStore
}

// NewBinding crea un binding, opcionalmente con un store inicial.
func NewBinding(initial repository.IdentityStore) *Binding {
	return &Binding{current: initial}
}

// Bind instala s como store activo y devuelve el anterior (puede ser nil).
// El caller es responsable de cerrar el anterior.
func (b *Binding) Bind(s repository.IdentityStore) repository.IdentityStore {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev := b.current
	b.current = s
	return prev
}

// Unbind quita el store activo y lo devuelve.
func (b *Binding) Unbind() repository.IdentityStore {
	return b.Bind(nil)
}

// Current devuelve el store activo o ErrIdentityStoreNotConfigured.
func (b *Binding) Current() (repository.IdentityStore, error) {
	if b == nil {
		return nil, ErrIdentityStoreNotConfigured
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.current == nil {
		return nil, ErrIdentityStoreNotConfigured
	}
	return b.current, nil
}

// Bound indica si hay un store activo.
func (b *Binding) Bound() bool {
	_, err := b.Current()
	return err == nil
}
