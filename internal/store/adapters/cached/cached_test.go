package cached

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dropDatabas3/dirportal/internal/cache"
	"github.com/dropDatabas3/dirportal/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	repository.IdentityStore
	primaryCalls atomic.Int32
	namesCalls   atomic.Int32
	err          error
	delay        time.Duration
	closed       bool
}

func (c *countingStore) GetPrimaryDomainName(context.Context) (string, error) {
	c.primaryCalls.Add(1)
	time.Sleep(c.delay)
	return "PRIMARY", c.err
}

func (c *countingStore) GetDomainNames(context.Context) ([]string, error) {
	c.namesCalls.Add(1)
	return []string{"PRIMARY", "SECONDARY"}, c.err
}

func (c *countingStore) Close() error {
	c.closed = true
	return nil
}

func TestPrimaryDomainIsCached(t *testing.T) {
	inner := &countingStore{}
	s := Wrap(inner, cache.NewMemory("t", 0), time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := s.GetPrimaryDomainName(ctx)
		require.NoError(t, err)
		assert.Equal(t, "PRIMARY", got)
	}
	assert.Equal(t, int32(1), inner.primaryCalls.Load())

	s.Invalidate(ctx)
	_, _ = s.GetPrimaryDomainName(ctx)
	assert.Equal(t, int32(2), inner.primaryCalls.Load())
}

func TestConcurrentMissesCollapse(t *testing.T) {
	inner := &countingStore{delay: 50 * time.Millisecond}
	s := Wrap(inner, cache.NewMemory("t", 0), time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.GetPrimaryDomainName(context.Background())
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), inner.primaryCalls.Load())
}

func TestDomainNamesCachedAndCopied(t *testing.T) {
	inner := &countingStore{}
	s := Wrap(inner, cache.NewMemory("t", 0), time.Minute)
	ctx := context.Background()

	names, err := s.GetDomainNames(ctx)
	require.NoError(t, err)
	names[0] = "MUTATED"

	again, err := s.GetDomainNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"PRIMARY", "SECONDARY"}, again)
	assert.Equal(t, int32(1), inner.namesCalls.Load())
}

func TestErrorsAreNotCached(t *testing.T) {
	inner := &countingStore{err: errors.New("down")}
	s := Wrap(inner, cache.NewMemory("t", 0), time.Minute)

	_, err := s.GetPrimaryDomainName(context.Background())
	require.Error(t, err)
	_, err = s.GetPrimaryDomainName(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(2), inner.primaryCalls.Load())
}

func TestCloseClosesInner(t *testing.T) {
	inner := &countingStore{}
	s := Wrap(inner, cache.NewMemory("t", 0), time.Minute)
	require.NoError(t, s.Close())
	assert.True(t, inner.closed)
}

// gatedStore entrega su primario solo cuando se libera release.
type gatedStore struct {
	repository.IdentityStore
	name    string
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) GetPrimaryDomainName(context.Context) (string, error) {
	if g.entered != nil {
		close(g.entered)
		<-g.release
	}
	return g.name, nil
}

func (g *gatedStore) Close() error { return nil }

func TestLateFillFromClosedStoreDoesNotLeakIntoRebind(t *testing.T) {
	shared := cache.NewMemory("t", 0)
	old := &gatedStore{name: "OLD", entered: make(chan struct{}), release: make(chan struct{})}
	before := Wrap(old, shared, time.Minute)

	done := make(chan struct{})
	go func() {
		defer close(done)
		got, err := before.GetPrimaryDomainName(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, "OLD", got)
	}()
	<-old.entered

	require.NoError(t, before.Close())
	after := Wrap(&gatedStore{name: "NEW"}, shared, time.Minute)
	close(old.release)
	<-done

	got, err := after.GetPrimaryDomainName(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "NEW", got)
}

func TestWrappersOverSharedCacheAreIndependent(t *testing.T) {
	shared := cache.NewMemory("t", 0)
	a := Wrap(&gatedStore{name: "A"}, shared, time.Minute)
	b := Wrap(&gatedStore{name: "B"}, shared, time.Minute)
	ctx := context.Background()

	got, err := a.GetPrimaryDomainName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", got)
	got, err = b.GetPrimaryDomainName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "B", got)
}
