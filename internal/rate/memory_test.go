package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterFixedWindow(t *testing.T) {
	l := NewMemoryLimiter(2, time.Minute)
	base := time.Date(2026, 1, 1, 10, 0, 10, 0, time.UTC)
	l.now = func() time.Time { return base }
	ctx := context.Background()

	r, err := l.Allow(ctx, "1.2.3.4|alice")
	require.NoError(t, err)
	assert.True(t, r.Allowed)
	assert.EqualValues(t, 1, r.Remaining)

	r, _ = l.Allow(ctx, "1.2.3.4|alice")
	assert.True(t, r.Allowed)

	r, _ = l.Allow(ctx, "1.2.3.4|alice")
	assert.False(t, r.Allowed)
	assert.EqualValues(t, 3, r.CurrentHits)
	assert.Equal(t, 50*time.Second, r.RetryAfter)

	// otra clave no comparte ventana
	r, _ = l.Allow(ctx, "1.2.3.4|bob")
	assert.True(t, r.Allowed)

	// ventana siguiente
	l.now = func() time.Time { return base.Add(time.Minute) }
	r, _ = l.Allow(ctx, "1.2.3.4|alice")
	assert.True(t, r.Allowed)
}
