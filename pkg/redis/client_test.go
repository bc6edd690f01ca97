package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type cachedThing struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Runs only against a live Redis, e.g. REDIS_HOST=localhost go test ./pkg/redis/...
func TestClientJSONRoundTrip(t *testing.T) {
	if os.Getenv("REDIS_HOST") == "" {
		t.Skip("REDIS_HOST not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := NewClient(ctx, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	key := "marketreport:test:" + uuid.NewString()

	var miss cachedThing
	found, err := client.GetJSON(ctx, key, &miss)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, client.SetJSON(ctx, key, cachedThing{Name: "Alicante", Price: 1.5}, time.Minute))

	var got cachedThing
	found, err = client.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cachedThing{Name: "Alicante", Price: 1.5}, got)
}
