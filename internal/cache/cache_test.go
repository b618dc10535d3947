package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNilClientIsAnEmptyCache(t *testing.T) {
	var c *Client
	ctx := context.Background()

	data, err := c.Get(ctx, "user:1")
	assert.NoError(t, err)
	assert.Nil(t, data)

	assert.NoError(t, c.Set(ctx, "user:1", []byte("{}"), time.Minute))
	assert.NoError(t, c.Delete(ctx, "user:1", "managers:options"))

	var dst map[string]any
	assert.False(t, c.GetJSON(ctx, "user:1", &dst))
	c.SetJSON(ctx, "user:1", map[string]any{"id": 1}, time.Minute)
	c.SetJSONIfAbsent(ctx, "user:1", map[string]any{"id": 1}, time.Minute)

	assert.Error(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestUnreachableRedisReadsAsMiss(t *testing.T) {
	c := New("127.0.0.1:1", "", 0)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := c.Get(ctx, "user:1")
	assert.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, c.Set(ctx, "user:1", []byte("{}"), time.Minute))
	c.SetJSONIfAbsent(ctx, "user:1", map[string]any{"id": 1}, time.Minute)

	var dst map[string]any
	assert.False(t, c.GetJSON(ctx, "user:1", &dst))
}
