package feed

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobwas/hostring"
)

const testChannel = "hostring:membership"

func newRedisSource(t *testing.T) (*miniredis.Miniredis, *RedisSource) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	src, err := NewRedisSource(ctx, client, testChannel)
	require.NoError(t, err)
	return mr, src
}

func TestRedisSource(t *testing.T) {
	mr, src := newRedisSource(t)

	lines := []string{"add server1.com", "add server2.com", "remove server1.com"}
	for _, line := range lines {
		assert.Equal(t, 1, mr.Publish(testChannel, line))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for _, exp := range lines {
		act, err := src.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, exp, act)
	}

	require.NoError(t, src.Close())
	_, err := src.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestRedisSourceContext(t *testing.T) {
	_, src := newRedisSource(t)
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := src.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunRedis(t *testing.T) {
	mr, src := newRedisSource(t)
	c := new(hostring.Coordinator)

	done := make(chan error, 1)
	go func() {
		done <- Run(context.Background(), src, c)
	}()

	mr.Publish(testChannel, "add server1.com")
	mr.Publish(testChannel, "garbage")
	mr.Publish(testChannel, "add server2.com")
	mr.Publish(testChannel, "remove server1.com")

	require.Eventually(t, func() bool {
		nodes := c.Nodes()
		return len(nodes) == 1 && nodes[0] == "server2.com"
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, src.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("feed is not stopped after source close")
	}
}
