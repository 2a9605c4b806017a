package closer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloser_LIFO(t *testing.T) {
	c := NewCloser(0)

	var (
		mu    sync.Mutex
		order []string
	)
	for _, name := range []string{"db", "redis", "http"} {
		c.AddFunc(name, func() {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		})
	}

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, []string{"http", "redis", "db"}, order)
}

func TestCloser_CollectsErrors(t *testing.T) {
	c := NewCloser(0)
	c.Add("db", func(context.Context) error { return errors.New("boom") })
	c.AddFunc("cache", func() {})

	err := c.Close(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db: boom")
}

func TestCloser_ClosesOnce(t *testing.T) {
	c := NewCloser(0)
	calls := 0
	c.AddFunc("db", func() { calls++ })

	require.NoError(t, c.Close(context.Background()))
	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestCloser_ForcedAfterTimeout(t *testing.T) {
	c := NewCloser(100 * time.Millisecond)

	forced := make(chan struct{}, 1)
	c.Add("db", func(ctx context.Context) error {
		forced <- struct{}{}
		return nil
	})
	c.Add("slow", func(ctx context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Close(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shutdown interrupted")

	select {
	case <-forced:
	case <-time.After(time.Second):
		t.Fatal("remaining resource was not force-closed")
	}
}
