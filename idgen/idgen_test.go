package idgen

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wenqiu/seckill/clog"
	"github.com/wenqiu/seckill/connector"
)

func newTestWorker(t *testing.T) (*Worker, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	conn, err := connector.NewRedis(&connector.RedisConfig{Addr: mr.Addr()}, connector.WithLogger(clog.Discard()))
	require.NoError(t, err)
	require.NoError(t, conn.Connect(context.Background()))
	t.Cleanup(func() { _ = conn.Close() })

	worker, err := New(conn, nil, WithLogger(clog.Discard()))
	require.NoError(t, err)
	return worker, mr
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, ErrConnectorNil)
}

func TestNextID_Unique(t *testing.T) {
	worker, _ := newTestWorker(t)
	ctx := context.Background()

	seen := make(map[int64]bool)
	for i := 0; i < 100; i++ {
		id, err := worker.NextID(ctx, "order")
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
}

func TestNextID_ConcurrentUnique(t *testing.T) {
	worker, _ := newTestWorker(t)
	ctx := context.Background()

	const (
		goroutines = 10
		perWorker  = 50
	)

	var (
		mu  sync.Mutex
		ids = make(map[int64]bool)
		wg  sync.WaitGroup
	)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				id, err := worker.NextID(ctx, "order")
				if err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				ids[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, ids, goroutines*perWorker)
}

func TestNextID_TimestampBits(t *testing.T) {
	worker, _ := newTestWorker(t)

	fixed := time.Date(2023, 6, 17, 12, 0, 0, 0, time.UTC)
	worker.now = func() time.Time { return fixed }

	id, err := worker.NextID(context.Background(), "order")
	require.NoError(t, err)

	wantTimestamp := fixed.Unix() - defaultEpoch
	assert.Equal(t, wantTimestamp, id>>sequenceBits)
	assert.Equal(t, int64(1), id&(1<<sequenceBits-1))
}

func TestNextID_NamespacesIndependent(t *testing.T) {
	worker, _ := newTestWorker(t)
	ctx := context.Background()

	id1, err := worker.NextID(ctx, "order")
	require.NoError(t, err)
	id2, err := worker.NextID(ctx, "refund")
	require.NoError(t, err)

	// 两个命名空间各自从 1 开始计数
	assert.Equal(t, int64(1), id1&(1<<sequenceBits-1))
	assert.Equal(t, int64(1), id2&(1<<sequenceBits-1))
}

func TestNextID_DayRollover(t *testing.T) {
	worker, mr := newTestWorker(t)
	ctx := context.Background()

	day1 := time.Date(2023, 6, 17, 23, 59, 59, 0, time.UTC)
	worker.now = func() time.Time { return day1 }
	_, err := worker.NextID(ctx, "order")
	require.NoError(t, err)
	_, err = worker.NextID(ctx, "order")
	require.NoError(t, err)

	// 跨天后计数器重新从 1 开始
	day2 := day1.Add(time.Second)
	worker.now = func() time.Time { return day2 }
	id, err := worker.NextID(ctx, "order")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id&(1<<sequenceBits-1))

	// 旧计数器带有过期时间
	ttl := mr.TTL("seq:order:2023:06:17")
	assert.Greater(t, ttl, time.Duration(0))
}
