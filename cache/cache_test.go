package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wenqiu/seckill/clog"
	"github.com/wenqiu/seckill/testkit"
)

type testShop struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func newTestClient(t *testing.T, cfg *Config) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := testkit.NewMiniRedis(t)
	conn := testkit.NewRedisConnector(t, mr)

	if cfg == nil {
		cfg = &Config{Prefix: "test:"}
	}
	client, err := New(conn, cfg, WithLogger(clog.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestNew_Validation(t *testing.T) {
	conn := testkit.NewRedisConnector(t, testkit.NewMiniRedis(t))

	_, err := New(nil, &Config{})
	require.Error(t, err)

	_, err = New(conn, nil)
	require.Error(t, err)

	_, err = New(conn, &Config{Serializer: "xml"})
	require.Error(t, err)

	client, err := New(conn, &Config{Serializer: "msgpack"})
	require.NoError(t, err)
	_ = client.Close()
}

func TestGetWithPassThrough_FillsOnMiss(t *testing.T) {
	client, _ := newTestClient(t, nil)
	ctx := context.Background()

	var calls atomic.Int64
	fallback := func(ctx context.Context, id int64) (*testShop, error) {
		calls.Add(1)
		return &testShop{ID: id, Name: "coffee"}, nil
	}

	got, err := GetWithPassThrough(ctx, client, "shop:", int64(1), time.Minute, fallback)
	require.NoError(t, err)
	assert.Equal(t, "coffee", got.Name)
	assert.Equal(t, int64(1), calls.Load())

	// 第二次读命中缓存，不再回源
	got, err = GetWithPassThrough(ctx, client, "shop:", int64(1), time.Minute, fallback)
	require.NoError(t, err)
	assert.Equal(t, "coffee", got.Name)
	assert.Equal(t, int64(1), calls.Load())
}

func TestGetWithPassThrough_NegativeCaching(t *testing.T) {
	client, mr := newTestClient(t, &Config{Prefix: "test:", NullTTL: 30 * time.Second})
	ctx := context.Background()

	var calls atomic.Int64
	fallback := func(ctx context.Context, id int64) (*testShop, error) {
		calls.Add(1)
		return nil, nil
	}

	_, err := GetWithPassThrough(ctx, client, "shop:", int64(404), time.Minute, fallback)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(1), calls.Load())

	// 空值标记拦截后续回源
	_, err = GetWithPassThrough(ctx, client, "shop:", int64(404), time.Minute, fallback)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(1), calls.Load())

	// 空值标记过期后重新回源
	mr.FastForward(31 * time.Second)
	_, err = GetWithPassThrough(ctx, client, "shop:", int64(404), time.Minute, fallback)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(2), calls.Load())
}

func TestGetWithPassThrough_ConcurrentMissStorm(t *testing.T) {
	client, _ := newTestClient(t, nil)
	ctx := context.Background()

	const readers = 50

	var (
		calls   atomic.Int64
		release = make(chan struct{})
		started sync.WaitGroup
		done    sync.WaitGroup
	)
	fallback := func(ctx context.Context, id int64) (*testShop, error) {
		calls.Add(1)
		<-release
		return &testShop{ID: id, Name: "hot"}, nil
	}

	started.Add(readers)
	done.Add(readers)
	for i := 0; i < readers; i++ {
		go func() {
			defer done.Done()
			started.Done()
			got, err := GetWithPassThrough(ctx, client, "shop:", int64(9), time.Minute, fallback)
			if err != nil || got.Name != "hot" {
				t.Errorf("unexpected result: %v %v", got, err)
			}
		}()
	}

	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	done.Wait()

	// 并发未命中被合并，回源次数远小于请求数
	assert.LessOrEqual(t, calls.Load(), int64(2))
}

func TestGetWithPassThrough_FallbackError(t *testing.T) {
	client, _ := newTestClient(t, nil)

	wantErr := assert.AnError
	_, err := GetWithPassThrough(context.Background(), client, "shop:", int64(1), time.Minute,
		func(ctx context.Context, id int64) (*testShop, error) {
			return nil, wantErr
		})
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
}

func TestGetWithLogicalExpire_MissWithoutFallback(t *testing.T) {
	client, _ := newTestClient(t, nil)

	var calls atomic.Int64
	_, err := GetWithLogicalExpire(context.Background(), client, "shop:", int64(1), time.Minute,
		func(ctx context.Context, id int64) (*testShop, error) {
			calls.Add(1)
			return &testShop{ID: id}, nil
		})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(0), calls.Load(), "cold key must not reach the durable store")
}

func TestGetWithLogicalExpire_FreshHit(t *testing.T) {
	client, _ := newTestClient(t, nil)
	ctx := context.Background()

	require.NoError(t, client.SetWithLogicalExpire(ctx, "shop:1", &testShop{ID: 1, Name: "fresh"}, time.Minute))

	var calls atomic.Int64
	got, err := GetWithLogicalExpire(ctx, client, "shop:", int64(1), time.Minute,
		func(ctx context.Context, id int64) (*testShop, error) {
			calls.Add(1)
			return nil, nil
		})
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.Name)
	assert.Equal(t, int64(0), calls.Load())
}

func TestGetWithLogicalExpire_StaleServedAndRebuilt(t *testing.T) {
	client, _ := newTestClient(t, nil)
	ctx := context.Background()

	// 写入一个已经逻辑过期的值
	require.NoError(t, client.SetWithLogicalExpire(ctx, "shop:2", &testShop{ID: 2, Name: "stale"}, -time.Second))

	var calls atomic.Int64
	fallback := func(ctx context.Context, id int64) (*testShop, error) {
		calls.Add(1)
		return &testShop{ID: id, Name: "rebuilt"}, nil
	}

	// 过期后仍立即返回旧值
	got, err := GetWithLogicalExpire(ctx, client, "shop:", int64(2), time.Minute, fallback)
	require.NoError(t, err)
	assert.Equal(t, "stale", got.Name)

	// 异步重建最终写入新值
	assert.Eventually(t, func() bool {
		got, err := GetWithLogicalExpire(ctx, client, "shop:", int64(2), time.Minute, fallback)
		return err == nil && got.Name == "rebuilt"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGetWithLogicalExpire_SingleRebuildPerWindow(t *testing.T) {
	client, _ := newTestClient(t, nil)
	ctx := context.Background()

	require.NoError(t, client.SetWithLogicalExpire(ctx, "shop:3", &testShop{ID: 3, Name: "stale"}, -time.Second))

	var (
		calls   atomic.Int64
		release = make(chan struct{})
	)
	fallback := func(ctx context.Context, id int64) (*testShop, error) {
		calls.Add(1)
		<-release
		return &testShop{ID: id, Name: "rebuilt"}, nil
	}

	// 重建进行期间的并发过期读都返回旧值，且只有一个重建任务在跑
	for i := 0; i < 10; i++ {
		got, err := GetWithLogicalExpire(ctx, client, "shop:", int64(3), time.Minute, fallback)
		require.NoError(t, err)
		assert.Equal(t, "stale", got.Name)
	}
	close(release)

	assert.Eventually(t, func() bool {
		got, err := GetWithLogicalExpire(ctx, client, "shop:", int64(3), time.Minute, fallback)
		return err == nil && got.Name == "rebuilt"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), calls.Load())
}

func TestSetAndDelete(t *testing.T) {
	client, mr := newTestClient(t, nil)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "shop:5", &testShop{ID: 5, Name: "short-lived"}, time.Minute))
	assert.True(t, mr.Exists("test:shop:5"))

	require.NoError(t, client.Delete(ctx, "shop:5"))
	assert.False(t, mr.Exists("test:shop:5"))
}

func TestListOps(t *testing.T) {
	client, _ := newTestClient(t, nil)
	ctx := context.Background()

	types := []testShop{{ID: 1, Name: "food"}, {ID: 2, Name: "ktv"}}
	require.NoError(t, client.RPush(ctx, "shop:types", types[0], types[1]))

	got, err := LRange[testShop](ctx, client, "shop:types", 0, -1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "food", got[0].Name)
	assert.Equal(t, "ktv", got[1].Name)

	// 不存在的列表返回空切片
	empty, err := LRange[testShop](ctx, client, "shop:none", 0, -1)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
