package shop

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wenqiu/seckill/cache"
	"github.com/wenqiu/seckill/clog"
	"github.com/wenqiu/seckill/testkit"
)

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	ctx := context.Background()

	mr := testkit.NewMiniRedis(t)
	redisConn := testkit.NewRedisConnector(t, mr)
	database := testkit.NewSQLiteDB(t)

	cacheClient, err := cache.New(redisConn, &cache.Config{Prefix: "cache:"}, cache.WithLogger(clog.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cacheClient.Close() })

	svc, err := New(database, cacheClient, &Config{}, WithLogger(clog.Discard()))
	require.NoError(t, err)
	require.NoError(t, svc.Migrate(ctx))
	return svc, mr
}

func seedShop(t *testing.T, svc *Service, id int64, name string) {
	t.Helper()
	require.NoError(t, svc.db.DB(context.Background()).Create(&Shop{
		ID: id, Name: name, TypeID: 1, Address: "somewhere",
	}).Error)
}

func TestGetByID(t *testing.T) {
	svc, mr := newTestService(t)
	seedShop(t, svc, 1, "cafe")
	ctx := context.Background()

	got, err := svc.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "cafe", got.Name)
	assert.True(t, mr.Exists("cache:shop:1"))

	// 缓存命中
	got, err = svc.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "cafe", got.Name)
}

func TestGetByID_NegativeCaching(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetByID(ctx, 404)
	assert.ErrorIs(t, err, ErrShopNotFound)
	// 空值标记已写入，后续未命中不再回源
	assert.True(t, mr.Exists("cache:shop:404"))

	_, err = svc.GetByID(ctx, 404)
	assert.ErrorIs(t, err, ErrShopNotFound)
}

func TestHotShop_WarmAndRead(t *testing.T) {
	svc, _ := newTestService(t)
	seedShop(t, svc, 1, "hot cafe")
	ctx := context.Background()

	// 未预热不回源
	_, err := svc.GetHotByID(ctx, 1)
	assert.ErrorIs(t, err, ErrShopNotFound)

	require.NoError(t, svc.Warm(ctx, 1, time.Minute))
	got, err := svc.GetHotByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "hot cafe", got.Name)

	assert.ErrorIs(t, svc.Warm(ctx, 999, time.Minute), ErrShopNotFound)
}

func TestUpdate_InvalidatesCache(t *testing.T) {
	svc, mr := newTestService(t)
	seedShop(t, svc, 1, "old name")
	ctx := context.Background()

	// 先读一次填缓存
	_, err := svc.GetByID(ctx, 1)
	require.NoError(t, err)
	require.True(t, mr.Exists("cache:shop:1"))

	require.NoError(t, svc.Update(ctx, &Shop{ID: 1, Name: "new name"}))
	assert.False(t, mr.Exists("cache:shop:1"), "update must invalidate the cached entry")

	got, err := svc.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "new name", got.Name)
}

func TestUpdate_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Update(ctx, nil), ErrIDRequired)
	assert.ErrorIs(t, svc.Update(ctx, &Shop{Name: "no id"}), ErrIDRequired)
	assert.ErrorIs(t, svc.Update(ctx, &Shop{ID: 999, Name: "missing"}), ErrShopNotFound)
}

func TestListTypes(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	// 空库返回空列表，不缓存
	types, err := svc.ListTypes(ctx)
	require.NoError(t, err)
	assert.Empty(t, types)
	assert.False(t, mr.Exists("cache:shop:types"))

	for i, name := range []string{"ktv", "food", "spa"} {
		require.NoError(t, svc.db.DB(ctx).Create(&ShopType{
			ID: int64(i + 1), Name: name, Sort: 3 - i,
		}).Error)
	}

	types, err = svc.ListTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 3)
	// 按 Sort 升序
	assert.Equal(t, "spa", types[0].Name)
	assert.Equal(t, "ktv", types[2].Name)
	assert.True(t, mr.Exists("cache:shop:types"))

	// 第二次走缓存
	cached, err := svc.ListTypes(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 3)
	assert.Equal(t, "spa", cached[0].Name)
}
