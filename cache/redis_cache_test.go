package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRedisCache(t *testing.T) {
	Convey("测试 RedisCache", t, func() {
		server, err := miniredis.Run()
		So(err, ShouldBeNil)
		defer server.Close()

		ctx := context.Background()
		redisCache, err := NewRedisCacheWithOptions(&RedisCacheOptions{Endpoint: server.Addr()})
		So(err, ShouldBeNil)
		defer redisCache.Close()

		Convey("保存后加载返回相同快照", func() {
			snapshot := testSnapshot()
			So(redisCache.Save(ctx, "myproject_metadata", snapshot), ShouldBeNil)

			loaded, err := redisCache.Load(ctx, "myproject_metadata")
			So(err, ShouldBeNil)
			So(loaded.Fingerprint, ShouldEqual, snapshot.Fingerprint)
			So(loaded.TableNames(), ShouldResemble, []string{"users"})
		})

		Convey("不存在的缓存名返回 ErrCacheMiss", func() {
			_, err := redisCache.Load(ctx, "missing")
			So(err, ShouldEqual, ErrCacheMiss)
		})

		Convey("损坏的缓存值按 miss 处理", func() {
			server.Set("dbx:metadata:corrupt", "not a snapshot")

			_, err := redisCache.Load(ctx, "corrupt")
			So(err, ShouldEqual, ErrCacheMiss)
		})

		Convey("Invalidate 后加载 miss", func() {
			So(redisCache.Save(ctx, "stale", testSnapshot()), ShouldBeNil)
			So(redisCache.Invalidate(ctx, "stale"), ShouldBeNil)

			_, err := redisCache.Load(ctx, "stale")
			So(err, ShouldEqual, ErrCacheMiss)
		})

		Convey("过期时间生效", func() {
			expiringCache, err := NewRedisCacheWithOptions(&RedisCacheOptions{
				Endpoint:   server.Addr(),
				Expiration: time.Second,
			})
			So(err, ShouldBeNil)
			defer expiringCache.Close()

			So(expiringCache.Save(ctx, "expiring", testSnapshot()), ShouldBeNil)
			server.FastForward(2 * time.Second)

			_, err = expiringCache.Load(ctx, "expiring")
			So(err, ShouldEqual, ErrCacheMiss)
		})

		Convey("连不上服务器时创建失败", func() {
			_, err := NewRedisCacheWithOptions(&RedisCacheOptions{Endpoint: "localhost:1"})
			So(err, ShouldNotBeNil)
		})
	})
}
