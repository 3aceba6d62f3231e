package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBoltCache(t *testing.T) {
	Convey("测试 BoltCache", t, func() {
		dir, err := os.MkdirTemp("", "dbx_bolt_cache_*")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)

		ctx := context.Background()
		boltCache, err := NewBoltCacheWithOptions(&BoltCacheOptions{Path: filepath.Join(dir, "metadata.db")})
		So(err, ShouldBeNil)
		defer boltCache.Close()

		Convey("保存后加载返回相同快照", func() {
			snapshot := testSnapshot()
			So(boltCache.Save(ctx, "myproject_metadata", snapshot), ShouldBeNil)

			loaded, err := boltCache.Load(ctx, "myproject_metadata")
			So(err, ShouldBeNil)
			So(loaded.Fingerprint, ShouldEqual, snapshot.Fingerprint)
			So(loaded.TableNames(), ShouldResemble, []string{"users"})
		})

		Convey("不存在的缓存名返回 ErrCacheMiss", func() {
			_, err := boltCache.Load(ctx, "missing")
			So(err, ShouldEqual, ErrCacheMiss)
		})

		Convey("Invalidate 后加载 miss", func() {
			So(boltCache.Save(ctx, "stale", testSnapshot()), ShouldBeNil)
			So(boltCache.Invalidate(ctx, "stale"), ShouldBeNil)

			_, err := boltCache.Load(ctx, "stale")
			So(err, ShouldEqual, ErrCacheMiss)
		})

		Convey("多个缓存名共用一个数据库文件", func() {
			first := testSnapshot()
			second := testSnapshot()
			second.Fingerprint = "fedcba9876543210"

			So(boltCache.Save(ctx, "project_a", first), ShouldBeNil)
			So(boltCache.Save(ctx, "project_b", second), ShouldBeNil)

			loadedA, err := boltCache.Load(ctx, "project_a")
			So(err, ShouldBeNil)
			loadedB, err := boltCache.Load(ctx, "project_b")
			So(err, ShouldBeNil)
			So(loadedA.Fingerprint, ShouldNotEqual, loadedB.Fingerprint)
		})

		Convey("缺少路径返回错误", func() {
			_, err := NewBoltCacheWithOptions(&BoltCacheOptions{})
			So(err, ShouldNotBeNil)
		})
	})
}
