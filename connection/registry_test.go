package connection

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistry(t *testing.T) {
	Convey("测试 Registry", t, func() {
		dir, err := os.MkdirTemp("", "dbx_registry_*")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)

		registry := NewRegistry()
		defer registry.CloseAll()

		Convey("相同配置返回同一个句柄", func() {
			first, err := registry.GetOrOpen(sqliteOptions(dir, "same.db"))
			So(err, ShouldBeNil)

			second, err := registry.GetOrOpen(sqliteOptions(dir, "same.db"))
			So(err, ShouldBeNil)
			So(second, ShouldEqual, first)
		})

		Convey("不同配置返回不同句柄", func() {
			first, err := registry.GetOrOpen(sqliteOptions(dir, "a.db"))
			So(err, ShouldBeNil)

			second, err := registry.GetOrOpen(sqliteOptions(dir, "b.db"))
			So(err, ShouldBeNil)
			So(second, ShouldNotEqual, first)
		})

		Convey("Get 只查不建", func() {
			options := sqliteOptions(dir, "lookup.db")

			_, ok := registry.Get(options)
			So(ok, ShouldBeFalse)

			connection, err := registry.GetOrOpen(options)
			So(err, ShouldBeNil)

			found, ok := registry.Get(options)
			So(ok, ShouldBeTrue)
			So(found, ShouldEqual, connection)
		})

		Convey("Remove 后重新打开得到新句柄", func() {
			options := sqliteOptions(dir, "remove.db")

			first, err := registry.GetOrOpen(options)
			So(err, ShouldBeNil)
			So(registry.Remove(options), ShouldBeNil)

			second, err := registry.GetOrOpen(options)
			So(err, ShouldBeNil)
			So(second, ShouldNotEqual, first)
		})

		Convey("打开失败不登记", func() {
			_, err := registry.GetOrOpen(&ConnectionOptions{Driver: "oracle", Database: "x"})
			So(err, ShouldNotBeNil)
		})

		Convey("配置错误不会命中缓存的句柄", func() {
			_, err := registry.GetOrOpen(&ConnectionOptions{Driver: "sqlite"})
			So(err, ShouldNotBeNil)
		})
	})

	Convey("测试默认注册表", t, func() {
		dir, err := os.MkdirTemp("", "dbx_default_registry_*")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)
		defer DefaultRegistry.CloseAll()

		options := &ConnectionOptions{Driver: "sqlite", Database: filepath.Join(dir, "default.db")}

		first, err := GetOrOpen(options)
		So(err, ShouldBeNil)

		second, err := GetOrOpen(options)
		So(err, ShouldBeNil)
		So(second, ShouldEqual, first)
	})
}
