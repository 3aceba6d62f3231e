package dbtype

import (
	"testing"

	"github.com/hatlonely/dbx"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegister(t *testing.T) {
	Convey("测试适配器注册表", t, func() {
		Convey("注册后可以按类型名查到", func() {
			So(Register(dbx.DriverPostgres, "test_point", Point{}), ShouldBeNil)

			adapter, ok := Lookup(dbx.DriverPostgres, "test_point")
			So(ok, ShouldBeTrue)
			So(adapter, ShouldEqual, "dbtype.Point")
		})

		Convey("类型名大小写不敏感", func() {
			So(Register(dbx.DriverPostgres, "Test_CIText", CIText("")), ShouldBeNil)

			_, ok := Lookup(dbx.DriverPostgres, "TEST_CITEXT")
			So(ok, ShouldBeTrue)
		})

		Convey("相同类型重复注册幂等", func() {
			So(Register(dbx.DriverPostgres, "test_circle", Circle{}), ShouldBeNil)
			So(Register(dbx.DriverPostgres, "test_circle", &Circle{}), ShouldBeNil)
		})

		Convey("不同类型重复注册返回错误", func() {
			So(Register(dbx.DriverPostgres, "test_conflict", Point{}), ShouldBeNil)
			So(Register(dbx.DriverPostgres, "test_conflict", Circle{}), ShouldNotBeNil)
		})

		Convey("不同数据库类型互不影响", func() {
			So(Register(dbx.DriverMySQL, "test_xml", XML("")), ShouldBeNil)

			_, ok := Lookup(dbx.DriverSQLite, "test_xml")
			So(ok, ShouldBeFalse)
		})

		Convey("空类型名返回错误", func() {
			So(Register(dbx.DriverPostgres, "", Point{}), ShouldNotBeNil)
		})
	})
}

func TestRegisterDefaults(t *testing.T) {
	Convey("测试 RegisterDefaults 方法", t, func() {
		So(RegisterDefaults(), ShouldBeNil)

		for _, typeName := range []string{"point", "polygon", "circle", "citext", "xml"} {
			_, ok := Lookup(dbx.DriverPostgres, typeName)
			So(ok, ShouldBeTrue)
		}

		Convey("重复调用幂等", func() {
			So(RegisterDefaults(), ShouldBeNil)
		})
	})
}
