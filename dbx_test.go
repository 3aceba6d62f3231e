package dbx

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseDriver(t *testing.T) {
	Convey("测试 ParseDriver 方法", t, func() {
		Convey("标准名称", func() {
			for name, expected := range map[string]Driver{
				"mysql":    DriverMySQL,
				"postgres": DriverPostgres,
				"sqlite":   DriverSQLite,
			} {
				driver, err := ParseDriver(name)
				So(err, ShouldBeNil)
				So(driver, ShouldEqual, expected)
			}
		})

		Convey("常见别名", func() {
			for name, expected := range map[string]Driver{
				"postgresql": DriverPostgres,
				"pgsql":      DriverPostgres,
				"sqlite3":    DriverSQLite,
				"MySQL":      DriverMySQL,
				" sqlite ":   DriverSQLite,
			} {
				driver, err := ParseDriver(name)
				So(err, ShouldBeNil)
				So(driver, ShouldEqual, expected)
			}
		})

		Convey("未知类型返回错误", func() {
			_, err := ParseDriver("oracle")
			So(err, ShouldNotBeNil)

			_, err = ParseDriver("")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestValidateOptions(t *testing.T) {
	type options struct {
		Level string `validate:"omitempty,oneof=debug info"`
	}

	Convey("测试 ValidateOptions 方法", t, func() {
		Convey("nil 和非结构体直接通过", func() {
			So(ValidateOptions(nil), ShouldBeNil)
			So(ValidateOptions((*options)(nil)), ShouldBeNil)
			So(ValidateOptions("text"), ShouldBeNil)
		})

		Convey("校验 validate 标签", func() {
			So(ValidateOptions(&options{Level: "info"}), ShouldBeNil)
			So(ValidateOptions(&options{Level: "verbose"}), ShouldNotBeNil)
		})
	})
}
