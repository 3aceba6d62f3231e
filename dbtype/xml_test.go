package dbtype

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestXML(t *testing.T) {
	Convey("测试 XML 编解码", t, func() {
		Convey("编码解码往返", func() {
			document := XML(`<user><name>alice</name></user>`)
			value, err := document.Value()
			So(err, ShouldBeNil)
			So(value, ShouldEqual, string(document))

			var decoded XML
			So(decoded.Scan(value), ShouldBeNil)
			So(decoded, ShouldEqual, document)
		})

		Convey("格式非法时写入侧报错", func() {
			_, err := XML(`<user><name>alice</user>`).Value()
			So(err, ShouldNotBeNil)

			_, err = XML(`<unclosed>`).Value()
			So(err, ShouldNotBeNil)

			_, err = XML("").Value()
			So(err, ShouldNotBeNil)
		})

		Convey("格式非法时读取侧报错", func() {
			var document XML
			So(document.Scan("<a><b></a></b>"), ShouldNotBeNil)
		})

		Convey("NULL 解析为空串", func() {
			document := XML("<a/>")
			So(document.Scan(nil), ShouldBeNil)
			So(document, ShouldEqual, XML(""))
		})
	})
}
