package password

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPassword(t *testing.T) {
	Convey("密码加密与验证", t, func() {
		Convey("正确密码验证通过", func() {
			hash, err := Hash("hunter2secret")
			So(err, ShouldBeNil)
			So(hash, ShouldNotEqual, "hunter2secret")
			So(Verify("hunter2secret", hash), ShouldBeTrue)
		})

		Convey("错误密码验证失败", func() {
			hash, _ := Hash("hunter2secret")
			So(Verify("wrong-password", hash), ShouldBeFalse)
		})

		Convey("同一密码两次加密结果不同", func() {
			a, _ := Hash("hunter2secret")
			b, _ := Hash("hunter2secret")
			So(a, ShouldNotEqual, b)
		})
	})
}
