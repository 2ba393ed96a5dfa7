package jwt

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestJWT(t *testing.T) {
	Convey("JWT工具", t, func() {
		j := NewJWT("test-secret", time.Hour)

		Convey("生成和验证往返", func() {
			token, err := j.GenerateToken("user-1", "parent@example.com", "user")
			So(err, ShouldBeNil)
			So(token, ShouldNotBeEmpty)

			claims, err := j.ValidateToken(token)
			So(err, ShouldBeNil)
			So(claims.UserID, ShouldEqual, "user-1")
			So(claims.Email, ShouldEqual, "parent@example.com")
			So(claims.Role, ShouldEqual, "user")
		})

		Convey("密钥不匹配时验证失败", func() {
			token, _ := j.GenerateToken("user-1", "parent@example.com", "user")

			other := NewJWT("different-secret", time.Hour)
			_, err := other.ValidateToken(token)
			So(err, ShouldEqual, ErrInvalidToken)
		})

		Convey("过期Token验证失败", func() {
			expired := NewJWT("test-secret", -time.Minute)
			token, _ := expired.GenerateToken("user-1", "parent@example.com", "user")

			_, err := expired.ValidateToken(token)
			So(err, ShouldEqual, ErrExpiredToken)
		})

		Convey("畸形Token验证失败", func() {
			_, err := j.ValidateToken("not-a-jwt")
			So(err, ShouldEqual, ErrInvalidToken)
		})

		Convey("Refresh Token是随机的十六进制串", func() {
			a := GenerateRefreshToken()
			b := GenerateRefreshToken()
			So(a, ShouldNotBeEmpty)
			So(len(a), ShouldEqual, 64)
			So(a, ShouldNotEqual, b)
		})
	})
}
