package password

import (
	"golang.org/x/crypto/bcrypt"
)

// bcrypt 的默认成本在交互式登录场景下延迟可接受
const hashCost = bcrypt.DefaultCost

// Hash 使用 bcrypt 加密密码
func Hash(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify 校验明文密码与哈希是否匹配
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
