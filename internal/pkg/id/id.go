package id

import (
	"strings"

	"github.com/google/uuid"
)

// New 生成新的UUID字符串
func New() string {
	return uuid.New().String()
}

// NewShort 生成去掉连字符的UUID，适合做URL片段
func NewShort() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// IsValid 校验是否为合法UUID
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
