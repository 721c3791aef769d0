package util

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成一个标准的 UUID (v4)
func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateShortUUID 生成一个不带中划线的短 UUID
func GenerateShortUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// GenerateID 生成 20 位的带前缀 ID，例如 S1f0c...（会话）、K9ab2...（知识切片）
func GenerateID(prefix string) string {
	raw := GenerateShortUUID()
	n := 20 - len(prefix)
	if n <= 0 {
		return prefix
	}
	return prefix + raw[:n]
}

// GenerateAPIKey 生成租户的 widget/webhook 访问密钥
func GenerateAPIKey() string {
	return "cdk_" + GenerateShortUUID() + GenerateShortUUID()[:16]
}
