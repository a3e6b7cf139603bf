package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// BearerToken は Authorization ヘッダからベアラートークンを取り出します。
// スキーム名は大文字小文字を区別しません。見つからなければ空文字を返します。
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
