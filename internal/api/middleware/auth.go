package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/d60-Lab/quote-inbox/internal/model"
	"github.com/d60-Lab/quote-inbox/internal/service"
	"github.com/d60-Lab/quote-inbox/pkg/response"
)

const viewerKey = "inbox.viewer"

// Claims 令牌由上游身份服务签发；sub 为用户 ID
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Auth 校验 HS256 Bearer 令牌并把查看者写入上下文
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *gin.Context) {
		raw, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			response.Unauthorized(c, "missing bearer token")
			return
		}

		var claims Claims
		_, err := parser.ParseWithClaims(strings.TrimSpace(raw), &claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil {
			response.Unauthorized(c, "invalid token")
			return
		}

		role, _ := model.ParseRole(claims.Role)
		c.Set(viewerKey, service.Viewer{
			Role:   role,
			UserID: claims.Subject,
			Email:  claims.Email,
		})
		c.Next()
	}
}

// ViewerFrom 读取 Auth 写入的查看者
func ViewerFrom(c *gin.Context) (service.Viewer, bool) {
	v, ok := c.Get(viewerKey)
	if !ok {
		return service.Viewer{}, false
	}
	viewer, ok := v.(service.Viewer)
	return viewer, ok
}
