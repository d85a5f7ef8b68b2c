package middleware

import (
	"net/http"

	"forum-backend/internal/model"
	"forum-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminMiddleware 确保只有管理员可以访问某些路由，
// 必须挂在 AuthMiddleware 之后
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("current_user")
		if !exists {
			util.Logger.Warn("管理员中间件缺少用户上下文")
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "需要认证",
				"error":   "user not found in context",
			})
			c.Abort()
			return
		}

		user, ok := value.(*model.User)
		if !ok || !user.IsAdmin() {
			util.Logger.Warn("非管理员访问",
				zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": "需要管理员权限",
				"error":   "admin access required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
