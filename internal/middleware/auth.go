package middleware

import (
	"context"
	"strings"
	"time"

	"forum-backend/internal/errors"
	"forum-backend/internal/service"
	"forum-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// extractToken 从 Authorization 头或 token Cookie 中取出令牌
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	if cookie, err := c.Cookie("token"); err == nil {
		return cookie
	}
	return ""
}

func AuthMiddleware(userService *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		token := extractToken(c)
		if token == "" {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "需要认证"))
			c.Abort()
			return
		}

		if userService.IsTokenBlacklisted(token) {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "令牌已被撤销"))
			c.Abort()
			return
		}

		userID, err := util.ValidateToken(token)
		if err != nil {
			errors.HandleError(c, errors.Wrap(errors.ErrUnauthorized, "无效或过期的令牌", err))
			c.Abort()
			return
		}

		objectID, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			errors.HandleError(c, errors.Wrap(errors.ErrUnauthorized, "无效的用户ID", err))
			c.Abort()
			return
		}

		user, err := userService.GetUserByID(objectID)
		if err != nil {
			errors.HandleError(c, errors.Wrap(errors.ErrUnauthorized, "用户不存在", err))
			c.Abort()
			return
		}
		if !user.IsActive {
			errors.HandleError(c, errors.New(errors.ErrUserInactive, "账号已停用"))
			c.Abort()
			return
		}

		c.Set("user_id", objectID)
		c.Set("current_user", user)
		c.Set("token", token)

		select {
		case <-ctx.Done():
			errors.HandleError(c, errors.New(errors.ErrTimeout, "请求超时"))
			c.Abort()
			return
		default:
			c.Next()
		}
	}
}

// OptionalAuthMiddleware 带令牌的请求解析出用户，匿名请求直接放行。
// 公开列表和公告接口用它区分游客与会员。
func OptionalAuthMiddleware(userService *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" || userService.IsTokenBlacklisted(token) {
			c.Next()
			return
		}

		userID, err := util.ValidateToken(token)
		if err != nil {
			c.Next()
			return
		}
		objectID, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			c.Next()
			return
		}
		user, err := userService.GetUserByID(objectID)
		if err != nil || !user.IsActive {
			c.Next()
			return
		}

		c.Set("user_id", objectID)
		c.Set("current_user", user)
		c.Set("token", token)
		c.Next()
	}
}
