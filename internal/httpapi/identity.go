package httpapi

import (
	"promo-eventserver/pkg/errutil"

	"github.com/gin-gonic/gin"
)

const (
	headerUserID   = "X-User-Id"
	headerUserRole = "X-User-Role"

	roleAdmin = "ADMIN"

	ctxUserID   = "user_id"
	ctxUserRole = "user_role"
)

func identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxUserID, c.GetHeader(headerUserID))
		c.Set(ctxUserRole, c.GetHeader(headerUserRole))
		c.Next()
	}
}

func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxUserID) == "" {
			_ = c.Error(errutil.Unauthorized("IDENTITY_MISSING", "caller identity header missing"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxUserRole) != roleAdmin {
			_ = c.Error(errutil.Forbidden("IDENTITY_NOT_ADMIN", "admin role required"))
			c.Abort()
			return
		}
		c.Next()
	}
}
