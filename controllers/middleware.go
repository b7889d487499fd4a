package controllers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"inquest/models"
)

// RequireAuth accepts requests carrying a known access token in the
// X-Access-Token header and records the owning role on the context.
func RequireAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Access-Token")
		if len(token) > 0 {
			var accessToken models.AccessToken
			tx := db.First(&accessToken, "token = ?", token)
			if tx.Error == nil {
				c.Set("roleID", accessToken.RoleID)
				c.Next()
				return
			}
		}

		RespondForbidden(c)
	}
}

func CurrentRoleID(c *gin.Context) uint {
	return c.GetUint("roleID")
}
