package api

import (
	"bitwise74/image-board/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserLogout always ends with a cleared cookie, even if the server side
// session could not be removed
func (a *API) UserLogout(c *gin.Context) {
	if token, err := c.Cookie(a.Cookie.Name); err == nil && token != "" {
		if err := a.Auth.Logout(c.Request.Context(), token); err != nil {
			zap.L().Error("Failed to delete session", zap.Error(err), zap.String("requestID", middleware.RequestID(c)))
		}
	}

	a.Cookie.Clear(c)
	a.flashRedirect(c, flashInfo, "Logged out successfully.", "/login")
}
