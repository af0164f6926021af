package api

import (
	"errors"
	"net/http"

	"bitwise74/image-board/internal/service"
	"bitwise74/image-board/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

func (a *API) UserLoginPage(c *gin.Context) {
	a.render(c, http.StatusOK, "login.html", gin.H{"title": "Log in"})
}

func (a *API) UserLogin(c *gin.Context) {
	requestID := middleware.RequestID(c)

	var data loginForm
	if err := c.ShouldBind(&data); err != nil {
		zap.L().Debug("Can't bind login form", zap.Error(err), zap.String("requestID", requestID))
		a.flashRedirect(c, flashDanger, "Invalid request body", "/login")
		return
	}

	id, err := a.Auth.Login(c.Request.Context(), data.Email, data.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			a.flashRedirect(c, flashDanger, "Invalid credentials!", "/login")
			return
		}

		a.internalError(c, err, "Failed to log in user")
		return
	}

	a.Cookie.Set(c, id.Token, int(a.Auth.MaxAge().Seconds()))

	zap.L().Info("User logged in", zap.String("userID", id.User.ID), zap.String("requestID", requestID))
	a.flashRedirect(c, flashSuccess, "Welcome "+id.User.Username+"!", "/")
}
