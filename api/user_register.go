package api

import (
	"errors"
	"net/http"

	"bitwise74/image-board/internal/service"
	"bitwise74/image-board/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type registerForm struct {
	Username string `form:"username"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

func (a *API) UserRegisterPage(c *gin.Context) {
	a.render(c, http.StatusOK, "register.html", gin.H{"title": "Register"})
}

func (a *API) UserRegister(c *gin.Context) {
	requestID := middleware.RequestID(c)

	var data registerForm
	if err := c.ShouldBind(&data); err != nil {
		zap.L().Debug("Can't bind register form", zap.Error(err), zap.String("requestID", requestID))
		a.flashRedirect(c, flashDanger, "Invalid request body", "/register")
		return
	}

	user, err := a.Auth.Register(c.Request.Context(), data.Username, data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateEmail):
			a.flashRedirect(c, flashDanger, "Email already registered!", "/register")
		case errors.Is(err, service.ErrDuplicateUsername):
			a.flashRedirect(c, flashDanger, "Username already taken!", "/register")
		case errors.Is(err, service.ErrInvalidInput):
			a.flashRedirect(c, flashDanger, err.Error(), "/register")
		default:
			a.internalError(c, err, "Failed to register user")
		}
		return
	}

	zap.L().Info("User registered", zap.String("userID", user.ID), zap.String("requestID", requestID))
	a.flashRedirect(c, flashSuccess, "Registration successful! You can now log in.", "/login")
}
