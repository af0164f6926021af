package middleware

import (
	"context"
	"net/http"

	"bitwise74/image-board/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	UserKey   = "user"
	UserIDKey = "userID"
)

type UserResolver interface {
	ResolveCurrentUser(ctx context.Context, token string) (*model.User, error)
}

// SessionCookie describes the cookie holding the session token
type SessionCookie struct {
	Name   string
	Secure bool
}

func (s SessionCookie) Set(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, token, maxAge, "/", "", s.Secure, true)
}

func (s SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, "", -1, "/", "", s.Secure, true)
}

// NewSessionMiddleware resolves the user behind the session cookie and stores it
// in the context. Requests without a valid session carry on anonymously.
func NewSessionMiddleware(r UserResolver, cookie SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookie.Name)
		if err != nil || token == "" {
			c.Next()
			return
		}

		user, err := r.ResolveCurrentUser(c.Request.Context(), token)
		if err != nil {
			zap.L().Error("Failed to resolve session", zap.Error(err), zap.String("requestID", RequestID(c)))
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		if user == nil {
			// Stale or forged cookie, drop it
			cookie.Clear(c)
			c.Next()
			return
		}

		c.Set(UserKey, user)
		c.Set(UserIDKey, user.ID)
		c.Next()
	}
}

// CurrentUser returns the logged in user of the request or nil
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil
	}

	u, _ := v.(*model.User)
	return u
}
