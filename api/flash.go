package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	flashCookie     = "flash"
	flashPendingKey = "flashPending"
)

// Categories map to the CSS classes used by the templates
const (
	flashSuccess = "success"
	flashInfo    = "info"
	flashWarning = "warning"
	flashDanger  = "danger"
)

type flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// addFlash queues a one-time message shown on the next rendered page
func (a *API) addFlash(c *gin.Context, category, message string) {
	var pending []flash
	if v, ok := c.Get(flashPendingKey); ok {
		pending = v.([]flash)
	} else {
		pending = readFlashes(c)
	}

	pending = append(pending, flash{Category: category, Message: message})
	c.Set(flashPendingKey, pending)

	raw, err := json.Marshal(pending)
	if err != nil {
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(raw), 0, "/", "", a.Cookie.Secure, true)
}

// popFlashes returns the queued messages and forgets them
func (a *API) popFlashes(c *gin.Context) []flash {
	var out []flash
	if v, ok := c.Get(flashPendingKey); ok {
		out = v.([]flash)
		c.Set(flashPendingKey, []flash(nil))
	} else {
		out = readFlashes(c)
	}

	if _, err := c.Cookie(flashCookie); err == nil || len(out) > 0 {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(flashCookie, "", -1, "/", "", a.Cookie.Secure, true)
	}

	return out
}

func readFlashes(c *gin.Context) []flash {
	v, err := c.Cookie(flashCookie)
	if err != nil || v == "" {
		return nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return nil
	}

	var out []flash
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}

	return out
}

// flashRedirect is the usual way a form handler ends: a message and a redirect
func (a *API) flashRedirect(c *gin.Context, category, message, location string) {
	a.addFlash(c, category, message)
	c.Redirect(http.StatusFound, location)
	c.Abort()
}
