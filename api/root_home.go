package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) Home(c *gin.Context) {
	a.render(c, http.StatusOK, "home.html", nil)
}
