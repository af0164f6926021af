package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Heartbeat answers load balancer and docker health checks. It sits
// outside the session middleware so it never touches the database.
func (a *API) Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}
