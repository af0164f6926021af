package api

import (
	"errors"
	"net/http"
	"strings"

	"bitwise74/image-board/internal/service"
	"bitwise74/image-board/pkg/middleware"

	"github.com/gin-gonic/gin"
)

func (a *API) ImageListMine(c *gin.Context) {
	images, err := a.Images.ListMine(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			a.flashRedirect(c, flashWarning, "Please log in to see your uploads.", "/login")
			return
		}

		a.internalError(c, err, "Failed to list user images")
		return
	}

	a.render(c, http.StatusOK, "my_uploads.html", gin.H{
		"title":  "My uploads",
		"images": images,
	})
}

// ImageExplore lists public images, optionally filtered by ?tag= and
// ordered by ?sort=newest|oldest
func (a *API) ImageExplore(c *gin.Context) {
	tag := strings.ToLower(strings.TrimSpace(c.Query("tag")))
	sort := service.ParseSort(c.Query("sort"))

	images, err := a.Images.Explore(c.Request.Context(), service.ExploreQuery{
		Tag:  tag,
		Sort: sort,
	})
	if err != nil {
		a.internalError(c, err, "Failed to list public images")
		return
	}

	a.render(c, http.StatusOK, "explore.html", gin.H{
		"title":      "Explore",
		"images":     images,
		"search_tag": tag,
		"sort":       sort,
	})
}
