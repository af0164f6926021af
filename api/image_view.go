package api

import (
	"errors"
	"net/http"
	"strconv"

	"bitwise74/image-board/internal/service"
	"bitwise74/image-board/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// imageID parses the :id path param. Anything that is not a positive
// integer can't name an image.
func imageID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}

	return uint(id), true
}

func (a *API) imageNotFound(c *gin.Context) {
	a.flashRedirect(c, flashDanger, "Image not found.", "/explore")
}

func (a *API) ImageView(c *gin.Context) {
	id, ok := imageID(c)
	if !ok {
		a.imageNotFound(c)
		return
	}

	user := middleware.CurrentUser(c)

	img, err := a.Images.Get(c.Request.Context(), user, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			a.imageNotFound(c)
			return
		}

		a.internalError(c, err, "Failed to fetch image")
		return
	}

	a.render(c, http.StatusOK, "upload_done.html", gin.H{
		"title": img.Title,
		"image": img,
		"owner": img.OwnedBy(user),
	})
}
