package api

import (
	"errors"

	"bitwise74/image-board/internal/service"
	"bitwise74/image-board/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ImageDelete only hides the image, its file stays in storage
func (a *API) ImageDelete(c *gin.Context) {
	id, ok := imageID(c)
	if !ok {
		a.imageNotFound(c)
		return
	}

	user := middleware.CurrentUser(c)

	err := a.Images.SoftDelete(c.Request.Context(), user, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			a.imageNotFound(c)
		case errors.Is(err, service.ErrForbidden):
			a.flashRedirect(c, flashDanger, "You don't have permission to delete this image.", "/explore")
		default:
			a.internalError(c, err, "Failed to delete image")
		}
		return
	}

	zap.L().Info("Image deleted",
		zap.Uint("imageID", id),
		zap.String("userID", user.ID),
		zap.String("requestID", middleware.RequestID(c)),
	)

	a.flashRedirect(c, flashDanger, "Image deleted!", "/explore")
}
