package api

import (
	"errors"
	"fmt"
	"net/http"

	"bitwise74/image-board/internal/service"
	"bitwise74/image-board/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type editForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	Tags        string `form:"tags"`
	Category    string `form:"category"`
	Visibility  string `form:"visibility"`
}

func (a *API) editFailed(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		a.imageNotFound(c)
	case errors.Is(err, service.ErrForbidden):
		a.flashRedirect(c, flashDanger, "You don't have permission to edit this image.", "/explore")
	default:
		a.internalError(c, err, "Failed to edit image")
	}
}

func (a *API) ImageEditPage(c *gin.Context) {
	id, ok := imageID(c)
	if !ok {
		a.imageNotFound(c)
		return
	}

	img, err := a.Images.Owned(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		a.editFailed(c, err)
		return
	}

	a.render(c, http.StatusOK, "upload_form.html", gin.H{
		"title": "Edit " + img.Title,
		"image": img,
	})
}

func (a *API) ImageEdit(c *gin.Context) {
	requestID := middleware.RequestID(c)

	id, ok := imageID(c)
	if !ok {
		a.imageNotFound(c)
		return
	}

	var data editForm
	if err := c.ShouldBind(&data); err != nil {
		zap.L().Debug("Can't bind edit form", zap.Error(err), zap.String("requestID", requestID))
		a.flashRedirect(c, flashDanger, "Invalid request body", fmt.Sprintf("/edit/%d", id))
		return
	}

	user := middleware.CurrentUser(c)

	img, err := a.Images.Edit(c.Request.Context(), user, id, service.EditInput{
		Title:       data.Title,
		Description: data.Description,
		Tags:        data.Tags,
		Category:    data.Category,
		Visibility:  data.Visibility,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			a.flashRedirect(c, flashDanger, err.Error(), fmt.Sprintf("/edit/%d", id))
			return
		}

		a.editFailed(c, err)
		return
	}

	zap.L().Info("Image edited",
		zap.Uint("imageID", img.ID),
		zap.String("userID", user.ID),
		zap.String("requestID", requestID),
	)

	a.flashRedirect(c, flashSuccess, "Image updated!", fmt.Sprintf("/upload_done/%d", img.ID))
}
