package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"bitwise74/image-board/internal/service"
	"bitwise74/image-board/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) fileTypeMessage() string {
	exts := make([]string, len(a.AllowedExtensions))
	for i, e := range a.AllowedExtensions {
		exts[i] = strings.ToUpper(e)
	}

	return "Invalid file type. Only " + strings.Join(exts, ", ") + " allowed."
}

func (a *API) fileSizeMessage() string {
	return fmt.Sprintf("File too large. Max %dMB.", a.MaxUploadSize>>20)
}

// UploadTooLarge is used by the body limiter in front of ImageUpload
func (a *API) UploadTooLarge(c *gin.Context) {
	a.flashRedirect(c, flashDanger, a.fileSizeMessage(), "/upload_form")
}

func (a *API) ImageUploadPage(c *gin.Context) {
	if middleware.CurrentUser(c) == nil {
		a.flashRedirect(c, flashWarning, "Please log in to upload images.", "/login")
		return
	}

	accept := make([]string, len(a.AllowedExtensions))
	for i, e := range a.AllowedExtensions {
		accept[i] = "." + e
	}

	a.render(c, http.StatusOK, "upload_form.html", gin.H{
		"title":     "Upload",
		"accept":    strings.Join(accept, ","),
		"maxSizeMB": a.MaxUploadSize >> 20,
	})
}

func (a *API) ImageUpload(c *gin.Context) {
	requestID := middleware.RequestID(c)
	user := middleware.CurrentUser(c)

	if user == nil {
		a.flashRedirect(c, flashWarning, "Please log in to upload images.", "/login")
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		switch {
		case middleware.IsBodyTooLarge(err):
			a.UploadTooLarge(c)
		case errors.Is(err, http.ErrMissingFile):
			a.flashRedirect(c, flashDanger, a.fileTypeMessage(), "/upload_form")
		default:
			zap.L().Debug("Can't read upload form", zap.Error(err), zap.String("requestID", requestID))
			a.flashRedirect(c, flashDanger, "Invalid request body", "/upload_form")
		}
		return
	}

	f, err := fh.Open()
	if err != nil {
		a.internalError(c, err, "Failed to open multipart file")
		return
	}
	defer f.Close()

	img, err := a.Images.Upload(c.Request.Context(), user, service.UploadInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Tags:        c.PostForm("tags"),
		Category:    c.PostForm("category"),
		Visibility:  c.PostForm("visibility"),
		FileName:    fh.Filename,
		Size:        fh.Size,
		File:        f,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidFileType):
			a.flashRedirect(c, flashDanger, a.fileTypeMessage(), "/upload_form")
		case errors.Is(err, service.ErrFileTooLarge):
			a.UploadTooLarge(c)
		case errors.Is(err, service.ErrInvalidInput):
			a.flashRedirect(c, flashDanger, err.Error(), "/upload_form")
		case errors.Is(err, service.ErrUnauthenticated):
			a.flashRedirect(c, flashWarning, "Please log in to upload images.", "/login")
		default:
			a.internalError(c, err, "Failed to upload image")
		}
		return
	}

	zap.L().Info("Image uploaded",
		zap.Uint("imageID", img.ID),
		zap.String("userID", user.ID),
		zap.String("requestID", requestID),
	)

	a.flashRedirect(c, flashSuccess, "Image uploaded successfully!", fmt.Sprintf("/upload_done/%d", img.ID))
}
