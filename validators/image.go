package validators

import (
	"bitwise74/image-board/internal/model"
	"errors"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrTitleEmpty         = errors.New("a title is required")
	ErrTitleTooLong       = errors.New("title can't be longer than 200 characters")
	ErrTagsTooLong        = errors.New("tags can't be longer than 200 characters")
	ErrCategoryTooLong    = errors.New("category can't be longer than 100 characters")
	ErrVisibilityInvalid  = errors.New("visibility must be either public or private")
	ErrFileTypeForbidden  = errors.New("file extension not allowed")
	ErrFileContentInvalid = errors.New("file content doesn't match an allowed image type")
)

// Content types accepted after sniffing, keyed by the extensions that may carry them
var allowedContent = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
}

// ExtensionValidator checks ext (lower-case, no dot) against allowed
func ExtensionValidator(ext string, allowed []string) error {
	if ext == "" || !slices.Contains(allowed, ext) {
		return ErrFileTypeForbidden
	}

	return nil
}

// ContentValidator sniffs the first bytes of an upload and makes sure they
// really are an image of the type the extension claims. Returns the detected
// MIME type.
func ContentValidator(head []byte, ext string) (string, error) {
	want, ok := allowedContent[ext]
	if !ok {
		return "", ErrFileContentInvalid
	}

	mime := mimetype.Detect(head)
	if !mime.Is(want) {
		return "", ErrFileContentInvalid
	}

	return want, nil
}

// VisibilityValidator normalizes v, an empty value means public
func VisibilityValidator(v string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))

	switch v {
	case "":
		return model.VisibilityPublic, nil
	case model.VisibilityPublic, model.VisibilityPrivate:
		return v, nil
	}

	return "", ErrVisibilityInvalid
}

// MetadataValidator checks the free text fields of an image
func MetadataValidator(title, tags, category string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleEmpty
	}

	if utf8.RuneCountInString(title) > 200 {
		return ErrTitleTooLong
	}

	if utf8.RuneCountInString(tags) > 200 {
		return ErrTagsTooLong
	}

	if utf8.RuneCountInString(category) > 100 {
		return ErrCategoryTooLong
	}

	return nil
}
