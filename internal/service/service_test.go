package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bitwise74/image-board/db"
	"bitwise74/image-board/internal/model"
	"bitwise74/image-board/internal/storage"
	"bitwise74/image-board/internal/store"
	"bitwise74/image-board/pkg/security"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const maxSize = 5 << 20

type testEnv struct {
	db        *gorm.DB
	auth      *AuthService
	images    *ImageService
	uploadDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	d, err := db.New(db.Options{Driver: "sqlite", Path: path})
	require.NoError(t, err)

	sqlDB, err := d.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	uploadDir := filepath.Join(dir, "uploads")
	local, err := storage.NewLocal(uploadDir, "/uploads")
	require.NoError(t, err)

	hasher := security.New()
	hasher.Memory = 1024
	hasher.Iterations = 1

	return &testEnv{
		db: d,
		auth: NewAuthService(
			store.NewUsers(d),
			store.NewSessions(d),
			hasher,
			security.NewSessionSigner("test-secret"),
			time.Hour,
		),
		images: NewImageService(store.NewImages(d), local, ImageOptions{
			MaxSize:           maxSize,
			AllowedExtensions: []string{"png", "jpg", "jpeg"},
			ThumbnailSize:     64,
		}),
		uploadDir: uploadDir,
	}
}

func (e *testEnv) register(t *testing.T, name string) *model.User {
	t.Helper()

	u, err := e.auth.Register(context.Background(), name, name+"@example.com", "password123")
	require.NoError(t, err)
	return u
}

func (e *testEnv) upload(t *testing.T, u *model.User, title, tags, visibility string) *model.Image {
	t.Helper()

	data := pngBytes(t, 8, 8)
	img, err := e.images.Upload(context.Background(), u, UploadInput{
		Title:      title,
		Tags:       tags,
		Visibility: visibility,
		FileName:   title + ".png",
		Size:       int64(len(data)),
		File:       bytes.NewReader(data),
	})
	require.NoError(t, err)
	return img
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// jpegBytes returns a real JPEG padded with trailing zeros up to size bytes.
// Decoders stop at the end-of-image marker and ignore the padding.
func jpegBytes(t *testing.T, size int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 16, 16)), nil))

	out := buf.Bytes()
	if len(out) < size {
		out = append(out, make([]byte, size-len(out))...)
	}
	return out
}
