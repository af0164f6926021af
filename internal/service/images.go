package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"bitwise74/image-board/internal/model"
	"bitwise74/image-board/internal/storage"
	"bitwise74/image-board/internal/store"
	"bitwise74/image-board/pkg/util"
	"bitwise74/image-board/validators"

	"go.uber.org/zap"
)

const (
	SortNewest = "newest"
	SortOldest = "oldest"

	fileKeyLength = 10
)

type ImageOptions struct {
	// MaxSize is the biggest accepted upload in bytes
	MaxSize int64
	// AllowedExtensions are lower-case and without the dot
	AllowedExtensions []string
	ThumbnailSize     int
}

type ImageService struct {
	images  *store.Images
	storage storage.Storage
	opts    ImageOptions
}

func NewImageService(images *store.Images, s storage.Storage, o ImageOptions) *ImageService {
	return &ImageService{
		images:  images,
		storage: s,
		opts:    o,
	}
}

type UploadInput struct {
	Title       string
	Description string
	Tags        string
	Category    string
	Visibility  string

	// FileName is the name the client sent, it is never trusted as is
	FileName string
	// Size is the size the client declared, the real size is checked too
	Size int64
	File io.Reader
}

type EditInput struct {
	Title       string
	Description string
	Tags        string
	Category    string
	// Visibility keeps its current value when empty
	Visibility string
}

type ExploreQuery struct {
	Tag  string
	Sort string
}

// ParseSort maps a user supplied sort option to a known one, newest being the default
func ParseSort(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), SortOldest) {
		return SortOldest
	}

	return SortNewest
}

// Upload validates and stores a new image for user
func (s *ImageService) Upload(ctx context.Context, user *model.User, in UploadInput) (*model.Image, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	if in.File == nil {
		return nil, ErrInvalidFileType
	}

	ext := util.Ext(in.FileName)
	if err := validators.ExtensionValidator(ext, s.opts.AllowedExtensions); err != nil {
		return nil, ErrInvalidFileType
	}

	if in.Size > s.opts.MaxSize {
		return nil, ErrFileTooLarge
	}

	if err := validators.MetadataValidator(in.Title, in.Tags, in.Category); err != nil {
		return nil, invalid(err)
	}

	visibility, err := validators.VisibilityValidator(in.Visibility)
	if err != nil {
		return nil, invalid(err)
	}

	// Never trust the declared size, read one byte past the limit to find out
	data, err := io.ReadAll(io.LimitReader(in.File, s.opts.MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload, %w", err)
	}

	if int64(len(data)) > s.opts.MaxSize {
		return nil, ErrFileTooLarge
	}

	format, err := validators.ContentValidator(data, ext)
	if err != nil {
		return nil, ErrInvalidFileType
	}

	thumb, err := makeThumbnail(data, s.opts.ThumbnailSize)
	if err != nil {
		zap.L().Debug("Upload is not a decodable image", zap.String("name", in.FileName), zap.Error(err))
		return nil, ErrInvalidFileType
	}

	key, err := util.RandStr(fileKeyLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate file key, %w", err)
	}

	base := util.SanitizeFilename(in.FileName)
	if base == "" || util.Ext(base) != ext {
		base = strings.TrimSuffix(base, ".")
		if base == "" {
			base = "image"
		}
		base += "." + ext
	}

	filename := key + "_" + base
	thumbName := "thumb_" + key + ".jpg"

	if err := s.storage.Save(ctx, filename, bytes.NewReader(data), int64(len(data)), format); err != nil {
		return nil, fmt.Errorf("failed to store file, %w", err)
	}

	if err := s.storage.Save(ctx, thumbName, bytes.NewReader(thumb), int64(len(thumb)), "image/jpeg"); err != nil {
		s.cleanup(filename)
		return nil, fmt.Errorf("failed to store thumbnail, %w", err)
	}

	img := &model.Image{
		UserID:      user.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Tags:        in.Tags,
		Category:    in.Category,
		Filename:    filename,
		Thumbnail:   thumbName,
		Size:        int64(len(data)),
		Format:      format,
		UploadDate:  time.Now().UTC(),
		Deleted:     false,
		Visibility:  visibility,
	}

	if err := s.images.Create(ctx, img); err != nil {
		s.cleanup(filename, thumbName)
		return nil, err
	}

	return img, nil
}

// cleanup removes files of a failed upload, the request context may be gone already
func (s *ImageService) cleanup(names ...string) {
	for _, n := range names {
		if err := s.storage.Delete(context.Background(), n); err != nil {
			zap.L().Error("Failed to cleanup after failed upload", zap.String("name", n), zap.Error(err))
		} else {
			zap.L().Debug("Cleaned up after failed upload", zap.String("name", n))
		}
	}
}

func (s *ImageService) byID(ctx context.Context, id uint) (*model.Image, error) {
	img, err := s.images.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return img, nil
}

// Get returns an image as seen by viewer. Private and deleted images only
// exist for their owner.
func (s *ImageService) Get(ctx context.Context, viewer *model.User, id uint) (*model.Image, error) {
	img, err := s.byID(ctx, id)
	if err != nil {
		return nil, err
	}

	if (img.Deleted || img.Visibility != model.VisibilityPublic) && !img.OwnedBy(viewer) {
		return nil, ErrNotFound
	}

	return img, nil
}

// Owned returns the image if user owns it. The deleted flag is not checked.
func (s *ImageService) Owned(ctx context.Context, user *model.User, id uint) (*model.Image, error) {
	img, err := s.byID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !img.OwnedBy(user) {
		return nil, ErrForbidden
	}

	return img, nil
}

// Edit changes the metadata of an image owned by user and returns the
// updated image. File and upload date never change.
func (s *ImageService) Edit(ctx context.Context, user *model.User, id uint, in EditInput) (*model.Image, error) {
	img, err := s.Owned(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if err := validators.MetadataValidator(in.Title, in.Tags, in.Category); err != nil {
		return nil, invalid(err)
	}

	visibility := img.Visibility
	if strings.TrimSpace(in.Visibility) != "" {
		visibility, err = validators.VisibilityValidator(in.Visibility)
		if err != nil {
			return nil, invalid(err)
		}
	}

	err = s.images.UpdateMetadata(ctx, id, store.Metadata{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Tags:        in.Tags,
		Category:    in.Category,
		Visibility:  visibility,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return s.byID(ctx, id)
}

// SoftDelete hides an image owned by user from every listing. The file
// itself stays in storage.
func (s *ImageService) SoftDelete(ctx context.Context, user *model.User, id uint) error {
	if _, err := s.Owned(ctx, user, id); err != nil {
		return err
	}

	if err := s.images.MarkDeleted(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}

		return err
	}

	return nil
}

// ListMine returns the non-deleted images of user, newest first
func (s *ImageService) ListMine(ctx context.Context, user *model.User) ([]model.Image, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	return s.images.ListByOwner(ctx, user.ID)
}

// Explore lists public, non-deleted images of everyone
func (s *ImageService) Explore(ctx context.Context, q ExploreQuery) ([]model.Image, error) {
	return s.images.ListPublic(ctx, strings.TrimSpace(q.Tag), ParseSort(q.Sort) == SortOldest)
}

func (s *ImageService) FileURL(name string) string {
	return s.storage.URL(name)
}
