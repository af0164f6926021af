package store

import (
	"context"
	"fmt"
	"strings"

	"bitwise74/image-board/internal/model"

	"gorm.io/gorm"
)

// Metadata holds the only image columns that may change after upload
type Metadata struct {
	Title       string
	Description string
	Tags        string
	Category    string
	Visibility  string
}

type Images struct {
	db *gorm.DB
}

func NewImages(db *gorm.DB) *Images {
	return &Images{db: db}
}

func (i *Images) Create(ctx context.Context, img *model.Image) error {
	img.UploadDate = img.UploadDate.UTC()

	if err := i.db.WithContext(ctx).Create(img).Error; err != nil {
		return fmt.Errorf("failed to save image record, %w", translate(err))
	}

	return nil
}

// ByID returns an image regardless of its deleted flag
func (i *Images) ByID(ctx context.Context, id uint) (*model.Image, error) {
	var img model.Image

	err := i.db.WithContext(ctx).
		Where("id = ?", id).
		First(&img).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return &img, nil
}

func (i *Images) UpdateMetadata(ctx context.Context, id uint, m Metadata) error {
	r := i.db.WithContext(ctx).
		Model(model.Image{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"title":       m.Title,
			"description": m.Description,
			"tags":        m.Tags,
			"category":    m.Category,
			"visibility":  m.Visibility,
		})
	if r.Error != nil {
		return fmt.Errorf("failed to update image, %w", r.Error)
	}

	if r.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (i *Images) MarkDeleted(ctx context.Context, id uint) error {
	r := i.db.WithContext(ctx).
		Model(model.Image{}).
		Where("id = ?", id).
		Update("deleted", true)
	if r.Error != nil {
		return fmt.Errorf("failed to mark image as deleted, %w", r.Error)
	}

	if r.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ListByOwner returns the non-deleted images of a user, newest first
func (i *Images) ListByOwner(ctx context.Context, userID string) ([]model.Image, error) {
	var images []model.Image

	err := i.db.WithContext(ctx).
		Where("user_id = ? AND deleted = ?", userID, false).
		Order("upload_date desc, id desc").
		Find(&images).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user images, %w", err)
	}

	return images, nil
}

// ListPublic returns public, non-deleted images. A non-empty tag keeps only
// images whose tags contain it, ignoring case.
func (i *Images) ListPublic(ctx context.Context, tag string, oldestFirst bool) ([]model.Image, error) {
	q := i.db.WithContext(ctx).
		Preload("User").
		Where("deleted = ? AND visibility = ?", false, model.VisibilityPublic)

	if tag != "" {
		q = q.Where(`LOWER(tags) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(tag))+"%")
	}

	if oldestFirst {
		q = q.Order("upload_date asc, id asc")
	} else {
		q = q.Order("upload_date desc, id desc")
	}

	var images []model.Image
	if err := q.Find(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to list public images, %w", err)
	}

	return images, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
