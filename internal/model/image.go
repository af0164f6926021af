package model

import "time"

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

type Image struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      string `gorm:"size:16;not null;index" json:"user_id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Tags        string `gorm:"size:200" json:"tags"` // Free text, comma or space separated by convention
	Category    string `gorm:"size:100" json:"category"`
	Filename    string `gorm:"size:200;not null" json:"filename"` // Name inside the storage backend
	Thumbnail   string `gorm:"size:210" json:"thumbnail"`
	Size        int64  `json:"size"`
	Format      string `gorm:"size:32" json:"format"` // Detected MIME type
	// Set once on insert, metadata edits never touch it
	UploadDate time.Time `gorm:"not null;index" json:"upload_date"`
	Deleted    bool      `gorm:"not null;default:false;index" json:"-"`
	Visibility string    `gorm:"size:10;not null;default:'public'" json:"visibility"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
}

// OwnedBy reports whether u is the owner of the image. A nil user owns nothing.
func (i *Image) OwnedBy(u *User) bool {
	return u != nil && i.UserID == u.ID
}
