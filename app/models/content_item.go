package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ContentTypeBhajan = "bhajan"
	ContentTypeMantra = "mantra"
	ContentTypeEbook  = "ebook"
	ContentTypeVideo  = "video"
)

// ContentTypes is the closed set of content categories. The entitlement
// resolver relies on this being exhaustive.
var ContentTypes = []string{ContentTypeBhajan, ContentTypeMantra, ContentTypeEbook, ContentTypeVideo}

// ContentItem is one gated piece of content in a specific locale. The slug
// identifies the logical item across locales; schedule entries reference
// slugs, not row IDs.
type ContentItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Slug         string    `gorm:"type:varchar(191);not null;index:ux_content_items_slug_locale,unique,priority:1" json:"slug"`
	Locale       string    `gorm:"type:varchar(8);not null;default:'hi';index:ux_content_items_slug_locale,unique,priority:2" json:"locale"`
	Title        string    `gorm:"type:varchar(255);not null" json:"title"`
	Type         string    `gorm:"type:varchar(16);not null;index" json:"type"`
	PlanID       string    `gorm:"type:varchar(50);not null;index" json:"plan_id"`
	Plan         Plan      `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	ObjectKey    string    `gorm:"type:varchar(512);not null" json:"-"`
	ThumbnailKey string    `gorm:"type:varchar(512);default:''" json:"-"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsValidContentType reports whether t is one of the known categories.
func IsValidContentType(t string) bool {
	for _, known := range ContentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// FindContentBySlug loads one locale variant of a content item.
func FindContentBySlug(db *gorm.DB, slug, locale string) (*ContentItem, error) {
	var item ContentItem
	if err := db.Where("slug = ? AND locale = ?", slug, locale).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}
