package models

import (
	"time"

	"gorm.io/datatypes"
)

// Series is a recurring generation schedule: the scheduler creates and
// queues PostsPerDay videos for it each day, drawing topics from Topics in
// rotation.
type Series struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	User        User   `gorm:"foreignKey:UserID" json:"-"`
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`

	// Topics is a JSON array of topic strings to rotate through.
	Topics      datatypes.JSON `json:"topics"`
	PostsPerDay int            `gorm:"not null;default:1" json:"posts_per_day"`

	// Generation options applied to every video in the series
	WithSubtitles bool   `gorm:"default:false" json:"with_subtitles"`
	AutoUpload    bool   `gorm:"default:false" json:"auto_upload"`
	Privacy       string `gorm:"default:'private'" json:"privacy"`

	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Video count (computed field, not persisted)
	VideoCount int `gorm:"-" json:"video_count"`
}

func (Series) TableName() string {
	return "series"
}
