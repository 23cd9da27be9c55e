package models

import (
	"time"

	"gorm.io/datatypes"
)

// Video generation statuses, in pipeline order.
const (
	VideoStatusPending    = "pending"
	VideoStatusProcessing = "processing"
	VideoStatusComplete   = "complete"
	VideoStatusFailed     = "failed"
	VideoStatusUploading  = "uploading"
	VideoStatusPublished  = "published"
)

type Video struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	UserID   uint  `gorm:"not null;index" json:"user_id"`
	SeriesID *uint `gorm:"index" json:"series_id,omitempty"`

	Topic        string         `gorm:"not null" json:"topic"`
	Title        string         `gorm:"size:255" json:"title"`
	Script       string         `gorm:"type:text" json:"script,omitempty"`
	CustomScript bool           `gorm:"default:false" json:"custom_script"`
	Keywords     datatypes.JSON `json:"keywords,omitempty"`

	Status       string `gorm:"default:'pending'" json:"status"`
	ErrorMessage string `gorm:"type:text" json:"error_message,omitempty"`

	// Stages records the per-stage outcome of the last generation run.
	Stages datatypes.JSON `json:"stages,omitempty"`

	// Generation options
	WithSubtitles bool   `gorm:"default:false" json:"with_subtitles"`
	AutoUpload    bool   `gorm:"default:false" json:"auto_upload"`
	Privacy       string `gorm:"default:'private'" json:"privacy"`

	// Outputs
	OutputPath    string  `json:"output_path,omitempty"`
	SubtitlePath  string  `json:"subtitle_path,omitempty"`
	ThumbnailPath string  `json:"thumbnail_path,omitempty"`
	UploadURL     string  `json:"upload_url,omitempty"`
	Duration      float64 `json:"duration,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Video) TableName() string {
	return "videos"
}
