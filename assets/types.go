// Package assets fetches stock images and video clips for the visual track.
package assets

// Asset is one fetched image or video clip candidate. LocalPath is empty
// until the asset has been downloaded and validated.
type Asset struct {
	ID          string
	SourceURL   string
	DownloadURL string
	LocalPath   string
	Width       int
	Height      int
	Duration    float64 // seconds, video clips only
	FileSize    int64
	Quality     string // source-reported tier, video clips only
	Description string
}

// IsVideo reports whether the asset is a video clip rather than a still image.
func (a Asset) IsVideo() bool { return a.Duration > 0 }
