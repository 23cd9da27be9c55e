package tasks

import "encoding/json"

// Queue names. Generation and upload run as separate steps so a slow or
// failing YouTube upload never blocks render workers.
const (
	// QueueVideoGenerate runs the full generation pipeline for a video.
	QueueVideoGenerate = "q_video_generate"

	// QueueVideoUpload publishes an already rendered video.
	QueueVideoUpload = "q_video_upload"
)

// ProgressChannel is the Redis pub/sub channel prefix for per-video
// generation progress. The video ID is appended.
const ProgressChannel = "video_progress:"

// GenerateTaskPayload is the payload for QueueVideoGenerate.
type GenerateTaskPayload struct {
	VideoID uint `json:"video_id"`
}

// UploadTaskPayload is the payload for QueueVideoUpload.
type UploadTaskPayload struct {
	VideoID uint `json:"video_id"`
}

// ProgressMessage is published on ProgressChannel+<id> while a video is
// being generated.
type ProgressMessage struct {
	VideoID uint   `json:"video_id"`
	Stage   string `json:"stage"`
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// Marshal creates a JSON payload for a task.
func Marshal(payload interface{}) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
