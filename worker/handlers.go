package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"gorm.io/datatypes"

	"github.com/kojish2018/video-ai-creator/internal/apperr"
	"github.com/kojish2018/video-ai-creator/models"
	"github.com/kojish2018/video-ai-creator/pipeline"
	"github.com/kojish2018/video-ai-creator/tasks"
	"github.com/kojish2018/video-ai-creator/upload"
)

// HandleGenerateVideo processes tasks from QueueVideoGenerate: it runs the
// full generation pipeline for the video record, mirrors stage progress to
// Redis pub/sub, and chains to the upload queue when the video asks for it.
func (p *Processor) HandleGenerateVideo(ctx context.Context, payload string) error {
	var task tasks.GenerateTaskPayload
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		return err
	}

	log.Printf("Generating video %d", task.VideoID)
	var video models.Video
	if err := p.DB.First(&video, task.VideoID).Error; err != nil {
		return err
	}

	p.DB.Model(&video).Update("status", models.VideoStatusProcessing)

	progress := func(stage string, percent int, message string) {
		msg := tasks.ProgressMessage{
			VideoID: video.ID,
			Stage:   stage,
			Percent: percent,
			Message: message,
		}
		if b, err := json.Marshal(msg); err == nil {
			channel := fmt.Sprintf("%s%d", tasks.ProgressChannel, video.ID)
			if err := p.RDB.Publish(ctx, channel, b).Err(); err != nil {
				log.Printf("Error publishing progress for video %d: %v", video.ID, err)
			}
		}
	}

	pl := pipeline.NewDefault(p.Cfg, progress)

	opts := pipeline.Options{
		OutputName:    fmt.Sprintf("video_%d.mp4", video.ID),
		WithSubtitles: video.WithSubtitles,
		WithThumbnail: video.AutoUpload,
		Privacy:       video.Privacy,
	}
	if video.CustomScript {
		opts.CustomScript = video.Script
	}

	result, err := pl.Run(ctx, video.Topic, opts)

	updates := map[string]interface{}{
		"stages": stagesJSON(result),
	}
	if err != nil {
		updates["status"] = models.VideoStatusFailed
		updates["error_message"] = fmt.Sprintf("%s: %v", apperr.KindOf(err), err)
		p.DB.Model(&video).Updates(updates)
		return err
	}

	updates["status"] = models.VideoStatusComplete
	updates["title"] = result.Title
	updates["script"] = result.Script
	updates["output_path"] = result.VideoPath
	updates["subtitle_path"] = result.SubtitlePath
	updates["thumbnail_path"] = result.ThumbnailPath
	updates["duration"] = result.Duration
	if kw, err := json.Marshal(result.Keywords); err == nil {
		updates["keywords"] = datatypes.JSON(kw)
	}
	if err := p.DB.Model(&video).Updates(updates).Error; err != nil {
		return err
	}
	log.Printf("Video %d generated: %s (%.2fs)", video.ID, result.VideoPath, result.Duration)

	if video.AutoUpload {
		nextTask := tasks.UploadTaskPayload{VideoID: video.ID}
		if err := p.Enqueue(ctx, tasks.QueueVideoUpload, nextTask); err != nil {
			log.Printf("Error queuing upload for video %d: %v", video.ID, err)
			return err
		}
		log.Printf("Queued video %d for upload", video.ID)
	}
	return nil
}

// HandleUploadVideo processes tasks from QueueVideoUpload.
func (p *Processor) HandleUploadVideo(ctx context.Context, payload string) error {
	var task tasks.UploadTaskPayload
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		return err
	}

	var video models.Video
	if err := p.DB.First(&video, task.VideoID).Error; err != nil {
		return err
	}
	if video.OutputPath == "" {
		p.DB.Model(&video).Update("status", models.VideoStatusFailed)
		return fmt.Errorf("video %d has no rendered output to upload", video.ID)
	}

	log.Printf("Uploading video %d (%s)...", video.ID, video.Title)
	p.DB.Model(&video).Update("status", models.VideoStatusUploading)

	uploader := upload.NewUploader(p.Cfg.YouTubeClientID, p.Cfg.YouTubeClientSecret, p.Cfg.YouTubeTokenFile)

	var keywords []string
	if len(video.Keywords) > 0 {
		_ = json.Unmarshal(video.Keywords, &keywords)
	}
	meta := upload.BuildMetadata(video.Topic, video.Title, video.Script, video.Privacy, keywords)

	url, err := uploader.Upload(ctx, upload.Request{
		VideoPath:     video.OutputPath,
		ThumbnailPath: video.ThumbnailPath,
		Metadata:      meta,
	})
	if err != nil {
		p.DB.Model(&video).Updates(map[string]interface{}{
			"status":        models.VideoStatusFailed,
			"error_message": err.Error(),
		})
		return err
	}

	p.DB.Model(&video).Updates(map[string]interface{}{
		"status":     models.VideoStatusPublished,
		"upload_url": url,
	})
	log.Printf("Published video %d: %s", video.ID, url)
	return nil
}

func stagesJSON(result *pipeline.Result) datatypes.JSON {
	if result == nil {
		return nil
	}
	b, err := json.Marshal(result.Stages)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
