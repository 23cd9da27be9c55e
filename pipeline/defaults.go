package pipeline

import (
	"github.com/kojish2018/video-ai-creator/assets"
	"github.com/kojish2018/video-ai-creator/internal/config"
	"github.com/kojish2018/video-ai-creator/media"
	"github.com/kojish2018/video-ai-creator/script"
	"github.com/kojish2018/video-ai-creator/speech"
	"github.com/kojish2018/video-ai-creator/subtitle"
	"github.com/kojish2018/video-ai-creator/thumbnail"
	"github.com/kojish2018/video-ai-creator/upload"
)

// NewDefault wires the pipeline with the real service clients from the
// configuration.
func NewDefault(cfg *config.Config, progress ProgressFunc) *Pipeline {
	targetSeconds := int(cfg.VideoDuration)

	return New(
		cfg,
		script.NewGenerator(cfg.OpenAIAPIKey, targetSeconds),
		assets.NewFetcher(
			assets.NewImageClient(cfg.UnsplashAccessKey),
			assets.NewVideoClient(cfg.PexelsAPIKey),
		),
		speech.NewSynthesizer(speech.NewClient(cfg.VoicevoxURL, cfg.SpeakerID), cfg.VideoDuration),
		media.NewAssembler(),
		subtitle.NewBurner(),
		thumbnail.NewRenderer(),
		upload.NewUploader(cfg.YouTubeClientID, cfg.YouTubeClientSecret, cfg.YouTubeTokenFile),
		progress,
	)
}
