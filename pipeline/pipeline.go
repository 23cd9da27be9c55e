// Package pipeline orchestrates the full generation flow: script, assets,
// narration, composition, and the optional publish steps. Components are
// consumed through small interfaces so handlers and tests can substitute
// their own.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kojish2018/video-ai-creator/assets"
	"github.com/kojish2018/video-ai-creator/internal/apperr"
	"github.com/kojish2018/video-ai-creator/internal/config"
	"github.com/kojish2018/video-ai-creator/media"
	"github.com/kojish2018/video-ai-creator/script"
	"github.com/kojish2018/video-ai-creator/speech"
	"github.com/kojish2018/video-ai-creator/subtitle"
	"github.com/kojish2018/video-ai-creator/upload"
)

type ScriptSource interface {
	Generate(ctx context.Context, topic string) (*script.Script, error)
}

type AssetFetcher interface {
	FetchImages(ctx context.Context, terms []string, count int, destDir string) ([]assets.Asset, error)
	FetchVideos(ctx context.Context, terms []string, count int, destDir string) ([]assets.Asset, error)
}

type NarrationSynthesizer interface {
	Ping(ctx context.Context) error
	Synthesize(ctx context.Context, text string, custom bool, outPath string) (*speech.Narration, error)
}

type VideoAssembler interface {
	Assemble(ctx context.Context, track *media.Track, narrationPath, outPath string, duration float64) error
}

type SubtitleBurner interface {
	Burn(ctx context.Context, videoPath, srtPath, outPath string) error
}

type ThumbnailRenderer interface {
	Render(ctx context.Context, title, backgroundPath, outPath string) error
}

type Uploader interface {
	Upload(ctx context.Context, req upload.Request) (string, error)
}

// ProgressFunc receives stage transitions as the run advances. percent is
// 0-100 over the whole run.
type ProgressFunc func(stage string, percent int, message string)

// Options selects the optional steps of a run.
type Options struct {
	OutputName    string
	CustomScript  string
	WithSubtitles bool
	WithThumbnail bool
	Upload        bool
	Privacy       string
}

type StageStatus string

const (
	StageOK      StageStatus = "completed"
	StageFailed  StageStatus = "failed"
	StageSkipped StageStatus = "skipped"
)

// Result is the full outcome record of one run.
type Result struct {
	Topic         string
	Title         string
	Script        string
	Keywords      []string
	Success       bool
	VideoPath     string
	SubtitlePath  string
	ThumbnailPath string
	UploadURL     string
	Duration      float64
	Stages        map[string]StageStatus
	Errors        []string
	Elapsed       time.Duration
}

// Pipeline runs the generation flow end to end.
type Pipeline struct {
	cfg       *config.Config
	scripts   ScriptSource
	fetcher   AssetFetcher
	synth     NarrationSynthesizer
	assembler VideoAssembler
	burner    SubtitleBurner
	thumbs    ThumbnailRenderer
	uploader  Uploader
	progress  ProgressFunc
}

func New(cfg *config.Config, scripts ScriptSource, fetcher AssetFetcher, synth NarrationSynthesizer,
	assembler VideoAssembler, burner SubtitleBurner, thumbs ThumbnailRenderer, uploader Uploader,
	progress ProgressFunc) *Pipeline {
	if progress == nil {
		progress = func(string, int, string) {}
	}
	return &Pipeline{
		cfg:       cfg,
		scripts:   scripts,
		fetcher:   fetcher,
		synth:     synth,
		assembler: assembler,
		burner:    burner,
		thumbs:    thumbs,
		uploader:  uploader,
		progress:  progress,
	}
}

// Run generates one video for the topic. All intermediates live in a
// per-run temp directory that is removed whether the run succeeds or not.
// The rendered video (and subtitle/thumbnail files) land in the configured
// output directory.
func (p *Pipeline) Run(ctx context.Context, topic string, opts Options) (*Result, error) {
	started := time.Now()
	res := &Result{
		Topic:  topic,
		Stages: map[string]StageStatus{},
	}

	runDir := filepath.Join(p.cfg.TempDir, "run_"+uuid.NewString())
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return res, apperr.Errorf(apperr.KindConfig, "pipeline.Run", "cannot create temp dir: %v", err)
	}
	defer os.RemoveAll(runDir)

	fail := func(stage string, err error) (*Result, error) {
		res.Stages[stage] = StageFailed
		res.Errors = append(res.Errors, err.Error())
		res.Elapsed = time.Since(started)
		return res, err
	}

	// stage 1: configuration and engine reachability
	p.progress("validate_config", 0, "checking configuration")
	if err := p.cfg.Validate(); err != nil {
		return fail("validate_config", err)
	}
	if err := p.synth.Ping(ctx); err != nil {
		return fail("validate_config", err)
	}
	res.Stages["validate_config"] = StageOK

	// stage 2: narration script
	p.progress("script_generation", 10, "generating script")
	scr, err := p.resolveScript(ctx, topic, opts)
	if err != nil {
		return fail("script_generation", err)
	}
	res.Title = scr.Title
	res.Script = scr.Body
	res.Keywords = scr.Keywords
	p.progress("script_generation", 25, fmt.Sprintf("script ready (%d characters)", len([]rune(scr.Body))))
	res.Stages["script_generation"] = StageOK

	// stage 3: stock assets, video clips first
	p.progress("asset_fetching", 30, "fetching stock assets")
	videos, images := p.fetchAssets(ctx, scr.Keywords, runDir)
	if len(videos) == 0 && len(images) == 0 {
		return fail("asset_fetching", apperr.Errorf(apperr.KindNoValidAssets, "pipeline.Run",
			"no usable assets for keywords %v", scr.Keywords))
	}
	p.progress("asset_fetching", 50, fmt.Sprintf("%d videos, %d images", len(videos), len(images)))
	res.Stages["asset_fetching"] = StageOK

	// stage 4: narration audio
	p.progress("voice_generation", 55, "synthesizing narration")
	custom := opts.CustomScript != ""
	narration, err := p.synth.Synthesize(ctx, scr.Body, custom, filepath.Join(runDir, "narration.wav"))
	if err != nil {
		return fail("voice_generation", err)
	}
	p.progress("voice_generation", 75, fmt.Sprintf("narration %.2fs", narration.Duration))
	res.Stages["voice_generation"] = StageOK

	// stage 5: composition at the reconciled duration
	p.progress("video_creation", 80, "compositing video")
	effective := media.EffectiveDuration(narration.Duration, p.cfg.VideoDuration, custom)
	frame := media.FrameSpec{Width: p.cfg.VideoWidth, Height: p.cfg.VideoHeight, FPS: p.cfg.VideoFPS}

	track, err := media.BuildTrack(videos, images, effective, frame)
	if err != nil {
		return fail("video_creation", err)
	}

	outName := opts.OutputName
	if outName == "" {
		outName = defaultOutputName(topic)
	}
	videoPath := filepath.Join(p.cfg.OutputDir, outName)
	if err := p.assembler.Assemble(ctx, track, narration.Path, videoPath, effective); err != nil {
		return fail("video_creation", err)
	}
	res.VideoPath = videoPath
	res.Duration = effective
	p.progress("video_creation", 95, "video rendered")
	res.Stages["video_creation"] = StageOK

	// optional: burned-in subtitles
	if opts.WithSubtitles {
		if err := p.burnSubtitles(ctx, scr.Body, effective, videoPath, res); err != nil {
			return fail("subtitle_generation", err)
		}
		res.Stages["subtitle_generation"] = StageOK
	} else {
		res.Stages["subtitle_generation"] = StageSkipped
	}

	// optional: thumbnail and upload. An upload failure does not undo a
	// finished render, it is recorded and the run still succeeds.
	if opts.WithThumbnail || opts.Upload {
		background := firstLocalPath(images, videos)
		thumbPath := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + "_thumb.jpg"
		if err := p.thumbs.Render(ctx, scr.Title, background, thumbPath); err != nil {
			log.Printf("[pipeline] warning: thumbnail failed: %v", err)
			res.Errors = append(res.Errors, err.Error())
			res.Stages["thumbnail"] = StageFailed
		} else {
			res.ThumbnailPath = thumbPath
			res.Stages["thumbnail"] = StageOK
		}
	} else {
		res.Stages["thumbnail"] = StageSkipped
	}

	if opts.Upload {
		p.progress("upload", 97, "uploading to YouTube")
		meta := upload.BuildMetadata(topic, scr.Title, scr.Body, opts.Privacy, scr.Keywords)
		url, err := p.uploader.Upload(ctx, upload.Request{
			VideoPath:     res.VideoPath,
			ThumbnailPath: res.ThumbnailPath,
			Metadata:      meta,
		})
		if err != nil {
			log.Printf("[pipeline] warning: upload failed: %v", err)
			res.Errors = append(res.Errors, err.Error())
			res.Stages["upload"] = StageFailed
		} else {
			res.UploadURL = url
			res.Stages["upload"] = StageOK
		}
	} else {
		res.Stages["upload"] = StageSkipped
	}

	p.progress("finalize", 100, "done")
	res.Success = true
	res.Elapsed = time.Since(started)
	return res, nil
}

// resolveScript either takes the caller's custom script verbatim with
// keywords extracted from it, or generates one from the topic.
func (p *Pipeline) resolveScript(ctx context.Context, topic string, opts Options) (*script.Script, error) {
	if opts.CustomScript != "" {
		return &script.Script{
			Topic:    topic,
			Title:    topic,
			Body:     opts.CustomScript,
			Keywords: script.ExtractKeywords(opts.CustomScript, script.DefaultMaxKeywords),
		}, nil
	}
	return p.scripts.Generate(ctx, topic)
}

// fetchAssets tries clips first, then images. Individual source failures
// are logged, not fatal; the caller decides whether the combined haul is
// enough.
func (p *Pipeline) fetchAssets(ctx context.Context, keywords []string, runDir string) (videos, images []assets.Asset) {
	var err error
	videos, err = p.fetcher.FetchVideos(ctx, keywords, p.cfg.MaxVideos, runDir)
	if err != nil {
		log.Printf("[pipeline] warning: video fetch failed: %v", err)
	}
	images, err = p.fetcher.FetchImages(ctx, keywords, p.cfg.MaxImages, runDir)
	if err != nil {
		log.Printf("[pipeline] warning: image fetch failed: %v", err)
	}
	return videos, images
}

func (p *Pipeline) burnSubtitles(ctx context.Context, scriptBody string, duration float64, videoPath string, res *Result) error {
	sentences := subtitle.SplitSentences(scriptBody)
	cues := subtitle.BuildCues(sentences, duration)
	if len(cues) == 0 {
		res.Stages["subtitle_generation"] = StageSkipped
		return nil
	}

	srtPath := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".srt"
	if err := subtitle.WriteSRT(cues, srtPath); err != nil {
		return err
	}
	res.SubtitlePath = srtPath

	burned := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + "_sub" + filepath.Ext(videoPath)
	if err := p.burner.Burn(ctx, videoPath, srtPath, burned); err != nil {
		return err
	}
	// replace the plain render with the subtitled one
	if err := os.Rename(burned, videoPath); err != nil {
		return apperr.Errorf(apperr.KindRenderDisk, "pipeline.burnSubtitles", "replace output: %v", err)
	}
	return nil
}

func firstLocalPath(images, videos []assets.Asset) string {
	for _, a := range images {
		if a.LocalPath != "" {
			return a.LocalPath
		}
	}
	for _, a := range videos {
		if a.LocalPath != "" {
			return a.LocalPath
		}
	}
	return ""
}

func defaultOutputName(topic string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '_'
		default:
			return -1
		}
	}, topic)
	if slug == "" {
		slug = "video"
	}
	return fmt.Sprintf("%s_%s.mp4", slug, time.Now().Format("20060102_150405"))
}
