package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kojish2018/video-ai-creator/assets"
	"github.com/kojish2018/video-ai-creator/internal/apperr"
	"github.com/kojish2018/video-ai-creator/internal/config"
	"github.com/kojish2018/video-ai-creator/media"
	"github.com/kojish2018/video-ai-creator/script"
	"github.com/kojish2018/video-ai-creator/speech"
	"github.com/kojish2018/video-ai-creator/upload"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		OpenAIAPIKey:      "sk-test",
		UnsplashAccessKey: "unsplash-test",
		PexelsAPIKey:      "pexels-test",
		OutputDir:         t.TempDir(),
		TempDir:           t.TempDir(),
		VideoDuration:     30,
		VideoWidth:        1920,
		VideoHeight:       1080,
		VideoFPS:          24,
		MaxImages:         5,
		MinImages:         3,
		MaxVideos:         5,
		MinVideos:         1,
		SpeakerID:         3,
	}
}

type fakeScripts struct {
	scr    *script.Script
	err    error
	called bool
}

func (f *fakeScripts) Generate(ctx context.Context, topic string) (*script.Script, error) {
	f.called = true
	if f.err != nil {
		return nil, f.err
	}
	return f.scr, nil
}

// fakeFetcher materializes the requested number of dummy files in destDir
// so the track builder's existence checks pass.
type fakeFetcher struct {
	imageCount int
	videoCount int
	imageErr   error
	videoErr   error
}

func (f *fakeFetcher) FetchImages(ctx context.Context, terms []string, count int, destDir string) ([]assets.Asset, error) {
	if f.imageErr != nil {
		return nil, f.imageErr
	}
	return makeAssets(destDir, "image", f.imageCount, 0), nil
}

func (f *fakeFetcher) FetchVideos(ctx context.Context, terms []string, count int, destDir string) ([]assets.Asset, error) {
	if f.videoErr != nil {
		return nil, f.videoErr
	}
	return makeAssets(destDir, "clip", f.videoCount, 12.0), nil
}

func makeAssets(destDir, prefix string, n int, duration float64) []assets.Asset {
	out := make([]assets.Asset, 0, n)
	for i := 0; i < n; i++ {
		path := filepath.Join(destDir, prefix+"_"+string(rune('a'+i))+".bin")
		os.WriteFile(path, []byte("x"), 0o644)
		out = append(out, assets.Asset{
			ID:        prefix,
			LocalPath: path,
			Width:     1920,
			Height:    1080,
			Duration:  duration,
		})
	}
	return out
}

type fakeSynth struct {
	duration float64
	pingErr  error
	synthErr error
	custom   bool
}

func (f *fakeSynth) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeSynth) Synthesize(ctx context.Context, text string, custom bool, outPath string) (*speech.Narration, error) {
	if f.synthErr != nil {
		return nil, f.synthErr
	}
	f.custom = custom
	if err := os.WriteFile(outPath, []byte("RIFF"), 0o644); err != nil {
		return nil, err
	}
	return &speech.Narration{Path: outPath, Duration: f.duration, SampleRate: 24000, Custom: custom}, nil
}

type fakeAssembler struct {
	err   error
	track *media.Track
}

func (f *fakeAssembler) Assemble(ctx context.Context, track *media.Track, narrationPath, outPath string, duration float64) error {
	if f.err != nil {
		return f.err
	}
	f.track = track
	return os.WriteFile(outPath, []byte("mp4"), 0o644)
}

type fakeBurner struct{ err error }

func (f *fakeBurner) Burn(ctx context.Context, videoPath, srtPath, outPath string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outPath, []byte("mp4+sub"), 0o644)
}

type fakeThumbs struct{ err error }

func (f *fakeThumbs) Render(ctx context.Context, title, backgroundPath, outPath string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outPath, []byte("jpg"), 0o644)
}

type fakeUploader struct {
	url string
	err error
	req upload.Request
}

func (f *fakeUploader) Upload(ctx context.Context, req upload.Request) (string, error) {
	f.req = req
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fixture struct {
	cfg      *config.Config
	scripts  *fakeScripts
	fetcher  *fakeFetcher
	synth    *fakeSynth
	asm      *fakeAssembler
	burner   *fakeBurner
	thumbs   *fakeThumbs
	uploader *fakeUploader
	percents []int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		cfg: testConfig(t),
		scripts: &fakeScripts{scr: &script.Script{
			Topic:    "宇宙",
			Title:    "宇宙の不思議",
			Body:     "宇宙はとても広いです。星の数は数え切れません。",
			Keywords: []string{"宇宙", "星"},
		}},
		fetcher:  &fakeFetcher{imageCount: 3},
		synth:    &fakeSynth{duration: 25},
		asm:      &fakeAssembler{},
		burner:   &fakeBurner{},
		thumbs:   &fakeThumbs{},
		uploader: &fakeUploader{url: "https://www.youtube.com/watch?v=abc123"},
	}
}

func (f *fixture) pipeline() *Pipeline {
	progress := func(stage string, percent int, message string) {
		f.percents = append(f.percents, percent)
	}
	return New(f.cfg, f.scripts, f.fetcher, f.synth, f.asm, f.burner, f.thumbs, f.uploader, progress)
}

func TestRunHappyPath(t *testing.T) {
	f := newFixture(t)
	res, err := f.pipeline().Run(context.Background(), "宇宙", Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.Success {
		t.Fatal("Run() did not succeed")
	}

	if res.Title != "宇宙の不思議" {
		t.Errorf("Title = %q", res.Title)
	}
	if res.Script == "" || len(res.Keywords) != 2 {
		t.Errorf("Script/Keywords not carried into result: %q %v", res.Script, res.Keywords)
	}
	if res.Duration != 25 {
		t.Errorf("Duration = %v, want 25 (narration under the cap)", res.Duration)
	}
	if !strings.HasPrefix(res.VideoPath, f.cfg.OutputDir) {
		t.Errorf("VideoPath %q not under output dir %q", res.VideoPath, f.cfg.OutputDir)
	}
	if _, statErr := os.Stat(res.VideoPath); statErr != nil {
		t.Errorf("rendered video missing: %v", statErr)
	}

	wantStages := map[string]StageStatus{
		"validate_config":     StageOK,
		"script_generation":   StageOK,
		"asset_fetching":      StageOK,
		"voice_generation":    StageOK,
		"video_creation":      StageOK,
		"subtitle_generation": StageSkipped,
		"thumbnail":           StageSkipped,
		"upload":              StageSkipped,
	}
	for stage, want := range wantStages {
		if got := res.Stages[stage]; got != want {
			t.Errorf("stage %s = %q, want %q", stage, got, want)
		}
	}

	for i := 1; i < len(f.percents); i++ {
		if f.percents[i] < f.percents[i-1] {
			t.Errorf("progress went backwards: %v", f.percents)
			break
		}
	}
	if f.percents[len(f.percents)-1] != 100 {
		t.Errorf("final progress = %d, want 100", f.percents[len(f.percents)-1])
	}

	// the per-run temp dir must be gone
	entries, _ := os.ReadDir(f.cfg.TempDir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "run_") {
			t.Errorf("temp run dir not cleaned up: %s", e.Name())
		}
	}
}

func TestRunPrefersVideoClips(t *testing.T) {
	f := newFixture(t)
	f.fetcher.videoCount = 2
	res, err := f.pipeline().Run(context.Background(), "宇宙", Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.Success {
		t.Fatal("Run() did not succeed")
	}
	if f.asm.track == nil || f.asm.track.Mode != media.ModeVideoLoop {
		t.Error("expected a video loop track when clips are available")
	}
}

func TestRunNoAssets(t *testing.T) {
	f := newFixture(t)
	f.fetcher.imageCount = 0
	f.fetcher.videoErr = errors.New("pexels down")

	res, err := f.pipeline().Run(context.Background(), "宇宙", Options{})
	if err == nil {
		t.Fatal("Run() = nil error, want asset failure")
	}
	if kind := apperr.KindOf(err); kind != apperr.KindNoValidAssets {
		t.Errorf("KindOf(err) = %v, want KindNoValidAssets", kind)
	}
	if res.Success {
		t.Error("Result.Success = true after fatal failure")
	}
	if res.Stages["asset_fetching"] != StageFailed {
		t.Errorf("asset_fetching = %q, want failed", res.Stages["asset_fetching"])
	}
}

func TestRunEngineUnreachable(t *testing.T) {
	f := newFixture(t)
	f.synth.pingErr = apperr.Errorf(apperr.KindSynthUnreachable, "test", "engine down")

	res, err := f.pipeline().Run(context.Background(), "宇宙", Options{})
	if err == nil {
		t.Fatal("Run() = nil error, want ping failure")
	}
	if res.Stages["validate_config"] != StageFailed {
		t.Errorf("validate_config = %q, want failed", res.Stages["validate_config"])
	}
	if f.scripts.called {
		t.Error("script generation ran after a failed pre-flight check")
	}
}

func TestRunCustomScript(t *testing.T) {
	f := newFixture(t)
	f.synth.duration = 45 // over the cap, but custom scripts play in full

	res, err := f.pipeline().Run(context.Background(), "宇宙", Options{
		CustomScript: "人工知能の技術はこれからも進化を続けます。",
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if f.scripts.called {
		t.Error("generator was called despite a custom script")
	}
	if !f.synth.custom {
		t.Error("synthesizer was not told the script is custom")
	}
	if res.Script != "人工知能の技術はこれからも進化を続けます。" {
		t.Errorf("Script = %q, want the custom text verbatim", res.Script)
	}
	if len(res.Keywords) == 0 {
		t.Error("no keywords extracted from the custom script")
	}
	if res.Duration != 45 {
		t.Errorf("Duration = %v, want 45 (custom scripts bypass the cap)", res.Duration)
	}
}

func TestRunGeneratedScriptCappedDuration(t *testing.T) {
	f := newFixture(t)
	f.synth.duration = 45

	res, err := f.pipeline().Run(context.Background(), "宇宙", Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Duration != f.cfg.VideoDuration {
		t.Errorf("Duration = %v, want capped at %v", res.Duration, f.cfg.VideoDuration)
	}
}

func TestRunWithSubtitles(t *testing.T) {
	f := newFixture(t)
	res, err := f.pipeline().Run(context.Background(), "宇宙", Options{WithSubtitles: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Stages["subtitle_generation"] != StageOK {
		t.Errorf("subtitle_generation = %q, want completed", res.Stages["subtitle_generation"])
	}
	if res.SubtitlePath == "" || filepath.Ext(res.SubtitlePath) != ".srt" {
		t.Errorf("SubtitlePath = %q, want an .srt next to the video", res.SubtitlePath)
	}
	// the burned file replaces the plain render at the original path
	data, readErr := os.ReadFile(res.VideoPath)
	if readErr != nil {
		t.Fatalf("reading final video: %v", readErr)
	}
	if string(data) != "mp4+sub" {
		t.Errorf("final video content = %q, want the subtitled render", data)
	}
}

func TestRunUploadFailureStillSucceeds(t *testing.T) {
	f := newFixture(t)
	f.uploader.err = apperr.Errorf(apperr.KindUpload, "test", "quota exceeded")

	res, err := f.pipeline().Run(context.Background(), "宇宙", Options{Upload: true})
	if err != nil {
		t.Fatalf("Run() error = %v, upload failure must not fail the run", err)
	}
	if !res.Success {
		t.Error("Result.Success = false after upload-only failure")
	}
	if res.Stages["upload"] != StageFailed {
		t.Errorf("upload = %q, want failed", res.Stages["upload"])
	}
	if len(res.Errors) == 0 || !strings.Contains(res.Errors[0], "quota") {
		t.Errorf("Errors = %v, want the upload failure recorded", res.Errors)
	}
	if res.UploadURL != "" {
		t.Errorf("UploadURL = %q after failed upload", res.UploadURL)
	}
}

func TestRunUpload(t *testing.T) {
	f := newFixture(t)
	res, err := f.pipeline().Run(context.Background(), "宇宙", Options{Upload: true, Privacy: "unlisted"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.UploadURL != f.uploader.url {
		t.Errorf("UploadURL = %q, want %q", res.UploadURL, f.uploader.url)
	}
	// an upload always renders a thumbnail first
	if res.Stages["thumbnail"] != StageOK {
		t.Errorf("thumbnail = %q, want completed alongside upload", res.Stages["thumbnail"])
	}
	if f.uploader.req.ThumbnailPath == "" {
		t.Error("upload request carried no thumbnail")
	}
	if f.uploader.req.Metadata.Privacy != "unlisted" {
		t.Errorf("Privacy = %q, want unlisted", f.uploader.req.Metadata.Privacy)
	}
}

func TestRunOutputName(t *testing.T) {
	f := newFixture(t)
	res, err := f.pipeline().Run(context.Background(), "宇宙", Options{OutputName: "named.mp4"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if filepath.Base(res.VideoPath) != "named.mp4" {
		t.Errorf("VideoPath = %q, want named.mp4", res.VideoPath)
	}
}

func TestDefaultOutputName(t *testing.T) {
	got := defaultOutputName("Deep Sea Life!")
	if !strings.HasPrefix(got, "Deep_Sea_Life_") || !strings.HasSuffix(got, ".mp4") {
		t.Errorf("defaultOutputName = %q", got)
	}
	// fully non-ASCII topics fall back to a fixed slug
	got = defaultOutputName("宇宙")
	if !strings.HasPrefix(got, "video_") {
		t.Errorf("defaultOutputName(non-ascii) = %q", got)
	}
}
