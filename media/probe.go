package media

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/kojish2018/video-ai-creator/internal/apperr"
)

// Info is the subset of container metadata the pipeline reports back after
// a render.
type Info struct {
	Duration float64
	Width    int
	Height   int
	FPS      float64
	FileSize int64
	HasAudio bool
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
}

// ProbeInfo reads container metadata via ffprobe.
func ProbeInfo(ctx context.Context, path string) (*Info, error) {
	const op = "media.ProbeInfo"

	stat, err := os.Stat(path)
	if err != nil {
		return nil, apperr.Errorf(apperr.KindRenderCorrupt, op, "cannot stat %s: %v", path, err)
	}

	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	).Output()
	if err != nil {
		return nil, apperr.Errorf(apperr.KindRenderCorrupt, op, "ffprobe failed for %s: %v", path, err)
	}

	var probed ffprobeOutput
	if err := json.Unmarshal(out, &probed); err != nil {
		return nil, apperr.Errorf(apperr.KindRenderCorrupt, op, "unparseable ffprobe output: %v", err)
	}

	info := &Info{FileSize: stat.Size()}
	if probed.Format.Duration != "" {
		if d, err := strconv.ParseFloat(probed.Format.Duration, 64); err == nil {
			info.Duration = d
		}
	}
	for _, s := range probed.Streams {
		switch s.CodecType {
		case "video":
			info.Width = s.Width
			info.Height = s.Height
			info.FPS = parseFrameRate(s.RFrameRate)
		case "audio":
			info.HasAudio = true
		}
	}
	if info.Duration <= 0 {
		return nil, apperr.Errorf(apperr.KindRenderCorrupt, op, "no duration in %s", path)
	}
	return info, nil
}

// parseFrameRate converts ffprobe's rational "24/1" form to a float.
func parseFrameRate(r string) float64 {
	num, den, found := strings.Cut(r, "/")
	if !found {
		f, _ := strconv.ParseFloat(r, 64)
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

// ProbeDuration is a convenience wrapper returning only the duration.
func ProbeDuration(ctx context.Context, path string) (float64, error) {
	info, err := ProbeInfo(ctx, path)
	if err != nil {
		return 0, err
	}
	return info.Duration, nil
}
