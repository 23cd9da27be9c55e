package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/kojish2018/video-ai-creator/internal/apperr"
)

const (
	width  = 1280
	height = 720

	maxTitleRunes = 40
)

// fontCandidates are checked in order; the first existing file is used for
// drawtext. Ordered to prefer fonts with Japanese coverage.
var fontCandidates = []string{
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Bold.ttc",
	"/usr/share/fonts/truetype/noto/NotoSansCJK-Bold.ttc",
	"/System/Library/Fonts/ヒラギノ角ゴシック W6.ttc",
	"/System/Library/Fonts/Hiragino Sans GB.ttc",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
}

// Renderer produces YouTube thumbnails by compositing a title over a
// background frame with ffmpeg.
type Renderer struct {
	FFmpegPath string
}

func NewRenderer() *Renderer {
	return &Renderer{FFmpegPath: "ffmpeg"}
}

// Render writes a 1280x720 JPEG thumbnail to outPath. backgroundPath may be
// an image or a video file; when empty or missing a dark solid background is
// synthesized instead.
func (r *Renderer) Render(ctx context.Context, title, backgroundPath, outPath string) error {
	const op = "thumbnail.Render"

	title = truncateTitle(title)

	args := []string{"-y"}
	if backgroundPath != "" {
		if _, err := os.Stat(backgroundPath); err == nil {
			args = append(args, "-i", backgroundPath)
		} else {
			log.Printf("[thumbnail] background missing, using solid color: %s", backgroundPath)
			backgroundPath = ""
		}
	}
	if backgroundPath == "" {
		args = append(args, "-f", "lavfi", "-i", fmt.Sprintf("color=c=0x1a1a2e:s=%dx%d", width, height))
	}

	filter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,%s",
		width, height, width, height, drawTitle(title))

	args = append(args,
		"-vf", filter,
		"-frames:v", "1",
		"-q:v", "2",
		outPath,
	)

	cmd := exec.CommandContext(ctx, r.FFmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(outPath)
		return apperr.Errorf(apperr.KindRenderCodec, op, "thumbnail render failed: %v: %s",
			err, strings.TrimSpace(stderr.String()))
	}
	if info, err := os.Stat(outPath); err != nil || info.Size() == 0 {
		os.Remove(outPath)
		return apperr.Errorf(apperr.KindRenderCorrupt, op, "thumbnail missing or empty: %s", outPath)
	}
	return nil
}

// drawTitle builds the drawtext filter: white bold title over a translucent
// band in the lower third.
func drawTitle(title string) string {
	font := ""
	for _, f := range fontCandidates {
		if _, err := os.Stat(f); err == nil {
			font = f
			break
		}
	}

	parts := []string{
		fmt.Sprintf("text='%s'", escapeDrawtext(title)),
		"fontsize=64",
		"fontcolor=white",
		"borderw=3",
		"bordercolor=black",
		"box=1",
		"boxcolor=black@0.45",
		"boxborderw=18",
		"x=(w-text_w)/2",
		"y=h-text_h-80",
	}
	if font != "" {
		parts = append([]string{fmt.Sprintf("fontfile='%s'", font)}, parts...)
	}
	return "drawtext=" + strings.Join(parts, ":")
}

func truncateTitle(title string) string {
	runes := []rune(strings.TrimSpace(title))
	if len(runes) <= maxTitleRunes {
		return string(runes)
	}
	return string(runes[:maxTitleRunes-1]) + "…"
}

// escapeDrawtext escapes characters drawtext treats specially.
func escapeDrawtext(s string) string {
	return strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
	).Replace(s)
}
