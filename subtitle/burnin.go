package subtitle

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

const burnStyle = "FontName=Hiragino Sans,FontSize=24,PrimaryColour=&Hffffff,OutlineColour=&H000000,Outline=2,Alignment=2,MarginV=30"

// Burner burns SRT subtitles into a rendered video by re-encoding the video
// stream. The audio stream is copied untouched.
type Burner struct {
	FFmpegPath string
}

func NewBurner() *Burner {
	return &Burner{FFmpegPath: "ffmpeg"}
}

// Burn writes a new video at outPath with the subtitles rendered in. The
// input video is left as-is.
func (b *Burner) Burn(ctx context.Context, videoPath, srtPath, outPath string) error {
	const op = "subtitle.Burn"

	if _, err := os.Stat(srtPath); err != nil {
		return apperr.Errorf(apperr.KindRenderCorrupt, op, "subtitle file missing: %v", err)
	}

	// ffmpeg's subtitles filter parses ':' and '\' specially inside the
	// filename argument.
	escaped := strings.NewReplacer(`\`, `\\`, `:`, `\:`, `'`, `\'`).Replace(srtPath)
	filter := fmt.Sprintf("subtitles='%s':force_style='%s'", escaped, burnStyle)

	log.Printf("[subtitle] burning %s into %s", srtPath, outPath)

	cmd := exec.CommandContext(ctx, b.FFmpegPath,
		"-y",
		"-i", videoPath,
		"-vf", filter,
		"-c:a", "copy",
		outPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(outPath)
		return apperr.Errorf(apperr.KindRenderCodec, op, "ffmpeg subtitle burn failed: %v: %s",
			err, tail(stderr.Bytes()))
	}
	if info, err := os.Stat(outPath); err != nil || info.Size() == 0 {
		os.Remove(outPath)
		return apperr.Errorf(apperr.KindRenderCorrupt, op, "burned output missing or empty: %s", outPath)
	}
	return nil
}

func tail(stderr []byte) string {
	const max = 300
	s := strings.TrimSpace(string(stderr))
	if len(s) > max {
		s = "..." + s[len(s)-max:]
	}
	return s
}
