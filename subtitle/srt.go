package subtitle

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/kojish2018/video-ai-creator/internal/apperr"
)

// formatTimestamp renders seconds as the SRT "HH:MM:SS,mmm" form.
func formatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int(math.Round(seconds * 1000))
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// FormatSRT renders cues as a SubRip document.
func FormatSRT(cues []Cue) string {
	var b strings.Builder
	for _, c := range cues {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			c.Index, formatTimestamp(c.Start), formatTimestamp(c.End), c.Text)
	}
	return b.String()
}

// WriteSRT writes the cues to path as UTF-8 SubRip.
func WriteSRT(cues []Cue, path string) error {
	if len(cues) == 0 {
		return apperr.Errorf(apperr.KindRenderCorrupt, "subtitle.WriteSRT", "no cues to write")
	}
	if err := os.WriteFile(path, []byte(FormatSRT(cues)), 0o644); err != nil {
		return apperr.Errorf(apperr.KindRenderDisk, "subtitle.WriteSRT", "write %s: %v", path, err)
	}
	return nil
}
