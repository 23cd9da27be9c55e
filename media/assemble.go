package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/kojish2018/video-ai-creator/internal/apperr"
)

const (
	videoBitrate = "2000k"
	audioBitrate = "128k"

	// minOutputBytes guards against ffmpeg exiting zero after writing a
	// truncated header.
	minOutputBytes = 1000
)

// Assembler renders a visual track plus a narration track into a single
// H.264/AAC file via ffmpeg.
type Assembler struct {
	FFmpegPath string
}

func NewAssembler() *Assembler {
	return &Assembler{FFmpegPath: "ffmpeg"}
}

// Assemble renders the track with the narration audio into outPath, cutting
// the container at exactly duration seconds. Any failure removes the partial
// output before returning.
func (a *Assembler) Assemble(ctx context.Context, track *Track, narrationPath, outPath string, duration float64) error {
	const op = "media.Assemble"

	if _, err := os.Stat(narrationPath); err != nil {
		return apperr.Errorf(apperr.KindRenderCorrupt, op, "narration file missing: %v", err)
	}

	var args []string
	switch track.Mode {
	case ModeSlideshow:
		args = a.slideshowArgs(track, narrationPath, outPath, duration)
	case ModeVideoLoop:
		args = a.videoLoopArgs(track, narrationPath, outPath, duration)
	default:
		return apperr.Errorf(apperr.KindRenderCodec, op, "unknown track mode %d", track.Mode)
	}

	log.Printf("[media] rendering %d segments to %s (%.2fs)", len(track.Segments), outPath, duration)

	cmd := exec.CommandContext(ctx, a.FFmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(outPath)
		return classifyRenderError(op, err, stderr.Bytes())
	}

	info, err := os.Stat(outPath)
	if err != nil || info.Size() < minOutputBytes {
		os.Remove(outPath)
		return apperr.Errorf(apperr.KindRenderCorrupt, op,
			"output file missing or truncated: %s", outPath)
	}

	probed, err := ProbeInfo(ctx, outPath)
	if err != nil {
		os.Remove(outPath)
		return apperr.Errorf(apperr.KindRenderCorrupt, op,
			"output not readable by ffprobe: %v", err)
	}
	if diff := probed.Duration - duration; diff > 1 || diff < -1 {
		log.Printf("[media] warning: output duration %.2fs deviates from target %.2fs", probed.Duration, duration)
	}
	return nil
}

// slideshowArgs builds one looped still-image input per segment, letterboxes
// each to the frame, applies the cross-fades, and concatenates.
func (a *Assembler) slideshowArgs(track *Track, narrationPath, outPath string, duration float64) []string {
	args := []string{"-y"}
	for _, seg := range track.Segments {
		args = append(args,
			"-loop", "1",
			"-t", fmt.Sprintf("%.3f", seg.Span),
			"-i", seg.SourcePath,
		)
	}
	args = append(args, "-i", narrationPath)
	narrationIndex := len(track.Segments)

	var fc strings.Builder
	for i, seg := range track.Segments {
		fmt.Fprintf(&fc, "[%d:v]%s", i, letterboxFilter(track.Frame))
		if seg.FadeIn {
			fmt.Fprintf(&fc, ",fade=t=in:st=0:d=%.2f", TransitionDuration)
		}
		if seg.FadeOut {
			fmt.Fprintf(&fc, ",fade=t=out:st=%.3f:d=%.2f", seg.Span-TransitionDuration, TransitionDuration)
		}
		fmt.Fprintf(&fc, "[v%d];", i)
	}
	for i := range track.Segments {
		fmt.Fprintf(&fc, "[v%d]", i)
	}
	fmt.Fprintf(&fc, "concat=n=%d:v=1:a=0[vout]", len(track.Segments))

	args = append(args,
		"-filter_complex", fc.String(),
		"-map", "[vout]",
		"-map", fmt.Sprintf("%d:a", narrationIndex),
	)
	return append(args, a.encodeArgs(track.Frame, outPath, duration)...)
}

// videoLoopArgs replays a single clip input as many times as the plan
// requires, trims the final partial slice, and concatenates. The clip's own
// audio is dropped so the narration is the only audio track.
func (a *Assembler) videoLoopArgs(track *Track, narrationPath, outPath string, duration float64) []string {
	args := []string{"-y", "-i", track.Segments[0].SourcePath, "-i", narrationPath}

	var fc strings.Builder
	n := len(track.Segments)
	fmt.Fprintf(&fc, "[0:v]%s,split=%d", letterboxFilter(track.Frame), n)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&fc, "[s%d]", i)
	}
	fc.WriteString(";")
	for i, seg := range track.Segments {
		fmt.Fprintf(&fc, "[s%d]trim=0:%.3f,setpts=PTS-STARTPTS[c%d];", i, seg.Span, i)
	}
	for i := 0; i < n; i++ {
		fmt.Fprintf(&fc, "[c%d]", i)
	}
	fmt.Fprintf(&fc, "concat=n=%d:v=1:a=0[vout]", n)

	args = append(args,
		"-filter_complex", fc.String(),
		"-map", "[vout]",
		"-map", "1:a",
	)
	return append(args, a.encodeArgs(track.Frame, outPath, duration)...)
}

// letterboxFilter scales a source into the frame preserving aspect ratio and
// pads the remainder with black bars.
func letterboxFilter(f FrameSpec) string {
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=black,setsar=1,fps=%d",
		f.Width, f.Height, f.Width, f.Height, f.FPS)
}

func (a *Assembler) encodeArgs(f FrameSpec, outPath string, duration float64) []string {
	return []string{
		"-c:v", "libx264",
		"-b:v", videoBitrate,
		"-c:a", "aac",
		"-b:a", audioBitrate,
		"-r", fmt.Sprintf("%d", f.FPS),
		"-pix_fmt", "yuv420p",
		"-t", fmt.Sprintf("%.3f", duration),
		outPath,
	}
}

// classifyRenderError maps process failure values onto render error kinds.
// SIGKILL almost always means the OOM killer; everything else an exit status
// carries is treated as a codec or filter problem with the stderr tail for
// context.
func classifyRenderError(op string, err error, stderr []byte) error {
	if errors.Is(err, exec.ErrNotFound) {
		return apperr.Errorf(apperr.KindConfig, op, "ffmpeg not found in PATH")
	}
	if errors.Is(err, fs.ErrPermission) {
		return apperr.Errorf(apperr.KindRenderPermission, op, "permission denied running ffmpeg: %v", err)
	}
	if errors.Is(err, syscall.ENOSPC) {
		return apperr.Errorf(apperr.KindRenderDisk, op, "no space left on device: %v", err)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() && status.Signal() == syscall.SIGKILL {
			return apperr.Errorf(apperr.KindRenderMemory, op, "ffmpeg killed (likely out of memory)")
		}
		if bytes.Contains(stderr, []byte("No space left on device")) {
			return apperr.Errorf(apperr.KindRenderDisk, op, "ffmpeg: no space left on device")
		}
		if bytes.Contains(stderr, []byte("Permission denied")) {
			return apperr.Errorf(apperr.KindRenderPermission, op, "ffmpeg: permission denied")
		}
		return apperr.Errorf(apperr.KindRenderCodec, op, "ffmpeg exited %d: %s",
			exitErr.ExitCode(), stderrTail(stderr))
	}
	return apperr.E(apperr.KindRenderCodec, op, err)
}

func stderrTail(stderr []byte) string {
	const max = 500
	s := strings.TrimSpace(string(stderr))
	if len(s) > max {
		s = "..." + s[len(s)-max:]
	}
	return s
}
