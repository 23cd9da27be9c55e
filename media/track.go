package media

import (
	"errors"
	"log"
	"math"
	"os"

	"github.com/kojish2018/video-ai-creator/assets"
	"github.com/kojish2018/video-ai-creator/internal/apperr"
)

// TransitionDuration is the cross-fade length between adjacent slideshow
// images.
const TransitionDuration = 0.5

// spanEpsilon absorbs float drift when deciding whether a final partial loop
// slice is needed.
const spanEpsilon = 1e-9

type Mode int

const (
	ModeSlideshow Mode = iota
	ModeVideoLoop
)

// FrameSpec is the output frame geometry.
type FrameSpec struct {
	Width  int
	Height int
	FPS    int
}

// Segment is one contiguous piece of the output visual track. For video
// loops every segment replays the source from zero for Span seconds.
type Segment struct {
	SourcePath string
	Start      float64
	Span       float64
	FadeIn     bool
	FadeOut    bool
}

// Track is the composed visual plan, exactly matching the target duration.
// It is constructed per request and consumed immediately by the assembler.
type Track struct {
	Mode     Mode
	Segments []Segment
	Duration float64
	Frame    FrameSpec
}

var errNoPlayableClip = errors.New("no playable video clip")

// BuildTrack produces a visual track of exactly target seconds. Video clips
// take priority; the image slideshow is the fallback when no clip is usable.
func BuildTrack(videos, images []assets.Asset, target float64, frame FrameSpec) (*Track, error) {
	if target <= 0 {
		return nil, apperr.Errorf(apperr.KindNoValidAssets, "media.BuildTrack",
			"target duration must be positive, got %.3f", target)
	}

	if len(videos) > 0 {
		track, err := buildVideoLoop(videos, target, frame)
		if err == nil {
			return track, nil
		}
		if !errors.Is(err, errNoPlayableClip) {
			return nil, err
		}
		log.Printf("[media] no playable video clip, falling back to image slideshow")
	}

	return buildSlideshow(images, target, frame)
}

// buildSlideshow divides the target evenly across the images and marks
// cross-fades: fade-out on every image except the last, fade-in on every
// image except the first. The last span absorbs division drift so spans sum
// to the target exactly.
func buildSlideshow(images []assets.Asset, target float64, frame FrameSpec) (*Track, error) {
	var usable []assets.Asset
	for _, img := range images {
		if img.LocalPath == "" {
			continue
		}
		if _, err := os.Stat(img.LocalPath); err != nil {
			log.Printf("[media] warning: image not found, skipping: %s", img.LocalPath)
			continue
		}
		usable = append(usable, img)
	}
	if len(usable) == 0 {
		return nil, apperr.Errorf(apperr.KindNoValidAssets, "media.BuildTrack",
			"no valid images found for slideshow")
	}

	per := target / float64(len(usable))
	segments := make([]Segment, len(usable))
	offset := 0.0
	for i, img := range usable {
		span := per
		if i == len(usable)-1 {
			span = target - offset
		}
		segments[i] = Segment{
			SourcePath: img.LocalPath,
			Start:      offset,
			Span:       span,
			FadeIn:     i > 0,
			FadeOut:    i < len(usable)-1,
		}
		offset += span
	}

	track := &Track{Mode: ModeSlideshow, Segments: segments, Duration: target, Frame: frame}
	if err := track.validate(); err != nil {
		return nil, err
	}
	return track, nil
}

// buildVideoLoop selects the first playable clip and reconciles its duration
// against the target: cut when longer, loop with an exact final partial
// slice when shorter. Segment spans sum to the target exactly.
func buildVideoLoop(videos []assets.Asset, target float64, frame FrameSpec) (*Track, error) {
	var clip *assets.Asset
	for i := range videos {
		v := &videos[i]
		if v.LocalPath == "" || v.Duration <= 0 {
			continue
		}
		if _, err := os.Stat(v.LocalPath); err != nil {
			log.Printf("[media] warning: video not found, skipping: %s", v.LocalPath)
			continue
		}
		clip = v
		break
	}
	if clip == nil {
		return nil, errNoPlayableClip
	}

	var segments []Segment
	if clip.Duration >= target {
		segments = []Segment{{SourcePath: clip.LocalPath, Start: 0, Span: target}}
	} else {
		fullLoops := int(target / clip.Duration)
		partial := target - float64(fullLoops)*clip.Duration
		if partial < spanEpsilon {
			partial = 0
		}

		offset := 0.0
		for i := 0; i < fullLoops; i++ {
			segments = append(segments, Segment{SourcePath: clip.LocalPath, Start: offset, Span: clip.Duration})
			offset += clip.Duration
		}
		if partial > 0 {
			segments = append(segments, Segment{SourcePath: clip.LocalPath, Start: offset, Span: partial})
		} else if len(segments) > 0 {
			// squeeze drift into the last full loop so the sum is exact
			last := &segments[len(segments)-1]
			last.Span = target - last.Start
		}
	}

	track := &Track{Mode: ModeVideoLoop, Segments: segments, Duration: target, Frame: frame}
	if err := track.validate(); err != nil {
		return nil, err
	}
	return track, nil
}

// validate rejects empty or malformed plans before they reach the renderer.
// A looped, letterboxed composite must never carry a nil background or a
// non-positive slice.
func (t *Track) validate() error {
	if len(t.Segments) == 0 {
		return apperr.Errorf(apperr.KindNoValidAssets, "media.Track",
			"visual track has no segments")
	}
	sum := 0.0
	for i, seg := range t.Segments {
		if seg.SourcePath == "" {
			return apperr.Errorf(apperr.KindNoValidAssets, "media.Track",
				"segment %d has no source", i)
		}
		if seg.Span <= 0 {
			return apperr.Errorf(apperr.KindNoValidAssets, "media.Track",
				"segment %d has non-positive span %.6f", i, seg.Span)
		}
		sum += seg.Span
	}
	if math.Abs(sum-t.Duration) > 1e-6 {
		return apperr.Errorf(apperr.KindNoValidAssets, "media.Track",
			"segment spans sum to %.6f, want %.6f", sum, t.Duration)
	}
	return nil
}
