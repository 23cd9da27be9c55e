package speech

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/kojish2018/video-ai-creator/internal/apperr"
)

// maxSpeedScale bounds the speaking-rate increase applied to fit the
// duration cap.
const maxSpeedScale = 2.0

// Narration is the synthesized speech result consumed by the assembler.
type Narration struct {
	Path       string
	Duration   float64
	SampleRate int
	// Custom marks narration from a user-supplied script, which is exempt
	// from the duration cap.
	Custom bool
}

// Synthesizer turns narration text of arbitrary length into a single
// continuous audio track.
type Synthesizer struct {
	client      *Client
	chunkBudget int
	capSeconds  float64
}

func NewSynthesizer(client *Client, capSeconds float64) *Synthesizer {
	return &Synthesizer{
		client:      client,
		chunkBudget: DefaultChunkBudget,
		capSeconds:  capSeconds,
	}
}

// Ping checks engine reachability, for pre-flight validation.
func (s *Synthesizer) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Synthesize converts text into one WAV file at outPath. Texts within the
// chunk budget are synthesized in a single call with speed adjusted to fit
// the cap; longer texts are chunked at sentence boundaries and concatenated
// with a short silence between chunks.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, custom bool, outPath string) (*Narration, error) {
	if len([]rune(text)) == 0 {
		return nil, errors.New("narration text cannot be empty")
	}

	processed := Preprocess(text)

	var wav []byte
	var err error
	if len([]rune(processed)) <= s.chunkBudget {
		wav, err = s.synthesizeSingle(ctx, processed, custom)
	} else {
		wav, err = s.synthesizeChunked(ctx, processed)
	}
	if err != nil {
		return nil, err
	}

	format, pcm, err := decodeWAV(wav)
	if err != nil {
		return nil, errCorrupt("speech.Synthesize",
			fmt.Errorf("generated audio is corrupted: %w", err))
	}
	if len(pcm) == 0 {
		return nil, errCorrupt("speech.Synthesize",
			errors.New("generated audio file is empty"))
	}

	if err := os.WriteFile(outPath, wav, 0o644); err != nil {
		return nil, fmt.Errorf("failed to save audio file: %w", err)
	}

	duration, err := wavDuration(wav)
	if err != nil {
		return nil, errCorrupt("speech.Synthesize", err)
	}

	return &Narration{
		Path:       outPath,
		Duration:   duration,
		SampleRate: format.SampleRate,
		Custom:     custom,
	}, nil
}

// synthesizeSingle performs one query+synthesis round trip. For non-custom
// scripts the speaking rate is raised (bounded at 2x) when the mora-count
// estimate exceeds the duration cap.
func (s *Synthesizer) synthesizeSingle(ctx context.Context, text string, custom bool) ([]byte, error) {
	q, err := s.client.AudioQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	if !custom && s.capSeconds > 0 {
		if est := q.EstimateDuration(); est > s.capSeconds {
			factor := est / (s.capSeconds - 2)
			if factor > maxSpeedScale {
				factor = maxSpeedScale
			}
			q.SetSpeedScale(q.SpeedScale() * factor)
			log.Printf("[speech] estimated %.1fs exceeds %.0fs cap, raising speed scale to %.2f",
				est, s.capSeconds, q.SpeedScale())
		}
	}

	return s.client.Synthesize(ctx, q)
}

// synthesizeChunked splits the text, synthesizes each chunk serially and
// concatenates the audio. A single chunk failure fails the whole narration;
// there is no partial result.
func (s *Synthesizer) synthesizeChunked(ctx context.Context, text string) ([]byte, error) {
	chunks := SplitChunks(text, s.chunkBudget)
	log.Printf("[speech] synthesizing %d chunks", len(chunks))

	audio := make([][]byte, 0, len(chunks))
	for i, chunk := range chunks {
		q, err := s.client.AudioQuery(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		wav, err := s.client.Synthesize(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		audio = append(audio, wav)
	}

	joined, err := concatWAV(audio, interChunkSilence)
	if err != nil {
		return nil, apperr.E(apperr.KindSynthCorrupt, "speech.Synthesize", err)
	}
	return joined, nil
}
