package speech

import (
	"math"
	"strings"
	"testing"
)

func makeWAV(t *testing.T, f Format, frames int) []byte {
	t.Helper()
	pcm := make([]byte, frames*f.blockAlign())
	return encodeWAV(f, pcm)
}

func TestDecodeWAVRoundTrip(t *testing.T) {
	f := Format{Channels: 1, SampleRate: 24000, BitsPerSample: 16}
	pcm := []byte{1, 2, 3, 4, 5, 6}

	decoded, gotPCM, err := decodeWAV(encodeWAV(f, pcm))
	if err != nil {
		t.Fatalf("decodeWAV: %v", err)
	}
	if decoded != f {
		t.Errorf("format = %+v, want %+v", decoded, f)
	}
	if string(gotPCM) != string(pcm) {
		t.Errorf("pcm = %v, want %v", gotPCM, pcm)
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not riff", []byte("this is not audio data at all")},
		{"truncated header", []byte("RIFF")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := decodeWAV(tc.data); err == nil {
				t.Error("expected error for invalid WAV data")
			}
		})
	}
}

func TestWavDuration(t *testing.T) {
	f := Format{Channels: 1, SampleRate: 24000, BitsPerSample: 16}
	b := makeWAV(t, f, 24000) // exactly one second

	d, err := wavDuration(b)
	if err != nil {
		t.Fatalf("wavDuration: %v", err)
	}
	if math.Abs(d-1.0) > 1e-9 {
		t.Errorf("duration = %f, want 1.0", d)
	}
}

func TestConcatWAVInsertsSilence(t *testing.T) {
	f := Format{Channels: 1, SampleRate: 24000, BitsPerSample: 16}
	one := makeWAV(t, f, 24000)

	out, err := concatWAV([][]byte{one, one}, 0.2)
	if err != nil {
		t.Fatalf("concatWAV: %v", err)
	}

	d, err := wavDuration(out)
	if err != nil {
		t.Fatalf("wavDuration: %v", err)
	}
	want := 1.0 + 0.2 + 1.0
	if math.Abs(d-want) > 1e-6 {
		t.Errorf("duration = %f, want %f", d, want)
	}
}

func TestConcatWAVFormatMismatchIsFatal(t *testing.T) {
	a := makeWAV(t, Format{Channels: 1, SampleRate: 24000, BitsPerSample: 16}, 100)
	b := makeWAV(t, Format{Channels: 1, SampleRate: 44100, BitsPerSample: 16}, 100)

	_, err := concatWAV([][]byte{a, b}, 0.2)
	if err == nil {
		t.Fatal("expected error for mismatched sample rates")
	}
	if !strings.Contains(err.Error(), "format") {
		t.Errorf("error should mention the format mismatch, got %v", err)
	}
}

func TestConcatWAVEmptyChunkList(t *testing.T) {
	if _, err := concatWAV(nil, 0.2); err == nil {
		t.Error("expected error for empty chunk list")
	}
}
