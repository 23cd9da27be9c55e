package speech

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// interChunkSilence is inserted between synthesized chunks so sentence
// boundaries do not run together.
const interChunkSilence = 0.2 // seconds

// Format describes the PCM layout of a WAV payload. Chunks must share an
// identical format to be concatenated.
type Format struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
}

func (f Format) blockAlign() int {
	return f.Channels * f.BitsPerSample / 8
}

// decodeWAV parses a RIFF/WAVE container and returns its format and raw PCM
// payload.
func decodeWAV(b []byte) (Format, []byte, error) {
	var f Format
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return f, nil, errors.New("not a RIFF/WAVE container")
	}

	var pcm []byte
	haveFmt := false
	pos := 12
	for pos+8 <= len(b) {
		id := string(b[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(b[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(b) {
			return f, nil, errors.New("truncated WAV chunk")
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return f, nil, errors.New("short fmt chunk")
			}
			f.Channels = int(binary.LittleEndian.Uint16(b[body+2 : body+4]))
			f.SampleRate = int(binary.LittleEndian.Uint32(b[body+4 : body+8]))
			f.BitsPerSample = int(binary.LittleEndian.Uint16(b[body+14 : body+16]))
			haveFmt = true
		case "data":
			pcm = b[body : body+size]
		}
		// chunks are word aligned
		pos = body + size + size%2
	}

	if !haveFmt {
		return f, nil, errors.New("missing fmt chunk")
	}
	if pcm == nil {
		return f, nil, errors.New("missing data chunk")
	}
	if f.SampleRate <= 0 || f.Channels <= 0 || f.BitsPerSample <= 0 {
		return f, nil, fmt.Errorf("invalid PCM format %+v", f)
	}
	return f, pcm, nil
}

// encodeWAV writes a canonical 44-byte-header WAV file around the PCM payload.
func encodeWAV(f Format, pcm []byte) []byte {
	var buf bytes.Buffer
	byteRate := f.SampleRate * f.blockAlign()

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(f.Channels))
	binary.Write(&buf, binary.LittleEndian, uint32(f.SampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(f.blockAlign()))
	binary.Write(&buf, binary.LittleEndian, uint16(f.BitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}

// wavDuration returns the playable length of a WAV payload in seconds.
func wavDuration(b []byte) (float64, error) {
	f, pcm, err := decodeWAV(b)
	if err != nil {
		return 0, err
	}
	frames := len(pcm) / f.blockAlign()
	return float64(frames) / float64(f.SampleRate), nil
}

// concatWAV joins chunk audio into one stream with a fixed silence gap
// between chunks. All chunks must share an identical sample rate, channel
// count and bit depth; a mismatch is a hard error, not a soft merge.
func concatWAV(chunks [][]byte, silenceSeconds float64) ([]byte, error) {
	if len(chunks) == 0 {
		return nil, errors.New("no audio chunks to concatenate")
	}

	base, pcm, err := decodeWAV(chunks[0])
	if err != nil {
		return nil, fmt.Errorf("chunk 1: %w", err)
	}
	if len(pcm) == 0 {
		return nil, errors.New("chunk 1: empty audio")
	}

	silenceFrames := int(silenceSeconds * float64(base.SampleRate))
	silence := make([]byte, silenceFrames*base.blockAlign())

	var out bytes.Buffer
	out.Write(pcm)
	for i, chunk := range chunks[1:] {
		f, p, err := decodeWAV(chunk)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i+2, err)
		}
		if f != base {
			return nil, fmt.Errorf("chunk %d format %+v differs from chunk 1 format %+v", i+2, f, base)
		}
		if len(p) == 0 {
			return nil, fmt.Errorf("chunk %d: empty audio", i+2)
		}
		out.Write(silence)
		out.Write(p)
	}

	return encodeWAV(base, out.Bytes()), nil
}
