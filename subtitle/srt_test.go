package subtitle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{61.25, "00:01:01,250"},
		{3661.999, "01:01:01,999"},
		{-1, "00:00:00,000"},
	}

	for _, tc := range tests {
		if got := formatTimestamp(tc.seconds); got != tc.expected {
			t.Errorf("formatTimestamp(%v) = %q, want %q", tc.seconds, got, tc.expected)
		}
	}
}

func TestFormatSRT(t *testing.T) {
	cues := []Cue{
		{Index: 1, Start: 0, End: 2.5, Text: "最初の字幕です。"},
		{Index: 2, Start: 2.5, End: 5, Text: "次の字幕です。"},
	}

	got := FormatSRT(cues)
	want := "1\n00:00:00,000 --> 00:00:02,500\n最初の字幕です。\n\n" +
		"2\n00:00:02,500 --> 00:00:05,000\n次の字幕です。\n\n"
	if got != want {
		t.Errorf("FormatSRT:\ngot  %q\nwant %q", got, want)
	}
}

func TestWriteSRT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.srt")
	cues := []Cue{{Index: 1, Start: 0, End: 1.5, Text: "テスト"}}

	if err := WriteSRT(cues, path); err != nil {
		t.Fatalf("WriteSRT: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "00:00:00,000 --> 00:00:01,500") {
		t.Errorf("unexpected SRT content: %s", data)
	}
}

func TestWriteSRTNoCues(t *testing.T) {
	if err := WriteSRT(nil, filepath.Join(t.TempDir(), "empty.srt")); err == nil {
		t.Error("expected error for empty cue list")
	}
}
