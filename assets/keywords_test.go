package assets

import (
	"reflect"
	"testing"
)

func TestProcessKeywords(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"simple split", "ocean, mountain, forest", []string{"ocean", "mountain", "forest"}},
		{"trims whitespace", "  ocean ,mountain  ", []string{"ocean", "mountain"}},
		{"deduplicates", "ocean, ocean, mountain", []string{"ocean", "mountain"}},
		{"caps at three", "a, b, c, d, e", []string{"a", "b", "c"}},
		{"empty falls back", "", []string{"nature", "landscape"}},
		{"only commas falls back", ", , ,", []string{"nature", "landscape"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ProcessKeywords(tc.input)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("ProcessKeywords(%q) = %v, want %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestSelectBestQuality(t *testing.T) {
	tests := []struct {
		name     string
		files    []pexelsVideoFile
		expected string // link of the chosen file, "" for nil
	}{
		{
			"prefers hd",
			[]pexelsVideoFile{{Link: "s", Quality: "sd"}, {Link: "h", Quality: "hd"}},
			"h",
		},
		{
			"sd over hls",
			[]pexelsVideoFile{{Link: "l", Quality: "hls"}, {Link: "s", Quality: "sd"}},
			"s",
		},
		{
			"falls back to first unknown",
			[]pexelsVideoFile{{Link: "u", Quality: "uhd"}},
			"u",
		},
		{"no files", nil, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			best := selectBestQuality(tc.files)
			if tc.expected == "" {
				if best != nil {
					t.Errorf("expected nil, got %+v", best)
				}
				return
			}
			if best == nil || best.Link != tc.expected {
				t.Errorf("selectBestQuality = %+v, want link %q", best, tc.expected)
			}
		})
	}
}
