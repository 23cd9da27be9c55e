package speech

import (
	"strings"
	"testing"
)

func TestPreprocess(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"collapses whitespace", "こんにちは  \n 世界", "こんにちは 世界"},
		{"adds pause after sentence end", "今日は晴れです。明日は雨です。", "今日は晴れです。、明日は雨です。、"},
		{"adds pause after exclamation", "すごい！", "すごい！、"},
		{"adds pause after question", "本当？", "本当？、"},
		{"replaces symbols", "A・B～C", "AとBからC"},
		{"replaces percent and ampersand", "50%＆A&B", "50パーセント＆AアンドB"},
		{"ellipsis becomes sentence end with pause", "それは…", "それは。、"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Preprocess(tc.input)
			if got != tc.expected {
				t.Errorf("Preprocess(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestSplitChunksShortTextSingleChunk(t *testing.T) {
	text := "短い文章です。"
	chunks := SplitChunks(text, 200)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("chunk = %q, want %q", chunks[0], text)
	}
}

func TestSplitChunksRespectsBudget(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 10; i++ {
		b.WriteString("これは長めの文章のテストのための一文です。、")
	}
	text := b.String()

	budget := 60
	chunks := SplitChunks(text, budget)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := len([]rune(c)); n > budget {
			t.Errorf("chunk %d has %d runes, budget %d", i, n, budget)
		}
	}
}

func TestSplitChunksRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		budget int
	}{
		{"sentence packing", strings.Repeat("春は曙。、やうやう白くなりゆく山際。、", 8), 50},
		{"clause fallback", strings.Repeat("長い、文を、読点で、区切り、ながら、続ける", 5), 20},
		{"hard cut without punctuation", strings.Repeat("あ", 95), 30},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			chunks := SplitChunks(tc.text, tc.budget)
			if got := strings.Join(chunks, ""); got != tc.text {
				t.Errorf("concatenated chunks differ from input:\ngot  %q\nwant %q", got, tc.text)
			}
		})
	}
}

func TestSplitChunksOversizedSentenceFallsBackToClauses(t *testing.T) {
	sentence := "一つ目の節、二つ目の節、三つ目の節、四つ目の節、五つ目の節。"
	budget := 10
	chunks := SplitChunks(sentence, budget)
	if len(chunks) < 2 {
		t.Fatalf("expected clause-level splitting, got %d chunks", len(chunks))
	}
	if got := strings.Join(chunks, ""); got != sentence {
		t.Errorf("round trip failed: %q", got)
	}
}
