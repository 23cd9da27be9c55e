package script

import (
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		contains []string
	}{
		{
			"technology terms boosted",
			"人工知能の発展について考えてみましょう。AIは私たちの生活を大きく変えるでしょう。",
			[]string{"人工知能"},
		},
		{
			"nature terms boosted",
			"美しい森林の中で動物が暮らしています。森林の環境を守りましょう。",
			[]string{"森林"},
		},
		{
			"katakana terms score",
			"テクノロジーとイノベーションが世界を動かします。",
			[]string{"テクノロジー", "イノベーション"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractKeywords(tc.text, 5)
			for _, want := range tc.contains {
				found := false
				for _, k := range got {
					if k == want {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("ExtractKeywords(%q) = %v, missing %q", tc.text, got, want)
				}
			}
		})
	}
}

func TestExtractKeywordsEmptyTextFallsBack(t *testing.T) {
	got := ExtractKeywords("   ", 5)
	want := []string{"nature", "landscape"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractKeywords(blank) = %v, want %v", got, want)
	}
}

func TestExtractKeywordsRespectsMax(t *testing.T) {
	text := "音楽と映画とゲームとスポーツとアートと科学と技術と研究が好きです。"
	got := ExtractKeywords(text, 3)
	if len(got) > 3 {
		t.Errorf("got %d keywords, want at most 3: %v", len(got), got)
	}
}

func TestExtractKeywordsSkipsStopWordsAndDigits(t *testing.T) {
	got := ExtractKeywords("これは 2024 です。ロボットの研究です。", 5)
	for _, k := range got {
		if k == "これ" || k == "2024" || k == "です" {
			t.Errorf("stop word or digit token leaked into keywords: %v", got)
		}
	}
}

func TestSplitKeywords(t *testing.T) {
	got := splitKeywords(" ocean , mountain ,,forest ")
	want := []string{"ocean", "mountain", "forest"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitKeywords = %v, want %v", got, want)
	}
}
