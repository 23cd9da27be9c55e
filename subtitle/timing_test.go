package subtitle

import (
	"math"
	"reflect"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			"japanese enders",
			"今日は晴れです。明日は雨でしょう。",
			[]string{"今日は晴れです。", "明日は雨でしょう。"},
		},
		{
			"mixed enders",
			"すごい！本当？そうです。",
			[]string{"すごい！", "本当？", "そうです。"},
		},
		{
			"newlines split first",
			"一行目\n二行目",
			[]string{"一行目", "二行目"},
		},
		{
			"trailing fragment kept",
			"文が終わる。そして続き",
			[]string{"文が終わる。", "そして続き"},
		},
		{
			"single char trailing fragment dropped",
			"これは残る。あ",
			[]string{"これは残る。"},
		},
		{
			"empty input",
			"",
			nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitSentences(tc.input)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("SplitSentences(%q) = %v, want %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestBuildCuesProportionalAllocation(t *testing.T) {
	// 10 chars and 30 chars over 10 seconds: 2.5s and 7.5s
	sentences := []string{"ああああああああああ", "いいいいいいいいいいいいいいいいいいいいいいいいいいいいいい"}
	cues := BuildCues(sentences, 10.0)

	if len(cues) != 2 {
		t.Fatalf("cues = %d, want 2", len(cues))
	}
	if math.Abs(cues[0].End-2.5) > 1e-9 {
		t.Errorf("first cue end = %f, want 2.5", cues[0].End)
	}
	if math.Abs(cues[1].End-10.0) > 1e-9 {
		t.Errorf("last cue end = %f, want 10.0", cues[1].End)
	}
}

func TestBuildCuesContiguous(t *testing.T) {
	sentences := []string{"一つ目の文です。", "二つ目の文です。", "三つ目の文です。"}
	cues := BuildCues(sentences, 15.0)

	if cues[0].Start != 0 {
		t.Errorf("first cue starts at %f, want 0", cues[0].Start)
	}
	for i := 1; i < len(cues); i++ {
		if cues[i].Start != cues[i-1].End {
			t.Errorf("cue %d start %f != previous end %f", i, cues[i].Start, cues[i-1].End)
		}
	}
	if last := cues[len(cues)-1]; math.Abs(last.End-15.0) > 1e-9 {
		t.Errorf("last cue end = %f, want 15.0", last.End)
	}
}

func TestBuildCuesMinimumDuration(t *testing.T) {
	// one tiny sentence among long ones still gets at least a second
	sentences := []string{"短い。", "こちらはかなり長い説明の文章でたくさんの文字が含まれています。"}
	cues := BuildCues(sentences, 10.0)

	for i, c := range cues {
		if c.End-c.Start < 1.0-1e-9 {
			t.Errorf("cue %d duration = %f, want >= 1.0", i, c.End-c.Start)
		}
	}
}

func TestBuildCuesClampedToTotal(t *testing.T) {
	// many sentences against a short total: cues stop at the total
	sentences := []string{"一。二。", "三。四。", "五。六。", "七。八。", "九。十。"}
	cues := BuildCues(sentences, 3.0)

	if len(cues) == 0 {
		t.Fatal("expected cues")
	}
	for i, c := range cues {
		if c.End > 3.0+1e-9 {
			t.Errorf("cue %d end = %f exceeds total", i, c.End)
		}
	}
	if len(cues) >= 5 {
		t.Errorf("expected later sentences to be dropped, got %d cues", len(cues))
	}
}

func TestBuildCuesIdempotent(t *testing.T) {
	sentences := []string{"最初の文です。", "次の文です。"}
	a := BuildCues(sentences, 10.0)
	b := BuildCues(sentences, 10.0)
	if !reflect.DeepEqual(a, b) {
		t.Error("BuildCues is not deterministic for identical input")
	}
}

func TestBuildCuesEmptyInput(t *testing.T) {
	if cues := BuildCues(nil, 10.0); cues != nil {
		t.Errorf("expected nil cues, got %v", cues)
	}
	if cues := BuildCues([]string{"文です。"}, 0); cues != nil {
		t.Errorf("expected nil cues for zero duration, got %v", cues)
	}
}
