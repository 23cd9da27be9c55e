package subtitle

import "strings"

// minCueSeconds is the floor on any single cue's display time.
const minCueSeconds = 1.0

// Cue is one subtitle entry with absolute start/end times in seconds.
type Cue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

var sentenceEnders = []rune{'。', '！', '？'}

func isSentenceEnder(r rune) bool {
	for _, e := range sentenceEnders {
		if r == e {
			return true
		}
	}
	return false
}

// SplitSentences breaks narration text into display units. Explicit newlines
// split first, then Japanese sentence enders with the punctuation kept on
// the preceding sentence. Fragments of one character or less are discarded.
func SplitSentences(text string) []string {
	var sentences []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var cur strings.Builder
		for _, r := range line {
			cur.WriteRune(r)
			if isSentenceEnder(r) {
				s := strings.TrimSpace(cur.String())
				if len([]rune(s)) > 1 {
					sentences = append(sentences, s)
				}
				cur.Reset()
			}
		}
		if rest := strings.TrimSpace(cur.String()); len([]rune(rest)) > 1 {
			sentences = append(sentences, rest)
		}
	}
	return sentences
}

// BuildCues allocates the total audio duration across sentences in
// proportion to their character counts, with a one second floor per cue.
// Cues are contiguous and clamped so no cue extends past the total; once
// the total is consumed remaining sentences are dropped.
func BuildCues(sentences []string, total float64) []Cue {
	if len(sentences) == 0 || total <= 0 {
		return nil
	}

	totalChars := 0
	for _, s := range sentences {
		totalChars += len([]rune(s))
	}
	if totalChars == 0 {
		return nil
	}

	var cues []Cue
	cursor := 0.0
	for _, s := range sentences {
		if cursor >= total {
			break
		}
		dur := total * float64(len([]rune(s))) / float64(totalChars)
		if dur < minCueSeconds {
			dur = minCueSeconds
		}
		end := cursor + dur
		if end > total {
			end = total
		}
		cues = append(cues, Cue{
			Index: len(cues) + 1,
			Start: cursor,
			End:   end,
			Text:  s,
		})
		cursor = end
	}
	return cues
}
