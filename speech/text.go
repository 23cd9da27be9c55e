package speech

import "strings"

// DefaultChunkBudget is the maximum rune count sent to the engine in a single
// synthesis call. Longer texts are split at sentence boundaries.
const DefaultChunkBudget = 200

// symbolReplacements transliterates symbols the engine does not read
// naturally into speakable words.
var symbolReplacements = [][2]string{
	{"・", "と"},
	{"～", "から"},
	{"&", "アンド"},
	{"%", "パーセント"},
	{"…", "。"},
}

// Preprocess normalizes narration text for synthesis: collapses whitespace,
// inserts explicit pause markers after sentence-ending punctuation and
// transliterates unspoken symbols.
func Preprocess(text string) string {
	processed := strings.Join(strings.Fields(text), " ")

	for _, r := range symbolReplacements {
		processed = strings.ReplaceAll(processed, r[0], r[1])
	}

	processed = strings.ReplaceAll(processed, "。", "。、")
	processed = strings.ReplaceAll(processed, "！", "！、")
	processed = strings.ReplaceAll(processed, "？", "？、")

	return strings.TrimSpace(processed)
}

func isSentenceEnd(r rune) bool {
	return r == '。' || r == '！' || r == '？'
}

// splitSentences cuts text after sentence-ending punctuation, keeping the
// punctuation (and any pause marker that follows it) attached to the
// preceding sentence. Concatenating the result reproduces the input exactly.
func splitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isSentenceEnd(runes[i]) {
			continue
		}
		end := i + 1
		// keep trailing pause markers and spaces with this sentence
		for end < len(runes) && (runes[end] == '、' || runes[end] == ' ') {
			end++
		}
		sentences = append(sentences, string(runes[start:end]))
		start = end
		i = end - 1
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}

// splitClauses cuts an oversized sentence after each comma, falling back to
// hard cuts at the budget when a single clause still exceeds it.
func splitClauses(sentence string, budget int) []string {
	runes := []rune(sentence)
	var clauses []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if runes[i] == '、' || runes[i] == ',' {
			clauses = append(clauses, string(runes[start:i+1]))
			start = i + 1
		}
	}
	if start < len(runes) {
		clauses = append(clauses, string(runes[start:]))
	}

	var out []string
	for _, clause := range clauses {
		cr := []rune(clause)
		for len(cr) > budget {
			out = append(out, string(cr[:budget]))
			cr = cr[budget:]
		}
		if len(cr) > 0 {
			out = append(out, string(cr))
		}
	}
	return out
}

// SplitChunks packs sentences into chunks of at most budget runes. A chunk
// boundary never falls mid-sentence unless the sentence alone exceeds the
// budget, in which case it is split at clause boundaries. Concatenating the
// chunks reproduces the input text exactly.
func SplitChunks(text string, budget int) []string {
	if budget <= 0 {
		budget = DefaultChunkBudget
	}
	if len([]rune(text)) <= budget {
		return []string{text}
	}

	var pieces []string
	for _, sentence := range splitSentences(text) {
		if len([]rune(sentence)) > budget {
			pieces = append(pieces, splitClauses(sentence, budget)...)
		} else {
			pieces = append(pieces, sentence)
		}
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0
	for _, piece := range pieces {
		n := len([]rune(piece))
		if currentLen > 0 && currentLen+n > budget {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
		current.WriteString(piece)
		currentLen += n
	}
	if currentLen > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
