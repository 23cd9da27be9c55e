package script

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// DefaultMaxKeywords bounds keyword extraction from custom scripts.
const DefaultMaxKeywords = 5

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"です", "ます", "である", "ある", "いる", "する", "なる", "れる", "られる",
		"この", "その", "あの", "どの", "これ", "それ", "あれ", "どれ",
		"ここ", "そこ", "あそこ", "どこ", "こう", "そう", "ああ", "どう",
		"という", "といった", "として", "について", "による", "にとって",
		"から", "まで", "より", "など", "たち", "とき", "とも", "ながら",
		"ため", "ところ", "もの", "こと", "よう", "はず", "わけ",
		"私", "僕", "彼", "彼女", "皆", "みんな", "人", "方", "者",
		"でも", "けれど", "しかし", "だが", "それでも", "ただし",
		"そして", "また", "さらに", "つまり", "なぜなら", "もちろん",
		"きっと", "おそらく", "たぶん", "まさに", "実際", "確実",
		"今", "昨日", "明日", "今日", "最近", "将来", "未来", "過去",
		"非常", "とても", "すごく", "かなり", "ちょっと", "少し",
		"すべて", "全て", "多く", "少ない", "大きい", "小さい",
		"新しい", "古い", "良い", "悪い", "高い", "低い", "長い", "短い",
	} {
		stopWords[w] = struct{}{}
	}
}

// priorityTerms boost tokens that make good stock-footage queries.
var priorityTerms = [][]string{
	{"AI", "人工知能", "ロボット", "テクノロジー", "イノベーション", "デジタル"},
	{"自然", "環境", "海", "山", "森", "空", "雲", "花", "動物"},
	{"ビジネス", "企業", "会社", "経済", "市場", "投資", "成長"},
	{"生活", "健康", "食事", "運動", "家族", "友達", "趣味"},
	{"学習", "教育", "知識", "研究", "科学", "技術", "発見"},
	{"音楽", "映画", "ゲーム", "スポーツ", "アート", "エンターテイメント"},
}

var hiraganaExceptions = map[string]struct{}{
	"こころ": {}, "いのち": {}, "みらい": {},
}

// tokenPattern splits unsegmented Japanese text at script boundaries: kanji
// runs, katakana runs, Latin words, digit runs and hiragana runs become
// separate tokens.
var tokenPattern = regexp.MustCompile(`[一-龥]+|[ァ-ヶー]+|[a-zA-Z][a-zA-Z0-9]*|[0-9]+|[ぁ-ん]+`)

// ExtractKeywords pulls stock-search keywords out of a custom narration
// script by token frequency with boosts for priority terms, Latin and
// katakana vocabulary, and medium-length tokens. Returns the generic
// fallback when the text yields nothing usable.
func ExtractKeywords(text string, max int) []string {
	if max <= 0 {
		max = DefaultMaxKeywords
	}
	if strings.TrimSpace(text) == "" {
		return []string{"nature", "landscape"}
	}

	freq := map[string]int{}
	var order []string
	for _, tok := range tokenPattern.FindAllString(text, -1) {
		if !isCandidate(tok) {
			continue
		}
		if _, seen := freq[tok]; !seen {
			order = append(order, tok)
		}
		freq[tok]++
	}

	type scored struct {
		word  string
		score int
	}
	ranked := make([]scored, 0, len(order))
	for _, w := range order {
		ranked = append(ranked, scored{word: w, score: scoreToken(w, freq[w])})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	keywords := make([]string, 0, max)
	for _, r := range ranked {
		if len(keywords) == max {
			break
		}
		keywords = append(keywords, r.word)
	}
	if len(keywords) < 2 {
		keywords = append(keywords, "nature", "landscape")
		if len(keywords) > max {
			keywords = keywords[:max]
		}
	}
	return keywords
}

func isCandidate(tok string) bool {
	runes := []rune(tok)
	if len(runes) < 2 || len(runes) > 10 {
		return false
	}
	if _, stop := stopWords[tok]; stop {
		return false
	}
	allDigit, allHiragana := true, true
	for _, r := range runes {
		if !unicode.IsDigit(r) {
			allDigit = false
		}
		if r < 'ぁ' || r > 'ん' {
			allHiragana = false
		}
	}
	if allDigit {
		return false
	}
	if allHiragana {
		_, ok := hiraganaExceptions[tok]
		return ok
	}
	return true
}

func scoreToken(tok string, freq int) int {
	score := freq
	for _, group := range priorityTerms {
		matched := false
		for _, p := range group {
			if strings.Contains(tok, p) || strings.Contains(p, tok) {
				matched = true
				break
			}
		}
		if matched {
			score += 3
			break
		}
	}
	for _, r := range tok {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= 'ァ' && r <= 'ヶ') || r == 'ー' {
			score++
			break
		}
	}
	if n := len([]rune(tok)); n >= 3 && n <= 6 {
		score++
	}
	return score
}
