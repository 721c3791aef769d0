package sentiment

import (
	"strings"
	"unicode"
)

const (
	LabelPositive = "positive"
	LabelNeutral  = "neutral"
	LabelNegative = "negative"
)

const (
	MoodEcstatic   = "ecstatic"
	MoodHappy      = "happy"
	MoodNeutral    = "neutral"
	MoodFrustrated = "frustrated"
	MoodFurious    = "furious"
)

// Result 单条文本的情绪打分
type Result struct {
	Score       int
	Comparative float64
	Label       string
	Mood        string
	Positive    []string
	Negative    []string
}

// Analyze 对文本做词典打分，纯函数，无外部依赖
func Analyze(text string) Result {
	tokens := tokenize(text)
	res := Result{}
	for _, t := range tokens {
		w, ok := lexicon[t]
		if !ok || w == 0 {
			continue
		}
		res.Score += w
		if w > 0 {
			res.Positive = append(res.Positive, t)
		} else {
			res.Negative = append(res.Negative, t)
		}
	}
	if len(tokens) > 0 {
		res.Comparative = float64(res.Score) / float64(len(tokens))
	}
	res.Label = LabelFor(res.Score)
	res.Mood = MoodFor(res.Score)
	return res
}

func LabelFor(score int) string {
	switch {
	case score > 0:
		return LabelPositive
	case score < 0:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// MoodFor 把分值映射成五档情绪
func MoodFor(score int) string {
	switch {
	case score >= 3:
		return MoodEcstatic
	case score > 0:
		return MoodHappy
	case score <= -3:
		return MoodFurious
	case score < 0:
		return MoodFrustrated
	default:
		return MoodNeutral
	}
}

func tokenize(text string) []string {
	lower := strings.ToLower(text)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'')
	})
}
