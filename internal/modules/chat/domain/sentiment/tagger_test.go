package sentiment_test

import (
	"testing"

	"ChatDesk/internal/modules/chat/domain/sentiment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_Neutral(t *testing.T) {
	res := sentiment.Analyze("What are your opening hours?")

	assert.Equal(t, 0, res.Score)
	assert.Equal(t, sentiment.LabelNeutral, res.Label)
	assert.Equal(t, sentiment.MoodNeutral, res.Mood)
	assert.Zero(t, res.Comparative)
}

func TestAnalyze_Positive(t *testing.T) {
	res := sentiment.Analyze("Thanks, that was great!")

	assert.Equal(t, 5, res.Score)
	assert.Equal(t, sentiment.LabelPositive, res.Label)
	assert.Equal(t, sentiment.MoodEcstatic, res.Mood)
	assert.ElementsMatch(t, []string{"thanks", "great"}, res.Positive)
	assert.InDelta(t, 5.0/4.0, res.Comparative, 1e-9)
}

func TestAnalyze_Negative(t *testing.T) {
	res := sentiment.Analyze("This is terrible, I am so angry")

	require.Equal(t, -6, res.Score)
	assert.Equal(t, sentiment.LabelNegative, res.Label)
	assert.Equal(t, sentiment.MoodFurious, res.Mood)
	assert.Len(t, res.Negative, 2)
}

func TestAnalyze_EmptyText(t *testing.T) {
	res := sentiment.Analyze("   ")

	assert.Equal(t, 0, res.Score)
	assert.Zero(t, res.Comparative)
	assert.Equal(t, sentiment.MoodNeutral, res.Mood)
}

func TestAnalyze_CaseInsensitive(t *testing.T) {
	assert.Equal(t, sentiment.Analyze("good").Score, sentiment.Analyze("GOOD").Score)
}

func TestMoodFor_Boundaries(t *testing.T) {
	cases := map[int]string{
		5:  sentiment.MoodEcstatic,
		3:  sentiment.MoodEcstatic,
		2:  sentiment.MoodHappy,
		1:  sentiment.MoodHappy,
		0:  sentiment.MoodNeutral,
		-1: sentiment.MoodFrustrated,
		-2: sentiment.MoodFrustrated,
		-3: sentiment.MoodFurious,
		-7: sentiment.MoodFurious,
	}
	for score, want := range cases {
		assert.Equal(t, want, sentiment.MoodFor(score), "score=%d", score)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	texts := []string{
		"Thanks, that was great!",
		"This is terrible, I am so angry",
		"Where is my order? It is late and I am not happy.",
		"",
	}
	for _, text := range texts {
		first := sentiment.Analyze(text)
		for i := 0; i < 20; i++ {
			assert.Equal(t, first, sentiment.Analyze(text), text)
		}
	}
}
