package chunking_test

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"ChatDesk/internal/modules/ai/infrastructure/chunking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentenceChunker_ShortTextSingleChunk(t *testing.T) {
	c := chunking.NewSentenceChunker(500, 50)

	parts := c.Chunk("  Our store opens at 9am.  ")

	require.Len(t, parts, 1)
	assert.Equal(t, "Our store opens at 9am.", parts[0])
}

func TestSentenceChunker_EmptyText(t *testing.T) {
	c := chunking.NewSentenceChunker(500, 50)

	assert.Empty(t, c.Chunk(""))
	assert.Empty(t, c.Chunk(" \n\t "))
}

func TestSentenceChunker_PrefersSentenceBoundary(t *testing.T) {
	c := chunking.NewSentenceChunker(100, 10)
	first := strings.Repeat("alpha ", 12) + "ends here."
	second := strings.Repeat("beta ", 15) + "done."

	parts := c.Chunk(first + " " + second)

	require.GreaterOrEqual(t, len(parts), 2)
	assert.True(t, strings.HasSuffix(parts[0], "ends here."), parts[0])
}

func TestSentenceChunker_SizeBoundAndCoverage(t *testing.T) {
	c := chunking.NewSentenceChunker(120, 20)
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("Refunds are processed within five business days. ")
	}
	text := strings.TrimSpace(sb.String())

	parts := c.Chunk(text)

	require.Greater(t, len(parts), 1)
	for _, p := range parts {
		assert.LessOrEqual(t, utf8.RuneCountInString(p), 120)
		assert.NotEmpty(t, p)
	}
	assert.True(t, strings.HasPrefix(text, parts[0]))
	assert.True(t, strings.HasSuffix(text, parts[len(parts)-1]))
}

func TestSentenceChunker_NoWhitespaceStillProgresses(t *testing.T) {
	c := chunking.NewSentenceChunker(500, 50)
	text := strings.Repeat("a", 1200)

	parts := c.Chunk(text)

	require.Len(t, parts, 3)
	assert.Len(t, parts[0], 500)
	assert.Len(t, parts[1], 500)
	assert.Len(t, parts[2], 300)
}

func TestSentenceChunker_MultiByteRunes(t *testing.T) {
	c := chunking.NewSentenceChunker(50, 5)
	text := strings.Repeat("退款将在五个工作日内处理。", 20)

	parts := c.Chunk(text)

	require.Greater(t, len(parts), 1)
	for _, p := range parts {
		assert.True(t, utf8.ValidString(p))
		assert.LessOrEqual(t, utf8.RuneCountInString(p), 50)
	}
}

func TestNewChunker_Strategies(t *testing.T) {
	c, err := chunking.NewChunker("", 0, 0)
	require.NoError(t, err)
	parts, err := c.Split(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, parts)

	_, err = chunking.NewChunker("recursive", 500, 50)
	require.NoError(t, err)

	_, err = chunking.NewChunker("paragraph", 500, 50)
	assert.Error(t, err)
}
