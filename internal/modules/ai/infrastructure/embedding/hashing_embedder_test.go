package embedding_test

import (
	"context"
	"testing"

	"ChatDesk/internal/config"
	"ChatDesk/internal/modules/ai/infrastructure/embedding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func TestHashingEmbedder_DeterministicAndNormalized(t *testing.T) {
	em := embedding.NewHashingEmbedder(64)

	out, err := em.EmbedStrings(context.Background(), []string{"refund policy", "refund policy", ""})
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, out[0], out[1])
	assert.Len(t, out[0], 64)
	assert.InDelta(t, 1.0, dot(out[0], out[0]), 1e-9)
	assert.InDelta(t, 1.0, dot(out[2], out[2]), 1e-9)
}

func TestHashingEmbedder_SharedWordsScoreHigher(t *testing.T) {
	em := embedding.NewHashingEmbedder(512)
	out, err := em.EmbedStrings(context.Background(), []string{
		"what is your refund policy",
		"our refund policy allows returns within 30 days",
		"we ship worldwide with tracking",
	})
	require.NoError(t, err)

	assert.Greater(t, dot(out[0], out[1]), dot(out[0], out[2]))
}

func TestNewEmbedderFromConfig(t *testing.T) {
	conf := config.Default()
	conf.AIConfig.Embedding.Provider = "mock"
	conf.AIConfig.Embedding.Dimensions = 32

	em, meta, err := embedding.NewEmbedderFromConfig(context.Background(), conf)
	require.NoError(t, err)
	require.NotNil(t, em)
	assert.Equal(t, "mock", meta.Provider)
	assert.Equal(t, 32, meta.Dim)

	conf.AIConfig.Embedding.Provider = "unknown"
	_, _, err = embedding.NewEmbedderFromConfig(context.Background(), conf)
	assert.Error(t, err)
}
