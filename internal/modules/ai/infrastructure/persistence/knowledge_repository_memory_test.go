package persistence_test

import (
	"context"
	"testing"
	"time"

	"ChatDesk/internal/modules/ai/domain/rag"
	"ChatDesk/internal/modules/ai/infrastructure/persistence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKnowledgeRepository_SourcesAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewMemoryKnowledgeRepository()
	now := time.Now()
	for i, c := range []rag.KnowledgeChunk{
		{Id: "K1", TenantId: "T1", Source: "faq", ChunkIndex: 0, ByteSize: 10, CreatedAt: now},
		{Id: "K2", TenantId: "T1", Source: "faq", ChunkIndex: 1, ByteSize: 20, CreatedAt: now},
		{Id: "K3", TenantId: "T1", Source: "pricing", ChunkIndex: 0, ByteSize: 5, CreatedAt: now.Add(time.Second)},
		{Id: "K4", TenantId: "T2", Source: "faq", ChunkIndex: 0, ByteSize: 7, CreatedAt: now},
	} {
		c := c
		require.NoError(t, repo.Create(ctx, &c), "chunk %d", i)
	}

	sources, err := repo.ListSources(ctx, "T1")
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "pricing", sources[0].Source)
	assert.Equal(t, int64(2), sources[1].ChunkCount)
	assert.Equal(t, int64(30), sources[1].TotalBytes)

	n, err := repo.DeleteBySource(ctx, "T1", "faq")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	left, err := repo.ListBySource(ctx, "T2", "faq")
	require.NoError(t, err)
	assert.Len(t, left, 1)

	n, err = repo.DeleteBySource(ctx, "T1", "missing")
	require.NoError(t, err)
	assert.Zero(t, n)
}
