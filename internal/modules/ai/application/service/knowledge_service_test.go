package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ChatDesk/internal/modules/ai/application/service"
	"ChatDesk/internal/modules/ai/infrastructure/chunking"
	"ChatDesk/internal/modules/ai/infrastructure/embedding"
	"ChatDesk/internal/modules/ai/infrastructure/persistence"
	"ChatDesk/internal/modules/ai/infrastructure/vectordb"
	"ChatDesk/pkg/xerr"

	einoembedding "github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDim = 64

type knowledgeFixture struct {
	svc   service.KnowledgeService
	repo  *persistence.MemoryKnowledgeRepository
	store *vectordb.MemoryStore
}

func newKnowledgeFixture(t *testing.T, embedder einoembedding.Embedder) *knowledgeFixture {
	t.Helper()
	repo := persistence.NewMemoryKnowledgeRepository()
	store := vectordb.NewMemoryStore(testDim)
	if embedder == nil {
		embedder = embedding.NewHashingEmbedder(testDim)
	}
	svc, err := service.NewKnowledgeService(repo, store, embedder, chunking.NewSentenceChunker(500, 50), testDim)
	require.NoError(t, err)
	return &knowledgeFixture{svc: svc, repo: repo, store: store}
}

// failingEmbedder 第 failOn 次调用返回错误
type failingEmbedder struct {
	inner  einoembedding.Embedder
	calls  int
	failOn int
}

func (f *failingEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...einoembedding.Option) ([][]float64, error) {
	f.calls++
	if f.calls == f.failOn {
		return nil, errors.New("embedding provider unavailable")
	}
	return f.inner.EmbedStrings(ctx, texts, opts...)
}

func alphabetDoc() string {
	var b strings.Builder
	for b.Len() < 650 {
		for c := 'A'; c <= 'Z'; c++ {
			b.WriteRune(c)
			b.WriteString(". ")
		}
	}
	return b.String()
}

func TestKnowledgeService_AddThenQueryFindsChunk(t *testing.T) {
	f := newKnowledgeFixture(t, nil)
	ctx := context.Background()
	doc := alphabetDoc()
	require.Greater(t, len(doc), 600)

	first, err := f.svc.AddKnowledge(ctx, "T1", doc, "doc1")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 0, first.ChunkIndex)
	assert.Equal(t, first.Id, first.VectorId)

	chunks, err := f.svc.ListChunks(ctx, "T1", "doc1")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(chunks), 2)
	for _, c := range chunks {
		assert.NotEmpty(t, c.VectorId)
	}

	hits, err := f.svc.QueryKnowledge(ctx, "T1", "A", 3)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Contains(t, hits[0], "A")
}

func TestKnowledgeService_QueryFreshTenantReturnsEmpty(t *testing.T) {
	f := newKnowledgeFixture(t, nil)

	hits, err := f.svc.QueryKnowledge(context.Background(), "T-new", "what are your opening hours?", 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestKnowledgeService_QueryIsTenantScoped(t *testing.T) {
	f := newKnowledgeFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.AddKnowledge(ctx, "T1", "Refunds are processed within five business days.", "policy")
	require.NoError(t, err)
	_, err = f.svc.AddKnowledge(ctx, "T2", "Our store opens at nine in the morning.", "hours")
	require.NoError(t, err)

	hits, err := f.svc.QueryKnowledge(ctx, "T2", "refunds processed", 5)
	require.NoError(t, err)
	for _, h := range hits {
		assert.NotContains(t, h, "Refunds")
	}
}

func TestKnowledgeService_AddRejectsEmptyContent(t *testing.T) {
	f := newKnowledgeFixture(t, nil)

	_, err := f.svc.AddKnowledge(context.Background(), "T1", "   \n\t", "doc1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, xerr.ErrEmptyContent))
	assert.Equal(t, 0, f.store.Len())
}

func TestKnowledgeService_AddDefaultsSource(t *testing.T) {
	f := newKnowledgeFixture(t, nil)
	ctx := context.Background()

	first, err := f.svc.AddKnowledge(ctx, "T1", "Shipping is free over fifty dollars.", "")
	require.NoError(t, err)
	assert.Equal(t, service.DefaultSource, first.Source)

	sources, err := f.svc.ListSources(ctx, "T1")
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, service.DefaultSource, sources[0].Source)
	assert.Equal(t, int64(1), sources[0].ChunkCount)
}

func TestKnowledgeService_PartialFailureKeepsEarlierChunks(t *testing.T) {
	fe := &failingEmbedder{inner: embedding.NewHashingEmbedder(testDim), failOn: 2}
	f := newKnowledgeFixture(t, fe)
	ctx := context.Background()

	_, err := f.svc.AddKnowledge(ctx, "T1", alphabetDoc(), "doc1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed chunk 1")

	chunks, err := f.svc.ListChunks(ctx, "T1", "doc1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, 1, f.store.Len())
}

func TestKnowledgeService_DeleteBySourceLeavesVectors(t *testing.T) {
	f := newKnowledgeFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.AddKnowledge(ctx, "T1", alphabetDoc(), "doc1")
	require.NoError(t, err)
	chunks, err := f.svc.ListChunks(ctx, "T1", "doc1")
	require.NoError(t, err)
	vectorsBefore := f.store.Len()
	require.Equal(t, len(chunks), vectorsBefore)

	n, err := f.svc.DeleteKnowledgeBySource(ctx, "T1", "doc1")
	require.NoError(t, err)
	assert.Equal(t, int64(len(chunks)), n)

	left, err := f.svc.ListChunks(ctx, "T1", "doc1")
	require.NoError(t, err)
	assert.Empty(t, left)

	// 向量索引不随来源删除而清理
	assert.Equal(t, vectorsBefore, f.store.Len())
	hits, err := f.svc.QueryKnowledge(ctx, "T1", "A", 3)
	require.NoError(t, err)
	assert.NotEmpty(t, hits)
}

func TestKnowledgeService_DeleteRequiresSource(t *testing.T) {
	f := newKnowledgeFixture(t, nil)

	_, err := f.svc.DeleteKnowledgeBySource(context.Background(), "T1", " ")
	require.Error(t, err)
	var ce *xerr.CodeError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, xerr.BadRequest, ce.Code)
}
