package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ChatDesk/internal/modules/ai/application/dto/respond"
	"ChatDesk/internal/modules/ai/domain/rag"
	"ChatDesk/internal/modules/ai/domain/repository"
	"ChatDesk/internal/modules/ai/infrastructure/chunking"
	"ChatDesk/internal/modules/ai/infrastructure/pipeline"
	"ChatDesk/pkg/metrics"
	"ChatDesk/pkg/util"
	"ChatDesk/pkg/xerr"
	"ChatDesk/pkg/zlog"

	"github.com/cloudwego/eino/components/embedding"
	"go.uber.org/zap"
)

const (
	DefaultSource   = "manual"
	sourcePrefixLen = 50
)

// KnowledgeService 租户知识库：切片、向量化、检索、按来源删除
type KnowledgeService interface {
	// AddKnowledge 逐片执行 向量化 → 落库 → 写向量 → 回写 vector_id，返回第一片。
	// 中途失败时已写入的切片保留。
	AddKnowledge(ctx context.Context, tenantID, content, source string) (*rag.KnowledgeChunk, error)
	// QueryKnowledge 返回按相关度降序的切片内容
	QueryKnowledge(ctx context.Context, tenantID, query string, topK int) ([]string, error)
	// DeleteKnowledgeBySource 只删除关系型记录，向量条目保留
	DeleteKnowledgeBySource(ctx context.Context, tenantID, source string) (int64, error)
	ListSources(ctx context.Context, tenantID string) ([]respond.KnowledgeSourceItem, error)
	ListChunks(ctx context.Context, tenantID, source string) ([]respond.KnowledgeChunkItem, error)
}

type knowledgeService struct {
	repo      repository.KnowledgeRepository
	vs        repository.VectorStore
	embedder  embedding.Embedder
	chunker   chunking.Chunker
	retriever *pipeline.RetrievePipeline
}

func NewKnowledgeService(
	repo repository.KnowledgeRepository,
	vs repository.VectorStore,
	embedder embedding.Embedder,
	chunker chunking.Chunker,
	vectorDim int,
) (KnowledgeService, error) {
	if repo == nil || vs == nil || embedder == nil || chunker == nil {
		return nil, fmt.Errorf("knowledge service missing dependency")
	}
	rp, err := pipeline.NewRetrievePipeline(embedder, vs, vectorDim)
	if err != nil {
		return nil, err
	}
	return &knowledgeService{repo: repo, vs: vs, embedder: embedder, chunker: chunker, retriever: rp}, nil
}

func (s *knowledgeService) AddKnowledge(ctx context.Context, tenantID, content, source string) (*rag.KnowledgeChunk, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, xerr.New(xerr.BadRequest, "missing tenant_id")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, xerr.ErrEmptyContent
	}
	source = strings.TrimSpace(source)
	if source == "" {
		source = DefaultSource
	}

	parts, err := s.chunker.Split(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("split content: %w", err)
	}
	if len(parts) == 0 {
		return nil, xerr.ErrEmptyContent
	}

	var first *rag.KnowledgeChunk
	for i, part := range parts {
		chunk, err := s.ingestChunk(ctx, tenantID, source, i, part)
		if err != nil {
			zlog.Warn("knowledge ingest aborted",
				zap.String("tenant_id", tenantID),
				zap.String("source", source),
				zap.Int("chunk_index", i),
				zap.Int("chunks_total", len(parts)),
				zap.Error(err),
			)
			return nil, err
		}
		if first == nil {
			first = chunk
		}
	}
	zlog.Info("knowledge ingested",
		zap.String("tenant_id", tenantID),
		zap.String("source", source),
		zap.Int("chunks", len(parts)),
		zap.Int("bytes", len(content)),
	)
	return first, nil
}

func (s *knowledgeService) ingestChunk(ctx context.Context, tenantID, source string, index int, part string) (*rag.KnowledgeChunk, error) {
	vecs, err := s.embedder.EmbedStrings(ctx, []string{part})
	if err != nil {
		return nil, fmt.Errorf("embed chunk %d: %w", index, err)
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("embed chunk %d: empty vector", index)
	}

	chunk := &rag.KnowledgeChunk{
		Id:         util.GenerateID("K"),
		TenantId:   tenantID,
		Source:     source,
		ChunkIndex: index,
		Content:    part,
		ByteSize:   len(part),
		CreatedAt:  time.Now(),
	}
	if err := s.repo.Create(ctx, chunk); err != nil {
		return nil, fmt.Errorf("persist chunk %d: %w", index, err)
	}

	vec := make([]float32, len(vecs[0]))
	for j, v := range vecs[0] {
		vec[j] = float32(v)
	}
	ids, err := s.vs.Upsert(ctx, []repository.VectorUpsertItem{{
		ID:           chunk.Id,
		Vector:       vec,
		TenantID:     tenantID,
		Source:       source,
		SourcePrefix: sourcePrefix(source),
		Content:      part,
	}})
	if err != nil {
		return nil, fmt.Errorf("upsert vector %d: %w", index, err)
	}
	vectorID := chunk.Id
	if len(ids) > 0 && ids[0] != "" {
		vectorID = ids[0]
	}
	if err := s.repo.UpdateVectorID(ctx, chunk.Id, vectorID); err != nil {
		return nil, fmt.Errorf("link vector %d: %w", index, err)
	}
	chunk.VectorId = vectorID
	metrics.KnowledgeChunks.WithLabelValues("add").Inc()
	return chunk, nil
}

func (s *knowledgeService) QueryKnowledge(ctx context.Context, tenantID, query string, topK int) ([]string, error) {
	res, err := s.retriever.Retrieve(ctx, &pipeline.RetrieveRequest{
		TenantID: tenantID,
		Query:    query,
		TopK:     topK,
	})
	if err != nil {
		return nil, err
	}
	return res.Contents, nil
}

func (s *knowledgeService) DeleteKnowledgeBySource(ctx context.Context, tenantID, source string) (int64, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return 0, xerr.New(xerr.BadRequest, "missing source")
	}
	n, err := s.repo.DeleteBySource(ctx, tenantID, source)
	if err != nil {
		return 0, err
	}
	metrics.KnowledgeChunks.WithLabelValues("delete").Add(float64(n))
	zlog.Info("knowledge source deleted",
		zap.String("tenant_id", tenantID),
		zap.String("source", source),
		zap.Int64("chunks", n),
	)
	return n, nil
}

func (s *knowledgeService) ListSources(ctx context.Context, tenantID string) ([]respond.KnowledgeSourceItem, error) {
	rows, err := s.repo.ListSources(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]respond.KnowledgeSourceItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, respond.KnowledgeSourceItem{
			Source:     r.Source,
			ChunkCount: r.ChunkCount,
			TotalBytes: r.TotalBytes,
			LastAdded:  r.LastAdded,
		})
	}
	return out, nil
}

func (s *knowledgeService) ListChunks(ctx context.Context, tenantID, source string) ([]respond.KnowledgeChunkItem, error) {
	rows, err := s.repo.ListBySource(ctx, tenantID, strings.TrimSpace(source))
	if err != nil {
		return nil, err
	}
	out := make([]respond.KnowledgeChunkItem, 0, len(rows))
	for i := range rows {
		out = append(out, *ToChunkItem(&rows[i]))
	}
	return out, nil
}

func ToChunkItem(c *rag.KnowledgeChunk) *respond.KnowledgeChunkItem {
	if c == nil {
		return nil
	}
	return &respond.KnowledgeChunkItem{
		Id:         c.Id,
		Source:     c.Source,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
		ByteSize:   c.ByteSize,
		VectorId:   c.VectorId,
		CreatedAt:  c.CreatedAt,
	}
}

func sourcePrefix(source string) string {
	r := []rune(source)
	if len(r) <= sourcePrefixLen {
		return source
	}
	return string(r[:sourcePrefixLen])
}
