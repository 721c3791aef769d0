package repository

import (
	"context"

	"ChatDesk/internal/modules/ai/domain/rag"
)

// KnowledgeRepository 负责知识切片元数据（MySQL）的持久化
type KnowledgeRepository interface {
	Create(ctx context.Context, chunk *rag.KnowledgeChunk) error
	UpdateVectorID(ctx context.Context, id string, vectorID string) error
	// DeleteBySource 只删除关系型记录，返回删除条数；向量条目不受影响
	DeleteBySource(ctx context.Context, tenantID string, source string) (int64, error)
	ListBySource(ctx context.Context, tenantID string, source string) ([]rag.KnowledgeChunk, error)
	ListSources(ctx context.Context, tenantID string) ([]rag.SourceSummary, error)
}
