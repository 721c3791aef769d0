package persistence

import (
	"context"

	"ChatDesk/internal/modules/ai/domain/rag"
	"ChatDesk/internal/modules/ai/domain/repository"

	"gorm.io/gorm"
)

type knowledgeRepositoryImpl struct {
	db *gorm.DB
}

func NewKnowledgeRepository(db *gorm.DB) repository.KnowledgeRepository {
	return &knowledgeRepositoryImpl{db: db}
}

func (r *knowledgeRepositoryImpl) Create(ctx context.Context, chunk *rag.KnowledgeChunk) error {
	return r.db.WithContext(ctx).Create(chunk).Error
}

func (r *knowledgeRepositoryImpl) UpdateVectorID(ctx context.Context, id string, vectorID string) error {
	return r.db.WithContext(ctx).
		Model(&rag.KnowledgeChunk{}).
		Where("id = ?", id).
		Update("vector_id", vectorID).Error
}

func (r *knowledgeRepositoryImpl) DeleteBySource(ctx context.Context, tenantID string, source string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("tenant_id = ? AND source = ?", tenantID, source).
		Delete(&rag.KnowledgeChunk{})
	return res.RowsAffected, res.Error
}

func (r *knowledgeRepositoryImpl) ListBySource(ctx context.Context, tenantID string, source string) ([]rag.KnowledgeChunk, error) {
	var chunks []rag.KnowledgeChunk
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND source = ?", tenantID, source).
		Order("chunk_index ASC, created_at ASC").
		Find(&chunks).Error
	return chunks, err
}

func (r *knowledgeRepositoryImpl) ListSources(ctx context.Context, tenantID string) ([]rag.SourceSummary, error) {
	var out []rag.SourceSummary
	err := r.db.WithContext(ctx).
		Model(&rag.KnowledgeChunk{}).
		Select("source, COUNT(*) AS chunk_count, COALESCE(SUM(byte_size), 0) AS total_bytes, MAX(created_at) AS last_added").
		Where("tenant_id = ?", tenantID).
		Group("source").
		Order("last_added DESC").
		Scan(&out).Error
	return out, err
}
