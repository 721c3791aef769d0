package persistence

import (
	"context"
	"sort"
	"sync"

	"ChatDesk/internal/modules/ai/domain/rag"
	"ChatDesk/internal/modules/ai/domain/repository"
)

// MemoryKnowledgeRepository 进程内实现，未配置 MySQL 时使用
type MemoryKnowledgeRepository struct {
	mu     sync.RWMutex
	chunks []rag.KnowledgeChunk
}

func NewMemoryKnowledgeRepository() *MemoryKnowledgeRepository {
	return &MemoryKnowledgeRepository{}
}

func (r *MemoryKnowledgeRepository) Create(_ context.Context, chunk *rag.KnowledgeChunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = append(r.chunks, *chunk)
	return nil
}

func (r *MemoryKnowledgeRepository) UpdateVectorID(_ context.Context, id string, vectorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.chunks {
		if r.chunks[i].Id == id {
			r.chunks[i].VectorId = vectorID
		}
	}
	return nil
}

func (r *MemoryKnowledgeRepository) DeleteBySource(_ context.Context, tenantID string, source string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.chunks[:0]
	var n int64
	for _, c := range r.chunks {
		if c.TenantId == tenantID && c.Source == source {
			n++
			continue
		}
		kept = append(kept, c)
	}
	r.chunks = kept
	return n, nil
}

func (r *MemoryKnowledgeRepository) ListBySource(_ context.Context, tenantID string, source string) ([]rag.KnowledgeChunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]rag.KnowledgeChunk, 0)
	for _, c := range r.chunks {
		if c.TenantId == tenantID && c.Source == source {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ChunkIndex < out[j].ChunkIndex })
	return out, nil
}

func (r *MemoryKnowledgeRepository) ListSources(_ context.Context, tenantID string) ([]rag.SourceSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := make(map[string]int)
	out := make([]rag.SourceSummary, 0)
	for _, c := range r.chunks {
		if c.TenantId != tenantID {
			continue
		}
		i, ok := idx[c.Source]
		if !ok {
			i = len(out)
			idx[c.Source] = i
			out = append(out, rag.SourceSummary{Source: c.Source})
		}
		out[i].ChunkCount++
		out[i].TotalBytes += int64(c.ByteSize)
		if c.CreatedAt.After(out[i].LastAdded) {
			out[i].LastAdded = c.CreatedAt
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastAdded.After(out[j].LastAdded) })
	return out, nil
}

var _ repository.KnowledgeRepository = (*MemoryKnowledgeRepository)(nil)
