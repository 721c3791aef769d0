package vectordb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"ChatDesk/internal/modules/ai/domain/repository"
)

// MemoryStore 进程内余弦相似度索引，未配置 Milvus 时使用
type MemoryStore struct {
	mu        sync.RWMutex
	vectorDim int
	items     map[string]repository.VectorUpsertItem
	order     []string
}

func NewMemoryStore(vectorDim int) *MemoryStore {
	return &MemoryStore{
		vectorDim: vectorDim,
		items:     make(map[string]repository.VectorUpsertItem),
	}
}

func (s *MemoryStore) Upsert(_ context.Context, items []repository.VectorUpsertItem) ([]string, error) {
	ids := make([]string, 0, len(items))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		if it.ID == "" {
			return nil, errors.New("upsert item missing ID")
		}
		if s.vectorDim > 0 && len(it.Vector) != s.vectorDim {
			return nil, fmt.Errorf("vector dim mismatch for id=%s, got=%d want=%d", it.ID, len(it.Vector), s.vectorDim)
		}
		if _, ok := s.items[it.ID]; !ok {
			s.order = append(s.order, it.ID)
		}
		cp := it
		cp.Vector = append([]float32(nil), it.Vector...)
		s.items[it.ID] = cp
		ids = append(ids, it.ID)
	}
	return ids, nil
}

func (s *MemoryStore) DeleteByIDs(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		delete(s.items, id)
		drop[id] = struct{}{}
	}
	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := drop[id]; !ok {
			kept = append(kept, id)
		}
	}
	s.order = kept
	return nil
}

func (s *MemoryStore) Search(_ context.Context, vector []float32, topK int, filter repository.VectorFilter) ([]repository.VectorSearchHit, error) {
	tenant := strings.TrimSpace(filter.TenantID)
	if tenant == "" {
		return nil, errors.New("vector search requires tenant filter")
	}
	if topK <= 0 {
		topK = 3
	}
	s.mu.RLock()
	hits := make([]repository.VectorSearchHit, 0)
	for _, id := range s.order {
		it := s.items[id]
		if it.TenantID != tenant {
			continue
		}
		hits = append(hits, repository.VectorSearchHit{
			ID:       it.ID,
			Score:    cosine(vector, it.Vector),
			TenantID: it.TenantID,
			Source:   it.Source,
			Content:  it.Content,
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Len 当前条目数
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

var _ repository.VectorStore = (*MemoryStore)(nil)
