package repository

import "context"

// VectorStore 是 domain 层定义的向量库能力抽象，application 层只依赖本接口。
// 检索必须携带 VectorFilter.TenantID，保证租户隔离。

type VectorUpsertItem struct {
	ID           string
	Vector       []float32
	TenantID     string
	Source       string
	SourcePrefix string
	Content      string
}

type VectorSearchHit struct {
	ID       string
	Score    float32
	TenantID string
	Source   string
	Content  string
}

type VectorFilter struct {
	TenantID string
}

type VectorStore interface {
	Upsert(ctx context.Context, items []VectorUpsertItem) ([]string, error)
	DeleteByIDs(ctx context.Context, ids []string) error
	// Search 结果按相似度降序
	Search(ctx context.Context, vector []float32, topK int, filter VectorFilter) ([]VectorSearchHit, error)
}
