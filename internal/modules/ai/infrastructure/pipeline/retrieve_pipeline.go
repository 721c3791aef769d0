package pipeline

import (
	"context"
	"fmt"

	"ChatDesk/internal/modules/ai/domain/repository"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/compose"
)

// RetrieveRequest 知识检索输入
type RetrieveRequest struct {
	TenantID       string  // 租户 ID（必填，过滤条件始终携带）
	Query          string  // 检索文本
	TopK           int     // 默认 3，范围 1-50
	ScoreThreshold float32 // 低于此分值的命中被丢弃，0 表示不过滤
}

// RetrieveResult 知识检索输出
type RetrieveResult struct {
	Hits        []repository.VectorSearchHit // 过滤后的命中，按分值降序
	Contents    []string                     // 非空内容，与 Hits 顺序一致
	TotalHits   int                          // 向量库返回数（过滤前）
	EmbeddingMs int64
	SearchMs    int64
	DurationMs  int64
}

// RetrievePipeline 向量检索（Eino Graph：Validate → EmbedQuery → SearchVector → PostProcess → BuildResult）
type RetrievePipeline struct {
	embedder  embedding.Embedder
	vs        repository.VectorStore
	vectorDim int
	r         compose.Runnable[*RetrieveRequest, *RetrieveResult]
}

func NewRetrievePipeline(embedder embedding.Embedder, vs repository.VectorStore, vectorDim int) (*RetrievePipeline, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is nil")
	}
	if vs == nil {
		return nil, fmt.Errorf("vector store is nil")
	}
	p := &RetrievePipeline{embedder: embedder, vs: vs, vectorDim: vectorDim}
	r, err := p.buildGraph(context.Background())
	if err != nil {
		return nil, err
	}
	p.r = r
	return p, nil
}

func (p *RetrievePipeline) Retrieve(ctx context.Context, req *RetrieveRequest) (*RetrieveResult, error) {
	if req == nil {
		return nil, fmt.Errorf("retrieve request is nil")
	}
	return p.r.Invoke(ctx, req)
}

func normalizeTopK(topK int) int {
	if topK <= 0 {
		return 3
	}
	if topK > 50 {
		return 50
	}
	return topK
}

func toFloat32(vec []float64) []float32 {
	out := make([]float32, len(vec))
	for i := range vec {
		out[i] = float32(vec[i])
	}
	return out
}
