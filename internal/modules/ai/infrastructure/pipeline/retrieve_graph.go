package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"ChatDesk/internal/modules/ai/domain/repository"
	"ChatDesk/pkg/zlog"

	"github.com/cloudwego/eino/compose"
	"go.uber.org/zap"
)

// retrieveState 节点间传递的中间状态
type retrieveState struct {
	Req         *RetrieveRequest
	Skip        bool
	QueryVec    []float32
	Hits        []repository.VectorSearchHit
	Filtered    []repository.VectorSearchHit
	Start       time.Time
	EmbeddingMs int64
	SearchMs    int64
	Err         error
}

func (p *RetrievePipeline) buildGraph(ctx context.Context) (compose.Runnable[*RetrieveRequest, *RetrieveResult], error) {
	const (
		Validate     = "Validate"
		EmbedQuery   = "EmbedQuery"
		SearchVector = "SearchVector"
		PostProcess  = "PostProcess"
		BuildResult  = "BuildResult"
	)
	g := compose.NewGraph[*RetrieveRequest, *RetrieveResult]()
	_ = g.AddLambdaNode(Validate, compose.InvokableLambdaWithOption(p.validateNode), compose.WithNodeName(Validate))
	_ = g.AddLambdaNode(EmbedQuery, compose.InvokableLambdaWithOption(p.embedQueryNode), compose.WithNodeName(EmbedQuery))
	_ = g.AddLambdaNode(SearchVector, compose.InvokableLambdaWithOption(p.searchVectorNode), compose.WithNodeName(SearchVector))
	_ = g.AddLambdaNode(PostProcess, compose.InvokableLambdaWithOption(p.postProcessNode), compose.WithNodeName(PostProcess))
	_ = g.AddLambdaNode(BuildResult, compose.InvokableLambdaWithOption(p.buildResultNode), compose.WithNodeName(BuildResult))
	_ = g.AddEdge(compose.START, Validate)
	_ = g.AddEdge(Validate, EmbedQuery)
	_ = g.AddEdge(EmbedQuery, SearchVector)
	_ = g.AddEdge(SearchVector, PostProcess)
	_ = g.AddEdge(PostProcess, BuildResult)
	_ = g.AddEdge(BuildResult, compose.END)
	return g.Compile(ctx, compose.WithGraphName("KnowledgeRetrievePipeline"), compose.WithNodeTriggerMode(compose.AllPredecessor))
}

// validateNode 租户必填；空查询直接跳过，返回空结果
func (p *RetrievePipeline) validateNode(_ context.Context, req *RetrieveRequest, _ ...any) (*retrieveState, error) {
	st := &retrieveState{Req: req, Start: time.Now()}
	req.TenantID = strings.TrimSpace(req.TenantID)
	if req.TenantID == "" {
		st.Err = fmt.Errorf("missing tenant_id")
		return st, nil
	}
	if strings.TrimSpace(req.Query) == "" {
		st.Skip = true
		return st, nil
	}
	req.TopK = normalizeTopK(req.TopK)
	return st, nil
}

func (p *RetrievePipeline) embedQueryNode(ctx context.Context, st *retrieveState, _ ...any) (*retrieveState, error) {
	if st.Err != nil || st.Skip {
		return st, nil
	}
	embStart := time.Now()
	vecs, err := p.embedder.EmbedStrings(ctx, []string{st.Req.Query})
	if err != nil {
		st.Err = fmt.Errorf("embed query: %w", err)
		return st, nil
	}
	if len(vecs) == 0 {
		st.Err = fmt.Errorf("embedding result is empty")
		return st, nil
	}
	if p.vectorDim > 0 && len(vecs[0]) != p.vectorDim {
		st.Err = fmt.Errorf("embedding dim mismatch: got=%d want=%d", len(vecs[0]), p.vectorDim)
		return st, nil
	}
	st.QueryVec = toFloat32(vecs[0])
	st.EmbeddingMs = time.Since(embStart).Milliseconds()
	return st, nil
}

func (p *RetrievePipeline) searchVectorNode(ctx context.Context, st *retrieveState, _ ...any) (*retrieveState, error) {
	if st.Err != nil || st.Skip {
		return st, nil
	}
	searchStart := time.Now()
	hits, err := p.vs.Search(ctx, st.QueryVec, st.Req.TopK, repository.VectorFilter{TenantID: st.Req.TenantID})
	if err != nil {
		st.Err = fmt.Errorf("vector search: %w", err)
		return st, nil
	}
	st.Hits = hits
	st.SearchMs = time.Since(searchStart).Milliseconds()
	return st, nil
}

// postProcessNode 阈值过滤、丢弃空内容、按分值降序、截断到 TopK
func (p *RetrievePipeline) postProcessNode(_ context.Context, st *retrieveState, _ ...any) (*retrieveState, error) {
	if st.Err != nil || st.Skip {
		return st, nil
	}
	filtered := make([]repository.VectorSearchHit, 0, len(st.Hits))
	for _, h := range st.Hits {
		if h.TenantID != "" && h.TenantID != st.Req.TenantID {
			continue
		}
		if st.Req.ScoreThreshold > 0 && h.Score < st.Req.ScoreThreshold {
			continue
		}
		if strings.TrimSpace(h.Content) == "" {
			continue
		}
		filtered = append(filtered, h)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Score > filtered[j].Score
	})
	if len(filtered) > st.Req.TopK {
		filtered = filtered[:st.Req.TopK]
	}
	st.Filtered = filtered
	return st, nil
}

func (p *RetrievePipeline) buildResultNode(_ context.Context, st *retrieveState, _ ...any) (*RetrieveResult, error) {
	res := &RetrieveResult{
		Hits:        st.Filtered,
		Contents:    make([]string, 0, len(st.Filtered)),
		TotalHits:   len(st.Hits),
		EmbeddingMs: st.EmbeddingMs,
		SearchMs:    st.SearchMs,
		DurationMs:  time.Since(st.Start).Milliseconds(),
	}
	for _, h := range st.Filtered {
		res.Contents = append(res.Contents, h.Content)
	}
	if st.Err != nil {
		return res, st.Err
	}
	zlog.Debug("knowledge retrieve done",
		zap.String("tenant_id", st.Req.TenantID),
		zap.Int("top_k", st.Req.TopK),
		zap.Int("total_hits", res.TotalHits),
		zap.Int("returned", len(res.Contents)),
		zap.Int64("embedding_ms", res.EmbeddingMs),
		zap.Int64("search_ms", res.SearchMs),
		zap.Int64("duration_ms", res.DurationMs),
	)
	return res, nil
}
