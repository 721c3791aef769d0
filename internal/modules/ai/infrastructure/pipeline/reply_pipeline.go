package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
)

const DefaultSystemPrompt = "You are a friendly and helpful customer support assistant. Answer concisely and politely."

const (
	contextHeader    = "\n\nUse the following knowledge base context to answer. If the answer is not covered, say you are not sure and offer to connect the customer with a human agent.\n\nContext:\n"
	contextSeparator = "\n---\n"
)

const (
	StageRetrieve = "retrieve"
	StageGenerate = "generate"
)

// Turn 一轮对话（role 为 user 或 assistant）
type Turn struct {
	Role    string
	Content string
}

type ReplyRequest struct {
	TenantID     string
	SystemPrompt string // 租户自定义提示词，空时使用 DefaultSystemPrompt
	History      []Turn // 按时间正序，通常已包含本次用户消息
	Question     string
	TopK         int
}

// ReplyResult Err 非空时 Answer 为空，由调用方决定兜底文案
type ReplyResult struct {
	Answer           string
	ContextChunks    int
	PromptTokens     int
	CompletionTokens int
	Stage            string
	Err              error
	DurationMs       int64
}

// Retriever 按租户检索知识片段，结果按相关度降序
type Retriever interface {
	QueryKnowledge(ctx context.Context, tenantID string, query string, topK int) ([]string, error)
}

type ReplyOptions struct {
	TopK            int
	RetrieveTimeout time.Duration
	GenerateTimeout time.Duration
}

// ReplyPipeline AI 回复（Eino Graph：Retrieve → BuildPrompt → Generate）
type ReplyPipeline struct {
	retriever Retriever
	chatModel model.BaseChatModel
	opts      ReplyOptions
	r         compose.Runnable[*ReplyRequest, *ReplyResult]
}

// NewReplyPipeline retriever 与 chatModel 可以为 nil：前者跳过检索，后者使每次生成都失败
func NewReplyPipeline(retriever Retriever, chatModel model.BaseChatModel, opts ReplyOptions) (*ReplyPipeline, error) {
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	if opts.RetrieveTimeout <= 0 {
		opts.RetrieveTimeout = 10 * time.Second
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = 60 * time.Second
	}
	p := &ReplyPipeline{retriever: retriever, chatModel: chatModel, opts: opts}
	r, err := p.buildGraph(context.Background())
	if err != nil {
		return nil, err
	}
	p.r = r
	return p, nil
}

// Reply 不返回 error，失败信息放在 ReplyResult.Err
func (p *ReplyPipeline) Reply(ctx context.Context, req *ReplyRequest) *ReplyResult {
	start := time.Now()
	if req == nil {
		return &ReplyResult{Stage: StageRetrieve, Err: fmt.Errorf("reply request is nil")}
	}
	res, err := p.r.Invoke(ctx, req)
	if err != nil {
		return &ReplyResult{Stage: StageGenerate, Err: err, DurationMs: time.Since(start).Milliseconds()}
	}
	return res
}
