package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ChatDesk/pkg/zlog"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
)

type replyState struct {
	Req      *ReplyRequest
	Chunks   []string
	Messages []*schema.Message
	Start    time.Time
	Stage    string
	Err      error
}

func (p *ReplyPipeline) buildGraph(ctx context.Context) (compose.Runnable[*ReplyRequest, *ReplyResult], error) {
	const (
		Retrieve    = "Retrieve"
		BuildPrompt = "BuildPrompt"
		Generate    = "Generate"
	)
	g := compose.NewGraph[*ReplyRequest, *ReplyResult]()
	_ = g.AddLambdaNode(Retrieve, compose.InvokableLambdaWithOption(p.retrieveNode), compose.WithNodeName(Retrieve))
	_ = g.AddLambdaNode(BuildPrompt, compose.InvokableLambdaWithOption(p.buildPromptNode), compose.WithNodeName(BuildPrompt))
	_ = g.AddLambdaNode(Generate, compose.InvokableLambdaWithOption(p.generateNode), compose.WithNodeName(Generate))
	_ = g.AddEdge(compose.START, Retrieve)
	_ = g.AddEdge(Retrieve, BuildPrompt)
	_ = g.AddEdge(BuildPrompt, Generate)
	_ = g.AddEdge(Generate, compose.END)
	return g.Compile(ctx, compose.WithGraphName("AIReplyPipeline"), compose.WithNodeTriggerMode(compose.AllPredecessor))
}

func (p *ReplyPipeline) retrieveNode(ctx context.Context, req *ReplyRequest, _ ...any) (*replyState, error) {
	st := &replyState{Req: req, Start: time.Now()}
	if p.retriever == nil || strings.TrimSpace(req.Question) == "" {
		return st, nil
	}
	topK := req.TopK
	if topK <= 0 {
		topK = p.opts.TopK
	}
	rctx, cancel := context.WithTimeout(ctx, p.opts.RetrieveTimeout)
	defer cancel()
	chunks, err := p.retriever.QueryKnowledge(rctx, req.TenantID, req.Question, topK)
	if err != nil {
		st.Stage = StageRetrieve
		st.Err = err
		return st, nil
	}
	st.Chunks = chunks
	return st, nil
}

func (p *ReplyPipeline) buildPromptNode(_ context.Context, st *replyState, _ ...any) (*replyState, error) {
	if st.Err != nil {
		return st, nil
	}
	st.Messages = BuildMessages(st.Req.SystemPrompt, st.Chunks, st.Req.History, st.Req.Question)
	return st, nil
}

func (p *ReplyPipeline) generateNode(ctx context.Context, st *replyState, _ ...any) (*ReplyResult, error) {
	res := &ReplyResult{ContextChunks: len(st.Chunks)}
	defer func() { res.DurationMs = time.Since(st.Start).Milliseconds() }()

	if st.Err != nil {
		res.Stage, res.Err = st.Stage, st.Err
		return res, nil
	}
	res.Stage = StageGenerate
	if p.chatModel == nil {
		res.Err = fmt.Errorf("chat model not configured")
		return res, nil
	}

	gctx, cancel := context.WithTimeout(ctx, p.opts.GenerateTimeout)
	defer cancel()
	resp, err := p.chatModel.Generate(gctx, st.Messages)
	if err != nil {
		res.Err = err
		return res, nil
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		res.Err = fmt.Errorf("empty completion")
		return res, nil
	}
	res.Answer = resp.Content
	res.Stage = ""
	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		res.PromptTokens = resp.ResponseMeta.Usage.PromptTokens
		res.CompletionTokens = resp.ResponseMeta.Usage.CompletionTokens
	}
	zlog.Debug("ai reply generated",
		zap.String("tenant_id", st.Req.TenantID),
		zap.Int("context_chunks", res.ContextChunks),
		zap.Int("history_turns", len(st.Req.History)),
		zap.Int("prompt_tokens", res.PromptTokens),
		zap.Int("completion_tokens", res.CompletionTokens),
	)
	return res, nil
}

// BuildMessages 组装 system + 历史 + 本轮问题。
// 历史最后一条已是本轮问题时不重复追加。
func BuildMessages(systemPrompt string, chunks []string, history []Turn, question string) []*schema.Message {
	sys := strings.TrimSpace(systemPrompt)
	if sys == "" {
		sys = DefaultSystemPrompt
	}
	if len(chunks) > 0 {
		sys += contextHeader + strings.Join(chunks, contextSeparator)
	}

	msgs := make([]*schema.Message, 0, len(history)+2)
	msgs = append(msgs, schema.SystemMessage(sys))
	for _, t := range history {
		switch t.Role {
		case string(schema.User):
			msgs = append(msgs, schema.UserMessage(t.Content))
		case string(schema.Assistant):
			msgs = append(msgs, schema.AssistantMessage(t.Content, nil))
		}
	}
	if question != "" {
		n := len(history)
		if n == 0 || history[n-1].Role != string(schema.User) || history[n-1].Content != question {
			msgs = append(msgs, schema.UserMessage(question))
		}
	}
	return msgs
}
