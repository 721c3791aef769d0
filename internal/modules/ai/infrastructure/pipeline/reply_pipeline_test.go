package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ChatDesk/internal/modules/ai/infrastructure/pipeline"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatModel struct {
	reply string
	err   error
	seen  []*schema.Message
}

func (m *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.seen = input
	if m.err != nil {
		return nil, m.err
	}
	msg := schema.AssistantMessage(m.reply, nil)
	msg.ResponseMeta = &schema.ResponseMeta{Usage: &schema.TokenUsage{PromptTokens: 12, CompletionTokens: 5, TotalTokens: 17}}
	return msg, nil
}

func (m *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

type fakeRetriever struct {
	chunks []string
	err    error
	tenant string
}

func (r *fakeRetriever) QueryKnowledge(_ context.Context, tenantID string, _ string, _ int) ([]string, error) {
	r.tenant = tenantID
	return r.chunks, r.err
}

func TestReplyPipeline_InjectsContextIntoSystemPrompt(t *testing.T) {
	cm := &fakeChatModel{reply: "We open at 9am."}
	rt := &fakeRetriever{chunks: []string{"Store opens at 9am.", "Closed on Sundays."}}
	p, err := pipeline.NewReplyPipeline(rt, cm, pipeline.ReplyOptions{})
	require.NoError(t, err)

	res := p.Reply(context.Background(), &pipeline.ReplyRequest{
		TenantID:     "T1",
		SystemPrompt: "You are Acme's helper.",
		History:      []pipeline.Turn{{Role: "user", Content: "When do you open?"}},
		Question:     "When do you open?",
	})

	require.NoError(t, res.Err)
	assert.Equal(t, "We open at 9am.", res.Answer)
	assert.Equal(t, 2, res.ContextChunks)
	assert.Equal(t, 12, res.PromptTokens)
	assert.Equal(t, "T1", rt.tenant)

	require.Len(t, cm.seen, 2)
	assert.Equal(t, schema.System, cm.seen[0].Role)
	assert.True(t, strings.HasPrefix(cm.seen[0].Content, "You are Acme's helper."))
	assert.Contains(t, cm.seen[0].Content, "Context:\nStore opens at 9am.\n---\nClosed on Sundays.")
	assert.Equal(t, schema.User, cm.seen[1].Role)
}

func TestReplyPipeline_NoChunksNoContextBlock(t *testing.T) {
	cm := &fakeChatModel{reply: "Hello!"}
	p, err := pipeline.NewReplyPipeline(&fakeRetriever{}, cm, pipeline.ReplyOptions{})
	require.NoError(t, err)

	res := p.Reply(context.Background(), &pipeline.ReplyRequest{TenantID: "T1", Question: "hi"})

	require.NoError(t, res.Err)
	assert.Equal(t, pipeline.DefaultSystemPrompt, cm.seen[0].Content)
	require.Len(t, cm.seen, 2)
	assert.Equal(t, "hi", cm.seen[1].Content)
}

func TestReplyPipeline_GenerateFailureIsReturnedAsValue(t *testing.T) {
	cm := &fakeChatModel{err: errors.New("quota exceeded")}
	p, err := pipeline.NewReplyPipeline(nil, cm, pipeline.ReplyOptions{})
	require.NoError(t, err)

	res := p.Reply(context.Background(), &pipeline.ReplyRequest{TenantID: "T1", Question: "hi"})

	require.Error(t, res.Err)
	assert.Equal(t, pipeline.StageGenerate, res.Stage)
	assert.Empty(t, res.Answer)
}

func TestReplyPipeline_RetrieveFailureSkipsGeneration(t *testing.T) {
	cm := &fakeChatModel{reply: "unused"}
	p, err := pipeline.NewReplyPipeline(&fakeRetriever{err: errors.New("milvus down")}, cm, pipeline.ReplyOptions{})
	require.NoError(t, err)

	res := p.Reply(context.Background(), &pipeline.ReplyRequest{TenantID: "T1", Question: "hi"})

	require.Error(t, res.Err)
	assert.Equal(t, pipeline.StageRetrieve, res.Stage)
	assert.Nil(t, cm.seen)
}

func TestReplyPipeline_NilChatModel(t *testing.T) {
	p, err := pipeline.NewReplyPipeline(nil, nil, pipeline.ReplyOptions{})
	require.NoError(t, err)

	res := p.Reply(context.Background(), &pipeline.ReplyRequest{TenantID: "T1", Question: "hi"})

	assert.Error(t, res.Err)
}

func TestBuildMessages_HistoryMapping(t *testing.T) {
	history := []pipeline.Turn{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello, how can I help?"},
		{Role: "user", Content: "refund please"},
	}

	msgs := pipeline.BuildMessages("", nil, history, "refund please")

	require.Len(t, msgs, 4)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, schema.User, msgs[1].Role)
	assert.Equal(t, schema.Assistant, msgs[2].Role)
	assert.Equal(t, "refund please", msgs[3].Content)
}
