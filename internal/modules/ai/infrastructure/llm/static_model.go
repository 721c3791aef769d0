package llm

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const defaultStaticReply = "Thanks for reaching out! A member of our team will follow up if I can't answer this."

// StaticChatModel 不调用任何外部服务；有知识上下文时回显第一段，便于本地联调
type StaticChatModel struct {
	Reply string
}

func NewStaticChatModel(reply string) *StaticChatModel {
	if strings.TrimSpace(reply) == "" {
		reply = defaultStaticReply
	}
	return &StaticChatModel{Reply: reply}
}

func (m *StaticChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	content := m.Reply
	if len(input) > 0 && input[0] != nil && input[0].Role == schema.System {
		if _, ctxText, ok := strings.Cut(input[0].Content, "Context:\n"); ok {
			first, _, _ := strings.Cut(ctxText, "\n---\n")
			if first = strings.TrimSpace(first); first != "" {
				content = first
			}
		}
	}
	return schema.AssistantMessage(content, nil), nil
}

func (m *StaticChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

var _ model.BaseChatModel = (*StaticChatModel)(nil)
