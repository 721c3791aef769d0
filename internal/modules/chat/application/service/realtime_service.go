package service

import (
	"context"

	chatRespond "ChatDesk/internal/modules/chat/application/dto/respond"
	chatEntity "ChatDesk/internal/modules/chat/domain/entity"
	chatRepository "ChatDesk/internal/modules/chat/domain/repository"
)

// Notifier 向租户下所有在线坐席推送事件，投递失败不影响请求
type Notifier interface {
	Publish(tenantID string, event interface{})
}

type noopNotifier struct{}

func (noopNotifier) Publish(string, interface{}) {}

// NoopNotifier 未启用 WebSocket 时使用
var NoopNotifier Notifier = noopNotifier{}

func notifyMessage(n Notifier, tenantID string, msg *chatEntity.ChatMessage) {
	n.Publish(tenantID, chatRespond.SessionEvent{
		Type:      chatRespond.EventMessageCreated,
		SessionId: msg.SessionId,
		Message:   ToMessageItem(msg),
	})
}

func notifyStatus(n Notifier, tenantID, sessionID, status string) {
	n.Publish(tenantID, chatRespond.SessionEvent{
		Type:      chatRespond.EventStatusChanged,
		SessionId: sessionID,
		Status:    status,
	})
}

// SessionSelector 决定访客的新消息落到哪个会话
type SessionSelector interface {
	Select(ctx context.Context, endUserID string) (*chatEntity.ChatSession, error)
}

// LatestSessionSelector 永远取最近创建的会话，不按时间窗口切分
type LatestSessionSelector struct {
	Sessions chatRepository.SessionRepository
}

func (s LatestSessionSelector) Select(ctx context.Context, endUserID string) (*chatEntity.ChatSession, error) {
	return s.Sessions.GetLatestByEndUser(ctx, endUserID)
}

func ToMessageItem(m *chatEntity.ChatMessage) *chatRespond.MessageItem {
	item := &chatRespond.MessageItem{
		Id:         m.Id,
		SessionId:  m.SessionId,
		Role:       m.Role,
		Content:    m.Content,
		AuthorName: m.AuthorName,
		CreatedAt:  m.CreatedAt,
	}
	if m.SentimentScore.Valid {
		score := m.SentimentScore.Int32
		item.SentimentScore = &score
	}
	if m.SentimentLabel.Valid {
		item.SentimentLabel = m.SentimentLabel.String
	}
	return item
}

func toMessageItems(msgs []chatEntity.ChatMessage) []chatRespond.MessageItem {
	out := make([]chatRespond.MessageItem, 0, len(msgs))
	for i := range msgs {
		out = append(out, *ToMessageItem(&msgs[i]))
	}
	return out
}
