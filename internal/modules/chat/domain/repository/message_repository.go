package repository

import (
	"context"
	"time"

	"ChatDesk/internal/modules/chat/domain/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	// ListRecentForModel 返回最近 limit 条非 system 消息，按时间正序
	ListRecentForModel(ctx context.Context, sessionID string, limit int) ([]entity.ChatMessage, error)
	ListBySession(ctx context.Context, sessionID string) ([]entity.ChatMessage, error)
	// ListSince 返回 after 之后的消息，按时间正序
	ListSince(ctx context.Context, sessionID string, after time.Time, limit int) ([]entity.ChatMessage, error)
	DeleteBySession(ctx context.Context, sessionID string) (int64, error)
}
