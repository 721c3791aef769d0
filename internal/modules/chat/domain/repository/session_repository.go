package repository

import (
	"context"
	"time"

	"ChatDesk/internal/modules/chat/domain/entity"
)

// SessionRepository 查询不到时返回 (nil, nil)
type SessionRepository interface {
	GetByID(ctx context.Context, id string) (*entity.ChatSession, error)
	// GetLatestByEndUser 按创建时间取该访客最新的会话
	GetLatestByEndUser(ctx context.Context, endUserID string) (*entity.ChatSession, error)
	ListByTenant(ctx context.Context, tenantID string, status string) ([]entity.ChatSession, error)
	Create(ctx context.Context, session *entity.ChatSession) error
	UpdateStatus(ctx context.Context, id string, status string) error
	// RecordInbound 覆盖情绪、未读数 +1，并刷新最后一条消息预览
	RecordInbound(ctx context.Context, id string, mood string, preview string, at time.Time) error
	// TouchLastMessage 只刷新预览，用于助手或坐席发出的消息
	TouchLastMessage(ctx context.Context, id string, preview string, at time.Time) error
	ResetUnread(ctx context.Context, id string) error
	UpdateRestricted(ctx context.Context, id string, restricted bool) error
	// DeleteWithMessages 在同一事务中删除会话及其全部消息
	DeleteWithMessages(ctx context.Context, id string) error
}
