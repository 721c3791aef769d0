package persistence

import (
	"context"
	"time"

	chatEntity "ChatDesk/internal/modules/chat/domain/entity"
	chatRepository "ChatDesk/internal/modules/chat/domain/repository"

	"gorm.io/gorm"
)

type messageRepositoryImpl struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) chatRepository.MessageRepository {
	return &messageRepositoryImpl{db: db}
}

func (r *messageRepositoryImpl) Create(ctx context.Context, message *chatEntity.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepositoryImpl) ListRecentForModel(ctx context.Context, sessionID string, limit int) ([]chatEntity.ChatMessage, error) {
	if limit <= 0 {
		limit = 10
	}
	var msgs []chatEntity.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND role <> ?", sessionID, chatEntity.RoleSystem).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	// 倒序取最近 N 条，再翻转成正序
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *messageRepositoryImpl) ListBySession(ctx context.Context, sessionID string) ([]chatEntity.ChatMessage, error) {
	var msgs []chatEntity.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *messageRepositoryImpl) ListSince(ctx context.Context, sessionID string, after time.Time, limit int) ([]chatEntity.ChatMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var msgs []chatEntity.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND created_at > ?", sessionID, after).
		Order("created_at ASC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *messageRepositoryImpl) DeleteBySession(ctx context.Context, sessionID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&chatEntity.ChatMessage{})
	return res.RowsAffected, res.Error
}
