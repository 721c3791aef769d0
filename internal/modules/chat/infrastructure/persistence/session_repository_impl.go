package persistence

import (
	"context"
	"errors"
	"time"

	chatEntity "ChatDesk/internal/modules/chat/domain/entity"
	chatRepository "ChatDesk/internal/modules/chat/domain/repository"

	"gorm.io/gorm"
)

type sessionRepositoryImpl struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) chatRepository.SessionRepository {
	return &sessionRepositoryImpl{db: db}
}

func (r *sessionRepositoryImpl) GetByID(ctx context.Context, id string) (*chatEntity.ChatSession, error) {
	var sess chatEntity.ChatSession
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *sessionRepositoryImpl) GetLatestByEndUser(ctx context.Context, endUserID string) (*chatEntity.ChatSession, error) {
	var sess chatEntity.ChatSession
	err := r.db.WithContext(ctx).
		Where("end_user_id = ?", endUserID).
		Order("created_at DESC").
		First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *sessionRepositoryImpl) ListByTenant(ctx context.Context, tenantID string, status string) ([]chatEntity.ChatSession, error) {
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var sessions []chatEntity.ChatSession
	if err := q.Order("IFNULL(last_message_at, created_at) DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepositoryImpl) Create(ctx context.Context, session *chatEntity.ChatSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepositoryImpl) UpdateStatus(ctx context.Context, id string, status string) error {
	return r.update(ctx, id, map[string]interface{}{"status": status})
}

func (r *sessionRepositoryImpl) RecordInbound(ctx context.Context, id string, mood string, preview string, at time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"current_mood":    mood,
		"unread_count":    gorm.Expr("unread_count + ?", 1),
		"last_message":    preview,
		"last_message_at": at,
	})
}

func (r *sessionRepositoryImpl) TouchLastMessage(ctx context.Context, id string, preview string, at time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"last_message":    preview,
		"last_message_at": at,
	})
}

func (r *sessionRepositoryImpl) ResetUnread(ctx context.Context, id string) error {
	return r.update(ctx, id, map[string]interface{}{"unread_count": 0})
}

func (r *sessionRepositoryImpl) UpdateRestricted(ctx context.Context, id string, restricted bool) error {
	return r.update(ctx, id, map[string]interface{}{"restricted": restricted})
}

func (r *sessionRepositoryImpl) DeleteWithMessages(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&chatEntity.ChatMessage{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&chatEntity.ChatSession{}).Error
	})
}

func (r *sessionRepositoryImpl) update(ctx context.Context, id string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.WithContext(ctx).
		Model(&chatEntity.ChatSession{}).
		Where("id = ?", id).
		Updates(updates).Error
}
