package persistence

import (
	"context"
	"errors"
	"time"

	chatEntity "ChatDesk/internal/modules/chat/domain/entity"
	chatRepository "ChatDesk/internal/modules/chat/domain/repository"

	"gorm.io/gorm"
)

type endUserRepositoryImpl struct {
	db *gorm.DB
}

func NewEndUserRepository(db *gorm.DB) chatRepository.EndUserRepository {
	return &endUserRepositoryImpl{db: db}
}

func (r *endUserRepositoryImpl) GetByExternalID(ctx context.Context, tenantID string, externalID string) (*chatEntity.EndUser, error) {
	var u chatEntity.EndUser
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND external_id = ?", tenantID, externalID).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *endUserRepositoryImpl) GetByID(ctx context.Context, id string) (*chatEntity.EndUser, error) {
	var u chatEntity.EndUser
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *endUserRepositoryImpl) Create(ctx context.Context, user *chatEntity.EndUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *endUserRepositoryImpl) UpdateBlocked(ctx context.Context, id string, blocked bool) error {
	return r.db.WithContext(ctx).
		Model(&chatEntity.EndUser{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"blocked": blocked, "updated_at": time.Now()}).Error
}

func (r *endUserRepositoryImpl) UpdateName(ctx context.Context, id string, name string) error {
	return r.db.WithContext(ctx).
		Model(&chatEntity.EndUser{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "updated_at": time.Now()}).Error
}
