package repository

import (
	"context"

	"ChatDesk/internal/modules/chat/domain/entity"
)

type EndUserRepository interface {
	GetByExternalID(ctx context.Context, tenantID string, externalID string) (*entity.EndUser, error)
	GetByID(ctx context.Context, id string) (*entity.EndUser, error)
	Create(ctx context.Context, user *entity.EndUser) error
	UpdateBlocked(ctx context.Context, id string, blocked bool) error
	UpdateName(ctx context.Context, id string, name string) error
}
