package service

import (
	"context"
	"time"

	chatRespond "ChatDesk/internal/modules/chat/application/dto/respond"
	chatEntity "ChatDesk/internal/modules/chat/domain/entity"
	chatRepository "ChatDesk/internal/modules/chat/domain/repository"
	"ChatDesk/pkg/xerr"
	"ChatDesk/pkg/zlog"

	"go.uber.org/zap"
)

const maxPollLimit = 200

// MessageService 会话消息的只读查询，运营后台与挂件轮询共用
type MessageService interface {
	GetMessages(ctx context.Context, tenantID, sessionID string) ([]chatRespond.MessageItem, error)
	// GetMessagesSince after 为零值时返回全部
	GetMessagesSince(ctx context.Context, tenantID, sessionID string, after time.Time, limit int) ([]chatRespond.MessageItem, error)
}

type messageServiceImpl struct {
	sessionRepo chatRepository.SessionRepository
	messageRepo chatRepository.MessageRepository
}

func NewMessageService(sessionRepo chatRepository.SessionRepository, messageRepo chatRepository.MessageRepository) MessageService {
	return &messageServiceImpl{sessionRepo: sessionRepo, messageRepo: messageRepo}
}

func (s *messageServiceImpl) GetMessages(ctx context.Context, tenantID, sessionID string) ([]chatRespond.MessageItem, error) {
	if _, err := ownedSession(ctx, s.sessionRepo, tenantID, sessionID); err != nil {
		return nil, err
	}
	msgs, err := s.messageRepo.ListBySession(ctx, sessionID)
	if err != nil {
		zlog.Error("list messages failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return toMessageItems(msgs), nil
}

func (s *messageServiceImpl) GetMessagesSince(ctx context.Context, tenantID, sessionID string, after time.Time, limit int) ([]chatRespond.MessageItem, error) {
	if _, err := ownedSession(ctx, s.sessionRepo, tenantID, sessionID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxPollLimit {
		limit = maxPollLimit
	}
	msgs, err := s.messageRepo.ListSince(ctx, sessionID, after, limit)
	if err != nil {
		zlog.Error("list messages since failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return toMessageItems(msgs), nil
}

// ownedSession 会话不存在或不属于该租户时一律返回 ErrSessionNotFound
func ownedSession(ctx context.Context, repo chatRepository.SessionRepository, tenantID, sessionID string) (*chatEntity.ChatSession, error) {
	sess, err := repo.GetByID(ctx, sessionID)
	if err != nil {
		zlog.Error("get session failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if sess == nil || sess.TenantId != tenantID {
		return nil, xerr.ErrSessionNotFound
	}
	return sess, nil
}
