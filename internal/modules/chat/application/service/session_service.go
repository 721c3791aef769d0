package service

import (
	"context"
	"fmt"
	"strings"

	chatRespond "ChatDesk/internal/modules/chat/application/dto/respond"
	chatEntity "ChatDesk/internal/modules/chat/domain/entity"
	chatRepository "ChatDesk/internal/modules/chat/domain/repository"
	"ChatDesk/pkg/metrics"
	"ChatDesk/pkg/xerr"
	"ChatDesk/pkg/zlog"

	"go.uber.org/zap"
)

const (
	BannerAgentRequested   = "Customer requested a human agent."
	BannerAgentJoinedFmt   = "%s has joined the chat."
	BannerAgentUnavailable = "No agents are available right now. You are chatting with our AI assistant again."
	BannerAgentLeft        = "The agent has left the chat."
	defaultAgentName       = "An agent"
)

type SessionService interface {
	ListSessions(ctx context.Context, tenantID, status string) ([]chatRespond.SessionItem, error)

	RequestAgent(ctx context.Context, tenantID, sessionID string) error
	RequestAgentForSender(ctx context.Context, tenantID, channel, senderID string) (string, error)
	AcceptAgent(ctx context.Context, tenantID, sessionID, agentName string) error
	RejectAgent(ctx context.Context, tenantID, sessionID string) error
	EndAgentChat(ctx context.Context, tenantID, sessionID string) error

	MarkAsRead(ctx context.Context, tenantID, sessionID string) error
	ClearConversation(ctx context.Context, tenantID, sessionID string) error
	DeleteSession(ctx context.Context, tenantID, sessionID string) error
	BlockUser(ctx context.Context, tenantID, sessionID string) error
	UnblockUser(ctx context.Context, tenantID, sessionID string) error
	RestrictSession(ctx context.Context, tenantID, sessionID string) error
	UnrestrictSession(ctx context.Context, tenantID, sessionID string) error
	RenameEndUser(ctx context.Context, tenantID, sessionID, name string) error
	SendAgentMessage(ctx context.Context, tenantID, sessionID, agentName, content string) (*chatRespond.MessageItem, error)
}

type sessionServiceImpl struct {
	endUsers chatRepository.EndUserRepository
	sessions chatRepository.SessionRepository
	messages chatRepository.MessageRepository
	selector SessionSelector
	notifier Notifier
}

func NewSessionService(
	endUsers chatRepository.EndUserRepository,
	sessions chatRepository.SessionRepository,
	messages chatRepository.MessageRepository,
	notifier Notifier,
) SessionService {
	if notifier == nil {
		notifier = NoopNotifier
	}
	return &sessionServiceImpl{
		endUsers: endUsers,
		sessions: sessions,
		messages: messages,
		selector: LatestSessionSelector{Sessions: sessions},
		notifier: notifier,
	}
}

func (s *sessionServiceImpl) ListSessions(ctx context.Context, tenantID, status string) ([]chatRespond.SessionItem, error) {
	rows, err := s.sessions.ListByTenant(ctx, tenantID, strings.TrimSpace(status))
	if err != nil {
		zlog.Error("list sessions failed", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	users := make(map[string]*chatEntity.EndUser)
	out := make([]chatRespond.SessionItem, 0, len(rows))
	for _, r := range rows {
		u, ok := users[r.EndUserId]
		if !ok {
			u, err = s.endUsers.GetByID(ctx, r.EndUserId)
			if err != nil {
				zlog.Error("get end user failed", zap.String("end_user_id", r.EndUserId), zap.Error(err))
				return nil, xerr.ErrServerError
			}
			users[r.EndUserId] = u
		}
		item := chatRespond.SessionItem{
			Id:          r.Id,
			EndUserId:   r.EndUserId,
			Status:      r.Status,
			CurrentMood: r.CurrentMood.String,
			UnreadCount: r.UnreadCount,
			Restricted:  r.Restricted,
			LastMessage: r.LastMessage,
			CreatedAt:   r.CreatedAt,
		}
		if r.LastMessageAt.Valid {
			at := r.LastMessageAt.Time
			item.LastMessageAt = &at
		}
		if u != nil {
			item.EndUserName = u.Name
			item.Channel = u.Channel
			item.Blocked = u.Blocked
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *sessionServiceImpl) RequestAgent(ctx context.Context, tenantID, sessionID string) error {
	return s.transition(ctx, tenantID, sessionID, chatEntity.SessionStatusAgentRequested, BannerAgentRequested, "failed to request agent")
}

func (s *sessionServiceImpl) RequestAgentForSender(ctx context.Context, tenantID, channel, senderID string) (string, error) {
	externalID, err := senderIdentity(NormalizeChannel(channel), senderID)
	if err != nil {
		return "", err
	}
	user, err := s.endUsers.GetByExternalID(ctx, tenantID, externalID)
	if err != nil {
		zlog.Error("get end user failed", zap.String("tenant_id", tenantID), zap.Error(err))
		return "", xerr.ErrServerError
	}
	if user == nil {
		return "", xerr.ErrEndUserNotFound
	}
	sess, err := s.selector.Select(ctx, user.Id)
	if err != nil {
		zlog.Error("select session failed", zap.String("end_user_id", user.Id), zap.Error(err))
		return "", xerr.ErrServerError
	}
	if sess == nil {
		return "", xerr.ErrSessionNotFound
	}
	if err := s.RequestAgent(ctx, tenantID, sess.Id); err != nil {
		return "", err
	}
	return sess.Id, nil
}

func (s *sessionServiceImpl) AcceptAgent(ctx context.Context, tenantID, sessionID, agentName string) error {
	name := strings.TrimSpace(agentName)
	if name == "" {
		name = defaultAgentName
	}
	banner := fmt.Sprintf(BannerAgentJoinedFmt, name)
	return s.transition(ctx, tenantID, sessionID, chatEntity.SessionStatusAgentConnected, banner, "failed to accept agent")
}

func (s *sessionServiceImpl) RejectAgent(ctx context.Context, tenantID, sessionID string) error {
	return s.transition(ctx, tenantID, sessionID, chatEntity.SessionStatusActive, BannerAgentUnavailable, "failed to reject agent")
}

func (s *sessionServiceImpl) EndAgentChat(ctx context.Context, tenantID, sessionID string) error {
	return s.transition(ctx, tenantID, sessionID, chatEntity.SessionStatusActive, BannerAgentLeft, "failed to end agent chat")
}

func (s *sessionServiceImpl) transition(ctx context.Context, tenantID, sessionID, status, banner, failMsg string) error {
	if _, err := ownedSession(ctx, s.sessions, tenantID, sessionID); err != nil {
		return err
	}
	if err := s.sessions.UpdateStatus(ctx, sessionID, status); err != nil {
		zlog.Error(failMsg, zap.String("session_id", sessionID), zap.Error(err))
		return xerr.New(xerr.InternalServerError, failMsg)
	}
	msg := newMessage(sessionID, chatEntity.RoleSystem, banner, "")
	if err := s.messages.Create(ctx, msg); err != nil {
		zlog.Error(failMsg, zap.String("session_id", sessionID), zap.Error(err))
		return xerr.New(xerr.InternalServerError, failMsg)
	}
	metrics.SessionTransitions.WithLabelValues(status).Inc()
	zlog.Info("session status changed",
		zap.String("tenant_id", tenantID),
		zap.String("session_id", sessionID),
		zap.String("status", status),
	)
	notifyStatus(s.notifier, tenantID, sessionID, status)
	notifyMessage(s.notifier, tenantID, msg)
	return nil
}

func (s *sessionServiceImpl) MarkAsRead(ctx context.Context, tenantID, sessionID string) error {
	return s.update(ctx, tenantID, sessionID, "failed to mark as read", func() error {
		return s.sessions.ResetUnread(ctx, sessionID)
	})
}

func (s *sessionServiceImpl) ClearConversation(ctx context.Context, tenantID, sessionID string) error {
	return s.update(ctx, tenantID, sessionID, "failed to clear conversation", func() error {
		n, err := s.messages.DeleteBySession(ctx, sessionID)
		if err == nil {
			zlog.Info("conversation cleared", zap.String("session_id", sessionID), zap.Int64("messages", n))
		}
		return err
	})
}

func (s *sessionServiceImpl) DeleteSession(ctx context.Context, tenantID, sessionID string) error {
	err := s.update(ctx, tenantID, sessionID, "failed to delete session", func() error {
		return s.sessions.DeleteWithMessages(ctx, sessionID)
	})
	if err == nil {
		s.notifier.Publish(tenantID, chatRespond.SessionEvent{Type: chatRespond.EventSessionDeleted, SessionId: sessionID})
	}
	return err
}

func (s *sessionServiceImpl) BlockUser(ctx context.Context, tenantID, sessionID string) error {
	return s.setBlocked(ctx, tenantID, sessionID, true)
}

func (s *sessionServiceImpl) UnblockUser(ctx context.Context, tenantID, sessionID string) error {
	return s.setBlocked(ctx, tenantID, sessionID, false)
}

func (s *sessionServiceImpl) setBlocked(ctx context.Context, tenantID, sessionID string, blocked bool) error {
	sess, err := ownedSession(ctx, s.sessions, tenantID, sessionID)
	if err != nil {
		return err
	}
	if err := s.endUsers.UpdateBlocked(ctx, sess.EndUserId, blocked); err != nil {
		zlog.Error("update blocked failed", zap.String("end_user_id", sess.EndUserId), zap.Error(err))
		return xerr.New(xerr.InternalServerError, "failed to update block state")
	}
	return nil
}

// RestrictSession 只记录标记，路由分支不读取它
func (s *sessionServiceImpl) RestrictSession(ctx context.Context, tenantID, sessionID string) error {
	return s.update(ctx, tenantID, sessionID, "failed to restrict session", func() error {
		return s.sessions.UpdateRestricted(ctx, sessionID, true)
	})
}

func (s *sessionServiceImpl) UnrestrictSession(ctx context.Context, tenantID, sessionID string) error {
	return s.update(ctx, tenantID, sessionID, "failed to unrestrict session", func() error {
		return s.sessions.UpdateRestricted(ctx, sessionID, false)
	})
}

func (s *sessionServiceImpl) RenameEndUser(ctx context.Context, tenantID, sessionID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return xerr.New(xerr.BadRequest, "name is required")
	}
	sess, err := ownedSession(ctx, s.sessions, tenantID, sessionID)
	if err != nil {
		return err
	}
	if err := s.endUsers.UpdateName(ctx, sess.EndUserId, name); err != nil {
		zlog.Error("rename end user failed", zap.String("end_user_id", sess.EndUserId), zap.Error(err))
		return xerr.New(xerr.InternalServerError, "failed to rename end user")
	}
	return nil
}

func (s *sessionServiceImpl) SendAgentMessage(ctx context.Context, tenantID, sessionID, agentName, content string) (*chatRespond.MessageItem, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, xerr.ErrEmptyMessage
	}
	if _, err := ownedSession(ctx, s.sessions, tenantID, sessionID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(agentName)
	if name == "" {
		name = defaultAgentName
	}
	msg := newMessage(sessionID, chatEntity.RoleAssistant, content, name)
	if err := s.messages.Create(ctx, msg); err != nil {
		zlog.Error("persist agent message failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, xerr.New(xerr.InternalServerError, "failed to send message")
	}
	if err := s.sessions.TouchLastMessage(ctx, sessionID, preview(content), msg.CreatedAt); err != nil {
		zlog.Warn("touch session failed", zap.String("session_id", sessionID), zap.Error(err))
	}
	notifyMessage(s.notifier, tenantID, msg)
	return ToMessageItem(msg), nil
}

func (s *sessionServiceImpl) update(ctx context.Context, tenantID, sessionID, failMsg string, fn func() error) error {
	if _, err := ownedSession(ctx, s.sessions, tenantID, sessionID); err != nil {
		return err
	}
	if err := fn(); err != nil {
		zlog.Error(failMsg, zap.String("session_id", sessionID), zap.Error(err))
		return xerr.New(xerr.InternalServerError, failMsg)
	}
	return nil
}
