package persistence

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	chatEntity "ChatDesk/internal/modules/chat/domain/entity"
	chatRepository "ChatDesk/internal/modules/chat/domain/repository"
)

// MemoryStore 未配置 MySQL 时的进程内存储，三个仓储共用一把锁，
// 这样删除会话时可以连同消息一起删除
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]chatEntity.EndUser
	sessions map[string]chatEntity.ChatSession
	messages map[string][]chatEntity.ChatMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]chatEntity.EndUser),
		sessions: make(map[string]chatEntity.ChatSession),
		messages: make(map[string][]chatEntity.ChatMessage),
	}
}

func (s *MemoryStore) EndUsers() chatRepository.EndUserRepository { return (*memoryEndUserRepo)(s) }
func (s *MemoryStore) Sessions() chatRepository.SessionRepository { return (*memorySessionRepo)(s) }
func (s *MemoryStore) Messages() chatRepository.MessageRepository { return (*memoryMessageRepo)(s) }

type memoryEndUserRepo MemoryStore

func (r *memoryEndUserRepo) GetByExternalID(_ context.Context, tenantID string, externalID string) (*chatEntity.EndUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.TenantId == tenantID && u.ExternalId == externalID {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryEndUserRepo) GetByID(_ context.Context, id string) (*chatEntity.EndUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memoryEndUserRepo) Create(_ context.Context, user *chatEntity.EndUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.Id] = *user
	return nil
}

func (r *memoryEndUserRepo) UpdateBlocked(_ context.Context, id string, blocked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.Blocked = blocked
		u.UpdatedAt = time.Now()
		r.users[id] = u
	}
	return nil
}

func (r *memoryEndUserRepo) UpdateName(_ context.Context, id string, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.Name = name
		u.UpdatedAt = time.Now()
		r.users[id] = u
	}
	return nil
}

type memorySessionRepo MemoryStore

func (r *memorySessionRepo) GetByID(_ context.Context, id string) (*chatEntity.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (r *memorySessionRepo) GetLatestByEndUser(_ context.Context, endUserID string) (*chatEntity.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *chatEntity.ChatSession
	for _, sess := range r.sessions {
		if sess.EndUserId != endUserID {
			continue
		}
		if latest == nil || sess.CreatedAt.After(latest.CreatedAt) {
			cp := sess
			latest = &cp
		}
	}
	return latest, nil
}

func (r *memorySessionRepo) ListByTenant(_ context.Context, tenantID string, status string) ([]chatEntity.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]chatEntity.ChatSession, 0)
	for _, sess := range r.sessions {
		if sess.TenantId != tenantID || (status != "" && sess.Status != status) {
			continue
		}
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return activityAt(out[i]).After(activityAt(out[j])) })
	return out, nil
}

func activityAt(s chatEntity.ChatSession) time.Time {
	if s.LastMessageAt.Valid {
		return s.LastMessageAt.Time
	}
	return s.CreatedAt
}

func (r *memorySessionRepo) Create(_ context.Context, session *chatEntity.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Id] = *session
	return nil
}

func (r *memorySessionRepo) mutate(id string, fn func(*chatEntity.ChatSession)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	if !ok {
		return nil
	}
	fn(&sess)
	sess.UpdatedAt = time.Now()
	r.sessions[id] = sess
	return nil
}

func (r *memorySessionRepo) UpdateStatus(_ context.Context, id string, status string) error {
	return r.mutate(id, func(s *chatEntity.ChatSession) { s.Status = status })
}

func (r *memorySessionRepo) RecordInbound(_ context.Context, id string, mood string, preview string, at time.Time) error {
	return r.mutate(id, func(s *chatEntity.ChatSession) {
		s.CurrentMood = sql.NullString{String: mood, Valid: true}
		s.UnreadCount++
		s.LastMessage = preview
		s.LastMessageAt = sql.NullTime{Time: at, Valid: true}
	})
}

func (r *memorySessionRepo) TouchLastMessage(_ context.Context, id string, preview string, at time.Time) error {
	return r.mutate(id, func(s *chatEntity.ChatSession) {
		s.LastMessage = preview
		s.LastMessageAt = sql.NullTime{Time: at, Valid: true}
	})
}

func (r *memorySessionRepo) ResetUnread(_ context.Context, id string) error {
	return r.mutate(id, func(s *chatEntity.ChatSession) { s.UnreadCount = 0 })
}

func (r *memorySessionRepo) UpdateRestricted(_ context.Context, id string, restricted bool) error {
	return r.mutate(id, func(s *chatEntity.ChatSession) { s.Restricted = restricted })
}

func (r *memorySessionRepo) DeleteWithMessages(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.messages, id)
	delete(r.sessions, id)
	return nil
}

type memoryMessageRepo MemoryStore

func (r *memoryMessageRepo) Create(_ context.Context, message *chatEntity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[message.SessionId] = append(r.messages[message.SessionId], *message)
	return nil
}

// ordered 调用方需持有读锁
func (r *memoryMessageRepo) ordered(sessionID string) []chatEntity.ChatMessage {
	src := r.messages[sessionID]
	out := make([]chatEntity.ChatMessage, len(src))
	copy(out, src)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *memoryMessageRepo) ListRecentForModel(_ context.Context, sessionID string, limit int) ([]chatEntity.ChatMessage, error) {
	if limit <= 0 {
		limit = 10
	}
	r.mu.RLock()
	all := r.ordered(sessionID)
	r.mu.RUnlock()

	out := make([]chatEntity.ChatMessage, 0, limit)
	for _, m := range all {
		if m.Role != chatEntity.RoleSystem {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *memoryMessageRepo) ListBySession(_ context.Context, sessionID string) ([]chatEntity.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ordered(sessionID), nil
}

func (r *memoryMessageRepo) ListSince(_ context.Context, sessionID string, after time.Time, limit int) ([]chatEntity.ChatMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	r.mu.RLock()
	all := r.ordered(sessionID)
	r.mu.RUnlock()

	out := make([]chatEntity.ChatMessage, 0)
	for _, m := range all {
		if m.CreatedAt.After(after) {
			out = append(out, m)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *memoryMessageRepo) DeleteBySession(_ context.Context, sessionID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.messages[sessionID]))
	delete(r.messages, sessionID)
	return n, nil
}
