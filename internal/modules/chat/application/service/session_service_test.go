package service_test

import (
	"context"
	"testing"
	"time"

	chatRespond "ChatDesk/internal/modules/chat/application/dto/respond"
	chatService "ChatDesk/internal/modules/chat/application/service"
	chatEntity "ChatDesk/internal/modules/chat/domain/entity"
	"ChatDesk/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *routerFixture) status(t *testing.T, sessionID string) string {
	t.Helper()
	sess, err := f.store.Sessions().GetByID(context.Background(), sessionID)
	require.NoError(t, err)
	require.NotNil(t, sess)
	return sess.Status
}

func lastMessage(msgs []chatEntity.ChatMessage) chatEntity.ChatMessage {
	return msgs[len(msgs)-1]
}

func TestSessionService_TransitionsPostBanners(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()
	sid, _ := f.send(t, "v1", "hi")

	require.NoError(t, f.sessions.RequestAgent(ctx, f.tenantID, sid))
	assert.Equal(t, chatEntity.SessionStatusAgentRequested, f.status(t, sid))
	banner := lastMessage(f.messages(t, sid))
	assert.Equal(t, chatEntity.RoleSystem, banner.Role)
	assert.Equal(t, chatService.BannerAgentRequested, banner.Content)

	require.NoError(t, f.sessions.AcceptAgent(ctx, f.tenantID, sid, "Dana"))
	assert.Equal(t, chatEntity.SessionStatusAgentConnected, f.status(t, sid))
	assert.Equal(t, "Dana has joined the chat.", lastMessage(f.messages(t, sid)).Content)

	require.NoError(t, f.sessions.EndAgentChat(ctx, f.tenantID, sid))
	assert.Equal(t, chatEntity.SessionStatusActive, f.status(t, sid))
	assert.Equal(t, chatService.BannerAgentLeft, lastMessage(f.messages(t, sid)).Content)
}

func TestSessionService_RejectReturnsToAI(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()
	sid, _ := f.send(t, "v1", "hi")
	require.NoError(t, f.sessions.RequestAgent(ctx, f.tenantID, sid))

	require.NoError(t, f.sessions.RejectAgent(ctx, f.tenantID, sid))

	assert.Equal(t, chatEntity.SessionStatusActive, f.status(t, sid))
	assert.Equal(t, chatService.BannerAgentUnavailable, lastMessage(f.messages(t, sid)).Content)
	_, reply := f.send(t, "v1", "ok")
	require.NotNil(t, reply)
	assert.Equal(t, "We are open 9 to 5.", *reply)
}

func TestSessionService_AcceptWithoutNameAndFromActive(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()
	sid, _ := f.send(t, "v1", "hi")

	// 从 active 直接接入属于误用，但不做拦截
	require.NoError(t, f.sessions.AcceptAgent(ctx, f.tenantID, sid, " "))

	assert.Equal(t, chatEntity.SessionStatusAgentConnected, f.status(t, sid))
	assert.Equal(t, "An agent has joined the chat.", lastMessage(f.messages(t, sid)).Content)
}

func TestSessionService_MarkAsReadIsIdempotent(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()
	sid, _ := f.send(t, "v1", "one")
	f.send(t, "v1", "two")

	for i := 0; i < 2; i++ {
		require.NoError(t, f.sessions.MarkAsRead(ctx, f.tenantID, sid))
		sess, err := f.store.Sessions().GetByID(ctx, sid)
		require.NoError(t, err)
		assert.Equal(t, 0, sess.UnreadCount)
	}
}

func TestSessionService_ClearConversationIsIdempotent(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()
	sid, _ := f.send(t, "v1", "hi")

	require.NoError(t, f.sessions.ClearConversation(ctx, f.tenantID, sid))
	assert.Empty(t, f.messages(t, sid))
	require.NoError(t, f.sessions.ClearConversation(ctx, f.tenantID, sid))
	assert.Empty(t, f.messages(t, sid))
	assert.Equal(t, chatEntity.SessionStatusActive, f.status(t, sid))
}

func TestSessionService_DeleteSessionStartsFreshOne(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()
	sid, _ := f.send(t, "v1", "hi")

	require.NoError(t, f.sessions.DeleteSession(ctx, f.tenantID, sid))
	assert.Empty(t, f.messages(t, sid))
	assert.ErrorIs(t, f.sessions.MarkAsRead(ctx, f.tenantID, sid), xerr.ErrSessionNotFound)

	next, _ := f.send(t, "v1", "back again")
	assert.NotEqual(t, sid, next)
}

func TestSessionService_RejectsForeignTenant(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()
	sid, _ := f.send(t, "v1", "hi")

	assert.ErrorIs(t, f.sessions.AcceptAgent(ctx, "T-other", sid, "Eve"), xerr.ErrSessionNotFound)
	assert.ErrorIs(t, f.sessions.DeleteSession(ctx, "T-other", sid), xerr.ErrSessionNotFound)
	assert.Equal(t, chatEntity.SessionStatusActive, f.status(t, sid))
}

func TestSessionService_SendAgentMessage(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()
	sid, _ := f.send(t, "v1", "hi")
	require.NoError(t, f.sessions.AcceptAgent(ctx, f.tenantID, sid, "Dana"))

	item, err := f.sessions.SendAgentMessage(ctx, f.tenantID, sid, "Dana", "Hi, Dana here. How can I help?")
	require.NoError(t, err)
	assert.Equal(t, chatEntity.RoleAssistant, item.Role)
	assert.Equal(t, "Dana", item.AuthorName)

	last := lastMessage(f.messages(t, sid))
	assert.Equal(t, "Hi, Dana here. How can I help?", last.Content)

	_, err = f.sessions.SendAgentMessage(ctx, f.tenantID, sid, "Dana", "  ")
	assert.ErrorIs(t, err, xerr.ErrEmptyMessage)
}

func TestSessionService_RenameAndList(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()
	sid, _ := f.send(t, "v1", "hi")
	f.send(t, "v2", "hello")
	require.NoError(t, f.sessions.RenameEndUser(ctx, f.tenantID, sid, "Jordan"))
	require.NoError(t, f.sessions.RequestAgent(ctx, f.tenantID, sid))

	all, err := f.sessions.ListSessions(ctx, f.tenantID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	queued, err := f.sessions.ListSessions(ctx, f.tenantID, chatEntity.SessionStatusAgentRequested)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, "Jordan", queued[0].EndUserName)
	assert.Equal(t, chatEntity.ChannelWidget, queued[0].Channel)
	assert.NotNil(t, queued[0].LastMessageAt)
}

func TestSessionService_RequestAgentForSender(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()
	sid, _ := f.send(t, "v1", "hi")

	got, err := f.sessions.RequestAgentForSender(ctx, f.tenantID, "", "v1")
	require.NoError(t, err)
	assert.Equal(t, sid, got)
	assert.Equal(t, chatEntity.SessionStatusAgentRequested, f.status(t, sid))

	_, err = f.sessions.RequestAgentForSender(ctx, f.tenantID, "", "stranger")
	assert.ErrorIs(t, err, xerr.ErrEndUserNotFound)
}

func TestSessionService_StatusChangeNotifies(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()
	sid, _ := f.send(t, "v1", "hi")
	f.notifier.events = nil

	require.NoError(t, f.sessions.RequestAgent(ctx, f.tenantID, sid))

	require.Len(t, f.notifier.events, 2)
	ev, ok := f.notifier.events[0].(chatRespond.SessionEvent)
	require.True(t, ok)
	assert.Equal(t, chatRespond.EventStatusChanged, ev.Type)
	assert.Equal(t, chatEntity.SessionStatusAgentRequested, ev.Status)
}

func TestMessageService_SinceReturnsIncrement(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()
	svc := chatService.NewMessageService(f.store.Sessions(), f.store.Messages())
	sid, _ := f.send(t, "v1", "hi")

	all, err := svc.GetMessagesSince(ctx, f.tenantID, sid, time.Time{}, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)

	next, err := svc.GetMessagesSince(ctx, f.tenantID, sid, all[1].CreatedAt, 0)
	require.NoError(t, err)
	assert.Empty(t, next)

	_, err = svc.GetMessages(ctx, "T-other", sid)
	assert.ErrorIs(t, err, xerr.ErrSessionNotFound)
}
