package persistence_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	chatEntity "ChatDesk/internal/modules/chat/domain/entity"
	"ChatDesk/internal/modules/chat/infrastructure/persistence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestMemoryStore_ListRecentForModelSkipsSystemAndKeepsOrder(t *testing.T) {
	store := persistence.NewMemoryStore()
	msgs := store.Messages()
	ctx := context.Background()

	for i := 0; i < 14; i++ {
		role := chatEntity.RoleUser
		if i%2 == 1 {
			role = chatEntity.RoleAssistant
		}
		if i == 12 {
			role = chatEntity.RoleSystem
		}
		require.NoError(t, msgs.Create(ctx, &chatEntity.ChatMessage{
			Id:        fmt.Sprintf("M%02d", i),
			SessionId: "S1",
			Role:      role,
			Content:   fmt.Sprintf("m%d", i),
			CreatedAt: testNow.Add(time.Duration(i) * time.Second),
		}))
	}

	got, err := msgs.ListRecentForModel(ctx, "S1", 10)
	require.NoError(t, err)
	require.Len(t, got, 10)
	assert.Equal(t, "m3", got[0].Content)
	assert.Equal(t, "m13", got[9].Content)
	for _, m := range got {
		assert.NotEqual(t, chatEntity.RoleSystem, m.Role)
	}
}

func TestMemoryStore_LatestSessionAndDelete(t *testing.T) {
	store := persistence.NewMemoryStore()
	ctx := context.Background()
	sessions := store.Sessions()

	require.NoError(t, sessions.Create(ctx, &chatEntity.ChatSession{Id: "S1", TenantId: "T1", EndUserId: "U1", CreatedAt: testNow}))
	require.NoError(t, sessions.Create(ctx, &chatEntity.ChatSession{Id: "S2", TenantId: "T1", EndUserId: "U1", CreatedAt: testNow.Add(time.Minute)}))
	require.NoError(t, store.Messages().Create(ctx, &chatEntity.ChatMessage{Id: "M1", SessionId: "S2", CreatedAt: testNow}))

	latest, err := sessions.GetLatestByEndUser(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "S2", latest.Id)

	require.NoError(t, sessions.DeleteWithMessages(ctx, "S2"))
	left, err := store.Messages().ListBySession(ctx, "S2")
	require.NoError(t, err)
	assert.Empty(t, left)

	latest, err = sessions.GetLatestByEndUser(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "S1", latest.Id)
}

func TestMemoryStore_RecordInboundOverwritesMood(t *testing.T) {
	store := persistence.NewMemoryStore()
	ctx := context.Background()
	sessions := store.Sessions()
	require.NoError(t, sessions.Create(ctx, &chatEntity.ChatSession{Id: "S1", CreatedAt: testNow}))

	require.NoError(t, sessions.RecordInbound(ctx, "S1", "happy", "hi", testNow))
	require.NoError(t, sessions.RecordInbound(ctx, "S1", "furious", "argh", testNow.Add(time.Second)))

	got, err := sessions.GetByID(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "furious", got.CurrentMood.String)
	assert.Equal(t, 2, got.UnreadCount)
	assert.Equal(t, "argh", got.LastMessage)

	require.NoError(t, sessions.ResetUnread(ctx, "S1"))
	got, _ = sessions.GetByID(ctx, "S1")
	assert.Equal(t, 0, got.UnreadCount)
}
