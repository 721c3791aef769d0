package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"ChatDesk/internal/modules/ai/application/service"
	"ChatDesk/internal/modules/ai/domain/rag"
	"ChatDesk/internal/modules/ai/infrastructure/mq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	msgs []mq.Message
	err  error
}

func (p *capturePublisher) Publish(_ context.Context, msg mq.Message) (mq.PublishResult, error) {
	if p.err != nil {
		return mq.PublishResult{}, p.err
	}
	p.msgs = append(p.msgs, msg)
	return mq.PublishResult{Partition: 0, Offset: int64(len(p.msgs))}, nil
}

func (p *capturePublisher) Close() error { return nil }

func TestAsyncIngestService_PublishesEventKeyedByTenant(t *testing.T) {
	pub := &capturePublisher{}
	svc := service.NewAsyncIngestService(pub, "chatdesk.knowledge.ingest")

	id, err := svc.EnqueueKnowledge(context.Background(), "T1", "Returns are accepted for 30 days.", "returns.md")
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Len(t, pub.msgs, 1)

	msg := pub.msgs[0]
	assert.Equal(t, "chatdesk.knowledge.ingest", msg.Topic)
	assert.Equal(t, []byte("T1"), msg.Key)
	assert.Equal(t, rag.EventTypeKnowledgeIngest, msg.Headers["event_type"])

	var ev rag.IngestEvent
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, id, ev.EventId)
	assert.Equal(t, "T1", ev.TenantId)
	assert.Equal(t, "returns.md", ev.Source)
}

func TestAsyncIngestService_DisabledWithoutPublisher(t *testing.T) {
	svc := service.NewAsyncIngestService(nil, "topic")

	_, err := svc.EnqueueKnowledge(context.Background(), "T1", "content", "")
	assert.ErrorIs(t, err, service.ErrAsyncIngestDisabled)
}

func TestAsyncIngestService_PublishErrorSurfaces(t *testing.T) {
	pub := &capturePublisher{err: errors.New("broker down")}
	svc := service.NewAsyncIngestService(pub, "topic")

	_, err := svc.EnqueueKnowledge(context.Background(), "T1", "content", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}
