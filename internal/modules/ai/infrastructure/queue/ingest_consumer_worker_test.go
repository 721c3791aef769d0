package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"ChatDesk/internal/modules/ai/domain/rag"
	"ChatDesk/internal/modules/ai/infrastructure/mq"
	"ChatDesk/internal/modules/ai/infrastructure/queue"
	"ChatDesk/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	calls []rag.IngestEvent
	err   error
}

func (w *recordingWriter) AddKnowledge(_ context.Context, tenantID, content, source string) (*rag.KnowledgeChunk, error) {
	w.calls = append(w.calls, rag.IngestEvent{TenantId: tenantID, Content: content, Source: source})
	if w.err != nil {
		return nil, w.err
	}
	return &rag.KnowledgeChunk{Id: "K1", TenantId: tenantID}, nil
}

func encode(t *testing.T, ev rag.IngestEvent) mq.Message {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return mq.Message{Topic: "ingest", Value: b}
}

func TestIngestConsumerWorker_HandleWritesKnowledge(t *testing.T) {
	w := &recordingWriter{}
	worker := queue.NewIngestConsumerWorker(nil, w)

	err := worker.Handle(context.Background(), encode(t, rag.IngestEvent{
		EventType: rag.EventTypeKnowledgeIngest, TenantId: "T1", Source: "faq", Content: "We ship worldwide.",
	}))

	require.NoError(t, err)
	require.Len(t, w.calls, 1)
	assert.Equal(t, "T1", w.calls[0].TenantId)
	assert.Equal(t, "faq", w.calls[0].Source)
}

func TestIngestConsumerWorker_SkipsPoisonMessages(t *testing.T) {
	w := &recordingWriter{}
	worker := queue.NewIngestConsumerWorker(nil, w)

	assert.NoError(t, worker.Handle(context.Background(), mq.Message{Value: []byte("not json")}))
	assert.NoError(t, worker.Handle(context.Background(), encode(t, rag.IngestEvent{Content: "no tenant"})))
	assert.Empty(t, w.calls)

	w.err = xerr.ErrEmptyContent
	assert.NoError(t, worker.Handle(context.Background(), encode(t, rag.IngestEvent{TenantId: "T1"})))
}

func TestIngestConsumerWorker_TransientErrorIsReturned(t *testing.T) {
	w := &recordingWriter{err: errors.New("milvus unavailable")}
	worker := queue.NewIngestConsumerWorker(nil, w)

	err := worker.Handle(context.Background(), encode(t, rag.IngestEvent{TenantId: "T1", Content: "x"}))

	assert.Error(t, err)
}

func TestIngestConsumerWorker_RunRequiresConsumer(t *testing.T) {
	worker := queue.NewIngestConsumerWorker(nil, &recordingWriter{})

	assert.Error(t, worker.Run(context.Background()))
}
