package queue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"ChatDesk/internal/modules/ai/domain/rag"
	"ChatDesk/internal/modules/ai/infrastructure/mq"
	"ChatDesk/pkg/metrics"
	"ChatDesk/pkg/xerr"
	"ChatDesk/pkg/zlog"

	"go.uber.org/zap"
)

// KnowledgeWriter 由 KnowledgeService 实现
type KnowledgeWriter interface {
	AddKnowledge(ctx context.Context, tenantID, content, source string) (*rag.KnowledgeChunk, error)
}

type IngestConsumerWorker struct {
	consumer mq.Consumer
	writer   KnowledgeWriter
}

func NewIngestConsumerWorker(consumer mq.Consumer, writer KnowledgeWriter) *IngestConsumerWorker {
	return &IngestConsumerWorker{consumer: consumer, writer: writer}
}

func (w *IngestConsumerWorker) Run(ctx context.Context) error {
	if w == nil || w.consumer == nil {
		return errors.New("consumer is nil")
	}
	if w.writer == nil {
		return errors.New("knowledge writer is nil")
	}
	return w.consumer.Run(ctx, w)
}

// Handle 格式错误或内容为空的消息直接跳过；其余错误交给消费者重试
func (w *IngestConsumerWorker) Handle(ctx context.Context, msg mq.Message) error {
	var ev rag.IngestEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		metrics.IngestEvents.WithLabelValues("invalid").Inc()
		zlog.Warn("ingest consumer invalid payload", zap.String("topic", msg.Topic), zap.Error(err))
		return nil
	}
	if ev.EventType != "" && ev.EventType != rag.EventTypeKnowledgeIngest {
		metrics.IngestEvents.WithLabelValues("skipped").Inc()
		return nil
	}
	if strings.TrimSpace(ev.TenantId) == "" {
		metrics.IngestEvents.WithLabelValues("invalid").Inc()
		zlog.Warn("ingest consumer event missing tenant", zap.String("event_id", ev.EventId))
		return nil
	}

	chunk, err := w.writer.AddKnowledge(ctx, ev.TenantId, ev.Content, ev.Source)
	if err != nil {
		var ce *xerr.CodeError
		if errors.As(err, &ce) && ce.Code == xerr.BadRequest {
			metrics.IngestEvents.WithLabelValues("invalid").Inc()
			zlog.Warn("ingest consumer rejected event", zap.String("event_id", ev.EventId), zap.String("reason", ce.Message))
			return nil
		}
		metrics.IngestEvents.WithLabelValues("failed").Inc()
		zlog.Warn("ingest consumer event failed",
			zap.String("event_id", ev.EventId),
			zap.String("tenant_id", ev.TenantId),
			zap.String("error", scrubErrMsg(err.Error())),
		)
		return err
	}

	metrics.IngestEvents.WithLabelValues("succeeded").Inc()
	zlog.Info("ingest consumer event done",
		zap.String("event_id", ev.EventId),
		zap.String("tenant_id", ev.TenantId),
		zap.String("first_chunk_id", chunk.Id),
	)
	return nil
}

// scrubErrMsg 避免把密钥写进日志
func scrubErrMsg(s string) string {
	s = strings.TrimSpace(s)
	low := strings.ToLower(s)
	if strings.Contains(low, "api_key") || strings.Contains(low, "apikey") || strings.Contains(low, "secret") || strings.Contains(s, "sk-") {
		return "redacted"
	}
	if len(s) > 255 {
		return s[:255]
	}
	return s
}
