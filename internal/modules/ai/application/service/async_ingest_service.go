package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"ChatDesk/internal/modules/ai/domain/rag"
	"ChatDesk/internal/modules/ai/infrastructure/mq"
	"ChatDesk/pkg/metrics"
	"ChatDesk/pkg/util"
	"ChatDesk/pkg/xerr"
	"ChatDesk/pkg/zlog"

	"go.uber.org/zap"
)

var ErrAsyncIngestDisabled = xerr.New(xerr.BadRequest, "async ingest is not configured")

// AsyncIngestService 把大文档投递到 Kafka，由 worker 调用 AddKnowledge 入库
type AsyncIngestService interface {
	EnqueueKnowledge(ctx context.Context, tenantID, content, source string) (string, error)
}

type asyncIngestService struct {
	publisher mq.Publisher
	topic     string
}

// NewAsyncIngestService publisher 为 nil 时每次投递都返回 ErrAsyncIngestDisabled
func NewAsyncIngestService(publisher mq.Publisher, topic string) AsyncIngestService {
	return &asyncIngestService{publisher: publisher, topic: strings.TrimSpace(topic)}
}

func (s *asyncIngestService) EnqueueKnowledge(ctx context.Context, tenantID, content, source string) (string, error) {
	if s.publisher == nil || s.topic == "" {
		return "", ErrAsyncIngestDisabled
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return "", xerr.New(xerr.BadRequest, "missing tenant_id")
	}
	if strings.TrimSpace(content) == "" {
		return "", xerr.ErrEmptyContent
	}

	ev := rag.IngestEvent{
		EventId:   util.GenerateID("E"),
		EventType: rag.EventTypeKnowledgeIngest,
		TenantId:  tenantID,
		Source:    strings.TrimSpace(source),
		Content:   content,
		CreatedAt: time.Now(),
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return "", xerr.ErrServerError
	}
	res, err := s.publisher.Publish(ctx, mq.Message{
		Topic:   s.topic,
		Key:     []byte(tenantID),
		Value:   b,
		Headers: map[string]string{"event_type": ev.EventType},
	})
	if err != nil {
		metrics.IngestEvents.WithLabelValues("publish_failed").Inc()
		zlog.Error("publish ingest event failed", zap.String("tenant_id", tenantID), zap.Error(err))
		return "", err
	}
	metrics.IngestEvents.WithLabelValues("published").Inc()
	zlog.Info("ingest event published",
		zap.String("event_id", ev.EventId),
		zap.String("tenant_id", tenantID),
		zap.Int32("partition", res.Partition),
		zap.Int64("offset", res.Offset),
	)
	return ev.EventId, nil
}
