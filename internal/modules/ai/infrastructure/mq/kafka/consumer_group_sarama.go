package kafka

import (
	"context"
	"errors"
	"strings"
	"time"

	"ChatDesk/internal/config"
	"ChatDesk/internal/modules/ai/infrastructure/mq"
	"ChatDesk/pkg/zlog"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

const (
	defaultHandleAttempts = 3
	retryBackoff          = 2 * time.Second
)

type saramaConsumer struct {
	cg       sarama.ConsumerGroup
	topics   []string
	attempts int
}

func NewConsumer(conf config.KafkaConfig) (mq.Consumer, error) {
	if len(conf.Brokers) == 0 {
		return nil, errors.New("kafka brokers is empty")
	}
	groupID := strings.TrimSpace(conf.ConsumerGroupID)
	if groupID == "" {
		return nil, errors.New("kafka consumer group id is empty")
	}
	topic := strings.TrimSpace(conf.IngestTopic)
	if topic == "" {
		return nil, errors.New("kafka ingest topic is empty")
	}

	sc := newSaramaConfig(conf.ClientID)
	sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	sc.Consumer.Group.Rebalance.Timeout = 30 * time.Second
	sc.Consumer.Group.Session.Timeout = 30 * time.Second

	cg, err := sarama.NewConsumerGroup(conf.Brokers, groupID, sc)
	if err != nil {
		return nil, err
	}
	return &saramaConsumer{cg: cg, topics: []string{topic}, attempts: defaultHandleAttempts}, nil
}

// Run 阻塞直到 ctx 取消；Consume 出错时退避后重新加入消费组
func (c *saramaConsumer) Run(ctx context.Context, handler mq.Handler) error {
	if handler == nil {
		return errors.New("handler is nil")
	}
	h := &consumerGroupHandler{h: handler, attempts: c.attempts}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.cg.Consume(ctx, c.topics, h); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			zlog.Warn("kafka consume failed", zap.Strings("topics", c.topics), zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff):
			}
		}
	}
}

func (c *saramaConsumer) Close() error {
	if c == nil {
		return nil
	}
	return c.cg.Close()
}

type consumerGroupHandler struct {
	h        mq.Handler
	attempts int
}

func (consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim 处理失败时有限次重试，仍失败则记录并提交位点，避免分区被单条消息卡住
func (h *consumerGroupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for m := range claim.Messages() {
		msg := mq.Message{Topic: m.Topic, Key: m.Key, Value: m.Value}
		if len(m.Headers) > 0 {
			msg.Headers = make(map[string]string, len(m.Headers))
			for _, hdr := range m.Headers {
				if hdr == nil || len(hdr.Key) == 0 {
					continue
				}
				msg.Headers[string(hdr.Key)] = string(hdr.Value)
			}
		}

		var err error
		for attempt := 1; attempt <= h.attempts; attempt++ {
			if err = h.h.Handle(sess.Context(), msg); err == nil {
				break
			}
			if sess.Context().Err() != nil {
				return nil
			}
			time.Sleep(time.Duration(attempt) * 200 * time.Millisecond)
		}
		if err != nil {
			zlog.Error("kafka message dropped after retries",
				zap.String("topic", m.Topic),
				zap.Int32("partition", m.Partition),
				zap.Int64("offset", m.Offset),
				zap.Error(err),
			)
		}
		sess.MarkMessage(m, "")
	}
	return nil
}
