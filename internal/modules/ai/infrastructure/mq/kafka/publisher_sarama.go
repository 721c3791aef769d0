package kafka

import (
	"context"
	"errors"
	"strings"
	"time"

	"ChatDesk/internal/config"
	"ChatDesk/internal/modules/ai/infrastructure/mq"

	"github.com/IBM/sarama"
)

type saramaPublisher struct {
	p sarama.SyncProducer
}

// NewPublisher 幂等同步生产者，按 key 哈希分区，保证同一租户的入库事件有序
func NewPublisher(conf config.KafkaConfig) (mq.Publisher, error) {
	if len(conf.Brokers) == 0 {
		return nil, errors.New("kafka brokers is empty")
	}

	sc := newSaramaConfig(conf.ClientID)
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 10
	sc.Producer.Retry.Backoff = 100 * time.Millisecond
	sc.Producer.Idempotent = true
	sc.Net.MaxOpenRequests = 1
	sc.Producer.Partitioner = sarama.NewHashPartitioner

	p, err := sarama.NewSyncProducer(conf.Brokers, sc)
	if err != nil {
		return nil, err
	}
	return &saramaPublisher{p: p}, nil
}

func (s *saramaPublisher) Publish(ctx context.Context, msg mq.Message) (mq.PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return mq.PublishResult{}, err
	}
	if strings.TrimSpace(msg.Topic) == "" {
		return mq.PublishResult{}, errors.New("kafka topic is empty")
	}

	m := &sarama.ProducerMessage{
		Topic:   msg.Topic,
		Key:     sarama.ByteEncoder(msg.Key),
		Value:   sarama.ByteEncoder(msg.Value),
		Headers: toRecordHeaders(msg.Headers),
	}
	partition, offset, err := s.p.SendMessage(m)
	if err != nil {
		return mq.PublishResult{}, err
	}
	return mq.PublishResult{Partition: partition, Offset: offset}, nil
}

func (s *saramaPublisher) Close() error {
	if s == nil || s.p == nil {
		return nil
	}
	return s.p.Close()
}

func toRecordHeaders(headers map[string]string) []sarama.RecordHeader {
	if len(headers) == 0 {
		return nil
	}
	out := make([]sarama.RecordHeader, 0, len(headers))
	for k, v := range headers {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
		}
	}
	return out
}

func newSaramaConfig(clientID string) *sarama.Config {
	sc := sarama.NewConfig()
	sc.Version = sarama.V2_8_0_0
	sc.ClientID = strings.TrimSpace(clientID)
	if sc.ClientID == "" {
		sc.ClientID = "chatdesk"
	}
	return sc
}
