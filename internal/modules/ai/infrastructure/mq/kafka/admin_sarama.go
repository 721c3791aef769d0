package kafka

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"ChatDesk/internal/config"

	"github.com/IBM/sarama"
)

const topicRetention = 7 * 24 * time.Hour

// EnsureIngestTopic 不存在时创建入库 topic
func EnsureIngestTopic(conf config.KafkaConfig) error {
	if len(conf.Brokers) == 0 {
		return errors.New("kafka brokers is empty")
	}
	topic := strings.TrimSpace(conf.IngestTopic)
	if topic == "" {
		return errors.New("kafka topic is empty")
	}
	partitions := conf.Partitions
	if partitions <= 0 {
		partitions = 1
	}
	replication := conf.Replication
	if replication <= 0 {
		replication = 1
	}

	admin, err := sarama.NewClusterAdmin(conf.Brokers, newSaramaConfig(conf.ClientID))
	if err != nil {
		return err
	}
	defer admin.Close()

	topics, err := admin.ListTopics()
	if err != nil {
		return err
	}
	if _, ok := topics[topic]; ok {
		return nil
	}

	retention := strconv.FormatInt(topicRetention.Milliseconds(), 10)
	err = admin.CreateTopic(topic, &sarama.TopicDetail{
		NumPartitions:     partitions,
		ReplicationFactor: replication,
		ConfigEntries:     map[string]*string{"retention.ms": &retention},
	}, false)
	if err != nil && !errors.Is(err, sarama.ErrTopicAlreadyExists) {
		return err
	}
	return nil
}
