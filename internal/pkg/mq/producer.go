package mq

import (
	"context"
	"fmt"
	"time"

	"cronos-client-sol/internal/pkg/logger"
	"cronos-client-sol/internal/pkg/utils"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

const (
	defaultBatchSize = 32 * 1024
	defaultLingerMs  = 5
	defaultClientID  = "cronos-worker"

	adminTimeout = 10 * time.Second
)

type KafkaProducerOption struct {
	Brokers   string // broker 地址，逗号分隔
	BatchSize int    // 批处理字节数
	LingerMs  int    // 批处理最大延迟（毫秒），小于 0 时取默认值
	ClientID  string // client.id 前缀

	Topics []TopicOption
}

type TopicOption struct {
	Topic      string
	Partitions int
}

// topicAdmin *kafka.AdminClient 中建 topic 用到的部分
type topicAdmin interface {
	GetMetadata(topic *string, allTopics bool, timeoutMs int) (*kafka.Metadata, error)
	CreateTopics(ctx context.Context, topics []kafka.TopicSpecification, options ...kafka.CreateTopicsAdminOption) ([]kafka.TopicResult, error)
}

// NewKafkaProducer 先补齐缺失的 topic，再创建幂等生产者
func NewKafkaProducer(cfg KafkaProducerOption) (*kafka.Producer, error) {
	admin, err := kafka.NewAdminClient(&kafka.ConfigMap{"bootstrap.servers": cfg.Brokers})
	if err != nil {
		return nil, fmt.Errorf("failed to create admin client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	created, err := ensureTopics(ctx, admin, cfg.Topics)
	cancel()
	admin.Close()
	if err != nil {
		return nil, err
	}
	for _, t := range created {
		logger.Infof("[mq] created topic %s", t)
	}

	localIP, _ := utils.GetLocalIP()
	producer, err := kafka.NewProducer(producerConfig(cfg, localIP))
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}
	return producer, nil
}

// ensureTopics 返回本次新建的 topic；多个 worker 同时启动时已存在不算错误
func ensureTopics(ctx context.Context, admin topicAdmin, topics []TopicOption) ([]string, error) {
	if len(topics) == 0 {
		return nil, nil
	}
	meta, err := admin.GetMetadata(nil, true, int(adminTimeout/time.Millisecond))
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}
	rf := replicationFor(len(meta.Brokers))

	var specs []kafka.TopicSpecification
	for _, t := range topics {
		if _, ok := meta.Topics[t.Topic]; ok {
			continue
		}
		partitions := t.Partitions
		if partitions <= 0 {
			partitions = 1
		}
		specs = append(specs, kafka.TopicSpecification{
			Topic:             t.Topic,
			NumPartitions:     partitions,
			ReplicationFactor: rf,
		})
	}
	if len(specs) == 0 {
		return nil, nil
	}
	logger.Infof("[mq] brokers=%d, creating %d topic(s) with replication factor %d", len(meta.Brokers), len(specs), rf)

	results, err := admin.CreateTopics(ctx, specs)
	if err != nil {
		return nil, fmt.Errorf("failed to create topics: %w", err)
	}
	var created []string
	for _, r := range results {
		switch r.Error.Code() {
		case kafka.ErrNoError:
			created = append(created, r.Topic)
		case kafka.ErrTopicAlreadyExists:
		default:
			return created, fmt.Errorf("failed to create topic %s: %w", r.Topic, r.Error)
		}
	}
	return created, nil
}

// replicationFor 单 broker 只能 1 副本，其余取 2
func replicationFor(brokers int) int {
	if brokers > 1 {
		return 2
	}
	return 1
}

func producerConfig(cfg KafkaProducerOption, localIP string) *kafka.ConfigMap {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	lingerMs := cfg.LingerMs
	if lingerMs < 0 {
		lingerMs = defaultLingerMs
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = defaultClientID
	}
	if localIP == "" {
		localIP = "unknown"
	}

	return &kafka.ConfigMap{
		"bootstrap.servers": cfg.Brokers,
		"client.id":         clientID + "-" + localIP,

		// 执行事件按 task 分区，幂等保证重试不乱序
		"acks":                                  "all",
		"enable.idempotence":                    true,
		"max.in.flight.requests.per.connection": 5,

		"delivery.timeout.ms": 30000,
		"request.timeout.ms":  30000,
		"retries":             5,
		"retry.backoff.ms":    100,

		"batch.size":       batchSize,
		"linger.ms":        lingerMs,
		"compression.type": "none",

		"message.max.bytes": 1024 * 1024, // 单条事件远小于 1MB
	}
}
