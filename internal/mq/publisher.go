package mq

import (
	"context"
	"fmt"
	"time"

	"cronos-client-sol/internal/config"
	"cronos-client-sol/internal/pkg/logger"
	pkgmq "cronos-client-sol/internal/pkg/mq"
	"cronos-client-sol/internal/pkg/types"
	"cronos-client-sol/internal/pkg/utils"
	eventutils "cronos-client-sol/internal/utils"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"
)

// ExecutionEvent 一次任务执行的对外事件
type ExecutionEvent struct {
	ID        string
	Task      types.Pubkey
	Daemon    types.Pubkey
	ExecAt    int64
	Worker    string
	Signature string
	Status    string
	Error     string
	Timestamp int64
}

func NewExecutionEvent(task, daemon types.Pubkey, execAt int64) *ExecutionEvent {
	return &ExecutionEvent{
		ID:        uuid.NewString(),
		Task:      task,
		Daemon:    daemon,
		ExecAt:    execAt,
		Timestamp: time.Now().Unix(),
	}
}

// ToProto 转为 structpb.Struct（下游无需共享 .proto 定义）
func (e *ExecutionEvent) ToProto() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"id":        e.ID,
		"task":      e.Task.String(),
		"daemon":    e.Daemon.String(),
		"exec_at":   e.ExecAt,
		"worker":    e.Worker,
		"signature": e.Signature,
		"status":    e.Status,
		"error":     e.Error,
		"timestamp": e.Timestamp,
	})
}

// Publisher 执行事件发布
type Publisher interface {
	PublishExecutions(ctx context.Context, events []*ExecutionEvent) error
	Close()
}

// NopPublisher 未配置 Kafka 时使用
type NopPublisher struct{}

func (NopPublisher) PublishExecutions(context.Context, []*ExecutionEvent) error { return nil }
func (NopPublisher) Close()                                                      {}

// KafkaPublisher 按 task 地址分区，保证同一任务的事件有序
type KafkaPublisher struct {
	producer   pkgmq.Producer
	closer     func()
	topic      string
	partitions uint32
	timeout    time.Duration
}

func NewKafkaPublisher(cfg config.KafkaProducerConfig) (*KafkaPublisher, error) {
	producer, err := pkgmq.NewKafkaProducer(pkgmq.KafkaProducerOption{
		Brokers:   cfg.Brokers,
		BatchSize: cfg.BatchSize,
		LingerMs:  cfg.LingerMs,
		ClientID:  "cronos-worker",
		Topics: []pkgmq.TopicOption{
			{Topic: cfg.Topics.Execution, Partitions: cfg.Partitions.Execution},
		},
	})
	if err != nil {
		return nil, err
	}
	p := newKafkaPublisher(producer, cfg.Topics.Execution, cfg.Partitions.Execution)
	p.closer = func() {
		producer.Flush(5000)
		producer.Close()
	}
	return p, nil
}

func newKafkaPublisher(producer pkgmq.Producer, topic string, partitions int) *KafkaPublisher {
	if partitions <= 0 {
		partitions = 1
	}
	return &KafkaPublisher{
		producer:   producer,
		topic:      topic,
		partitions: uint32(partitions),
		timeout:    5 * time.Second,
	}
}

func (p *KafkaPublisher) buildJob(ev *ExecutionEvent) (*pkgmq.KafkaJob, error) {
	msg, err := ev.ToProto()
	if err != nil {
		return nil, fmt.Errorf("build execution event: %w", err)
	}
	value, err := eventutils.EncodeEvent(eventutils.EventTypeTaskExecuted, msg)
	if err != nil {
		return nil, err
	}
	return &pkgmq.KafkaJob{
		Topic:     p.topic,
		Partition: int32(utils.PartitionHashBytes(ev.Task[:], p.partitions)),
		Key:       []byte(ev.Task.String()),
		Value:     value,
	}, nil
}

func (p *KafkaPublisher) PublishExecutions(ctx context.Context, events []*ExecutionEvent) error {
	if len(events) == 0 {
		return nil
	}
	jobs := make([]*pkgmq.KafkaJob, 0, len(events))
	for _, ev := range events {
		job, err := p.buildJob(ev)
		if err != nil {
			return err
		}
		jobs = append(jobs, job)
	}

	_, failed := pkgmq.SendKafkaJobs(ctx, p.producer, jobs, p.timeout)
	if len(failed) > 0 {
		for _, f := range failed {
			logger.Warnf("[KafkaPublisher] send to %s/%d failed: %v", f.Job.Topic, f.Job.Partition, f.Err)
		}
		return fmt.Errorf("%d/%d execution events failed: %w", len(failed), len(jobs), failed[0].Err)
	}
	return nil
}

func (p *KafkaPublisher) Close() {
	if p.closer != nil {
		p.closer()
	}
}
