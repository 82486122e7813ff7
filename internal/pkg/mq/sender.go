package mq

import (
	"context"
	"fmt"
	"time"

	"cronos-client-sol/internal/pkg/logger"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// Producer 发送端最小接口，*kafka.Producer 满足
type Producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
}

// KafkaJob 一条待发送的消息
type KafkaJob struct {
	Topic     string
	Partition int32
	Key       []byte
	Value     []byte
}

// KafkaSendResult 发送失败的消息及原因
type KafkaSendResult struct {
	Job *KafkaJob
	Err error
}

// SendKafkaJobs 把一批消息全部交给 producer，再在 timeout 内收齐回执。
// 所有消息共用一个回执通道，用 Opaque 记录下标；超时或 ctx 取消后未回执的消息计入 failed。
func SendKafkaJobs(
	ctx context.Context,
	producer Producer,
	jobs []*KafkaJob,
	timeout time.Duration,
) (ok []*KafkaJob, failed []KafkaSendResult) {
	if len(jobs) == 0 {
		return nil, nil
	}
	// 容量等于消息数，librdkafka 回调永远不会阻塞
	reports := make(chan kafka.Event, len(jobs))
	pending := make(map[int]*KafkaJob, len(jobs))

	for i, job := range jobs {
		err := producer.Produce(&kafka.Message{
			TopicPartition: kafka.TopicPartition{Topic: &job.Topic, Partition: job.Partition},
			Key:            job.Key,
			Value:          job.Value,
			Opaque:         i,
		}, reports)
		if err != nil {
			failed = append(failed, KafkaSendResult{Job: job, Err: fmt.Errorf("produce error: %w", err)})
			continue
		}
		pending[i] = job
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for len(pending) > 0 {
		select {
		case e := <-reports:
			msg, isMsg := e.(*kafka.Message)
			if !isMsg {
				logger.Warnf("[mq] unexpected delivery event: %v", e)
				continue
			}
			idx, _ := msg.Opaque.(int)
			job, found := pending[idx]
			if !found {
				continue
			}
			delete(pending, idx)
			if msg.TopicPartition.Error != nil {
				failed = append(failed, KafkaSendResult{Job: job, Err: msg.TopicPartition.Error})
			} else {
				ok = append(ok, job)
			}
		case <-timer.C:
			return ok, appendPending(failed, pending, fmt.Errorf("delivery timeout (>%v)", timeout))
		case <-ctx.Done():
			return ok, appendPending(failed, pending, fmt.Errorf("ctx cancelled: %w", ctx.Err()))
		}
	}
	return ok, failed
}

func appendPending(failed []KafkaSendResult, pending map[int]*KafkaJob, err error) []KafkaSendResult {
	for _, job := range pending {
		failed = append(failed, KafkaSendResult{Job: job, Err: err})
	}
	return failed
}
