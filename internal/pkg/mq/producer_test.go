package mq

import (
	"context"
	"errors"
	"testing"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdmin struct {
	meta    *kafka.Metadata
	metaErr error
	results []kafka.TopicResult
	created []kafka.TopicSpecification
}

func (s *stubAdmin) GetMetadata(*string, bool, int) (*kafka.Metadata, error) {
	return s.meta, s.metaErr
}

func (s *stubAdmin) CreateTopics(_ context.Context, topics []kafka.TopicSpecification, _ ...kafka.CreateTopicsAdminOption) ([]kafka.TopicResult, error) {
	s.created = append(s.created, topics...)
	if s.results != nil {
		return s.results, nil
	}
	out := make([]kafka.TopicResult, 0, len(topics))
	for _, t := range topics {
		out = append(out, kafka.TopicResult{Topic: t.Topic, Error: kafka.NewError(kafka.ErrNoError, "", false)})
	}
	return out, nil
}

func TestEnsureTopics_CreatesMissing(t *testing.T) {
	admin := &stubAdmin{meta: &kafka.Metadata{
		Brokers: []kafka.BrokerMetadata{{ID: 1}, {ID: 2}, {ID: 3}},
		Topics:  map[string]kafka.TopicMetadata{"existing": {Topic: "existing"}},
	}}
	created, err := ensureTopics(context.Background(), admin, []TopicOption{
		{Topic: "existing", Partitions: 4},
		{Topic: "cronos_task_execution", Partitions: 4},
		{Topic: "zero", Partitions: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"cronos_task_execution", "zero"}, created)

	require.Len(t, admin.created, 2)
	assert.Equal(t, 4, admin.created[0].NumPartitions)
	assert.Equal(t, 2, admin.created[0].ReplicationFactor)
	assert.Equal(t, 1, admin.created[1].NumPartitions)
}

func TestEnsureTopics_AlreadyExistsIsNotAnError(t *testing.T) {
	admin := &stubAdmin{
		meta: &kafka.Metadata{Brokers: []kafka.BrokerMetadata{{ID: 1}}, Topics: map[string]kafka.TopicMetadata{}},
		results: []kafka.TopicResult{
			{Topic: "t", Error: kafka.NewError(kafka.ErrTopicAlreadyExists, "exists", false)},
		},
	}
	created, err := ensureTopics(context.Background(), admin, []TopicOption{{Topic: "t", Partitions: 1}})
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Equal(t, 1, admin.created[0].ReplicationFactor)
}

func TestEnsureTopics_Errors(t *testing.T) {
	_, err := ensureTopics(context.Background(), &stubAdmin{metaErr: errors.New("no brokers")}, []TopicOption{{Topic: "t"}})
	assert.ErrorContains(t, err, "metadata")

	admin := &stubAdmin{
		meta: &kafka.Metadata{Topics: map[string]kafka.TopicMetadata{}},
		results: []kafka.TopicResult{
			{Topic: "t", Error: kafka.NewError(kafka.ErrTopicAuthorizationFailed, "denied", false)},
		},
	}
	_, err = ensureTopics(context.Background(), admin, []TopicOption{{Topic: "t", Partitions: 1}})
	assert.ErrorContains(t, err, "failed to create topic t")

	// 无需建 topic 时不访问 broker
	created, err := ensureTopics(context.Background(), &stubAdmin{metaErr: errors.New("unreachable")}, nil)
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestProducerConfig(t *testing.T) {
	cm := producerConfig(KafkaProducerOption{Brokers: "k1:9092", LingerMs: -1}, "")
	v, err := cm.Get("client.id", nil)
	require.NoError(t, err)
	assert.Equal(t, "cronos-worker-unknown", v)
	v, _ = cm.Get("batch.size", nil)
	assert.Equal(t, defaultBatchSize, v)
	v, _ = cm.Get("linger.ms", nil)
	assert.Equal(t, defaultLingerMs, v)
	v, _ = cm.Get("enable.idempotence", nil)
	assert.Equal(t, true, v)

	cm = producerConfig(KafkaProducerOption{Brokers: "k1:9092", ClientID: "ops", BatchSize: 100, LingerMs: 0}, "10.0.0.1")
	v, _ = cm.Get("client.id", nil)
	assert.Equal(t, "ops-10.0.0.1", v)
	v, _ = cm.Get("linger.ms", nil)
	assert.Equal(t, 0, v)
}
