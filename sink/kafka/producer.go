package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/franco-bianco/dexevents-go/sink"
)

const (
	defaultBatchSize  = 32 * 1024
	defaultLingerMs   = 5
	defaultPartitions = 6
	deliveryTimeout   = 30 * time.Second
)

type Options struct {
	Brokers    []string
	Topic      string
	Partitions int
	BatchSize  int
	LingerMs   int
}

// Producer publishes one JSON message per record, keyed by signature so the
// events of a transaction stay in one partition and keep their order.
type Producer struct {
	producer *kafka.Producer
	topic    string
}

var _ sink.Sink = (*Producer)(nil)

// NewProducer creates the topic when missing and returns an idempotent producer.
func NewProducer(ctx context.Context, opts Options) (*Producer, error) {
	if len(opts.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if opts.Topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	brokers := strings.Join(opts.Brokers, ",")

	if err := ensureTopic(ctx, brokers, opts); err != nil {
		return nil, err
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	lingerMs := opts.LingerMs
	if lingerMs <= 0 {
		lingerMs = defaultLingerMs
	}

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"client.id":         "dexevents",

		"acks":                                  "all",
		"enable.idempotence":                    true,
		"max.in.flight.requests.per.connection": 5,

		"delivery.timeout.ms": int(deliveryTimeout / time.Millisecond),
		"request.timeout.ms":  30000,
		"retries":             5,
		"retry.backoff.ms":    100,

		"batch.size":       batchSize,
		"linger.ms":        lingerMs,
		"compression.type": "lz4",

		"message.max.bytes": 2 * 1024 * 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}
	return &Producer{producer: producer, topic: opts.Topic}, nil
}

func ensureTopic(ctx context.Context, brokers string, opts Options) error {
	admin, err := kafka.NewAdminClient(&kafka.ConfigMap{"bootstrap.servers": brokers})
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer admin.Close()

	meta, err := admin.GetMetadata(nil, true, 10000)
	if err != nil {
		return fmt.Errorf("failed to get metadata: %w", err)
	}
	if _, ok := meta.Topics[opts.Topic]; ok {
		return nil
	}

	replication := 1
	if len(meta.Brokers) > 1 {
		replication = 2
	}
	partitions := opts.Partitions
	if partitions <= 0 {
		partitions = defaultPartitions
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	results, err := admin.CreateTopics(ctx, []kafka.TopicSpecification{{
		Topic:             opts.Topic,
		NumPartitions:     partitions,
		ReplicationFactor: replication,
	}})
	if err != nil {
		return fmt.Errorf("failed to create topics: %w", err)
	}
	for _, result := range results {
		code := result.Error.Code()
		if code != kafka.ErrNoError && code != kafka.ErrTopicAlreadyExists {
			return fmt.Errorf("failed to create topic %s: %w", result.Topic, result.Error)
		}
	}
	return nil
}

func message(topic string, rec sink.Record) (*kafka.Message, error) {
	value, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(rec.Signature),
		Value:          value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(rec.EventType)},
			{Key: "protocol", Value: []byte(rec.Protocol)},
		},
	}, nil
}

// Write produces every record and waits for all delivery reports.
func (p *Producer) Write(ctx context.Context, records []sink.Record) error {
	if len(records) == 0 {
		return nil
	}
	deliveries := make(chan kafka.Event, len(records))
	for _, rec := range records {
		msg, err := message(p.topic, rec)
		if err != nil {
			return err
		}
		if err := p.producer.Produce(msg, deliveries); err != nil {
			return fmt.Errorf("produce error: %w", err)
		}
	}

	timeout := time.NewTimer(deliveryTimeout)
	defer timeout.Stop()

	var errs []error
	for range records {
		select {
		case e := <-deliveries:
			msg, ok := e.(*kafka.Message)
			if !ok {
				errs = append(errs, fmt.Errorf("invalid message type: %T", e))
				continue
			}
			if msg.TopicPartition.Error != nil {
				errs = append(errs, msg.TopicPartition.Error)
			}
		case <-timeout.C:
			return fmt.Errorf("delivery timeout (>%v)", deliveryTimeout)
		case <-ctx.Done():
			return fmt.Errorf("ctx cancelled: %w", ctx.Err())
		}
	}
	return errors.Join(errs...)
}

// Close flushes outstanding messages and shuts the producer down.
func (p *Producer) Close() error {
	remaining := p.producer.Flush(int(deliveryTimeout / time.Millisecond))
	p.producer.Close()
	if remaining > 0 {
		return fmt.Errorf("%d messages not delivered before close", remaining)
	}
	return nil
}
