package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// EventBus publishes inference events and fans them out to in-process
// subscribers.
type EventBus interface {
	PublishAnalytic(ctx context.Context, event AnalyticEvent) error
	PublishSimulation(ctx context.Context, event SimulationEvent) error
	// Subscribe returns a channel receiving every published event.
	// Slow subscribers drop events rather than blocking publishers.
	Subscribe() <-chan Envelope
	Close() error
}

// KafkaConfig represents event bus configuration. With no brokers
// configured the bus runs local-only: events still reach in-process
// subscribers but nothing is written to Kafka.
type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers"`
	ClientID     string        `yaml:"client_id"`
	BatchTimeout time.Duration `yaml:"batch_timeout"`
}

// DefaultKafkaConfig returns default event bus configuration.
func DefaultKafkaConfig() KafkaConfig {
	return KafkaConfig{
		ClientID:     "telvora-inference",
		BatchTimeout: 10 * time.Millisecond,
	}
}

// KafkaEventBus implements EventBus on kafka-go, with a local fan-out
// channel per subscriber.
type KafkaEventBus struct {
	writer *kafka.Writer

	mu     sync.Mutex
	subs   []chan Envelope
	closed bool
}

// NewKafkaEventBus creates the event bus. The Kafka writer is only
// created when brokers are configured.
func NewKafkaEventBus(config KafkaConfig) *KafkaEventBus {
	bus := &KafkaEventBus{}

	if len(config.Brokers) > 0 {
		batchTimeout := config.BatchTimeout
		if batchTimeout == 0 {
			batchTimeout = DefaultKafkaConfig().BatchTimeout
		}
		bus.writer = &kafka.Writer{
			Addr:         kafka.TCP(config.Brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: batchTimeout,
			Compression:  kafka.Gzip,
			RequiredAcks: kafka.RequireOne,
		}
	} else {
		log.Printf("events: no Kafka brokers configured, running local-only")
	}

	return bus
}

// PublishAnalytic publishes an analytic.completed event.
func (b *KafkaEventBus) PublishAnalytic(ctx context.Context, event AnalyticEvent) error {
	return b.publish(ctx, TopicAnalyticCompleted, TypeAnalyticCompleted, event.EventID, event)
}

// PublishSimulation publishes a simulation.completed event.
func (b *KafkaEventBus) PublishSimulation(ctx context.Context, event SimulationEvent) error {
	return b.publish(ctx, TopicSimulationCompleted, TypeSimulationCompleted, event.EventID, event)
}

func (b *KafkaEventBus) publish(ctx context.Context, topic, eventType, key string, data any) error {
	envelope := Envelope{
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}

	b.fanOut(envelope)

	if b.writer == nil {
		return nil
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
		Time: time.Now(),
	}

	if err := b.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

// Subscribe registers a local subscriber. The channel is buffered;
// events are dropped for a full subscriber.
func (b *KafkaEventBus) Subscribe() <-chan Envelope {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Envelope, 64)
	b.subs = append(b.subs, ch)
	return ch
}

func (b *KafkaEventBus) fanOut(envelope Envelope) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- envelope:
		default:
			log.Printf("events: dropping %s event for slow subscriber", envelope.Type)
		}
	}
}

// Close closes the Kafka writer and all subscriber channels.
func (b *KafkaEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
	b.mu.Unlock()

	if b.writer != nil {
		return b.writer.Close()
	}
	return nil
}
