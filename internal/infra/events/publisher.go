package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ErrPublish возвращается при ошибке отправки события
var ErrPublish = errors.New("events: failed to publish event")

// MessageWriter часть *kafka.Writer, нужная издателю
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher публикует события по записям в Kafka.
// Ключ сообщения - ID записи, поэтому события одной записи попадают в одну партицию по порядку.
type KafkaPublisher struct {
	writer  MessageWriter
	timeout time.Duration
}

// NewKafkaPublisher создает издателя с kafka.Writer на указанный топик
func NewKafkaPublisher(brokers []string, topic string, timeout time.Duration) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           timeout,
		AllowAutoTopicCreation: true,
	}
	return NewPublisherWithWriter(writer, timeout)
}

// NewPublisherWithWriter создает издателя поверх произвольного writer
func NewPublisherWithWriter(writer MessageWriter, timeout time.Duration) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, timeout: timeout}
}

// Publish отправляет событие
func (p *KafkaPublisher) Publish(ctx context.Context, event domain.AppointmentEvent) error {
	value, err := json.Marshal(newPayload(event))
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrPublish, err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.AppointmentID, 10)),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: %s appointment=%d: %v", ErrPublish, event.Type, event.AppointmentID, err)
	}
	return nil
}

// Close закрывает writer, дожидаясь отправки буферизованных сообщений
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher используется, когда брокеры не настроены
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.AppointmentEvent) error { return nil }
func (NoopPublisher) Close() error                                         { return nil }
