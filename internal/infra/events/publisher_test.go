package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func bookedEvent() domain.AppointmentEvent {
	return domain.AppointmentEvent{
		Type:              domain.EventAppointmentBooked,
		AppointmentID:     42,
		StylistID:         7,
		ServiceID:         3,
		Date:              time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		StartTime:         "14:00",
		EndTime:           "14:30",
		Status:            domain.StatusScheduled,
		Client:            domain.ClientInfo{FirstName: "Anna", Email: "anna@example.com"},
		ModificationToken: "tok",
		OccurredAt:        time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := NewPublisherWithWriter(w, time.Second)

	require.NoError(t, p.Publish(context.Background(), bookedEvent()))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, []kafka.Header{{Key: "event_type", Value: []byte("appointment.booked")}}, msg.Headers)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "appointment.booked", got["type"])
	assert.Equal(t, "2025-03-10", got["date"])
	assert.Equal(t, "14:00", got["startTime"])
	assert.Equal(t, "tok", got["modificationToken"])
	assert.NotContains(t, got, "reason")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := NewPublisherWithWriter(&recordingWriter{err: errors.New("broker down")}, 0)

	err := p.Publish(context.Background(), bookedEvent())
	assert.ErrorIs(t, err, ErrPublish)
}

func TestNoopPublisher(t *testing.T) {
	var p NoopPublisher
	assert.NoError(t, p.Publish(context.Background(), bookedEvent()))
	assert.NoError(t, p.Close())
}
