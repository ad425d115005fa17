package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/domain"
	"github.com/JoeShih716/go-ledger-core/internal/app/core/usecase"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w, DefaultTopic)

	id := domain.AccountID(5)
	event := usecase.TransactionEvent{
		EventID:    uuid.New(),
		Type:       usecase.EventDeposit,
		TxID:       12,
		AccountID:  &id,
		Amount:     1000,
		OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, p.Publish(context.Background(), event))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "5", string(msg.Key))
	assert.Equal(t, "deposit", string(msg.Headers[0].Value))

	var decoded usecase.TransactionEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, domain.TransactionID(12), decoded.TxID)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublisher_WriteError(t *testing.T) {
	p := newPublisher(&fakeWriter{err: errors.New("leader not available")}, "ledger-events")
	err := p.Publish(context.Background(), usecase.TransactionEvent{EventID: uuid.New(), Type: usecase.EventWithdrawal})
	assert.ErrorContains(t, err, "ledger-events")
	assert.ErrorContains(t, err, "leader not available")
}

func TestNewPublisher_DefaultTopic(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"}, "")
	assert.Equal(t, DefaultTopic, p.topic)
	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, DefaultTopic, w.Topic)
}
