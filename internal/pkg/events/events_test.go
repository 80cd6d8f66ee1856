package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed int
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed++
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisherWithWriter(w, zerolog.Nop())

	evt := New(UserRegistered, "u-1", map[string]string{"username": "jane"})
	require.NoError(t, p.Publish(context.Background(), evt))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "u-1", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "user.registered", string(msg.Headers[0].Value))

	var decoded struct {
		ID      string            `json:"id"`
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, evt.ID, decoded.ID)
	assert.Equal(t, "user.registered", decoded.Type)
	assert.Equal(t, "jane", decoded.Payload["username"])
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := NewKafkaPublisherWithWriter(w, zerolog.Nop())

	err := p.Publish(context.Background(), New(CommentCreated, "u-2", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "comment.created")
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisherWithWriter(w, zerolog.Nop())

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, w.closed)
	assert.Error(t, p.Publish(context.Background(), New(UserPasswordChanged, "u-1", nil)))
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), New(UserProfileUpdated, "u-1", nil)))
	assert.NoError(t, p.Close())
}

func TestMulti(t *testing.T) {
	good := &fakeWriter{}
	bad := &fakeWriter{err: errors.New("broker down")}
	m := Multi{
		NewKafkaPublisherWithWriter(bad, zerolog.Nop()),
		NewKafkaPublisherWithWriter(good, zerolog.Nop()),
	}

	err := m.Publish(context.Background(), New(CommentCreated, "u-1", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Len(t, good.msgs, 1, "a failing publisher must not starve the next one")

	require.NoError(t, m.Close())
	assert.Equal(t, 1, good.closed)
	assert.Equal(t, 1, bad.closed)
}
