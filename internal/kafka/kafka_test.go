package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/booknest/internal/library"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWriter) snapshot() ([]kafka.Message, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.msgs...), w.closed
}

func TestProducerFlushesOnClose(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, 8, nil)
	p.Start(context.Background())

	require.NoError(t, p.Publish([]byte("k1"), []byte("v1")))
	require.NoError(t, p.Publish([]byte("k2"), []byte("v2")))
	p.Close()
	p.Close()
	p.WaitClosed()

	msgs, closed := w.snapshot()
	assert.True(t, closed)
	require.Len(t, msgs, 2)
	assert.Equal(t, "v1", string(msgs[0].Value))
	assert.Equal(t, "v2", string(msgs[1].Value))

	assert.ErrorIs(t, p.Publish([]byte("k3"), []byte("v3")), ErrProducerClosed)
}

func TestProducerStopsOnContext(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, 8, nil)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	require.NoError(t, p.Publish([]byte("k"), []byte("v")))
	cancel()
	p.WaitClosed()

	msgs, closed := w.snapshot()
	assert.True(t, closed)
	assert.Len(t, msgs, 1)
	assert.ErrorIs(t, p.Publish([]byte("k"), []byte("v")), ErrProducerClosed)
}

func TestProducerBufferFull(t *testing.T) {
	p := NewProducerWithWriter(&fakeWriter{}, 1, nil)
	require.NoError(t, p.Publish(nil, []byte("a")))
	assert.ErrorIs(t, p.Publish(nil, []byte("b")), ErrBufferFull)
}

type capture struct {
	key, value []byte
	headers    []kafka.Header
}

func (c *capture) Publish(key, value []byte, headers ...kafka.Header) error {
	c.key, c.value, c.headers = key, value, headers
	return nil
}

func TestIssuancePublisherEnvelope(t *testing.T) {
	c := &capture{}
	pub := NewIssuancePublisher(c, "booknest-api")
	pub.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	iss := library.Issuance{
		ID:         "6f1c2d8e-7c55-4a43-9d1e-6a0c9b7f0a11",
		BookID:     "b1",
		MemberID:   "m1",
		IssueDate:  time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		ReturnDate: time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		Status:     library.StatusPending,
	}
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	require.NoError(t, pub.PublishIssuance(ctx, library.EventIssuanceCreated, iss))

	assert.Equal(t, iss.ID, string(c.key))
	require.Len(t, c.headers, 1)
	assert.Equal(t, HeaderEventType, c.headers[0].Key)
	assert.Equal(t, library.EventIssuanceCreated, string(c.headers[0].Value))

	var env library.Envelope
	require.NoError(t, UnmarshalEnvelope(c.value, &env))
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, library.EventIssuanceCreated, env.EventType)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, "booknest-api", env.Producer)
	assert.Equal(t, "req-42", env.TraceID)
	assert.Equal(t, iss.ID, env.CorrelationID)

	p, err := UnwrapPayload[library.IssuancePayload](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, iss.ID, p.IssuanceID)
	assert.Equal(t, library.StatusPending, p.Status)
	assert.True(t, iss.ReturnDate.Equal(p.ReturnDate))
}

type fakeReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.pending) > 0 {
		m := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func TestConsumerRetriesFailedMessageBeforeMovingOn(t *testing.T) {
	r := &fakeReader{pending: []kafka.Message{{Partition: 0, Offset: 1}, {Partition: 0, Offset: 2}}}
	c := NewConsumerWithReader(r, 2, nil)
	c.backoff = time.Millisecond

	var mu sync.Mutex
	var seen []int64
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.Start(ctx, func(_ context.Context, m kafka.Message) error {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, m.Offset)
			if m.Offset == 1 && len(seen) < 3 {
				return errors.New("db down")
			}
			return nil
		})
	}()

	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return len(r.committed) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	assert.Equal(t, []int64{1, 1, 1, 2}, seen)
	mu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Equal(t, []int64{1, 2}, r.committed)
	assert.True(t, r.closed)
}

func TestConsumerBlockedPartitionDoesNotStallOthers(t *testing.T) {
	r := &fakeReader{pending: []kafka.Message{
		{Partition: 0, Offset: 10},
		{Partition: 0, Offset: 11},
		{Partition: 1, Offset: 20},
	}}
	c := NewConsumerWithReader(r, 2, nil)
	c.backoff = time.Millisecond

	var mu sync.Mutex
	attempts := map[int64]int{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.Start(ctx, func(_ context.Context, m kafka.Message) error {
			mu.Lock()
			defer mu.Unlock()
			attempts[m.Offset]++
			if m.Partition == 0 {
				return errors.New("db down")
			}
			return nil
		})
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts[10] >= 3
	}, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return len(r.committed) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	assert.Zero(t, attempts[11], "offset 11 must wait for offset 10")
	mu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Equal(t, []int64{20}, r.committed)
}

func TestConsumerReturnsReaderError(t *testing.T) {
	r := &errReader{err: errors.New("broker down")}
	c := NewConsumerWithReader(r, 1, nil)
	err := c.Start(context.Background(), func(context.Context, kafka.Message) error { return nil })
	assert.EqualError(t, err, "broker down")

	r = &errReader{err: io.EOF}
	c = NewConsumerWithReader(r, 1, nil)
	assert.NoError(t, c.Start(context.Background(), func(context.Context, kafka.Message) error { return nil }))
}

type errReader struct{ err error }

func (r *errReader) FetchMessage(context.Context) (kafka.Message, error) { return kafka.Message{}, r.err }
func (r *errReader) CommitMessages(context.Context, ...kafka.Message) error { return nil }
func (r *errReader) Close() error                                          { return nil }
