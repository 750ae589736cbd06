package analytics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type captureSink struct {
	mu      sync.Mutex
	batches [][]Event
}

func (s *captureSink) Flush(events []Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := make([]Event, len(events))
	copy(batch, events)
	s.batches = append(s.batches, batch)
}

func (s *captureSink) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

func TestRecorderFlushesOnClose(t *testing.T) {
	sink := &captureSink{}
	r := NewRecorder(sink, 16, 64, time.Minute, zap.NewNop())

	for i := 0; i < 5; i++ {
		assert.True(t, r.Record(Event{Query: "q", Results: i}))
	}
	r.Close()

	assert.Equal(t, 5, sink.total())
	assert.Zero(t, r.Dropped())
}

func TestRecorderFlushesBySize(t *testing.T) {
	sink := &captureSink{}
	r := NewRecorder(sink, 16, 2, time.Minute, zap.NewNop())
	defer r.Close()

	r.Record(Event{Query: "a"})
	r.Record(Event{Query: "b"})

	require.Eventually(t, func() bool { return sink.total() == 2 }, time.Second, 10*time.Millisecond)
}

func TestRecorderFlushesByTime(t *testing.T) {
	sink := &captureSink{}
	r := NewRecorder(sink, 16, 64, 20*time.Millisecond, zap.NewNop())
	defer r.Close()

	r.Record(Event{Query: "slow"})

	require.Eventually(t, func() bool { return sink.total() == 1 }, time.Second, 10*time.Millisecond)
}

func TestRecorderDropsOnOverflow(t *testing.T) {
	sink := &captureSink{}
	// queue of one with a flush interval long enough that the consumer may
	// not drain between records
	r := NewRecorder(sink, 1, 64, time.Minute, zap.NewNop())

	dropped := 0
	for i := 0; i < 1000; i++ {
		if !r.Record(Event{Query: "burst"}) {
			dropped++
		}
	}
	r.Close()

	assert.Equal(t, uint64(dropped), r.Dropped())
	assert.Equal(t, 1000-dropped, sink.total())
}

func TestRecorderStampsTime(t *testing.T) {
	sink := &captureSink{}
	r := NewRecorder(sink, 16, 64, time.Minute, zap.NewNop())

	r.Record(Event{Query: "stamped"})
	r.Close()

	require.Equal(t, 1, sink.total())
	assert.False(t, sink.batches[0][0].At.IsZero())
}
