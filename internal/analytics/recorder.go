package analytics

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Event is one completed search, recorded after the fact for usage
// analysis. Query carries the normalized form, not the raw input.
type Event struct {
	Query     string
	DatasetID string
	Mode      string
	Outcome   string
	Results   int
	Duration  time.Duration
	At        time.Time
}

// Sink receives flushed event batches.
type Sink interface {
	Flush(events []Event)
}

const (
	DefaultQueueSize  = 1024
	DefaultBatchSize  = 64
	DefaultFlushEvery = 5 * time.Second
)

// Recorder accepts events without blocking the request path: a bounded
// channel feeds one consumer goroutine that flushes to the sink by size or
// by time. When the queue is full, events are dropped and counted.
type Recorder struct {
	events  chan Event
	sink    Sink
	logger  *zap.Logger
	dropped atomic.Uint64

	batchSize  int
	flushEvery time.Duration

	closeOnce sync.Once
	done      chan struct{}
}

// NewRecorder starts the consumer goroutine. Zero or negative sizes fall
// back to the defaults.
func NewRecorder(sink Sink, queueSize, batchSize int, flushEvery time.Duration, logger *zap.Logger) *Recorder {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if flushEvery <= 0 {
		flushEvery = DefaultFlushEvery
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Recorder{
		events:     make(chan Event, queueSize),
		sink:       sink,
		logger:     logger,
		batchSize:  batchSize,
		flushEvery: flushEvery,
		done:       make(chan struct{}),
	}
	go r.consume()
	return r
}

// Record enqueues an event, reporting false when the queue is full and the
// event was dropped. It never blocks.
func (r *Recorder) Record(ev Event) bool {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	select {
	case r.events <- ev:
		return true
	default:
		r.dropped.Add(1)
		return false
	}
}

// Dropped returns the number of events lost to queue overflow.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Close drains and flushes remaining events, then stops the consumer. Record
// must not be called after Close.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		close(r.events)
		<-r.done
	})
}

func (r *Recorder) consume() {
	defer close(r.done)

	ticker := time.NewTicker(r.flushEvery)
	defer ticker.Stop()

	batch := make([]Event, 0, r.batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		r.sink.Flush(batch)
		batch = make([]Event, 0, r.batchSize)
	}

	for {
		select {
		case ev, ok := <-r.events:
			if !ok {
				flush()
				if n := r.dropped.Load(); n > 0 {
					r.logger.Warn("analytics events dropped", zap.Uint64("count", n))
				}
				return
			}
			batch = append(batch, ev)
			if len(batch) >= r.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// ZapSink logs each flushed batch.
type ZapSink struct {
	Logger *zap.Logger
}

func (s ZapSink) Flush(events []Event) {
	for _, ev := range events {
		s.Logger.Info("search recorded",
			zap.String("query", ev.Query),
			zap.String("dataset_id", ev.DatasetID),
			zap.String("mode", ev.Mode),
			zap.String("outcome", ev.Outcome),
			zap.Int("results", ev.Results),
			zap.Duration("duration", ev.Duration))
	}
}
