package metrics

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/situation-monitor/pkg/logger"
	"github.com/selivandex/situation-monitor/pkg/models"
)

// EventSink persists batches of classification events
type EventSink interface {
	SaveEvents(ctx context.Context, events []models.ClassificationEvent) error
}

// BatchWriter buffers classification events and flushes them to the
// sink in batches, either when the buffer fills or on a timer. It
// implements the signal pipeline's Recorder so classification never
// blocks on analytics writes.
type BatchWriter struct {
	sink        EventSink
	buffer      []models.ClassificationEvent
	bufferMu    sync.Mutex
	maxBatch    int
	flushTicker *time.Ticker
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// NewBatchWriter creates new batch writer and starts its flush loop
func NewBatchWriter(sink EventSink, maxBatch int, maxWait time.Duration) *BatchWriter {
	ctx, cancel := context.WithCancel(context.Background())

	bw := &BatchWriter{
		sink:     sink,
		buffer:   make([]models.ClassificationEvent, 0, maxBatch),
		maxBatch: maxBatch,
		ctx:      ctx,
		cancel:   cancel,
	}

	bw.flushTicker = time.NewTicker(maxWait)

	bw.wg.Add(1)
	go bw.autoFlush()

	return bw
}

// Record adds an event to the buffer
func (bw *BatchWriter) Record(event models.ClassificationEvent) {
	bw.bufferMu.Lock()
	bw.buffer = append(bw.buffer, event)
	shouldFlush := len(bw.buffer) >= bw.maxBatch
	bw.bufferMu.Unlock()

	if shouldFlush {
		bw.flush()
	}
}

// autoFlush flushes the buffer periodically
func (bw *BatchWriter) autoFlush() {
	defer bw.wg.Done()

	for {
		select {
		case <-bw.flushTicker.C:
			bw.flush()
		case <-bw.ctx.Done():
			// Final flush before exit
			bw.flush()
			return
		}
	}
}

func (bw *BatchWriter) flush() {
	bw.bufferMu.Lock()
	if len(bw.buffer) == 0 {
		bw.bufferMu.Unlock()
		return
	}
	toWrite := make([]models.ClassificationEvent, len(bw.buffer))
	copy(toWrite, bw.buffer)
	bw.buffer = bw.buffer[:0]
	bw.bufferMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := bw.sink.SaveEvents(ctx, toWrite); err != nil {
		logger.Error("failed to flush classification events",
			zap.Int("records", len(toWrite)),
			zap.Error(err))
		return
	}

	logger.Debug("flushed classification events",
		zap.Int("records", len(toWrite)))
}

// Close stops the writer and flushes remaining events
func (bw *BatchWriter) Close() error {
	bw.flushTicker.Stop()
	bw.cancel()
	bw.wg.Wait()
	return nil
}
