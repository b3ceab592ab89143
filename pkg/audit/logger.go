package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Config contains configuration for the execution logger.
type Config struct {
	// AsyncBuffer is the size of the async write channel.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout bounds each storage write.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() *Config {
	return &Config{
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Logger appends execution records asynchronously. A single worker drains one
// FIFO channel, so records written by one orchestrator invocation reach
// storage in submission order. Storage failures are logged and counted but
// never surface to the caller: audit writes must not fail dispatch.
type Logger struct {
	storage    Storage
	config     *Config
	recordChan chan *ExecutionRecord
	done       chan struct{}
	wg         sync.WaitGroup
	logger     *slog.Logger

	dropped atomic.Int64
	failed  atomic.Int64
}

// NewLogger creates an execution logger and starts its background worker.
func NewLogger(storage Storage, config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = 1000
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}

	l := &Logger{
		storage:    storage,
		config:     config,
		recordChan: make(chan *ExecutionRecord, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "audit.logger"),
	}

	l.wg.Add(1)
	go l.worker()

	return l
}

// Record enqueues one execution record. It never blocks: when the buffer is
// full the record is dropped and counted, which is preferable to stalling
// rule evaluation.
func (l *Logger) Record(record *ExecutionRecord) {
	select {
	case l.recordChan <- record:
	default:
		n := l.dropped.Add(1)
		l.logger.Warn("audit buffer full, dropping execution record",
			"rule_id", record.RuleID,
			"dropped_total", n,
		)
	}
}

// worker drains the channel until Close.
func (l *Logger) worker() {
	defer l.wg.Done()

	for {
		select {
		case record := <-l.recordChan:
			l.write(record)
		case <-l.done:
			// Drain whatever is still buffered before exiting.
			for {
				select {
				case record := <-l.recordChan:
					l.write(record)
				default:
					return
				}
			}
		}
	}
}

// write persists one record with a bounded timeout.
func (l *Logger) write(record *ExecutionRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), l.config.WriteTimeout)
	defer cancel()

	if err := l.storage.Append(ctx, record); err != nil {
		l.failed.Add(1)
		l.logger.Error("failed to append execution record",
			"rule_id", record.RuleID,
			"status", record.Status,
			"error", err,
		)
	}
}

// Dropped returns how many records were dropped due to a full buffer.
func (l *Logger) Dropped() int64 {
	return l.dropped.Load()
}

// Close stops the worker after draining buffered records.
func (l *Logger) Close() error {
	close(l.done)
	l.wg.Wait()
	return nil
}
