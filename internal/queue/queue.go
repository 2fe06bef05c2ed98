package queue

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Queue is the transport the API uses to hand work to delivery workers.
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

const (
	DefaultMaxRetries = 3
	DefaultBackoff    = 500 * time.Millisecond
)

// InMemoryQueue runs handlers in-process with retry. Jobs are lost on restart.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
	inflight sync.WaitGroup

	MaxRetries int
	Backoff    time.Duration
	Logger     *zap.Logger
}

func NewInMemoryQueue(logger *zap.Logger) *InMemoryQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryQueue{
		handlers:   make(map[string][]func(payload any) error),
		MaxRetries: DefaultMaxRetries,
		Backoff:    DefaultBackoff,
		Logger:     logger,
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Topic      string
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish fans the payload out to every subscriber of topic.
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		job := JobPayload{Topic: topic, Payload: payload, MaxRetries: q.MaxRetries}
		q.inflight.Add(1)
		go func(h func(payload any) error) {
			defer q.inflight.Done()
			q.processJob(h, job)
		}(handler)
	}
	return nil
}

func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	log := q.Logger.With(zap.String("topic", job.Topic), zap.Any("payload", job.Payload))
	for {
		err := handler(job.Payload)
		if err == nil {
			log.Debug("job processed", zap.Int("retries", job.RetryCount))
			return
		}

		job.RetryCount++
		if job.RetryCount > job.MaxRetries {
			log.Error("job permanently failed", zap.Int("attempts", job.RetryCount), zap.Error(err))
			return
		}
		log.Warn("job failed, retrying", zap.Int("attempt", job.RetryCount), zap.Error(err))

		time.Sleep(time.Duration(job.RetryCount) * q.Backoff)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// Wait blocks until every published job has finished or given up.
func (q *InMemoryQueue) Wait() {
	q.inflight.Wait()
}

var _ Queue = (*InMemoryQueue)(nil)
