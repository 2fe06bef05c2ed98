package queue

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const retryHeader = "x-retry-count"

// SendJob is the wire format of a queued follow-up delivery.
type SendJob struct {
	MessageID int `json:"message_id"`
}

// AMQPQueue publishes message ids to durable RabbitMQ queues named after
// the topic. Failed deliveries are republished with an incremented
// x-retry-count header until MaxRetries is reached.
type AMQPQueue struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	mu       sync.Mutex
	declared map[string]bool

	MaxRetries int
	Logger     *zap.Logger
}

func DialAMQP(url string, logger *zap.Logger) (*AMQPQueue, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return &AMQPQueue{
		conn:       conn,
		ch:         ch,
		declared:   make(map[string]bool),
		MaxRetries: DefaultMaxRetries,
		Logger:     logger,
	}, nil
}

func (q *AMQPQueue) declare(topic string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.declared[topic] {
		return nil
	}
	_, err := q.ch.QueueDeclare(
		topic,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", topic, err)
	}
	q.declared[topic] = true
	return nil
}

// Publish accepts an int message id.
func (q *AMQPQueue) Publish(topic string, payload any) error {
	id, ok := payload.(int)
	if !ok {
		return fmt.Errorf("unsupported payload %T, expected message id", payload)
	}
	return q.publish(topic, SendJob{MessageID: id}, 0)
}

func (q *AMQPQueue) publish(topic string, job SendJob, retries int) error {
	if err := q.declare(topic); err != nil {
		return err
	}
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.ch.Publish("", topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Headers:      amqp.Table{retryHeader: int32(retries)},
		Body:         body,
	})
}

// Subscribe consumes topic with manual acks. The handler receives the
// message id as an int.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	if err := q.declare(topic); err != nil {
		return err
	}
	deliveries, err := q.ch.Consume(topic, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("register consumer on %s: %w", topic, err)
	}

	go func() {
		for d := range deliveries {
			q.handle(topic, d, handler)
		}
		q.Logger.Info("consumer stopped", zap.String("topic", topic))
	}()
	return nil
}

func (q *AMQPQueue) handle(topic string, d amqp.Delivery, handler func(payload any) error) {
	job, err := DecodeSendJob(d.Body)
	if err != nil {
		q.Logger.Warn("dropping malformed job", zap.String("topic", topic), zap.Error(err))
		d.Ack(false)
		return
	}
	log := q.Logger.With(zap.String("topic", topic), zap.Int("message_id", job.MessageID))

	if err := handler(job.MessageID); err != nil {
		retries := RetryCount(d.Headers)
		if retries < q.MaxRetries {
			log.Warn("job failed, requeueing", zap.Int("attempt", retries+1), zap.Error(err))
			if perr := q.publish(topic, job, retries+1); perr != nil {
				log.Error("requeue failed", zap.Error(perr))
				d.Nack(false, true)
				return
			}
		} else {
			log.Error("job permanently failed", zap.Int("attempts", retries+1), zap.Error(err))
		}
	}
	d.Ack(false)
}

func (q *AMQPQueue) Close() error {
	if err := q.ch.Close(); err != nil {
		q.conn.Close()
		return err
	}
	return q.conn.Close()
}

// DecodeSendJob parses a delivery body.
func DecodeSendJob(body []byte) (SendJob, error) {
	var job SendJob
	if err := json.Unmarshal(body, &job); err != nil {
		return job, fmt.Errorf("decode job: %w", err)
	}
	if job.MessageID <= 0 {
		return job, fmt.Errorf("decode job: missing message_id")
	}
	return job, nil
}

// RetryCount reads the retry header. AMQP tables decode integers with
// varying widths depending on the publisher.
func RetryCount(headers amqp.Table) int {
	switch v := headers[retryHeader].(type) {
	case int:
		return v
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	}
	return 0
}

var _ Queue = (*AMQPQueue)(nil)
