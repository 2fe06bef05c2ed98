package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rDingyFourFour/handybob-sub000/internal/metrics"
	"github.com/rDingyFourFour/handybob-sub000/internal/model"
	"github.com/rDingyFourFour/handybob-sub000/internal/queue"
	"github.com/rDingyFourFour/handybob-sub000/internal/repository"
)

// Sender delivers one message to an address on a channel.
type Sender interface {
	Send(ctx context.Context, channel model.Channel, to, body string) error
}

// LogSender writes messages to the log instead of a provider.
type LogSender struct {
	Logger *zap.Logger
}

func (s LogSender) Send(ctx context.Context, channel model.Channel, to, body string) error {
	if s.Logger != nil {
		s.Logger.Info("follow-up sent",
			zap.String("channel", string(channel)),
			zap.String("to", to),
			zap.Int("body_length", len(body)))
	}
	return nil
}

// Worker delivers queued follow-up messages
type Worker struct {
	Messages  repository.MessageRepositoryInterface
	Customers repository.CustomerRepositoryInterface
	Sender    Sender
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Clock     func() time.Time
}

func NewWorker(messages repository.MessageRepositoryInterface, customers repository.CustomerRepositoryInterface, sender Sender, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		Messages:  messages,
		Customers: customers,
		Sender:    sender,
		Logger:    logger,
		Clock:     time.Now,
	}
}

// Process sends one message and records the result. A returned error
// means the attempt may be retried.
func (w *Worker) Process(ctx context.Context, messageID int) error {
	msg, err := w.Messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	log := w.Logger.With(zap.Int("message_id", msg.ID), zap.String("channel", string(msg.Channel)))
	if msg.Status == model.MessageStatusSent {
		log.Debug("message already sent")
		return nil
	}

	customer, err := w.Customers.GetByID(ctx, msg.CustomerID)
	if err != nil {
		return err
	}
	to := address(customer, msg.Channel)
	if to == "" {
		// nothing to retry until the customer record changes
		reason := fmt.Sprintf("customer has no %s address", msg.Channel)
		log.Warn("message undeliverable", zap.String("reason", reason))
		w.Metrics.ObserveDelivery(string(msg.Channel), model.MessageStatusFailed)
		return w.Messages.UpdateStatus(ctx, msg.ID, model.MessageStatusFailed, reason, nil)
	}

	if err := w.Sender.Send(ctx, msg.Channel, to, msg.Body); err != nil {
		log.Warn("send failed", zap.Error(err))
		w.Metrics.ObserveDelivery(string(msg.Channel), model.MessageStatusFailed)
		if uerr := w.Messages.UpdateStatus(ctx, msg.ID, model.MessageStatusFailed, err.Error(), nil); uerr != nil {
			log.Error("failed to record send failure", zap.Error(uerr))
		}
		return err
	}

	sentAt := w.now()
	if err := w.Messages.UpdateStatus(ctx, msg.ID, model.MessageStatusSent, "", &sentAt); err != nil {
		log.Error("failed to mark message sent", zap.Error(err))
		return err
	}
	w.Metrics.ObserveDelivery(string(msg.Channel), model.MessageStatusSent)
	log.Info("message delivered")
	return nil
}

func (w *Worker) now() time.Time {
	if w.Clock != nil {
		return w.Clock()
	}
	return time.Now()
}

func address(c *model.Customer, channel model.Channel) string {
	switch channel {
	case model.ChannelSMS:
		return strings.TrimSpace(c.Phone)
	case model.ChannelEmail:
		return strings.TrimSpace(c.Email)
	}
	return ""
}

var _ queue.MessageProcessor = (*Worker)(nil)
