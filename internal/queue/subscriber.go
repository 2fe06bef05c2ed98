package queue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/rDingyFourFour/handybob-sub000/internal/errors"
)

// FollowupSendTopic carries ids of pending follow-up messages.
const FollowupSendTopic = "followup_sends"

// MessageProcessor delivers one queued message.
type MessageProcessor interface {
	Process(ctx context.Context, messageID int) error
}

// StartFollowupSendSubscriber feeds FollowupSendTopic into p. Missing
// messages are acknowledged without retry; other errors are retried by q.
func StartFollowupSendSubscriber(q Queue, p MessageProcessor, timeout time.Duration, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	err := q.Subscribe(FollowupSendTopic, func(payload any) error {
		msgID, ok := payload.(int)
		if !ok {
			logger.Warn("invalid payload type, expected message id", zap.Any("payload", payload))
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := p.Process(ctx, msgID)
		if appErrors.KindOf(err) == appErrors.KindNotFound {
			logger.Warn("queued message not found", zap.Int("message_id", msgID))
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", FollowupSendTopic, err)
	}
	return nil
}
