package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/xifanezz/medium-clone-sub000/internal/entity"
	"github.com/xifanezz/medium-clone-sub000/pkg/rabbitmq"
	"github.com/xifanezz/medium-clone-sub000/pkg/telegram"
)

// NotificationWorker consumes comment events from the broker and forwards
// a digest to Telegram when a bot is configured. Without a bot it still
// drains the queue so events do not pile up.
type NotificationWorker struct {
	broker rabbitmq.Broker
	bot    *telegram.Bot
	chatID string
}

func NewNotificationWorker(broker rabbitmq.Broker, bot *telegram.Bot, chatID string) *NotificationWorker {
	return &NotificationWorker{
		broker: broker,
		bot:    bot,
		chatID: chatID,
	}
}

func (w *NotificationWorker) Start(ctx context.Context) {
	logrus.Info("Notification worker started")

	if err := w.broker.Consume(ctx, w.handleMessage); err != nil && ctx.Err() == nil {
		logrus.Errorf("Notification consumer stopped with error: %v", err)
		return
	}

	logrus.Info("Notification worker stopped")
}

func (w *NotificationWorker) handleMessage(message []byte) error {
	var event entity.CommentEvent
	if err := json.Unmarshal(message, &event); err != nil {
		// Unparseable payloads are not retryable
		return fmt.Errorf("invalid comment event: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"type":       event.Type,
		"comment_id": event.CommentID,
		"post_id":    event.PostID,
	}).Info("Comment event received")

	if event.Type != entity.CommentEventCreated || w.bot == nil || w.chatID == "" {
		return nil
	}

	if err := w.bot.NotifyNewComment(w.chatID, event.PostID, event.CommentID, event.Content); err != nil {
		return fmt.Errorf("telegram delivery failed: %w", err)
	}

	return nil
}
