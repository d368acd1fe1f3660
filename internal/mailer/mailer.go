// Package mailer defines the email queue contract shared by the API and the worker
package mailer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	// TypeMagicLinkEmail is the asynq task type for sign-in link emails
	TypeMagicLinkEmail = "email:magic_link"

	// QueueMail is the queue all outgoing email lands on
	QueueMail = "mail"
)

// MagicLinkEmailPayload is the JSON payload of a sign-in link email task
type MagicLinkEmailPayload struct {
	Email string `json:"email"`
	Link  string `json:"link"`
}

// Enqueuer pushes email tasks onto the Redis-backed queue
type Enqueuer struct {
	client *asynq.Client
	logger *zap.Logger
}

// NewEnqueuer creates a new enqueuer
func NewEnqueuer(client *asynq.Client, logger *zap.Logger) *Enqueuer {
	return &Enqueuer{
		client: client,
		logger: logger,
	}
}

// EnqueueMagicLinkEmail queues a sign-in link email for delivery
//
// "email" parameter is the recipient address.
// "link" parameter is the full one-time sign-in URL.
//
// If some error occurs during enqueueing, the error will be returned.
func (e *Enqueuer) EnqueueMagicLinkEmail(ctx context.Context, email, link string) error {
	payload, err := json.Marshal(MagicLinkEmailPayload{Email: email, Link: link})
	if err != nil {
		return fmt.Errorf("failed to marshal magic link email payload: %w", err)
	}

	task := asynq.NewTask(TypeMagicLinkEmail, payload)
	info, err := e.client.Enqueue(task, asynq.Queue(QueueMail), asynq.MaxRetry(5))
	if err != nil {
		return fmt.Errorf("failed to enqueue magic link email: %w", err)
	}

	e.logger.Info("Magic link email enqueued",
		zap.String("task_id", info.ID), zap.String("queue", info.Queue))
	return nil
}
