package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/classtrack/backend/internal/mailer"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

// magicLinkSubject is the subject line of every sign-in link email
const magicLinkSubject = "Your sign-in link"

// magicLinkBodyTemplate is the HTML body of the sign-in link email.
// {{1}} is replaced with the one-time sign-in URL.
const magicLinkBodyTemplate = `<p>Hello,</p>
<p>Click the link below to sign in. The link works once and expires shortly.</p>
<p><a href="{{1}}">{{1}}</a></p>
<p>If you did not request this email, you can ignore it.</p>`

// Worker handles queued email delivery
type Worker struct {
	logger       *zap.Logger
	smtpHost     string
	smtpPort     int
	smtpUsername string
	smtpPassword string
	smtpFrom     string
}

// NewWorker creates a new worker instance
func NewWorker(
	logger *zap.Logger,
	smtpHost string,
	smtpPort int,
	smtpUsername, smtpPassword, smtpFrom string,
) *Worker {
	return &Worker{
		logger:       logger,
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUsername: smtpUsername,
		smtpPassword: smtpPassword,
		smtpFrom:     smtpFrom,
	}
}

// HandleMagicLinkEmail handles sign-in link email delivery
func (w *Worker) HandleMagicLinkEmail(ctx context.Context, t *asynq.Task) error {
	var payload mailer.MagicLinkEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to parse magic link email payload: %w", err)
	}

	body := strings.ReplaceAll(magicLinkBodyTemplate, "{{1}}", payload.Link)

	if err := w.sendEmail(payload.Email, magicLinkSubject, body); err != nil {
		return err
	}

	w.logger.Info("Magic link email sent", zap.String("email", payload.Email))
	return nil
}

// sendEmail sends an email using gopkg.in/mail.v2
func (w *Worker) sendEmail(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", w.smtpFrom)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := mail.NewDialer(w.smtpHost, w.smtpPort, w.smtpUsername, w.smtpPassword)
	d.Timeout = 15 * time.Second
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
