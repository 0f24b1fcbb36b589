// Package notification queues e-mails in Redis and delivers them over SMTP
// from a background worker.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/smtp"
	"time"

	"tutorconnect/internal/logger"
	"tutorconnect/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey  = "emails"
	failedKey = "emails:failed"

	maxAttempts = 3
)

type Job struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// Sender delivers one message synchronously.
type Sender interface {
	Send(job Job) error
}

type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Pass     string
	From     string
	FromName string
}

type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// message builds the raw mail. Free-text header values are Q-encoded, which
// also turns any CR or LF into an escape instead of a header break.
func (s *SMTPSender) message(job Job) []byte {
	msg := fmt.Sprintf("From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", s.cfg.FromName), s.cfg.From)
	msg += fmt.Sprintf("To: %s\r\n", job.To)
	msg += fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", job.Subject))
	msg += "MIME-Version: 1.0\r\n"
	msg += "Content-Type: text/plain; charset=\"utf-8\"\r\n"
	msg += "\r\n" + job.Body
	return []byte(msg)
}

func (s *SMTPSender) Send(job Job) error {
	var auth smtp.Auth
	if s.cfg.User != "" && s.cfg.Pass != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	}
	addr := s.cfg.Host + ":" + s.cfg.Port
	return smtp.SendMail(addr, auth, s.cfg.From, []string{job.To}, s.message(job))
}

type Queue struct {
	redis      redis.Cmdable
	sender     Sender
	pollWait   time.Duration
	retryDelay time.Duration
	now        func() time.Time
}

func NewQueue(client redis.Cmdable, sender Sender) *Queue {
	return &Queue{
		redis:      client,
		sender:     sender,
		pollWait:   2 * time.Second,
		retryDelay: 5 * time.Second,
		now:        time.Now,
	}
}

// Enqueue pushes a message for the worker to deliver.
func (q *Queue) Enqueue(ctx context.Context, to, name, subject, body string) error {
	job := Job{
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Created: q.now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal email job: %w", err)
	}
	if err := q.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		return fmt.Errorf("failed to queue email to %s: %w", to, err)
	}

	logger.Debug("email queued", "to", to, "subject", subject)
	return nil
}

// Start runs the delivery loop until ctx is cancelled.
func (q *Queue) Start(ctx context.Context) {
	logger.Info("email worker started")
	for {
		select {
		case <-ctx.Done():
			logger.Info("email worker stopped")
			return
		default:
			q.processNext(ctx)
		}
	}
}

func (q *Queue) processNext(ctx context.Context) {
	result, err := q.redis.BRPop(ctx, q.pollWait, queueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			logger.Error("failed to read email queue", "error", err)
			q.sleep(ctx, q.pollWait)
		}
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Error("dropping malformed email job", "error", err)
		return
	}

	job.Tries++
	if err := q.sender.Send(job); err != nil {
		q.handleFailure(ctx, job, err)
		return
	}

	metrics.RecordEmail("sent")
	logger.Info("email sent", "to", job.To, "subject", job.Subject, "attempt", job.Tries)
}

func (q *Queue) handleFailure(ctx context.Context, job Job, sendErr error) {
	logger.Error("failed to send email", "to", job.To, "attempt", job.Tries, "error", sendErr)

	if job.Tries < maxAttempts {
		metrics.RecordEmail("retry")
		q.sleep(ctx, q.retryDelay)
		data, err := json.Marshal(job)
		if err != nil {
			return
		}
		// Requeue even if ctx is done so the job survives shutdown.
		if err := q.redis.LPush(context.Background(), queueKey, string(data)).Err(); err != nil {
			logger.Error("failed to requeue email", "to", job.To, "error", err)
		}
		return
	}

	metrics.RecordEmail("failed")
	failed := map[string]interface{}{
		"job":   job,
		"error": sendErr.Error(),
		"time":  q.now(),
	}
	data, err := json.Marshal(failed)
	if err != nil {
		return
	}
	if err := q.redis.LPush(context.Background(), failedKey, string(data)).Err(); err != nil {
		logger.Error("failed to record failed email", "to", job.To, "error", err)
		return
	}
	logger.Warn("email moved to failed queue", "to", job.To, "attempts", job.Tries)
}

func (q *Queue) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// QueueLength reports pending jobs and refreshes the queue gauge.
func (q *Queue) QueueLength(ctx context.Context) int64 {
	length, err := q.redis.LLen(ctx, queueKey).Result()
	if err != nil {
		return 0
	}
	metrics.EmailQueueLength.Set(float64(length))
	return length
}
