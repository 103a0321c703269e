package mail

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"github.com/escalando-ong/cms-api/pkg/config"
	"github.com/escalando-ong/cms-api/pkg/jobs"
)

// Mailer delivers password-reset emails. Sending happens off the request
// path through a worker queue so a slow provider never delays the 200
// response the forgot-password endpoint always returns.
type Mailer struct {
	client       *resend.Client
	from         string
	resetBaseURL string
	queue        *jobs.Queue
	logger       *zap.Logger
}

type resetJob struct {
	To    string
	Token string
}

// NewMailer builds a Mailer and its backing queue. The queue must be started
// before SendPasswordReset is called.
func NewMailer(cfg config.MailConfig, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Mailer{
		client:       resend.NewClient(cfg.ResendAPIKey),
		from:         cfg.From,
		resetBaseURL: cfg.ResetBaseURL,
		logger:       logger,
	}

	m.queue = jobs.NewQueue("mail", m.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})

	return m
}

// Start launches the delivery workers.
func (m *Mailer) Start(ctx context.Context) {
	m.queue.Start(ctx)
}

// Stop drains the delivery workers.
func (m *Mailer) Stop() {
	m.queue.Stop()
}

// SendPasswordReset enqueues a reset email carrying the signed token link.
func (m *Mailer) SendPasswordReset(to, token string) error {
	return m.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    "password_reset",
		Payload: resetJob{To: to, Token: token},
	})
}

func (m *Mailer) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(resetJob)
	if !ok {
		return fmt.Errorf("unexpected mail payload %T", job.Payload)
	}

	link := fmt.Sprintf("%s?token=%s", m.resetBaseURL, url.QueryEscape(payload.Token))
	html := fmt.Sprintf(`<p>Haz clic en el siguiente enlace para restablecer tu contraseña:</p><a href="%s">%s</a>`, link, link)

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{payload.To},
		Subject: "Recupera tu contraseña",
		Html:    html,
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}

	m.logger.Info("reset email sent", zap.String("email_id", sent.Id), zap.String("to", payload.To))
	return nil
}
