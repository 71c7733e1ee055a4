package services

import (
	"context"
	"time"

	"aarambha-backend/models"
	"aarambha-backend/repository"
	"aarambha-backend/sender"

	"go.uber.org/zap"
)

// EmailWorkerConfig tunes the queue drain loop.
type EmailWorkerConfig struct {
	BatchSize    int
	MaxAttempts  int
	PollInterval time.Duration
	ErrorBackoff time.Duration
	SendTimeout  time.Duration
}

// EmailWorker drains the email queue in a single goroutine. Single-worker
// by design of the deployment: rows are claimed with a sending update, so a
// second worker would need row locking this loop does not do.
type EmailWorker struct {
	repo   repository.EmailRepository
	sender sender.EmailSender
	cfg    EmailWorkerConfig
	logger *zap.Logger
}

func NewEmailWorker(repo repository.EmailRepository, s sender.EmailSender, cfg EmailWorkerConfig, logger *zap.Logger) *EmailWorker {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 10
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 5
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = 30 * time.Second
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}
	return &EmailWorker{repo: repo, sender: s, cfg: cfg, logger: logger}
}

// Start runs the drain loop until ctx is canceled.
func (w *EmailWorker) Start(ctx context.Context) {
	w.logger.Info("Email worker started",
		zap.Int("batch_size", w.cfg.BatchSize),
		zap.Duration("poll_interval", w.cfg.PollInterval))

	for {
		delay := w.cfg.PollInterval
		if err := w.ProcessBatch(ctx); err != nil {
			w.logger.Error("Email batch failed", zap.Error(err))
			delay = w.cfg.ErrorBackoff
		}

		select {
		case <-ctx.Done():
			w.logger.Info("Email worker stopped")
			return
		case <-time.After(delay):
		}
	}
}

// ProcessBatch fetches one batch of pending emails and attempts each in
// turn. Per-email failures are recorded on the row and do not abort the
// batch; only a fetch failure is returned.
func (w *EmailWorker) ProcessBatch(ctx context.Context) error {
	// Claims older than twice the send timeout belong to a worker that
	// never reported an outcome; reclaim them.
	staleBefore := time.Now().Add(-2 * w.cfg.SendTimeout)
	emails, err := w.repo.FetchPending(ctx, w.cfg.BatchSize, staleBefore)
	if err != nil {
		return err
	}

	for i := range emails {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.process(ctx, &emails[i])
	}
	return nil
}

func (w *EmailWorker) process(ctx context.Context, email *models.EmailQueue) {
	if err := w.repo.MarkSending(ctx, email.ID); err != nil {
		w.logger.Error("Failed to claim email", zap.Uint("email_id", email.ID), zap.Error(err))
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, w.cfg.SendTimeout)
	defer cancel()

	// Outcome writes must land even when ctx was canceled mid-send, or
	// the claimed row is orphaned in sending until the stale reclaim.
	bookCtx := context.WithoutCancel(ctx)

	result, err := w.sender.SendEmail(sendCtx, email.RecipientEmail, email.Subject, email.Message)
	if err != nil {
		w.logger.Warn("Email send failed",
			zap.Uint("email_id", email.ID),
			zap.Int("attempts", email.Attempts+1),
			zap.Error(err))
		if dbErr := w.repo.RecordFailure(bookCtx, email.ID, err.Error(), w.cfg.MaxAttempts); dbErr != nil {
			w.logger.Error("Failed to record email failure", zap.Uint("email_id", email.ID), zap.Error(dbErr))
		}
		return
	}

	if err := w.repo.MarkSent(bookCtx, email.ID, result.SentAt); err != nil {
		w.logger.Error("Failed to mark email sent", zap.Uint("email_id", email.ID), zap.Error(err))
		return
	}
	w.logger.Info("Email sent",
		zap.Uint("email_id", email.ID),
		zap.String("recipient", email.RecipientEmail),
		zap.String("email_type", email.EmailType))
}
