package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// SessionJanitor periodically removes expired session rows so that TTL expiry
// is physical, not just a read-time filter.
type SessionJanitor struct {
	sessions SessionRepo
	logger   *slog.Logger
	cron     *cron.Cron
}

func NewSessionJanitor(sessions SessionRepo, logger *slog.Logger) *SessionJanitor {
	return &SessionJanitor{
		sessions: sessions,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start schedules the hourly purge. Errors are logged and the schedule keeps
// running; expired rows are invisible to reads either way.
func (j *SessionJanitor) Start() error {
	_, err := j.cron.AddFunc("@hourly", j.purge)
	if err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("Session janitor started")
	return nil
}

// Stop halts the schedule and waits for a running purge to finish.
func (j *SessionJanitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.logger.Info("Session janitor stopped")
}

func (j *SessionJanitor) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := j.sessions.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("Expired session purge failed", slog.Any("error", err))
		return
	}
	if removed > 0 {
		j.logger.Info("Purged expired sessions", slog.Int64("removed", removed))
	}
}
