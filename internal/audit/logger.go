// Package audit persists one immutable LogEntry per state-changing admin
// action and forwards a filtered summary to the activity webhook. Everything
// here is best-effort: a failed lookup, write, or post is captured in the
// error sink and never reaches the mutation that triggered it.
package audit

import (
	"context"
	"time"

	"github.com/kdd-community/website-backend/internal/models"
	"github.com/kdd-community/website-backend/internal/repositories"
	"github.com/kdd-community/website-backend/pkg/errtrack"
	"github.com/kdd-community/website-backend/pkg/identity"
	"github.com/kdd-community/website-backend/pkg/webhook"
)

// Logger records admin activity
type Logger struct {
	identity identity.Provider
	logs     repositories.LogRepository
	sink     webhook.Sink
	track    errtrack.Sink
}

// NewLogger creates an audit Logger
func NewLogger(provider identity.Provider, logs repositories.LogRepository, sink webhook.Sink, track errtrack.Sink) *Logger {
	return &Logger{
		identity: provider,
		logs:     logs,
		sink:     sink,
		track:    track,
	}
}

// Record resolves the actor, appends the log entry, and posts the webhook
// summary. It is called only after the accompanying mutation has persisted,
// and never reports failure to its caller.
func (l *Logger) Record(ctx context.Context, uid string, payload Payload) {
	user, err := l.identity.GetUser(ctx, uid)
	if err != nil {
		// Without an identity snapshot the entry cannot be written; the
		// mutation proceeds unlogged.
		l.track.Capture("failed to resolve log actor", map[string]interface{}{
			"uid":     uid,
			"event":   string(payload.Kind()),
			"message": err.Error(),
		})
		return
	}

	info := models.UserInfo{
		UID:         user.UID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}
	data := payload.Data()

	errtrack.BestEffort(l.track, "failed to write activity log", func() error {
		return l.logs.Append(ctx, &models.LogEntry{
			Event:    payload.Kind(),
			UserInfo: info,
			Data:     data,
		})
	})

	errtrack.BestEffort(l.track, "failed to post activity webhook", func() error {
		err := l.sink.Post(ctx, BuildEmbed(payload.Kind(), info, data, time.Now().UTC()))
		if err == webhook.ErrNotConfigured {
			// Silently skip when no webhook is set up.
			return nil
		}
		return err
	})
}
