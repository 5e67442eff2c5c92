package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/projecthub/internal/domain"
)

// notifyTimeout bounds a background notification.
const notifyTimeout = 30 * time.Second

// Notifier delivers admin notifications.
type Notifier interface {
	ContactReceived(ctx context.Context, msg *domain.ContactMessage) error
	CustomProjectRequested(ctx context.Context, req *domain.CustomProjectRequest) error
}

// dispatcher runs notifications in the background. The request that
// triggered a notification never waits for or sees its outcome.
type dispatcher struct {
	notifier Notifier
	logger   zerolog.Logger

	// run starts fn; tests replace it to run synchronously.
	run func(fn func())
}

func newDispatcher(n Notifier, logger zerolog.Logger) dispatcher {
	return dispatcher{
		notifier: n,
		logger:   logger,
		run:      func(fn func()) { go fn() },
	}
}

func (d dispatcher) dispatch(ctx context.Context, kind string, send func(ctx context.Context, n Notifier) error) {
	if d.notifier == nil {
		return
	}
	// Detach from the request so the send outlives the response.
	base := context.WithoutCancel(ctx)
	d.run(func() {
		ctx, cancel := context.WithTimeout(base, notifyTimeout)
		defer cancel()

		if err := send(ctx, d.notifier); err != nil {
			d.logger.Warn().Err(err).Str("kind", kind).Msg("notification failed")
		}
	})
}
