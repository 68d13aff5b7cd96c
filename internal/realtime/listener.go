package realtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/dossiers/dossiers/internal/domain"
)

// feed is a connection in LISTEN mode.
type feed interface {
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Release()
}

type pooledFeed struct{ conn *pgxpool.Conn }

func (f pooledFeed) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	return f.conn.Conn().WaitForNotification(ctx)
}

func (f pooledFeed) Release() { f.conn.Release() }

// Listener holds one pooled connection in LISTEN mode and forwards every
// notification on Channel to a notifier. It reconnects until its context
// ends. Notifications sent while disconnected are lost, so every table is
// reported changed after a reconnect.
type Listener struct {
	notifier domain.Notifier
	logger   zerolog.Logger
	retry    time.Duration
	connect  func(ctx context.Context) (feed, error)
}

func NewListener(pool *pgxpool.Pool, notifier domain.Notifier, logger zerolog.Logger) *Listener {
	return &Listener{
		notifier: notifier,
		logger:   logger.With().Str("component", "realtime").Logger(),
		retry:    2 * time.Second,
		connect: func(ctx context.Context) (feed, error) {
			conn, err := pool.Acquire(ctx)
			if err != nil {
				return nil, fmt.Errorf("acquire listen connection: %w", err)
			}
			if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
				conn.Release()
				return nil, fmt.Errorf("listen %s: %w", Channel, err)
			}
			return pooledFeed{conn: conn}, nil
		},
	}
}

// Run blocks until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	connected := false
	for {
		err := l.listen(ctx, &connected)
		if ctx.Err() != nil {
			return nil
		}
		l.logger.Warn().Err(err).Dur("retry_in", l.retry).Msg("change feed interrupted")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.retry):
		}
	}
}

func (l *Listener) listen(ctx context.Context, connected *bool) error {
	f, err := l.connect(ctx)
	if err != nil {
		return err
	}
	defer f.Release()

	l.logger.Info().Str("channel", Channel).Msg("listening for changes")
	if *connected {
		l.resync(ctx)
	}
	*connected = true
	for {
		n, err := f.WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			return fmt.Errorf("wait for notification: %w", err)
		}
		l.dispatch(ctx, n)
	}
}

func (l *Listener) resync(ctx context.Context) {
	l.logger.Info().Msg("change feed reconnected, invalidating all tables")
	for _, table := range domain.Tables {
		l.notifier.Changed(ctx, table)
	}
}

func (l *Listener) dispatch(ctx context.Context, n *pgconn.Notification) {
	if n.Channel != Channel {
		return
	}
	table := strings.TrimSpace(n.Payload)
	if _, ok := TopicFor(table); !ok {
		l.logger.Debug().Str("payload", n.Payload).Msg("ignoring change on unknown table")
		return
	}
	l.notifier.Changed(ctx, table)
}
