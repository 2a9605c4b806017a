package pgdb

import (
	"context"
	"errors"
	"time"

	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"github.com/jackc/pgx/v5"
)

// OutboxListener будит outbox-воркер по NOTIFY из PostgreSQL.
type OutboxListener struct {
	dsn    string
	logger logger.Logger
}

func NewOutboxListener(dsn string, logger logger.Logger) *OutboxListener {
	return &OutboxListener{dsn: dsn, logger: logger}
}

// Listen блокируется до отмены ctx, переподключаясь при обрыве соединения.
func (l *OutboxListener) Listen(ctx context.Context, wake chan<- struct{}) {
	var conn *pgx.Conn

	connect := func() error {
		var err error
		conn, err = pgx.Connect(ctx, l.dsn)
		if err != nil {
			return e.Wrap("failed to connect for LISTEN", err)
		}

		if _, err = conn.Exec(ctx, "LISTEN "+OutboxChannel); err != nil {
			conn.Close(ctx)
			conn = nil
			return e.Wrap("failed to LISTEN", err)
		}

		l.logger.Infof("Subscribed to '%s' channel", OutboxChannel)
		return nil
	}

	for conn == nil {
		if err := connect(); err != nil {
			l.logger.Warnf("LISTEN connect failed: %v", err)
			if !sleepCtx(ctx, 5*time.Second) {
				return
			}
		}
	}
	defer func() {
		if conn != nil {
			conn.Close(context.Background())
		}
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		notif, err := conn.WaitForNotification(waitCtx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				continue
			}

			l.logger.Warnf("LISTEN connection lost: %v. Reconnecting...", err)
			conn.Close(ctx)
			conn = nil
			for conn == nil {
				if !sleepCtx(ctx, 2*time.Second) {
					return
				}
				if err := connect(); err != nil {
					l.logger.Warnf("Reconnect failed: %v", err)
				}
			}
			continue
		}

		if notif != nil && notif.Channel == OutboxChannel {
			select {
			case wake <- struct{}{}:
			default:
			}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
