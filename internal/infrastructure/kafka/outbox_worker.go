package kafka

import (
	"context"
	"strings"
	"time"

	"github.com/DRSN-tech/inventory-backend/internal/cfg"
	"github.com/DRSN-tech/inventory-backend/internal/usecase"
	"github.com/DRSN-tech/inventory-backend/pkg/jitter"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
)

// OutboxWorker переносит события из таблицы outbox в Kafka.
// Доставка at-least-once: событие помечается обработанным только после успешной записи.
// Событие, застрявшее в processing дольше ProcessingTimeout (упавший воркер), выдаётся повторно.
type OutboxWorker struct {
	repo     usecase.OutboxRepository
	producer usecase.MessageProducer
	logger   logger.Logger
	cfg      *cfg.OutboxCfg
	wake     chan struct{}
}

func NewOutboxWorker(
	repo usecase.OutboxRepository,
	producer usecase.MessageProducer,
	logger logger.Logger,
	cfg *cfg.OutboxCfg,
) *OutboxWorker {
	return &OutboxWorker{
		repo:     repo,
		producer: producer,
		logger:   logger,
		cfg:      cfg,
		wake:     make(chan struct{}, 1),
	}
}

// Wake возвращает канал, через который внешний слушатель (LISTEN/NOTIFY) будит воркер.
func (w *OutboxWorker) Wake() chan<- struct{} {
	return w.wake
}

// Run обрабатывает очередь до отмены ctx: при старте, по таймеру и по сигналу Wake.
func (w *OutboxWorker) Run(ctx context.Context) error {
	w.logger.Infof("Draining pending outbox events on startup...")

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	attempt := 0
	for {
		if w.drain(ctx) {
			attempt = 0
		} else {
			delay := jitter.ExponentialBackoff(w.cfg.PollInterval, w.cfg.MaxBackoff, attempt, jitter.DefaultJitter)
			attempt++
			w.logger.Debugf("outbox delivery failed, retry in %s", delay)

			if !sleepCtx(ctx, delay) {
				w.logger.Infof("Outbox worker stopped")
				return nil
			}
			continue
		}

		select {
		case <-ctx.Done():
			w.logger.Infof("Outbox worker stopped")
			return nil
		case <-ticker.C:
		case <-w.wake:
			w.logger.Debugf("Received outbox notification, draining outbox events")
		}
	}
}

// drain обрабатывает пачки, пока очередь не опустеет. Возвращает false, если были сбои.
func (w *OutboxWorker) drain(ctx context.Context) bool {
	for ctx.Err() == nil {
		n, failed, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("outbox batch failed: %v", err)
			return false
		}

		if failed > 0 {
			return false
		}

		if n < w.cfg.BatchSize {
			return true
		}
	}

	return true
}

// processBatch возвращает размер пачки и число событий, вернувшихся в очередь.
func (w *OutboxWorker) processBatch(ctx context.Context) (int, int, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, w.cfg.BatchSize, w.cfg.ProcessingTimeout)
	if err != nil {
		return 0, 0, err
	}

	failed := 0
	for _, event := range events {
		if err := w.processEvent(ctx, event); err != nil {
			failed++
			if isRetryableError(err) {
				w.logger.Warnf("temporary kafka failure for event %s: %v", event.EventID, err)
			} else {
				w.logger.Errorf(err, "kafka failure for event %s", event.EventID)
			}

			// context.Background: событие нужно вернуть в очередь даже при остановке.
			if err := w.repo.Release(context.Background(), event.ID); err != nil {
				w.logger.Warnf("release event %d failed: %v", event.ID, err)
			}
			continue
		}

		if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
			w.logger.Warnf("mark processed failed: %v", err)
		}
	}

	return len(events), failed, nil
}

func (w *OutboxWorker) processEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	return w.producer.WriteRawMessage(ctx, usecase.NewWriteRawMessageReq(event.AggregateKey, event.Payload))
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"leader not available",
		"connection reset",
		"broken pipe",
		"no such host",
		"context deadline exceeded",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}

	return false
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
