// Package settlement пересылает принятые интенты в расчётный сервис.
// Сам расчёт (эскроу, движение средств) живёт на той стороне; здесь только
// транспорт с очередью между приёмом и отправкой.
package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"

	"p2p_market/internal/domain/entity"
	"p2p_market/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

const (
	taskMaxRetry  = 5
	taskRetention = 24 * time.Hour
)

// Enqueuer кладёт интент в очередь. Реализует обработчик принятия для
// acceptance-сервиса: сабмит драфта заканчивается успешной постановкой задачи.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) HandleAccept(ctx context.Context, intent entity.AcceptIntent) error {
	payload, err := json.Marshal(payloadFromIntent(intent))
	if err != nil {
		return fmt.Errorf("marshal intent: %w", err)
	}

	task := asynq.NewTask(TaskTypeAccept, payload,
		asynq.Queue(QueueName),
		asynq.MaxRetry(taskMaxRetry),
		asynq.Retention(taskRetention),
	)

	info, err := e.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue accept task: %w", err)
	}

	logger(ctx).Info("accept intent enqueued",
		"task_id", info.ID,
		"offer_id", intent.OfferID,
		"amount", intent.Amount.String(),
	)

	return nil
}
