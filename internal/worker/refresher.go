package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"p2p_market/internal/domain/service/board"
	"p2p_market/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const defaultSyncInterval = 30 * time.Second

// BoardRefresher периодически подтягивает выгрузку листинга на доску и
// вычищает протухшие офферы. Интервал держит нагрузку на листинг в рамках
// его лимитов.
type BoardRefresher struct {
	boardService *board.Service

	syncInterval time.Duration
	lastSync     time.Time

	// Control fields
	mu         sync.Mutex
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup
}

func NewBoardRefresher(boardService *board.Service) *BoardRefresher {
	return &BoardRefresher{
		boardService: boardService,
		syncInterval: defaultSyncInterval,
	}
}

func (w *BoardRefresher) WithSyncInterval(interval time.Duration) *BoardRefresher {
	if interval > 0 {
		w.syncInterval = interval
	}
	return w
}

func (w *BoardRefresher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return errors.New("refresher is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel
	w.isRunning = true

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			w.isRunning = false
			w.cancelFunc = nil
			w.mu.Unlock()
		}()

		if err := w.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger(runCtx).Error("refresher stopped with error", "error", err)
		}
	}()

	return nil
}

func (w *BoardRefresher) Stop() {
	w.mu.Lock()

	if !w.isRunning {
		w.mu.Unlock()
		return
	}

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.mu.Unlock()

	w.wg.Wait()
}

// IsRunning возвращает текущий статус
func (w *BoardRefresher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isRunning
}

func (w *BoardRefresher) Run(ctx context.Context) error {
	logger(ctx).Info("board refresher started", "interval", w.syncInterval.String())

	for {
		select {
		case <-ctx.Done():
			logger(ctx).Info("board refresher stopped")
			return ctx.Err()
		default:
			w.refreshOnce(ctx)
		}
	}
}

func (w *BoardRefresher) waitForNextSlot(ctx context.Context) error {
	if w.lastSync.IsZero() {
		w.lastSync = time.Now()
		return nil
	}

	elapsed := time.Since(w.lastSync)
	if elapsed >= w.syncInterval {
		w.lastSync = time.Now()
		return nil
	}

	wait := w.syncInterval - elapsed

	select {
	case <-time.After(wait):
		w.lastSync = time.Now()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *BoardRefresher) refreshOnce(ctx context.Context) {
	if err := w.waitForNextSlot(ctx); err != nil {
		return
	}

	if _, err := w.boardService.SyncFromListing(ctx); err != nil {
		logger(ctx).Error("board sync failed", "error", err)
		return
	}

	if _, err := w.boardService.PruneExpired(ctx); err != nil {
		logger(ctx).Error("prune failed", "error", err)
	}
}
