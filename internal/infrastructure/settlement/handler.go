package settlement

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hibiken/asynq"

	"p2p_market/internal/domain/entity"
	"p2p_market/pkg/httpx"
	"p2p_market/pkg/logx"
)

const (
	requestTimeout = 10 * time.Second
	logFieldMaxLen = 2048
)

// Handler забирает задачи из очереди и доставляет интент расчётному API.
// Успешно доставленный интент дублируется в канал уведомлений; переполненный
// канал не блокирует доставку.
type Handler struct {
	httpClient *http.Client
	baseURL    string
	accepted   chan<- entity.AcceptIntent
}

func NewHandler(baseURL string, accepted chan<- entity.AcceptIntent) *Handler {
	transport := httpx.NewLoggingRoundTripper(http.DefaultTransport,
		httpx.WithLogFieldMaxLen(logFieldMaxLen),
		httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker()),
	)

	return &Handler{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   requestTimeout,
		},
		baseURL:  baseURL,
		accepted: accepted,
	}
}

// HandleAcceptTask обрабатывает задачу settlement:accept. Возврат ошибки
// означает ретрай силами asynq, поэтому невосстановимые задачи помечаются
// через SkipRetry.
func (h *Handler) HandleAcceptTask(ctx context.Context, task *asynq.Task) error {
	var payload acceptTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode task payload: %v: %w", err, asynq.SkipRetry)
	}

	intent, err := payload.toIntent()
	if err != nil {
		return fmt.Errorf("restore intent: %v: %w", err, asynq.SkipRetry)
	}

	if err := h.forward(ctx, payload); err != nil {
		return err
	}

	logger(ctx).Info("accept intent forwarded",
		"offer_id", intent.OfferID,
		"trader_id", intent.TraderID,
	)

	select {
	case h.accepted <- intent:
	default:
		logger(ctx).Warn("notification channel full, dropping alert", "offer_id", intent.OfferID)
	}

	return nil
}

func (h *Handler) forward(ctx context.Context, payload acceptTaskPayload) error {
	endpoint, err := url.JoinPath(h.baseURL, "/v1/accepts")
	if err != nil {
		return fmt.Errorf("build url: %v: %w", err, asynq.SkipRetry)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %v: %w", err, asynq.SkipRetry)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("forward intent: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// Невосстановимый отказ: ретраи не помогут.
		return fmt.Errorf("settlement rejected intent: %d: %w", resp.StatusCode, asynq.SkipRetry)
	default:
		return fmt.Errorf("settlement responded %d", resp.StatusCode)
	}
}
