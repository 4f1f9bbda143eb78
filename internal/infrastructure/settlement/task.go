package settlement

import (
	"time"

	"github.com/shopspring/decimal"

	"p2p_market/internal/domain/entity"
)

// TaskTypeAccept тип задачи asynq с принятым оффером.
const TaskTypeAccept = "settlement:accept"

// QueueName очередь расчётных задач.
const QueueName = "settlement"

// acceptTaskPayload сериализуемая форма интента. Суммы едут строками,
// чтобы не зависеть от внутреннего представления decimal.
type acceptTaskPayload struct {
	OfferID  string    `json:"offer_id"`
	TraderID string    `json:"trader_id"`
	Amount   string    `json:"amount"`
	Method   string    `json:"method"`
	IssuedAt time.Time `json:"issued_at"`
}

func payloadFromIntent(intent entity.AcceptIntent) acceptTaskPayload {
	return acceptTaskPayload{
		OfferID:  intent.OfferID,
		TraderID: intent.TraderID,
		Amount:   intent.Amount.String(),
		Method:   intent.Method,
		IssuedAt: intent.IssuedAt,
	}
}

func (p acceptTaskPayload) toIntent() (entity.AcceptIntent, error) {
	amount, err := decimal.NewFromString(p.Amount)
	if err != nil {
		return entity.AcceptIntent{}, err
	}

	return entity.AcceptIntent{
		OfferID:  p.OfferID,
		TraderID: p.TraderID,
		Amount:   amount,
		Method:   p.Method,
		IssuedAt: p.IssuedAt,
	}, nil
}
