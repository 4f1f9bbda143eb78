package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AcceptIntent подтверждённое намерение принять оффер. Формируется контроллером
// после проверки лимитов и передаётся внешнему обработчику; что с ним делать
// дальше (эскроу, расчёты) — не забота этого сервиса.
type AcceptIntent struct {
	OfferID  string          `json:"offer_id"`
	TraderID string          `json:"trader_id"`
	Amount   decimal.Decimal `json:"amount"` // Фиат
	Method   string          `json:"method"`
	IssuedAt time.Time       `json:"issued_at"`
}
