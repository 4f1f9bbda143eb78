package entity

import "github.com/shopspring/decimal"

// Trader контрагент, разместивший оффер.
type Trader struct {
	ID          string           `json:"id"`
	DisplayName string           `json:"display_name"`
	Rating      *decimal.Decimal `json:"rating,omitempty"` // Нет истории сделок — нет рейтинга
}
