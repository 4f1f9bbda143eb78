package persistence

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"p2p_market/internal/domain/entity"
	"p2p_market/internal/domain/value"
)

// offerSchema — внутренняя структура для маппинга строки БД.
// Методы расчёта и трейдер лежат в jsonb: по ним не фильтруем.
type offerSchema struct {
	ID             string          `db:"id"`
	Side           string          `db:"side"`
	CryptoSymbol   string          `db:"crypto_symbol"`
	FiatCurrency   string          `db:"fiat_currency"`
	Quantity       decimal.Decimal `db:"quantity"`
	UnitPrice      decimal.Decimal `db:"unit_price"`
	MinAmount      decimal.Decimal `db:"min_amount"`
	MaxAmount      decimal.Decimal `db:"max_amount"`
	PaymentMethods []byte          `db:"payment_methods"`
	Trader         []byte          `db:"trader"`
	CreatedAt      time.Time       `db:"created_at"`
	ExpiresAt      time.Time       `db:"expires_at"`
}

func fromOffer(e *entity.Offer) (*offerSchema, error) {
	methods, err := json.Marshal(e.PaymentMethods)
	if err != nil {
		return nil, err
	}

	trader, err := json.Marshal(e.Trader)
	if err != nil {
		return nil, err
	}

	return &offerSchema{
		ID:             e.ID,
		Side:           e.Side.String(),
		CryptoSymbol:   e.CryptoSymbol,
		FiatCurrency:   e.FiatCurrency,
		Quantity:       e.Quantity,
		UnitPrice:      e.UnitPrice,
		MinAmount:      e.MinAmount,
		MaxAmount:      e.MaxAmount,
		PaymentMethods: methods,
		Trader:         trader,
		CreatedAt:      e.CreatedAt,
		ExpiresAt:      e.ExpiresAt,
	}, nil
}

func (s *offerSchema) toDomain() (*entity.Offer, error) {
	side, err := value.ParseSide(s.Side)
	if err != nil {
		return nil, err
	}

	var methods []string
	if len(s.PaymentMethods) > 0 {
		if err := json.Unmarshal(s.PaymentMethods, &methods); err != nil {
			return nil, err
		}
	}

	var trader entity.Trader
	if len(s.Trader) > 0 {
		if err := json.Unmarshal(s.Trader, &trader); err != nil {
			return nil, err
		}
	}

	return &entity.Offer{
		ID:             s.ID,
		Side:           side,
		CryptoSymbol:   s.CryptoSymbol,
		FiatCurrency:   s.FiatCurrency,
		Quantity:       s.Quantity,
		UnitPrice:      s.UnitPrice,
		MinAmount:      s.MinAmount,
		MaxAmount:      s.MaxAmount,
		PaymentMethods: methods,
		Trader:         trader,
		CreatedAt:      s.CreatedAt,
		ExpiresAt:      s.ExpiresAt,
	}, nil
}
