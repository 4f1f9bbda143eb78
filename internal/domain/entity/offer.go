package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"p2p_market/internal/domain"
	"p2p_market/internal/domain/value"
	"p2p_market/pkg/errcodes"
)

// Offer объявление на доске P2P. Приходит из внешнего листинга,
// внутри приложения неизменяемо.
type Offer struct {
	ID             string          `json:"id" db:"id"`
	Side           value.Side      `json:"side" db:"side"`
	CryptoSymbol   string          `json:"crypto_symbol" db:"crypto_symbol"`
	FiatCurrency   string          `json:"fiat_currency" db:"fiat_currency"`
	Quantity       decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price" db:"unit_price"` // Фиат за единицу крипты
	MinAmount      decimal.Decimal `json:"min_amount" db:"min_amount"`
	MaxAmount      decimal.Decimal `json:"max_amount" db:"max_amount"`
	PaymentMethods []string        `json:"payment_methods" db:"-"` // Порядок важен: первый — дефолт драфта
	Trader         Trader          `json:"trader" db:"-"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	ExpiresAt      time.Time       `json:"expires_at" db:"expires_at"`
}

// Validate проверяет инварианты оффера на границе приложения.
// Дальше по коду офферу доверяют, поэтому сюда стянуты все проверки.
func (o Offer) Validate() error {
	if o.ID == "" {
		return domain.NewError(errcodes.InvalidOfferID, "offer id is empty")
	}

	if !o.Side.IsValid() {
		return domain.NewErrorf(errcodes.InvalidOfferSide, "offer %s: unknown side %q", o.ID, o.Side)
	}

	if o.CryptoSymbol == "" || o.FiatCurrency == "" {
		return domain.NewErrorf(errcodes.InvalidOffer, "offer %s: incomplete asset pair", o.ID)
	}

	if !o.Quantity.IsPositive() {
		return domain.NewErrorf(errcodes.InvalidOffer, "offer %s: quantity must be positive", o.ID)
	}

	if !o.UnitPrice.IsPositive() {
		return domain.NewErrorf(errcodes.InvalidOffer, "offer %s: unit price must be positive", o.ID)
	}

	if !o.MinAmount.IsPositive() || o.MinAmount.GreaterThan(o.MaxAmount) {
		return domain.NewErrorf(errcodes.InvalidOffer, "offer %s: limits must satisfy 0 < min <= max", o.ID)
	}

	if len(o.PaymentMethods) == 0 {
		return domain.NewErrorf(errcodes.InvalidOffer, "offer %s: no payment methods", o.ID)
	}

	return nil
}

// DefaultPaymentMethod первый метод расчёта; пустая строка, если оффер пришёл
// без методов (такой оффер не проходит Validate, но падать из-за него нельзя).
func (o Offer) DefaultPaymentMethod() string {
	if len(o.PaymentMethods) == 0 {
		return ""
	}

	return o.PaymentMethods[0]
}

// AcceptsMethod проверяет членство метода в списке оффера.
func (o Offer) AcceptsMethod(method string) bool {
	for _, m := range o.PaymentMethods {
		if m == method {
			return true
		}
	}

	return false
}

// IsExpired сравнивает срок жизни оффера с переданными часами.
func (o Offer) IsExpired(now time.Time) bool {
	return !o.ExpiresAt.After(now)
}
