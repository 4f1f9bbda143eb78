// Package convert считает превью конвертации для карточки оффера.
// Результат не авторитетен: итоговую сумму определяет расчётный сервис,
// здесь только живая подсказка пользователю во время ввода.
package convert

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"p2p_market/internal/domain/value"
)

// CryptoPrecision криптосуммы всегда показываются с 8 знаками,
// независимо от реальной делимости актива.
const CryptoPrecision = 8

const fiatDisplayDigits = 2

// Preview живой пересчёт для карточки оффера.
type Preview struct {
	CryptoAmount string // Фиксированные 8 знаков
	FiatDisplay  string // Та же сумма с разделителями групп
	Verb         string // "you'll receive" / "you'll pay"
}

// ParseAmount разбирает свободный ввод суммы. Пустая или нечитаемая строка
// превращается в ноль: превью не место для ошибок валидации.
func ParseAmount(text string) decimal.Decimal {
	amount, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return decimal.Zero
	}

	return amount
}

// CryptoEquivalent переводит фиатную сумму в крипту по курсу оффера.
// Неположительный курс — ошибка вызывающего, отвечаем нулём, а не паникой.
func CryptoEquivalent(fiatAmount, unitPrice decimal.Decimal) decimal.Decimal {
	if !unitPrice.IsPositive() {
		return decimal.Zero
	}

	return fiatAmount.DivRound(unitPrice, CryptoPrecision)
}

// FiatRestated возвращает ту же сумму с группировкой разрядов.
func FiatRestated(fiatAmount decimal.Decimal) string {
	v, _ := fiatAmount.Float64()

	return humanize.CommafWithDigits(v, fiatDisplayDigits)
}

// ForInput собирает превью целиком: сумма из поля ввода, курс и сторона оффера.
func ForInput(amountText string, unitPrice decimal.Decimal, side value.Side) Preview {
	amount := ParseAmount(amountText)

	return Preview{
		CryptoAmount: CryptoEquivalent(amount, unitPrice).StringFixed(CryptoPrecision),
		FiatDisplay:  FiatRestated(amount),
		Verb:         side.PreviewVerb(),
	}
}
