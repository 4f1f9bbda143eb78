package value

import (
	"fmt"
)

// Side сторона оффера. buy — автор хочет купить крипту (принимающий продаёт),
// sell — наоборот.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

func (s Side) String() string {
	return string(s)
}

func (s Side) IsValid() bool {
	return s == SideBuy || s == SideSell
}

func ParseSide(raw string) (Side, error) {
	side := Side(raw)
	if !side.IsValid() {
		return "", fmt.Errorf("unknown offer side %q", raw)
	}

	return side, nil
}

// PreviewVerb возвращает формулировку превью конвертации для стороны оффера.
// Направление меняет только текст, не расчёт.
func (s Side) PreviewVerb() string {
	if s == SideBuy {
		return "you'll receive"
	}

	return "you'll pay"
}
