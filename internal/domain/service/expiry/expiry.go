// Package expiry превращает абсолютный срок жизни оффера в человекочитаемую
// метку обратного отсчёта. Таймера здесь нет: функция чистая, "now" приносит
// вызывающий на каждый рендер или опрос.
package expiry

import (
	"fmt"
	"time"
)

const ExpiredLabel = "Expired"

// Label возвращает "{h}h {m}m left" / "{m}m left" либо "Expired".
// Минуты и часы усекаются, секунды не показываются. Дней нет намеренно:
// оффер на 30 часов показывается как "30h ...", не "1d 6h".
func Label(now, expiresAt time.Time) string {
	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return ExpiredLabel
	}

	totalMinutes := int(remaining / time.Minute)
	hours := totalMinutes / 60
	minutes := totalMinutes % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm left", hours, minutes)
	}

	return fmt.Sprintf("%dm left", minutes)
}
