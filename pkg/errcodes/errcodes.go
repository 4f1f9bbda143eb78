package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"

	// Доска офферов.
	OfferNotFound    failure.ErrorCode = "OfferNotFound"
	OfferExpired     failure.ErrorCode = "OfferExpired"
	InvalidOffer     failure.ErrorCode = "InvalidOffer"     // Оффер из листинга не прошёл проверку границ
	InvalidOfferID   failure.ErrorCode = "InvalidOfferID"   // Мусор вместо идентификатора
	InvalidOfferSide failure.ErrorCode = "InvalidOfferSide" // Не buy и не sell

	// Принятие оффера.
	DraftNotFound    failure.ErrorCode = "DraftNotFound"
	AmountOutOfRange failure.ErrorCode = "AmountOutOfRange" // Сумма вне [min, max], включая нераспарсиваемую
)
