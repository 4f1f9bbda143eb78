// Данный файл должен быть сгенерирован из openapi спецификации и называться types.gen.go
package rest

// Trader продавец или покупатель, разместивший оффер.
type Trader struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	Rating      *string `json:"rating,omitempty"`
}

// Offer объявление на доске.
type Offer struct {
	ID             string   `json:"id"`
	Side           string   `json:"side"`
	CryptoSymbol   string   `json:"cryptoSymbol"`
	FiatCurrency   string   `json:"fiatCurrency"`
	Quantity       string   `json:"quantity"`
	UnitPrice      string   `json:"unitPrice"`
	MinAmount      string   `json:"minAmount"`
	MaxAmount      string   `json:"maxAmount"`
	PaymentMethods []string `json:"paymentMethods"`
	Trader         Trader   `json:"trader"`
	CreatedAt      string   `json:"createdAt"`
	ExpiresAt      string   `json:"expiresAt"`
}

// OfferCard оффер, подготовленный к показу.
type OfferCard struct {
	Offer       Offer  `json:"offer"`
	ExpiryLabel string `json:"expiryLabel"`
	IconURL     string `json:"iconUrl,omitempty"`
}

// OfferList страница карточек.
type OfferList struct {
	Offers []OfferCard `json:"offers"`
}

// ConversionPreview живой пересчёт суммы под полем ввода.
type ConversionPreview struct {
	CryptoAmount string `json:"cryptoAmount"`
	FiatDisplay  string `json:"fiatDisplay"`
	Verb         string `json:"verb"`
}

// Draft текущее состояние драфта принятия.
type Draft struct {
	ID         string            `json:"id"`
	OfferID    string            `json:"offerId"`
	AmountText string            `json:"amountText"`
	Method     string            `json:"method"`
	Preview    ConversionPreview `json:"preview"`
}

// UpdateDraftRequest частичное обновление драфта. Поля опциональны,
// значения не проверяются до подтверждения.
type UpdateDraftRequest struct {
	AmountText *string `json:"amountText,omitempty"`
	Method     *string `json:"method,omitempty"`
}

// AcceptResponse результат подтверждения драфта.
type AcceptResponse struct {
	OfferID  string `json:"offerId"`
	Amount   string `json:"amount"`
	Method   string `json:"method"`
	IssuedAt string `json:"issuedAt"`
}

// Error Модель ошибок
type Error struct {
	// Code Код ошибки
	Code ErrorCode `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`
}

// ErrorCode Код ошибки
type ErrorCode string
