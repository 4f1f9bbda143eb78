// Package listing клиент внешнего сервиса листинга офферов.
// Выгрузка приходит в свободной форме, клиент приводит её к доменным
// сущностям, не валидируя: отбраковка — дело доски.
package listing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"p2p_market/internal/domain/entity"
	"p2p_market/internal/domain/value"
	"p2p_market/pkg/httpx"
	"p2p_market/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

const (
	requestTimeout = 15 * time.Second
	logFieldMaxLen = 4096
)

type Client struct {
	httpClient *http.Client
	baseURL    string
}

// staticAuthenticator токен листинга выдаётся один раз через конфиг,
// повторная аутентификация не нужна.
type staticAuthenticator struct {
	token string
}

func (a staticAuthenticator) Authenticate(context.Context) error { return nil }
func (a staticAuthenticator) BearerToken() string                { return a.token }

func NewClient(baseURL, token string) *Client {
	transport := http.RoundTripper(http.DefaultTransport)
	transport = httpx.NewLoggingRoundTripper(transport,
		httpx.WithLogFieldMaxLen(logFieldMaxLen),
		httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker()),
	)

	if token != "" {
		transport = httpx.NewAuthBearerRoundTripper(transport, staticAuthenticator{token: token})
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   requestTimeout,
		},
		baseURL: baseURL,
	}
}

// rawOffer представление оффера в выгрузке листинга. Числа приходят строками,
// трейдер — вложенным объектом со своими именами полей.
type rawOffer struct {
	ID             string   `json:"id"`
	Side           string   `json:"side"`
	Crypto         string   `json:"crypto"`
	Fiat           string   `json:"fiat"`
	Quantity       string   `json:"quantity"`
	UnitPrice      string   `json:"unit_price"`
	MinAmount      string   `json:"min_amount"`
	MaxAmount      string   `json:"max_amount"`
	PaymentMethods []string `json:"payment_methods"`
	Trader         struct {
		ID          string  `json:"id"`
		DisplayName string  `json:"display_name"`
		Rating      *string `json:"rating"`
	} `json:"trader"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type offersResponse struct {
	Offers []rawOffer `json:"offers"`
}

// FetchOffers забирает текущую выгрузку офферов целиком.
func (c *Client) FetchOffers(ctx context.Context) ([]entity.Offer, error) {
	endpoint, err := url.JoinPath(c.baseURL, "/v1/offers")
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch offers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing responded %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var payload offersResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode offers: %w", err)
	}

	offers := make([]entity.Offer, 0, len(payload.Offers))
	for i := range payload.Offers {
		offers = append(offers, mapOffer(payload.Offers[i]))
	}

	return offers, nil
}

// mapOffer переводит сырую запись в доменную сущность как есть. Нечитаемые
// числа превращаются в ноль и отсеются на Validate, а не уронят весь синк.
func mapOffer(raw rawOffer) entity.Offer {
	offer := entity.Offer{
		ID:             raw.ID,
		Side:           value.Side(raw.Side),
		CryptoSymbol:   raw.Crypto,
		FiatCurrency:   raw.Fiat,
		Quantity:       parseDecimal(raw.Quantity),
		UnitPrice:      parseDecimal(raw.UnitPrice),
		MinAmount:      parseDecimal(raw.MinAmount),
		MaxAmount:      parseDecimal(raw.MaxAmount),
		PaymentMethods: raw.PaymentMethods,
		Trader: entity.Trader{
			ID:          raw.Trader.ID,
			DisplayName: raw.Trader.DisplayName,
		},
		CreatedAt: raw.CreatedAt,
		ExpiresAt: raw.ExpiresAt,
	}

	if raw.Trader.Rating != nil {
		if rating, err := decimal.NewFromString(*raw.Trader.Rating); err == nil {
			offer.Trader.Rating = &rating
		}
	}

	return offer
}

func parseDecimal(text string) decimal.Decimal {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero
	}

	return d
}
