// Package icons отдаёт URL иконок активов для карточек офферов.
package icons

import "strings"

// Resolver собирает URL по тикеру из CDN-шаблона. Неизвестный тикер даёт
// пустую строку: карточка обойдётся без иконки.
type Resolver struct {
	baseURL string
	known   map[string]struct{}
}

func NewResolver(baseURL string, symbols ...string) *Resolver {
	known := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		known[strings.ToUpper(s)] = struct{}{}
	}

	return &Resolver{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		known:   known,
	}
}

func (r *Resolver) CryptoIcon(symbol string) string {
	symbol = strings.ToUpper(symbol)

	if len(r.known) > 0 {
		if _, ok := r.known[symbol]; !ok {
			return ""
		}
	}

	return r.baseURL + "/" + strings.ToLower(symbol) + ".svg"
}
