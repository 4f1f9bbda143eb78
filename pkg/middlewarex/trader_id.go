package middlewarex

import (
	"net/http"

	"p2p_market/pkg/contextx"
)

const headerNameTraderID = "X-Trader-Id"

// TraderID кладёт идентификатор пользователя из заголовка в контекст.
// Аутентификация живёт снаружи (gateway), здесь заголовку доверяем.
func TraderID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traderID := r.Header.Get(headerNameTraderID)

		ctx := r.Context()
		if traderID != "" {
			ctx = contextx.WithTraderID(ctx, contextx.TraderID(traderID))
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
