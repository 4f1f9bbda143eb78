package contextx

import (
	"context"
	"fmt"
)

// TraderID идентификатор пользователя, от имени которого открыт драфт.
type TraderID string

type contextKeyTraderID struct{}

func (t TraderID) String() string {
	return string(t)
}

func WithTraderID(ctx context.Context, traderID TraderID) context.Context {
	return context.WithValue(ctx, contextKeyTraderID{}, traderID)
}

func TraderIDFromContext(ctx context.Context) (TraderID, error) {
	traderID, ok := ctx.Value(contextKeyTraderID{}).(TraderID)
	if !ok {
		return "", fmt.Errorf("trader id: %w", ErrNoValue)
	}

	return traderID, nil
}
