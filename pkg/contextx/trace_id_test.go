package contextx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"p2p_market/pkg/contextx"
)

func TestTraceID(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	traceID, err := contextx.TraceIDFromContext(ctx)
	rq.Empty(traceID)
	rq.ErrorIs(err, contextx.ErrNoValue)
	rq.ErrorContains(err, "trace id: no value in context")

	ctx = contextx.WithTraceID(ctx, contextx.TraceID("trace-1"))

	traceID, err = contextx.TraceIDFromContext(ctx)
	rq.NoError(err)
	rq.Equal("trace-1", traceID.String())
}

func TestTraderID(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	traderID, err := contextx.TraderIDFromContext(ctx)
	rq.Empty(traderID)
	rq.ErrorIs(err, contextx.ErrNoValue)
	rq.ErrorContains(err, "trader id: no value in context")

	ctx = contextx.WithTraderID(ctx, contextx.TraderID("trader-1"))

	traderID, err = contextx.TraderIDFromContext(ctx)
	rq.NoError(err)
	rq.Equal("trader-1", traderID.String())
}
