package acceptance_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"p2p_market/internal/domain"
	"p2p_market/internal/domain/entity"
	"p2p_market/internal/domain/service/acceptance"
	"p2p_market/internal/domain/value"
	"p2p_market/pkg/errcodes"
)

type handlerStub struct {
	intents []entity.AcceptIntent
	err     error
}

func (h *handlerStub) HandleAccept(_ context.Context, intent entity.AcceptIntent) error {
	if h.err != nil {
		return h.err
	}

	h.intents = append(h.intents, intent)

	return nil
}

func testOffer() entity.Offer {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	return entity.Offer{
		ID:             "ofr-1",
		Side:           value.SideSell,
		CryptoSymbol:   "BTC",
		FiatCurrency:   "USD",
		Quantity:       decimal.RequireFromString("0.5"),
		UnitPrice:      decimal.RequireFromString("64231.00"),
		MinAmount:      decimal.RequireFromString("50"),
		MaxAmount:      decimal.RequireFromString("500"),
		PaymentMethods: []string{"bank_transfer", "sepa"},
		Trader:         entity.Trader{ID: "trd-9", DisplayName: "maker"},
		CreatedAt:      now,
		ExpiresAt:      now.Add(2 * time.Hour),
	}
}

func TestOpenDefaults(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	svc := acceptance.NewService(&handlerStub{})

	draft := svc.Open(ctx, testOffer(), "trd-1")

	rq.NotEmpty(draft.ID)
	rq.Equal("50", draft.AmountText)
	rq.Equal("bank_transfer", draft.Method)
}

func TestSubmitLimits(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name       string
		amountText string
		accepted   bool
	}{
		{name: "Just below min", amountText: "49.99", accepted: false},
		{name: "Exactly min", amountText: "50", accepted: true},
		{name: "Inside range", amountText: "123.45", accepted: true},
		{name: "Exactly max", amountText: "500", accepted: true},
		{name: "Just above max", amountText: "500.01", accepted: false},
		{name: "Empty input", amountText: "", accepted: false},
		{name: "Garbage input", amountText: "12,5 usd", accepted: false},
		{name: "Negative", amountText: "-100", accepted: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			handler := &handlerStub{}
			svc := acceptance.NewService(handler)

			draft := svc.Open(ctx, testOffer(), "trd-1")

			_, err := svc.UpdateAmount(ctx, draft.ID, tc.amountText)
			rq.NoError(err)

			intent, err := svc.Submit(ctx, draft.ID)

			if tc.accepted {
				rq.NoError(err)
				rq.Equal("ofr-1", intent.OfferID)
				rq.True(intent.Amount.Equal(decimal.RequireFromString(tc.amountText)))
				rq.Equal("bank_transfer", intent.Method)
				rq.Len(handler.intents, 1)

				// Успешный сабмит закрывает драфт.
				_, err = svc.Get(ctx, draft.ID)
				code, ok := domain.GetCode(err)
				rq.True(ok)
				rq.Equal(errcodes.DraftNotFound, code)

				return
			}

			code, ok := domain.GetCode(err)
			rq.True(ok)
			rq.Equal(errcodes.AmountOutOfRange, code)
			rq.ErrorContains(err, "between 50 and 500 USD")
			rq.Empty(handler.intents)

			// Ошибка диапазона не закрывает драфт.
			got, err := svc.Get(ctx, draft.ID)
			rq.NoError(err)
			rq.Equal(tc.amountText, got.AmountText)
		})
	}
}

func TestTransientInvalidEditsAllowed(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	svc := acceptance.NewService(&handlerStub{})
	draft := svc.Open(ctx, testOffer(), "trd-1")

	// Промежуточные состояния набора не валидируются.
	for _, text := range []string{"", "1", "12", "12.", "125.5"} {
		got, err := svc.UpdateAmount(ctx, draft.ID, text)
		rq.NoError(err)
		rq.Equal(text, got.AmountText)
	}

	intent, err := svc.Submit(ctx, draft.ID)
	rq.NoError(err)
	rq.True(intent.Amount.Equal(decimal.RequireFromString("125.5")))
}

func TestUpdateMethod(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	handler := &handlerStub{}
	svc := acceptance.NewService(handler)
	draft := svc.Open(ctx, testOffer(), "trd-1")

	// Мутатор не проверяет членство.
	got, err := svc.UpdateMethod(ctx, draft.ID, "carrier_pigeon")
	rq.NoError(err)
	rq.Equal("carrier_pigeon", got.Method)

	// Членство проверяется на сабмите.
	_, err = svc.Submit(ctx, draft.ID)
	code, ok := domain.GetCode(err)
	rq.True(ok)
	rq.Equal(errcodes.ValidationError, code)
	rq.Empty(handler.intents)

	_, err = svc.UpdateMethod(ctx, draft.ID, "sepa")
	rq.NoError(err)

	intent, err := svc.Submit(ctx, draft.ID)
	rq.NoError(err)
	rq.Equal("sepa", intent.Method)
}

func TestCancelLeavesNoResidue(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	svc := acceptance.NewService(&handlerStub{})

	first := svc.Open(ctx, testOffer(), "trd-1")
	_, err := svc.UpdateAmount(ctx, first.ID, "499")
	rq.NoError(err)

	svc.Cancel(ctx, first.ID)
	svc.Cancel(ctx, first.ID) // Повторная отмена безвредна

	_, err = svc.Get(ctx, first.ID)
	rq.Error(err)

	// Новый драфт по тому же офферу стартует с дефолтов.
	second := svc.Open(ctx, testOffer(), "trd-1")
	rq.NotEqual(first.ID, second.ID)
	rq.Equal("50", second.AmountText)
	rq.Equal("bank_transfer", second.Method)
}

func TestMalformedOfferDoesNotPanic(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	offer := testOffer()
	offer.PaymentMethods = nil

	handler := &handlerStub{}
	svc := acceptance.NewService(handler)

	draft := svc.Open(ctx, offer, "trd-1")
	rq.Empty(draft.Method)

	// Пустой список методов не валидируется отдельно: это зона
	// ответственности поставщика офферов.
	intent, err := svc.Submit(ctx, draft.ID)
	rq.NoError(err)
	rq.Empty(intent.Method)
	rq.Len(handler.intents, 1)
}

func TestHandlerFailureKeepsDraft(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	handler := &handlerStub{err: errors.New("queue down")}
	svc := acceptance.NewService(handler)

	draft := svc.Open(ctx, testOffer(), "trd-1")

	_, err := svc.Submit(ctx, draft.ID)
	rq.Error(err)

	code, ok := domain.GetCode(err)
	rq.True(ok)
	rq.Equal(errcodes.InternalServerError, code)

	// Драфт не потерян, можно повторить.
	_, err = svc.Get(ctx, draft.ID)
	rq.NoError(err)
}

// gatedHandler держит первый вызов открытым, пока тест не разрешит ему
// завершиться, и считает все вызовы.
type gatedHandler struct {
	entered chan struct{}
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func (h *gatedHandler) HandleAccept(context.Context, entity.AcceptIntent) error {
	h.mu.Lock()
	h.calls++
	h.mu.Unlock()

	select {
	case h.entered <- struct{}{}:
	default:
	}

	<-h.release

	return nil
}

func (h *gatedHandler) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.calls
}

func TestDoubleSubmitEmitsSingleIntent(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	handler := &gatedHandler{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}

	svc := acceptance.NewService(handler)
	draft := svc.Open(ctx, testOffer(), "trd-1")

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.Submit(ctx, draft.ID)
		firstDone <- err
	}()

	// Дождаться, пока первый сабмит повиснет внутри обработчика.
	<-handler.entered

	// Повторный сабмит того же драфта не порождает второй интент.
	_, err := svc.Submit(ctx, draft.ID)
	code, ok := domain.GetCode(err)
	rq.True(ok)
	rq.Equal(errcodes.DraftNotFound, code)

	close(handler.release)
	rq.NoError(<-firstDone)
	rq.Equal(1, handler.callCount())
}

func TestConcurrentEditsDuringSubmit(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	handler := &handlerStub{}
	svc := acceptance.NewService(handler)
	draft := svc.Open(ctx, testOffer(), "trd-1")

	_, err := svc.UpdateAmount(ctx, draft.ID, "100")
	rq.NoError(err)

	stop := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case <-stop:
				return
			default:
			}

			// После сабмита драфт закрыт, правка получает DraftNotFound.
			if _, err := svc.UpdateAmount(ctx, draft.ID, "100"); err != nil {
				return
			}
		}
	}()

	_, err = svc.Submit(ctx, draft.ID)

	close(stop)
	wg.Wait()

	rq.NoError(err)
	rq.Len(handler.intents, 1)
}

func TestAbandonedDraftExpires(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	svc := acceptance.NewService(&handlerStub{}).WithDraftTTL(20 * time.Millisecond)

	draft := svc.Open(ctx, testOffer(), "trd-1")

	_, err := svc.Get(ctx, draft.ID)
	rq.NoError(err)

	time.Sleep(60 * time.Millisecond)

	_, err = svc.Get(ctx, draft.ID)
	code, ok := domain.GetCode(err)
	rq.True(ok)
	rq.Equal(errcodes.DraftNotFound, code)
}

func TestEditExtendsDraftLife(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	svc := acceptance.NewService(&handlerStub{}).WithDraftTTL(60 * time.Millisecond)

	draft := svc.Open(ctx, testOffer(), "trd-1")

	// Правки в середине срока жизни сдвигают TTL, драфт переживает
	// исходное окно.
	for range 4 {
		time.Sleep(30 * time.Millisecond)

		_, err := svc.UpdateAmount(ctx, draft.ID, "75")
		rq.NoError(err)
	}

	got, err := svc.Get(ctx, draft.ID)
	rq.NoError(err)
	rq.Equal("75", got.AmountText)
}

func TestIndependentDrafts(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	svc := acceptance.NewService(&handlerStub{})

	a := svc.Open(ctx, testOffer(), "trd-1")

	other := testOffer()
	other.ID = "ofr-2"
	b := svc.Open(ctx, other, "trd-2")

	_, err := svc.UpdateAmount(ctx, a.ID, "100")
	rq.NoError(err)

	gotB, err := svc.Get(ctx, b.ID)
	rq.NoError(err)
	rq.Equal("50", gotB.AmountText)
}
