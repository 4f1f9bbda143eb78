// Package acceptance реализует сценарий принятия оффера: открытие драфта,
// свободное редактирование суммы и метода расчёта, подтверждение.
// Контракт двухфазный: мутаторы ничего не проверяют, вся валидация
// откладывается до Submit, чтобы промежуточный ввод не ловил ошибок.
package acceptance

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/xid"
	"github.com/shopspring/decimal"

	"p2p_market/internal/domain"
	"p2p_market/internal/domain/entity"
	"p2p_market/pkg/errcodes"
)

const (
	// Брошенные драфты (открыли и ушли) выметаются по TTL, иначе публичная
	// ручка открытия драфта раздувает память без ограничений.
	draftTTL     = 15 * time.Minute
	draftCleanup = 30 * time.Minute
)

// AcceptHandler принимает подтверждённый интент. Его реализация живёт
// снаружи: сервис не ждёт исхода сделки, его ответственность заканчивается
// на вызове.
type AcceptHandler interface {
	HandleAccept(ctx context.Context, intent entity.AcceptIntent) error
}

// Draft снимок состояния драфта для отдачи наружу.
type Draft struct {
	ID         string
	Offer      entity.Offer
	TraderID   string
	AmountText string
	Method     string
	OpenedAt   time.Time
}

type draftState struct {
	offer      entity.Offer
	traderID   string
	amountText string
	method     string
	openedAt   time.Time
}

type Service struct {
	handler AcceptHandler
	now     func() time.Time

	// mu сериализует мутации полей draftState: сам кэш потокобезопасен,
	// но значения в нём — указатели.
	mu     sync.Mutex
	drafts *cache.Cache
}

func NewService(handler AcceptHandler) *Service {
	return &Service{
		handler: handler,
		now:     time.Now,
		drafts:  cache.New(draftTTL, draftCleanup),
	}
}

// WithClock подменяет источник времени (для тестов).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithDraftTTL подменяет срок жизни брошенных драфтов (для тестов).
func (s *Service) WithDraftTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.drafts = cache.New(ttl, ttl)
	}

	return s
}

// Open создаёт драфт с дефолтами: сумма — нижняя граница оффера, метод —
// первый из списка. Ошибок нет: кривой оффер даёт кривые дефолты, которые
// отсеет Submit.
func (s *Service) Open(_ context.Context, offer entity.Offer, traderID string) Draft {
	state := &draftState{
		offer:      offer,
		traderID:   traderID,
		amountText: offer.MinAmount.String(),
		method:     offer.DefaultPaymentMethod(),
		openedAt:   s.now(),
	}

	id := xid.New().String()

	s.mu.Lock()
	s.drafts.Set(id, state, cache.DefaultExpiration)
	s.mu.Unlock()

	return snapshot(id, state)
}

// UpdateAmount заменяет текст суммы как есть, без разбора: промежуточные
// состояния набора (пустая строка, недописанная дробь) легальны.
func (s *Service) UpdateAmount(_ context.Context, draftID, text string) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.state(draftID)
	if !ok {
		return Draft{}, domain.NewError(errcodes.DraftNotFound, "draft not found")
	}

	state.amountText = text
	// Правка продлевает жизнь драфта: TTL отсчитывается заново.
	s.drafts.Set(draftID, state, cache.DefaultExpiration)

	return snapshot(draftID, state), nil
}

// UpdateMethod заменяет метод расчёта без проверки членства: она тоже
// откладывается до Submit.
func (s *Service) UpdateMethod(_ context.Context, draftID, method string) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.state(draftID)
	if !ok {
		return Draft{}, domain.NewError(errcodes.DraftNotFound, "draft not found")
	}

	state.method = method
	s.drafts.Set(draftID, state, cache.DefaultExpiration)

	return snapshot(draftID, state), nil
}

func (s *Service) Get(_ context.Context, draftID string) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.state(draftID)
	if !ok {
		return Draft{}, domain.NewError(errcodes.DraftNotFound, "draft not found")
	}

	return snapshot(draftID, state), nil
}

// Submit валидирует драфт и отдаёт интент обработчику. Драфт снимается с
// учёта на время вызова, так что один драфт порождает максимум один интент:
// параллельный Submit того же драфта получит DraftNotFound. При любой
// неудаче (диапазон, метод, обработчик) драфт возвращается на место и
// остаётся открытым для повторной попытки.
func (s *Service) Submit(ctx context.Context, draftID string) (entity.AcceptIntent, error) {
	s.mu.Lock()

	state, ok := s.state(draftID)
	if !ok {
		s.mu.Unlock()
		return entity.AcceptIntent{}, domain.NewError(errcodes.DraftNotFound, "draft not found")
	}

	snap := *state
	s.drafts.Delete(draftID)
	s.mu.Unlock()

	// Провал разбора — тот же класс ошибки, что и выход за диапазон.
	amount, err := decimal.NewFromString(snap.amountText)
	if err != nil || !withinLimits(amount, snap.offer) {
		s.restore(draftID, state)
		return entity.AcceptIntent{}, outOfRangeError(snap.offer)
	}

	// Пустой список методов не валидируется отдельно: это дефект листинга,
	// а не вина тейкера.
	if len(snap.offer.PaymentMethods) > 0 && !snap.offer.AcceptsMethod(snap.method) {
		s.restore(draftID, state)
		return entity.AcceptIntent{}, domain.NewErrorf(
			errcodes.ValidationError,
			"payment method %q is not accepted by the offer", snap.method,
		)
	}

	intent := entity.AcceptIntent{
		OfferID:  snap.offer.ID,
		TraderID: snap.traderID,
		Amount:   amount,
		Method:   snap.method,
		IssuedAt: s.now(),
	}

	if err := s.handler.HandleAccept(ctx, intent); err != nil {
		s.restore(draftID, state)
		return entity.AcceptIntent{}, domain.WrapError(err, errcodes.InternalServerError, "accept handler failed")
	}

	return intent, nil
}

// Cancel закрывает драфт. Повторная отмена и отмена незнакомого id безвредны.
func (s *Service) Cancel(_ context.Context, draftID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drafts.Delete(draftID)
}

// state достаёт живой драфт из кэша. Вызывается только под s.mu.
func (s *Service) state(draftID string) (*draftState, bool) {
	v, ok := s.drafts.Get(draftID)
	if !ok {
		return nil, false
	}

	return v.(*draftState), true
}

// restore возвращает драфт, снятый на время Submit. Если за это время успели
// открыть новый драфт с тем же id (невозможно при xid, но дёшево проверить),
// старый не перетирает его.
func (s *Service) restore(draftID string, state *draftState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drafts.Get(draftID); !ok {
		s.drafts.Set(draftID, state, cache.DefaultExpiration)
	}
}

func withinLimits(amount decimal.Decimal, offer entity.Offer) bool {
	return amount.GreaterThanOrEqual(offer.MinAmount) && amount.LessThanOrEqual(offer.MaxAmount)
}

func outOfRangeError(offer entity.Offer) *domain.AppError {
	return domain.NewErrorf(
		errcodes.AmountOutOfRange,
		"amount must be between %s and %s %s",
		offer.MinAmount, offer.MaxAmount, offer.FiatCurrency,
	)
}

func snapshot(id string, state *draftState) Draft {
	return Draft{
		ID:         id,
		Offer:      state.offer,
		TraderID:   state.traderID,
		AmountText: state.amountText,
		Method:     state.method,
		OpenedAt:   state.openedAt,
	}
}
