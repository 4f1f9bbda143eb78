// Package board собирает витрину офферов: синк из внешнего листинга,
// карточки с обратным отсчётом и иконками, чистка протухших записей.
package board

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"p2p_market/internal/domain/entity"
	"p2p_market/internal/domain/service/expiry"
	"p2p_market/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	seenCacheTTL     = 5 * time.Minute
	seenCacheCleanup = 10 * time.Minute
)

type OfferRepository interface {
	Upsert(ctx context.Context, offer *entity.Offer) error
	GetByID(ctx context.Context, id string) (*entity.Offer, error)
	ListOpen(ctx context.Context, now time.Time, limit, offset int) ([]*entity.Offer, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type ListingClient interface {
	FetchOffers(ctx context.Context) ([]entity.Offer, error)
}

// IconResolver отдаёт URL иконки по тикеру. Провалившийся лукап не должен
// ломать карточку: резолвер возвращает пустую строку, не ошибку.
type IconResolver interface {
	CryptoIcon(symbol string) string
}

// Card оффер, подготовленный к показу: срок жизни уже превращён в человеческий
// лейбл, иконка найдена.
type Card struct {
	Offer       entity.Offer
	ExpiryLabel string
	IconURL     string
}

type SyncResult struct {
	Upserted int
	Skipped  int
	Rejected int
}

type Service struct {
	repo    OfferRepository
	listing ListingClient
	icons   IconResolver
	now     func() time.Time

	// Офферы, уже виденные в недавних выгрузках листинга; апсерты для них
	// можно пропустить.
	seenCache *cache.Cache
}

func NewService(repo OfferRepository, listing ListingClient, icons IconResolver) *Service {
	return &Service{
		repo:      repo,
		listing:   listing,
		icons:     icons,
		now:       time.Now,
		seenCache: cache.New(seenCacheTTL, seenCacheCleanup),
	}
}

// WithClock подменяет источник времени (для тестов).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ListOpen возвращает страницу живых офферов в виде карточек.
func (s *Service) ListOpen(ctx context.Context, limit, offset int) ([]Card, error) {
	now := s.now()

	offers, err := s.repo.ListOpen(ctx, now, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list open offers: %w", err)
	}

	cards := make([]Card, 0, len(offers))
	for _, offer := range offers {
		cards = append(cards, s.card(*offer, now))
	}

	return cards, nil
}

// Get возвращает карточку одного оффера. Протухший оффер не скрывается:
// карточка уходит с лейблом Expired, решение об отказе — за вызывающим.
func (s *Service) Get(ctx context.Context, id string) (Card, error) {
	offer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Card{}, err
	}

	return s.card(*offer, s.now()), nil
}

// SyncFromListing забирает выгрузку листинга и вливает её в репозиторий.
// Кривые офферы отбрасываются на входе, остальной код им доверяет.
func (s *Service) SyncFromListing(ctx context.Context) (SyncResult, error) {
	logger(ctx).Info("board sync started")

	offers, err := s.listing.FetchOffers(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("fetch listing offers: %w", err)
	}

	logger(ctx).Info("fetched offers from listing", "count", len(offers))

	var result SyncResult

	for i := range offers {
		offer := offers[i]

		if err := offer.Validate(); err != nil {
			logger(ctx).Warn("rejected malformed offer", "id", offer.ID, "error", err)
			result.Rejected++

			continue
		}

		if _, found := s.seenCache.Get(offer.ID); found {
			result.Skipped++
			continue
		}

		if err := s.repo.Upsert(ctx, &offer); err != nil {
			logger(ctx).Error("failed to upsert offer", "id", offer.ID, "error", err)
			result.Rejected++

			continue
		}

		s.seenCache.Set(offer.ID, true, cache.DefaultExpiration)
		result.Upserted++
	}

	logger(ctx).Info("board sync finished",
		"upserted", result.Upserted,
		"skipped", result.Skipped,
		"rejected", result.Rejected,
	)

	return result, nil
}

// PruneExpired удаляет протухшие офферы из репозитория.
func (s *Service) PruneExpired(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("delete expired offers: %w", err)
	}

	if removed > 0 {
		logger(ctx).Info("pruned expired offers", "count", removed)
	}

	return removed, nil
}

func (s *Service) card(offer entity.Offer, now time.Time) Card {
	return Card{
		Offer:       offer,
		ExpiryLabel: expiry.Label(now, offer.ExpiresAt),
		IconURL:     s.icons.CryptoIcon(offer.CryptoSymbol),
	}
}
