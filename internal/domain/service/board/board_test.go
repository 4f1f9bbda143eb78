package board_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"p2p_market/internal/domain"
	"p2p_market/internal/domain/entity"
	"p2p_market/internal/domain/service/board"
	"p2p_market/internal/domain/value"
	"p2p_market/pkg/errcodes"
)

type repoStub struct {
	offers  map[string]*entity.Offer
	upserts int
}

func newRepoStub() *repoStub {
	return &repoStub{offers: make(map[string]*entity.Offer)}
}

func (r *repoStub) Upsert(_ context.Context, offer *entity.Offer) error {
	r.offers[offer.ID] = offer
	r.upserts++

	return nil
}

func (r *repoStub) GetByID(_ context.Context, id string) (*entity.Offer, error) {
	offer, ok := r.offers[id]
	if !ok {
		return nil, domain.NewError(errcodes.OfferNotFound, "offer not found")
	}

	return offer, nil
}

func (r *repoStub) ListOpen(_ context.Context, now time.Time, limit, _ int) ([]*entity.Offer, error) {
	var out []*entity.Offer
	for _, offer := range r.offers {
		if offer.IsExpired(now) {
			continue
		}

		out = append(out, offer)
		if len(out) == limit {
			break
		}
	}

	return out, nil
}

func (r *repoStub) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var removed int64
	for id, offer := range r.offers {
		if offer.IsExpired(now) {
			delete(r.offers, id)
			removed++
		}
	}

	return removed, nil
}

type listingStub struct {
	offers []entity.Offer
}

func (l *listingStub) FetchOffers(_ context.Context) ([]entity.Offer, error) {
	return l.offers, nil
}

type iconsStub struct{}

func (iconsStub) CryptoIcon(symbol string) string {
	if symbol == "BTC" {
		return "https://cdn.example.com/icons/btc.svg"
	}

	return ""
}

func validOffer(id string, expiresIn time.Duration, now time.Time) entity.Offer {
	return entity.Offer{
		ID:             id,
		Side:           value.SideSell,
		CryptoSymbol:   "BTC",
		FiatCurrency:   "USD",
		Quantity:       decimal.RequireFromString("0.5"),
		UnitPrice:      decimal.RequireFromString("64231.00"),
		MinAmount:      decimal.RequireFromString("50"),
		MaxAmount:      decimal.RequireFromString("500"),
		PaymentMethods: []string{"bank_transfer"},
		Trader:         entity.Trader{ID: "trd-9", DisplayName: "maker"},
		CreatedAt:      now,
		ExpiresAt:      now.Add(expiresIn),
	}
}

func TestSyncFromListing(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	malformed := validOffer("ofr-bad", time.Hour, now)
	malformed.PaymentMethods = nil

	inverted := validOffer("ofr-inv", time.Hour, now)
	inverted.MinAmount, inverted.MaxAmount = inverted.MaxAmount, inverted.MinAmount

	repo := newRepoStub()
	listing := &listingStub{offers: []entity.Offer{
		validOffer("ofr-1", time.Hour, now),
		validOffer("ofr-2", 2*time.Hour, now),
		malformed,
		inverted,
	}}

	svc := board.NewService(repo, listing, iconsStub{}).WithClock(func() time.Time { return now })

	result, err := svc.SyncFromListing(ctx)
	rq.NoError(err)
	rq.Equal(2, result.Upserted)
	rq.Equal(2, result.Rejected)
	rq.Zero(result.Skipped)
	rq.Len(repo.offers, 2)

	// Повторный синк той же выгрузки не трогает репозиторий.
	result, err = svc.SyncFromListing(ctx)
	rq.NoError(err)
	rq.Zero(result.Upserted)
	rq.Equal(2, result.Skipped)
	rq.Equal(2, repo.upserts)
}

func TestListOpenCards(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	repo := newRepoStub()
	live := validOffer("ofr-live", 2*time.Hour+30*time.Minute, now)
	dead := validOffer("ofr-dead", -time.Minute, now)
	repo.offers[live.ID] = &live
	repo.offers[dead.ID] = &dead

	svc := board.NewService(repo, &listingStub{}, iconsStub{}).WithClock(func() time.Time { return now })

	cards, err := svc.ListOpen(ctx, 10, 0)
	rq.NoError(err)
	rq.Len(cards, 1)
	rq.Equal("ofr-live", cards[0].Offer.ID)
	rq.Equal("2h 30m left", cards[0].ExpiryLabel)
	rq.Equal("https://cdn.example.com/icons/btc.svg", cards[0].IconURL)
}

func TestGetExpiredCard(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	repo := newRepoStub()
	dead := validOffer("ofr-dead", -time.Minute, now)
	repo.offers[dead.ID] = &dead

	svc := board.NewService(repo, &listingStub{}, iconsStub{}).WithClock(func() time.Time { return now })

	// Протухший оффер отдаётся с лейблом, а не прячется.
	card, err := svc.Get(ctx, "ofr-dead")
	rq.NoError(err)
	rq.Equal("Expired", card.ExpiryLabel)

	_, err = svc.Get(ctx, "ofr-missing")
	code, ok := domain.GetCode(err)
	rq.True(ok)
	rq.Equal(errcodes.OfferNotFound, code)
}

func TestPruneExpired(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	repo := newRepoStub()
	live := validOffer("ofr-live", time.Hour, now)
	dead := validOffer("ofr-dead", -time.Hour, now)
	repo.offers[live.ID] = &live
	repo.offers[dead.ID] = &dead

	svc := board.NewService(repo, &listingStub{}, iconsStub{}).WithClock(func() time.Time { return now })

	removed, err := svc.PruneExpired(ctx)
	rq.NoError(err)
	rq.EqualValues(1, removed)
	rq.Len(repo.offers, 1)
}
