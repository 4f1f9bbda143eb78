package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"p2p_market/internal/domain"
	"p2p_market/internal/domain/entity"
	"p2p_market/pkg/errcodes"
	"p2p_market/pkg/lox"
)

const offerColumns = `id, side, crypto_symbol, fiat_currency, quantity, unit_price,
		min_amount, max_amount, payment_methods, trader, created_at, expires_at`

type OfferRepository struct {
	db *sqlx.DB
}

// NewOfferRepository создаёт новый экземпляр репозитория.
func NewOfferRepository(db *sqlx.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

// withTx выполняет функцию в транзакции.
func (r *OfferRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return domain.WrapError(
				fmt.Errorf("%w; rollback: %v", err, rbErr),
				errcodes.InternalServerError,
				"transaction failed",
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to commit")
	}

	return nil
}

// Upsert сохраняет оффер, перезаписывая предыдущую версию с тем же id.
// Листинг — источник истины, локальная копия всегда уступает свежей выгрузке.
func (r *OfferRepository) Upsert(ctx context.Context, offer *entity.Offer) error {
	schema, err := fromOffer(offer)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to marshal offer")
	}

	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO offers (` + offerColumns + `)
			VALUES (:id, :side, :crypto_symbol, :fiat_currency, :quantity, :unit_price,
				:min_amount, :max_amount, :payment_methods, :trader, :created_at, :expires_at)
			ON CONFLICT (id) DO UPDATE SET
				side = EXCLUDED.side,
				crypto_symbol = EXCLUDED.crypto_symbol,
				fiat_currency = EXCLUDED.fiat_currency,
				quantity = EXCLUDED.quantity,
				unit_price = EXCLUDED.unit_price,
				min_amount = EXCLUDED.min_amount,
				max_amount = EXCLUDED.max_amount,
				payment_methods = EXCLUDED.payment_methods,
				trader = EXCLUDED.trader,
				expires_at = EXCLUDED.expires_at`

		if _, err := tx.NamedExecContext(ctx, query, schema); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to upsert offer")
		}

		return nil
	})
}

// GetByID возвращает оффер по идентификатору.
func (r *OfferRepository) GetByID(ctx context.Context, id string) (*entity.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`

	var schema offerSchema
	if err := r.db.GetContext(ctx, &schema, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.OfferNotFound, "offer not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get offer")
	}

	offer, err := schema.toDomain()
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to convert offer")
	}

	return offer, nil
}

// ListOpen возвращает страницу непротухших офферов, свежие сверху.
func (r *OfferRepository) ListOpen(ctx context.Context, now time.Time, limit, offset int) ([]*entity.Offer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM offers
		WHERE expires_at > $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	var schemas []offerSchema
	if err := r.db.SelectContext(ctx, &schemas, query, now, limit, offset); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list offers")
	}

	offers, err := lox.MapErr(schemas, func(s offerSchema) (*entity.Offer, error) {
		return s.toDomain()
	})
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to convert offers")
	}

	return offers, nil
}

// DeleteExpired удаляет офферы, чей срок жизни прошёл.
func (r *OfferRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM offers WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, domain.WrapError(err, errcodes.InternalServerError, "failed to delete expired offers")
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, domain.WrapError(err, errcodes.InternalServerError, "failed to check affected rows")
	}

	return removed, nil
}
