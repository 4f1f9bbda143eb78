package server

import (
	"errors"
	"time"

	"git.appkode.ru/pub/go/failure"

	"p2p_market/internal/domain"
	"p2p_market/internal/domain/entity"
	"p2p_market/internal/domain/service/acceptance"
	"p2p_market/internal/domain/service/board"
	"p2p_market/internal/domain/service/convert"
	"p2p_market/pkg/errcodes"
	"p2p_market/pkg/rest"
)

func newRESTOffer(offer entity.Offer) rest.Offer {
	out := rest.Offer{
		ID:             offer.ID,
		Side:           offer.Side.String(),
		CryptoSymbol:   offer.CryptoSymbol,
		FiatCurrency:   offer.FiatCurrency,
		Quantity:       offer.Quantity.String(),
		UnitPrice:      offer.UnitPrice.String(),
		MinAmount:      offer.MinAmount.String(),
		MaxAmount:      offer.MaxAmount.String(),
		PaymentMethods: offer.PaymentMethods,
		Trader: rest.Trader{
			ID:          offer.Trader.ID,
			DisplayName: offer.Trader.DisplayName,
		},
		CreatedAt: offer.CreatedAt.Format(time.RFC3339),
		ExpiresAt: offer.ExpiresAt.Format(time.RFC3339),
	}

	if offer.Trader.Rating != nil {
		rating := offer.Trader.Rating.String()
		out.Trader.Rating = &rating
	}

	return out
}

func newRESTOfferCard(card board.Card) rest.OfferCard {
	return rest.OfferCard{
		Offer:       newRESTOffer(card.Offer),
		ExpiryLabel: card.ExpiryLabel,
		IconURL:     card.IconURL,
	}
}

// newRESTDraft собирает DTO драфта вместе с живым превью конвертации:
// фронт показывает пересчёт на каждое нажатие, не дожидаясь сабмита.
func newRESTDraft(draft acceptance.Draft) rest.Draft {
	preview := convert.ForInput(draft.AmountText, draft.Offer.UnitPrice, draft.Offer.Side)

	return rest.Draft{
		ID:         draft.ID,
		OfferID:    draft.Offer.ID,
		AmountText: draft.AmountText,
		Method:     draft.Method,
		Preview: rest.ConversionPreview{
			CryptoAmount: preview.CryptoAmount,
			FiatDisplay:  preview.FiatDisplay,
			Verb:         preview.Verb,
		},
	}
}

func newRESTAccept(intent entity.AcceptIntent) rest.AcceptResponse {
	return rest.AcceptResponse{
		OfferID:  intent.OfferID,
		Amount:   intent.Amount.String(),
		Method:   intent.Method,
		IssuedAt: intent.IssuedAt.Format(time.RFC3339),
	}
}

// asFailure переводит доменную ошибку в классифицируемую failure-ошибку,
// чтобы reply.Error выбрал правильный HTTP-статус. Неизвестные ошибки
// проходят насквозь и превращаются в 500.
func asFailure(err error) error {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		return err
	}

	switch appErr.Code {
	case errcodes.OfferNotFound, errcodes.DraftNotFound, errcodes.NotFound:
		return failure.NewNotFoundError(
			appErr.Error(),
			failure.WithCode(appErr.Code),
			failure.WithDescription(appErr.Message),
		)
	case errcodes.AmountOutOfRange, errcodes.ValidationError, errcodes.OfferExpired,
		errcodes.InvalidOffer, errcodes.InvalidOfferID, errcodes.InvalidOfferSide:
		return failure.NewInvalidArgumentError(
			appErr.Error(),
			failure.WithCode(appErr.Code),
			failure.WithDescription(appErr.Message),
		)
	default:
		return err
	}
}
