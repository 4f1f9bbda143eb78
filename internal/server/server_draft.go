package server

import (
	"context"
	"fmt"
	"net/http"

	"p2p_market/internal/domain"
	"p2p_market/internal/domain/entity"
	"p2p_market/internal/domain/service/acceptance"
	"p2p_market/internal/domain/service/expiry"
	"p2p_market/pkg/contextx"
	"p2p_market/pkg/errcodes"
	"p2p_market/pkg/httpx/reply"
	"p2p_market/pkg/httpx/req"
	"p2p_market/pkg/rest"
)

type acceptanceService interface {
	Open(ctx context.Context, offer entity.Offer, traderID string) acceptance.Draft
	Get(ctx context.Context, draftID string) (acceptance.Draft, error)
	UpdateAmount(ctx context.Context, draftID, text string) (acceptance.Draft, error)
	UpdateMethod(ctx context.Context, draftID, method string) (acceptance.Draft, error)
	Submit(ctx context.Context, draftID string) (entity.AcceptIntent, error)
	Cancel(ctx context.Context, draftID string)
}

type DraftServer struct {
	boardService      boardService
	acceptanceService acceptanceService
}

func NewDraftServer(boardService boardService, acceptanceService acceptanceService) DraftServer {
	return DraftServer{
		boardService:      boardService,
		acceptanceService: acceptanceService,
	}
}

func (s DraftServer) postV1OfferDraft(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	card, err := s.boardService.Get(ctx, r.PathValue("id"))
	if err != nil {
		return fmt.Errorf("boardService.Get: %w", asFailure(err))
	}

	// Протухший оффер на карточке ещё показывается, но драфт по нему
	// уже не открыть.
	if card.ExpiryLabel == expiry.ExpiredLabel {
		return asFailure(domain.NewError(errcodes.OfferExpired, "offer has expired"))
	}

	draft := s.acceptanceService.Open(ctx, card.Offer, traderID(ctx))

	reply.JSON(ctx, w, http.StatusCreated, newRESTDraft(draft))

	return nil
}

func (s DraftServer) getV1Draft(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	draft, err := s.acceptanceService.Get(ctx, r.PathValue("id"))
	if err != nil {
		return fmt.Errorf("acceptanceService.Get: %w", asFailure(err))
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDraft(draft))

	return nil
}

// patchV1Draft применяет правки к драфту не проверяя их: промежуточные
// значения валидируются только на подтверждении.
func (s DraftServer) patchV1Draft(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	draftID := r.PathValue("id")

	var request rest.UpdateDraftRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	draft, err := s.acceptanceService.Get(ctx, draftID)
	if err != nil {
		return fmt.Errorf("acceptanceService.Get: %w", asFailure(err))
	}

	if request.AmountText != nil {
		draft, err = s.acceptanceService.UpdateAmount(ctx, draftID, *request.AmountText)
		if err != nil {
			return fmt.Errorf("acceptanceService.UpdateAmount: %w", asFailure(err))
		}
	}

	if request.Method != nil {
		draft, err = s.acceptanceService.UpdateMethod(ctx, draftID, *request.Method)
		if err != nil {
			return fmt.Errorf("acceptanceService.UpdateMethod: %w", asFailure(err))
		}
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDraft(draft))

	return nil
}

func (s DraftServer) postV1DraftAccept(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	intent, err := s.acceptanceService.Submit(ctx, r.PathValue("id"))
	if err != nil {
		return fmt.Errorf("acceptanceService.Submit: %w", asFailure(err))
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTAccept(intent))

	return nil
}

func (s DraftServer) deleteV1Draft(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	s.acceptanceService.Cancel(ctx, r.PathValue("id"))

	reply.NoContent(w)

	return nil
}

// traderID достаёт идентификатор инициатора из контекста. Заголовок
// опционален: анонимный драфт допустим, авторизация — не наша зона.
func traderID(ctx context.Context) string {
	id, err := contextx.TraderIDFromContext(ctx)
	if err != nil {
		return ""
	}

	return id.String()
}
