package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"p2p_market/internal/domain/service/board"
	"p2p_market/pkg/httpx/reply"
	"p2p_market/pkg/lox"
	"p2p_market/pkg/rest"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

type boardService interface {
	ListOpen(ctx context.Context, limit, offset int) ([]board.Card, error)
	Get(ctx context.Context, id string) (board.Card, error)
}

type OfferServer struct {
	boardService boardService
}

func NewOfferServer(boardService boardService) OfferServer {
	return OfferServer{
		boardService: boardService,
	}
}

func (s OfferServer) getV1Offers(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	limit, offset := pageParams(r)

	cards, err := s.boardService.ListOpen(ctx, limit, offset)
	if err != nil {
		return fmt.Errorf("boardService.ListOpen: %w", asFailure(err))
	}

	reply.JSON(ctx, w, http.StatusOK, rest.OfferList{
		Offers: lox.Map(cards, newRESTOfferCard),
	})

	return nil
}

func (s OfferServer) getV1Offer(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	card, err := s.boardService.Get(ctx, r.PathValue("id"))
	if err != nil {
		return fmt.Errorf("boardService.Get: %w", asFailure(err))
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTOfferCard(card))

	return nil
}

// pageParams разбирает пагинацию. Мусор в параметрах не ошибка,
// а повод взять дефолты.
func pageParams(r *http.Request) (limit, offset int) {
	limit = defaultPageLimit

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = min(v, maxPageLimit)
		}
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			offset = v
		}
	}

	return limit, offset
}
