package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"p2p_market/pkg/httpx/reply"
)

func (s Server) RegisterRoutes(r chi.Router) { //nolint:funlen
	r.Route("/", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			// unauthorized zone
			r.Route("/offers", func(r chi.Router) {
				r.Get("/", handler(s.getV1Offers))
				r.Get("/{id}", handler(s.getV1Offer))
				r.Post("/{id}/drafts", handler(s.postV1OfferDraft))
			})
			r.Route("/drafts", func(r chi.Router) {
				r.Get("/{id}", handler(s.getV1Draft))
				r.Patch("/{id}", handler(s.patchV1Draft))
				r.Post("/{id}/accept", handler(s.postV1DraftAccept))
				r.Delete("/{id}", handler(s.deleteV1Draft))
			})
		})
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, err)
		}
	}
}
