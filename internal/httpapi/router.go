package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP routing table for the ledger API.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", h.OpenAccount)
		r.Route("/{accountNumber}", func(r chi.Router) {
			r.Get("/balance", h.GetBalance)
			r.Get("/transactions", h.GetHistory)
			r.Post("/deposit", h.Deposit)
			r.Post("/withdraw", h.Withdraw)
		})
	})

	r.Post("/transfers", h.Transfer)

	return r
}
