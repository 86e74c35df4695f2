package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts all calculator endpoints onto the given router
// under the /calculator/{userID} prefix.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/calculator/{userID}", func(r chi.Router) {
		r.Post("/press", h.Press)
		r.Post("/input", h.Input)
		r.Get("/display", h.Display)
		r.Delete("/session", h.ClearSession)
	})
}
