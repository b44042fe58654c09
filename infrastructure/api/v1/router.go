package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/neuronhq/neuron"
	"github.com/neuronhq/neuron/infrastructure/api/middleware"
)

// MountRoutes attaches the v1 API and the health endpoint to the router.
func MountRoutes(router chi.Router, client *neuron.Client) {
	router.Use(middleware.Logging(client.Logger()))

	router.Get("/healthz", Health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Mount("/projects", NewProjectsRouter(client).Routes())
	})
}

// Health handles GET /healthz.
func Health(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
