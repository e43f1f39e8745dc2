package server

import (
	"net/http"

	"github.com/docubase-ai/docubase/internal/api"
	"github.com/docubase-ai/docubase/internal/api/handlers"
	"github.com/docubase-ai/docubase/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	DocumentHandler *handlers.DocumentHandler
	UploadHandler   *handlers.UploadHandler
	AskHandler      *handlers.AskHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 32 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", cfg.DocumentHandler.List)
		r.Delete("/{id}", cfg.DocumentHandler.Delete)
		r.Get("/{id}/download", cfg.DocumentHandler.Download)
	})

	r.Route("/upload", func(r chi.Router) {
		r.Post("/", cfg.UploadHandler.Upload)
		r.Get("/status/{id}", cfg.UploadHandler.Status)
	})

	r.Get("/ask", cfg.AskHandler.Ask)

	return r
}
