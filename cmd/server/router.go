package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/notekeeper-api/internal/api"
	apiMiddleware "github.com/phrazzld/notekeeper-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware. It accepts the application dependencies to create handlers
// and register routes. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	// Create API handlers using the application's services
	noteHandler := api.NewNoteHandler(app.noteService)
	attachmentHandler := api.NewAttachmentHandler(app.attachmentService)
	archiveHandler := api.NewArchiveHandler(app.archiveService)

	// Register routes
	r.Route("/notes", func(r chi.Router) {
		r.Post("/", noteHandler.CreateNote)
		r.Get("/", noteHandler.ListNotes)

		r.Route("/{noteId}", func(r chi.Router) {
			r.Get("/", noteHandler.GetNote)
			r.Patch("/", noteHandler.UpdateNote)
			r.Delete("/", noteHandler.DeleteNote)

			r.Route("/attachments", func(r chi.Router) {
				r.Get("/", attachmentHandler.List)
				r.Put("/{attachmentId}", attachmentHandler.Upload)
				r.Get("/{attachmentId}", attachmentHandler.Download)
				r.Delete("/{attachmentId}", attachmentHandler.Delete)
			})

			r.Route("/attachmentszipfiles", func(r chi.Router) {
				r.Post("/", archiveHandler.Request)
				r.Get("/", archiveHandler.List)
				r.Get("/{archiveId}", archiveHandler.Download)
				r.Delete("/{archiveId}", archiveHandler.Delete)
			})
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
