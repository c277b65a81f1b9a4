package ui

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"t2s/internal/ui/assets"
)

func MountRoutes(r chi.Router, h *Handler) {
	staticFS, err := fs.Sub(assets.StaticFS(), "static")
	if err == nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	}

	r.Get("/", h.AskPage)
	r.Post("/ask", h.AskSubmit)
	r.Get("/history", h.HistoryList)
	r.Get("/history/{id}", h.HistoryDetail)
	r.Get("/history/{id}/results.csv", h.HistoryDownloadCSV)
	r.Post("/history/clear", h.HistoryClear)
}
