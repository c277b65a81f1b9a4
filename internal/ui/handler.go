// Package ui renders the server-side HTML surface: the ask page, the query
// history browser, and CSV export of logged results.
package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"t2s/internal/config"
	"t2s/internal/domain"
	"t2s/internal/middleware"
	"t2s/internal/service/ask"
	"t2s/internal/service/audit"

	gomponents "maragu.dev/gomponents"
)

type Handler struct {
	Ask    *ask.Service
	Audit  *audit.Service
	Engine domain.Engine
	Gen    domain.Generator
	Cfg    *config.Config
	Logger *slog.Logger
}

func NewHandler(
	askSvc *ask.Service,
	auditSvc *audit.Service,
	eng domain.Engine,
	gen domain.Generator,
	cfg *config.Config,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		Ask:    askSvc,
		Audit:  auditSvc,
		Engine: eng,
		Gen:    gen,
		Cfg:    cfg,
		Logger: logger,
	}
}

func (h *Handler) badge() headerBadge {
	return headerBadge{
		Provider: h.Gen.Name(),
		Model:    h.Gen.Model(),
		Dialect:  h.Engine.Dialect(),
	}
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

func parseFormOrRenderBadRequest(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "The submitted form could not be parsed."))
		return false
	}
	return true
}

func uiClientKey(r *http.Request) string {
	if key := middleware.ClientKeyFromContext(r.Context()); key != "" {
		return key
	}
	return "ui"
}

func (h *Handler) renderServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	title := "Unexpected Error"
	message := "An unexpected error occurred while loading this page."

	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		status = http.StatusNotFound
		title = "Not Found"
		message = notFound.Error()
	}
	renderHTML(w, status, errorPage(title, message))
}

func cellString(value any) string {
	if value == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", value)
}
