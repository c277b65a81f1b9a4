package ui

import (
	"net/http"
	"strings"

	"t2s/internal/domain"
)

func (h *Handler) AskPage(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, http.StatusOK, askPage(askPageView{
		Badge:  h.badge(),
		Tables: h.schemaTables(r),
	}))
}

func (h *Handler) AskSubmit(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRenderBadRequest(w, r) {
		return
	}

	view := askPageView{
		Badge:    h.badge(),
		Question: strings.TrimSpace(r.Form.Get("question")),
		Tables:   h.schemaTables(r),
	}
	if view.Question == "" {
		view.RunError = "Enter a question to run the pipeline."
		renderHTML(w, http.StatusOK, askPage(view))
		return
	}

	result, err := h.Ask.Ask(r.Context(), uiClientKey(r), view.Question)
	if err != nil {
		view.RunError = err.Error()
		// Execution failures still carry the SQL stages that were attempted.
		view.Result = result
		renderHTML(w, http.StatusOK, askPage(view))
		return
	}

	view.Result = result
	renderHTML(w, http.StatusOK, askPage(view))
}

func (h *Handler) schemaTables(r *http.Request) domain.Schema {
	tables, err := h.Engine.Schema(r.Context())
	if err != nil {
		h.Logger.Warn("schema introspection failed", "error", err)
		return nil
	}
	return tables
}
