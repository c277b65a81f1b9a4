package ui

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"t2s/internal/sqlsafety"
)

const csvMaxRows = 5000

func (h *Handler) HistoryList(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.Audit.History(r.Context(), 0)
	if err != nil {
		h.renderServiceError(w, err)
		return
	}
	renderHTML(w, http.StatusOK, historyListPage(h.badge(), summaries))
}

func (h *Handler) HistoryDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "The entry ID must be an integer."))
		return
	}

	rec, err := h.Audit.Entry(r.Context(), id)
	if err != nil {
		h.renderServiceError(w, err)
		return
	}
	renderHTML(w, http.StatusOK, historyDetailPage(h.badge(), rec))
}

func (h *Handler) HistoryClear(w http.ResponseWriter, r *http.Request) {
	if err := h.Audit.Clear(r.Context()); err != nil {
		h.renderServiceError(w, err)
		return
	}
	http.Redirect(w, r, "/history", http.StatusSeeOther)
}

// HistoryDownloadCSV re-runs a logged query and streams the rows as CSV.
// The stored SQL goes through the safety gate again before touching the
// database.
func (h *Handler) HistoryDownloadCSV(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "The entry ID must be an integer."))
		return
	}

	rec, err := h.Audit.Entry(r.Context(), id)
	if err != nil {
		h.renderServiceError(w, err)
		return
	}
	if rec.SafeSQL == "" {
		renderHTML(w, http.StatusBadRequest, errorPage("Nothing to Export", "This entry has no validated SQL. Streaming and rejected requests cannot be re-executed."))
		return
	}

	validated, err := sqlsafety.Validate(rec.SafeSQL)
	if err != nil {
		h.Logger.Warn("stored SQL failed safety re-validation", "id", id, "error", err)
		renderHTML(w, http.StatusBadRequest, errorPage("Export Refused", "The stored SQL failed safety re-validation and was not executed."))
		return
	}
	safe := sqlsafety.EnforceLimit(validated, h.Cfg.DefaultRowLimit)

	result, err := h.Engine.Query(r.Context(), safe.SQL)
	if err != nil {
		renderHTML(w, http.StatusUnprocessableEntity, errorPage("Export Failed", err.Error()))
		return
	}

	rows := result.Rows
	if len(rows) > csvMaxRows {
		rows = rows[:csvMaxRows]
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(result.Columns); err != nil {
		renderHTML(w, http.StatusInternalServerError, errorPage("Export Failed", "Failed writing CSV header."))
		return
	}
	for i := range rows {
		record := make([]string, 0, len(rows[i]))
		for j := range rows[i] {
			record = append(record, cellString(rows[i][j]))
		}
		if err := writer.Write(record); err != nil {
			renderHTML(w, http.StatusInternalServerError, errorPage("Export Failed", "Failed writing CSV rows."))
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		renderHTML(w, http.StatusInternalServerError, errorPage("Export Failed", "Failed finalizing CSV."))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("query_%d_results.csv", id)))
	if len(result.Rows) > csvMaxRows {
		w.Header().Set("X-T2S-Results-Truncated", "true")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
