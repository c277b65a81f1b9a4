// Package api exposes the pipeline over a JSON HTTP surface.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"t2s/internal/domain"
	"t2s/internal/middleware"
	"t2s/internal/service/ask"
	"t2s/internal/service/audit"
)

// Handler serves the /api/v1 JSON endpoints.
type Handler struct {
	ask    *ask.Service
	audit  *audit.Service
	engine domain.Engine
	logger *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(askSvc *ask.Service, auditSvc *audit.Service, engine domain.Engine, logger *slog.Logger) *Handler {
	return &Handler{
		ask:    askSvc,
		audit:  auditSvc,
		engine: engine,
		logger: logger,
	}
}

// Routes returns the /api/v1 router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/ask", h.handleAsk)
	r.Post("/ask/stream", h.handleAskStream)
	r.Get("/history", h.handleHistoryList)
	r.Get("/history/{id}", h.handleHistoryGet)
	r.Delete("/history", h.handleHistoryClear)
	r.Get("/schema", h.handleSchema)
	return r
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Question   string   `json:"question"`
	RawSQL     string   `json:"raw_sql"`
	CleanedSQL string   `json:"cleaned_sql"`
	SafeSQL    string   `json:"safe_sql"`
	LimitAdded bool     `json:"limit_added"`
	Columns    []string `json:"columns"`
	Rows       [][]any  `json:"rows"`
	RowCount   int      `json:"row_count"`
	ExecMS     float64  `json:"exec_ms"`
	AuditID    int64    `json:"audit_id"`
}

func toAskResponse(result *domain.AskResult) askResponse {
	return askResponse{
		Question:   result.Question,
		RawSQL:     result.RawSQL,
		CleanedSQL: result.CleanedSQL,
		SafeSQL:    result.SafeSQL,
		LimitAdded: result.LimitAdded,
		Columns:    result.Columns,
		Rows:       result.Rows,
		RowCount:   result.RowCount,
		ExecMS:     result.ExecMS,
		AuditID:    result.AuditID,
	}
}

func decodeQuestion(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return "", false
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeBadRequest(w, "question is required")
		return "", false
	}
	return question, true
}

func clientKey(r *http.Request) string {
	if key := middleware.ClientKeyFromContext(r.Context()); key != "" {
		return key
	}
	return "anonymous"
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	question, ok := decodeQuestion(w, r)
	if !ok {
		return
	}

	result, err := h.ask.Ask(r.Context(), clientKey(r), question)
	if err != nil {
		writeError(w, err, result)
		return
	}
	writeJSON(w, http.StatusOK, toAskResponse(result))
}

// handleAskStream forwards generation chunks as server-sent events. Each
// chunk is one `chunk` event with a JSON-encoded string payload (chunks may
// contain newlines); the stream ends with either a `done` event or an
// `error` event carrying the usual envelope body.
func (h *Handler) handleAskStream(w http.ResponseWriter, r *http.Request) {
	question, ok := decodeQuestion(w, r)
	if !ok {
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		writeErrorBody(w, http.StatusInternalServerError, errorBody{Kind: "internal", Message: "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	chunks, errc := h.ask.AskStream(r.Context(), clientKey(r), question)
	for chunk := range chunks {
		data, err := json.Marshal(chunk)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "event: chunk\ndata: %s\n\n", data)
		flusher.Flush()
	}

	if err := <-errc; err != nil {
		// The status line is long gone; the error travels as an event
		// carrying the usual envelope body.
		_, body := mapError(err, nil)
		data, _ := json.Marshal(body)
		fmt.Fprintf(w, "event: error\ndata: %s\n\n", data)
		flusher.Flush()
		return
	}
	fmt.Fprint(w, "event: done\ndata: {}\n\n")
	flusher.Flush()
}

type summaryResponse struct {
	ID        int64    `json:"id"`
	CreatedAt string   `json:"created_at"`
	Question  string   `json:"question"`
	Provider  string   `json:"provider"`
	Model     string   `json:"model"`
	RowCount  *int64   `json:"row_count"`
	ExecMS    *float64 `json:"exec_ms"`
	Error     *string  `json:"error"`
}

func (h *Handler) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	summaries, err := h.audit.History(r.Context(), limit)
	if err != nil {
		h.logger.Error("history list failed", "error", err)
		writeError(w, err, nil)
		return
	}

	out := make([]summaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, summaryResponse{
			ID:        s.ID,
			CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
			Question:  s.Question,
			Provider:  s.Provider,
			Model:     s.Model,
			RowCount:  s.RowCount,
			ExecMS:    s.ExecMS,
			Error:     s.Error,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type recordResponse struct {
	ID         int64    `json:"id"`
	CreatedAt  string   `json:"created_at"`
	Provider   string   `json:"provider"`
	Model      string   `json:"model"`
	DBPath     string   `json:"db_path"`
	Dialect    string   `json:"dialect"`
	Question   string   `json:"question"`
	RawSQL     string   `json:"raw_sql"`
	CleanedSQL string   `json:"cleaned_sql"`
	SafeSQL    string   `json:"safe_sql"`
	LimitAdded bool     `json:"limit_added"`
	RowCount   *int64   `json:"row_count"`
	ExecMS     *float64 `json:"exec_ms"`
	Error      *string  `json:"error"`
}

func (h *Handler) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "id must be an integer")
		return
	}

	rec, err := h.audit.Entry(r.Context(), id)
	if err != nil {
		writeError(w, err, nil)
		return
	}

	writeJSON(w, http.StatusOK, recordResponse{
		ID:         rec.ID,
		CreatedAt:  rec.CreatedAt.UTC().Format(time.RFC3339),
		Provider:   rec.Provider,
		Model:      rec.Model,
		DBPath:     rec.DBPath,
		Dialect:    rec.Dialect,
		Question:   rec.Question,
		RawSQL:     rec.RawSQL,
		CleanedSQL: rec.CleanedSQL,
		SafeSQL:    rec.SafeSQL,
		LimitAdded: rec.LimitAdded,
		RowCount:   rec.RowCount,
		ExecMS:     rec.ExecMS,
		Error:      rec.Error,
	})
}

func (h *Handler) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if err := h.audit.Clear(r.Context()); err != nil {
		h.logger.Error("history clear failed", "error", err)
		writeError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type schemaTableResponse struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

func (h *Handler) handleSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := h.engine.Schema(r.Context())
	if err != nil {
		h.logger.Error("schema introspection failed", "error", err)
		writeError(w, err, nil)
		return
	}

	out := make([]schemaTableResponse, 0, len(schema))
	for _, table := range schema {
		out = append(out, schemaTableResponse{Name: table.Name, Columns: table.Columns})
	}
	writeJSON(w, http.StatusOK, out)
}
