package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"t2s/internal/domain"
)

// errorSQL carries the SQL stages attempted before an execution failure so
// API callers can inspect what ran without a second history lookup.
type errorSQL struct {
	RawSQL     string `json:"raw_sql"`
	CleanedSQL string `json:"cleaned_sql"`
	SafeSQL    string `json:"safe_sql"`
	LimitAdded bool   `json:"limit_added"`
}

type errorBody struct {
	Kind              string    `json:"kind"`
	Message           string    `json:"message"`
	RetryAfterSeconds int       `json:"retry_after_seconds,omitempty"`
	SQL               *errorSQL `json:"sql,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// mapError translates a domain error into a status code and envelope body.
func mapError(err error, attempted *domain.AskResult) (int, errorBody) {
	var (
		tooLong  *domain.InputTooLongError
		limited  *domain.RateLimitedError
		safety   *domain.SafetyError
		genErr   *domain.GenerationError
		execErr  *domain.ExecutionError
		notFound *domain.NotFoundError
	)

	switch {
	case errors.As(err, &tooLong):
		return http.StatusBadRequest, errorBody{Kind: "input_too_long", Message: tooLong.Error()}
	case errors.As(err, &limited):
		return http.StatusTooManyRequests, errorBody{
			Kind:              "rate_limited",
			Message:           limited.Error(),
			RetryAfterSeconds: retryAfterSeconds(limited),
		}
	case errors.As(err, &safety):
		return http.StatusUnprocessableEntity, errorBody{
			Kind:    "safety_" + string(safety.Reason),
			Message: safety.Message,
		}
	case errors.As(err, &genErr):
		return http.StatusBadGateway, errorBody{Kind: "generation_error", Message: genErr.Error()}
	case errors.As(err, &execErr):
		body := errorBody{Kind: "execution_error", Message: execErr.Message}
		if attempted != nil {
			body.SQL = &errorSQL{
				RawSQL:     attempted.RawSQL,
				CleanedSQL: attempted.CleanedSQL,
				SafeSQL:    attempted.SafeSQL,
				LimitAdded: attempted.LimitAdded,
			}
		}
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &notFound):
		return http.StatusNotFound, errorBody{Kind: "not_found", Message: notFound.Message}
	default:
		return http.StatusInternalServerError, errorBody{Kind: "internal", Message: "internal error"}
	}
}

func writeError(w http.ResponseWriter, err error, attempted *domain.AskResult) {
	status, body := mapError(err, attempted)
	if body.Kind == "rate_limited" {
		w.Header().Set("Retry-After", strconv.Itoa(body.RetryAfterSeconds))
	}
	writeErrorBody(w, status, body)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeErrorBody(w, http.StatusBadRequest, errorBody{Kind: "bad_request", Message: message})
}

func writeErrorBody(w http.ResponseWriter, status int, body errorBody) {
	writeJSON(w, status, errorEnvelope{Error: body})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// retryAfterSeconds rounds the retry hint up so a client that sleeps the
// advertised time lands after the window opens.
func retryAfterSeconds(limited *domain.RateLimitedError) int {
	secs := int(math.Ceil(limited.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}
