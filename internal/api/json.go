package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/nibi/internal/ingot"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("api: json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error  string        `json:"error" validate:"required"`
	Issues []ingot.Issue `json:"issues,omitempty"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// invalidBody reports every field a strict parse rejected.
func invalidBody(err error) errResponse {
	return errResponse{Error: "invalid ingot", Issues: fieldIssues(err, nil)}
}

func fieldIssues(err error, acc []ingot.Issue) []ingot.Issue {
	switch e := err.(type) {
	case *ingot.InvalidFieldError:
		return append(acc, ingot.Issue{Key: e.Key, Value: e.Value, Reason: e.Reason})
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			acc = fieldIssues(inner, acc)
		}
		return acc
	}
	if inner := errors.Unwrap(err); inner != nil {
		return fieldIssues(inner, acc)
	}
	return acc
}
