package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/mealplan/internal/model"
	"github.com/dukerupert/mealplan/internal/projection"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps projection errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, projection.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "not authenticated")
	case errors.Is(err, projection.ErrInvalidCount), errors.Is(err, projection.ErrInvalidCommand):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, projection.ErrStoreUnavailable):
		logger.Error(op, "error", err)
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
	default:
		logger.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// parseTimeRange reads the since and until query parameters, each either
// RFC 3339 or Unix milliseconds.
func parseTimeRange(r *http.Request) (model.TimeRange, error) {
	var tr model.TimeRange
	var err error
	if tr.Since, err = parseTime(r.URL.Query().Get("since")); err != nil {
		return tr, err
	}
	if tr.Until, err = parseTime(r.URL.Query().Get("until")); err != nil {
		return tr, err
	}
	return tr, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Parse(time.RFC3339, s)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(v)
}
