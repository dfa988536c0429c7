package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"rehabcenter/internal/core"
	"rehabcenter/internal/services"
)

const maxBodyBytes = 1 << 20

// errorBody matches the {"detail": "..."} shape clients already parse.
type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// writeError maps domain errors onto status codes. Messages of user errors are
// passed through verbatim; internal failures are logged and masked.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ue *core.UserError
	hasMsg := errors.As(err, &ue)

	switch {
	case errors.Is(err, core.ErrNotFound):
		msg := core.MsgNotFound
		if hasMsg {
			msg = ue.Message
		}
		writeDetail(w, http.StatusNotFound, msg)
	case errors.Is(err, core.ErrDuplicateKey),
		errors.Is(err, core.ErrValidation),
		errors.Is(err, core.ErrInvalidPeriod),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrUnknownCategory):
		writeDetail(w, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a single JSON object, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", core.ErrValidation)
		}
		return fmt.Errorf("%w: invalid JSON body: %v", core.ErrValidation, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: request body must contain a single JSON object", core.ErrValidation)
	}
	return nil
}

func requiredInt(q url.Values, key string) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return 0, fmt.Errorf("%w: %s is required", core.ErrValidation, key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", core.ErrValidation, key)
	}
	return n, nil
}

// parsePeriod reads a required year and month pair from the query string.
func parsePeriod(q url.Values, yearKey, monthKey string) (core.Period, error) {
	year, err := requiredInt(q, yearKey)
	if err != nil {
		return core.Period{}, err
	}
	month, err := requiredInt(q, monthKey)
	if err != nil {
		return core.Period{}, err
	}
	return core.NewPeriod(year, month)
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", core.ErrValidation, r.PathValue("id"))
	}
	return id, nil
}

// writeExport streams a rendered workbook as an attachment.
func writeExport(w http.ResponseWriter, exp services.Export) {
	w.Header().Set("Content-Type", exp.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exp.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(exp.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(exp.Body)
}
