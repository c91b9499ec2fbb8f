package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"dukaan/backend/internal/domain"
	"dukaan/backend/internal/report"
	"dukaan/backend/internal/service"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func (a *API) ok(w http.ResponseWriter, r *http.Request, data any, message string) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Message: message})
}

func (a *API) created(w http.ResponseWriter, r *http.Request, data any, message string) {
	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: data, Message: message})
}

// fail maps a service error onto its status code.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	a.writeError(w, r, statusFor(err), err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, domain.ErrInvalidReference):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrInactiveAccount):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	// 5xx details stay in the log; 4xx messages are user facing.
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		a.log.Error().
			Err(err).
			Str("request_id", requestIDFromContext(r.Context())).
			Int("status", status).
			Msg("request failed")
		msg = "internal server error"
	}

	body := envelope{Success: false, Error: msg, Message: msg}
	var verr *service.ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		body.Data = map[string]any{"errors": verr.Fields}
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decode reads a JSON body and answers 400 on failure.
func (a *API) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	contentType := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Type")))
	if !strings.HasPrefix(contentType, "application/json") {
		a.writeError(w, r, http.StatusUnsupportedMediaType, errors.New("content type must be application/json"))
		return false
	}
	if err := decodeJSON(r, dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			a.writeError(w, r, http.StatusRequestEntityTooLarge, errors.New("request body too large"))
			return false
		}
		a.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func (a *API) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		a.fail(w, r, &service.ValidationError{
			Message: "invalid id",
			Fields:  map[string]string{"id": "must be a positive integer"},
		})
		return 0, false
	}
	return id, true
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

// queryParams collects the first bad parameter so handlers check once.
type queryParams struct {
	r   *http.Request
	err error
}

func newQuery(r *http.Request) *queryParams {
	return &queryParams{r: r}
}

func (q *queryParams) invalid(name string, msg string) {
	if q.err == nil {
		q.err = &service.ValidationError{
			Message: fmt.Sprintf("invalid query parameter %s", name),
			Fields:  map[string]string{name: msg},
		}
	}
}

func (q *queryParams) text(name string) string {
	return strings.TrimSpace(q.r.URL.Query().Get(name))
}

func (q *queryParams) id(name string) *int64 {
	raw := q.text(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		q.invalid(name, "must be a positive integer")
		return nil
	}
	return &v
}

func (q *queryParams) integer(name string) *int64 {
	raw := q.text(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		q.invalid(name, "must be an integer")
		return nil
	}
	return &v
}

func (q *queryParams) flag(name string) bool {
	raw := q.text(name)
	if raw == "" {
		return false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		q.invalid(name, "must be true or false")
		return false
	}
	return v
}

// date parses YYYY-MM-DD or RFC3339. A bare end date covers the whole day.
func (q *queryParams) date(name string, endOfDay bool) *time.Time {
	raw := q.text(name)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return &t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	q.invalid(name, "must be YYYY-MM-DD or RFC3339")
	return nil
}

// dateRange reads start_date and end_date and rejects an inverted range.
func (q *queryParams) dateRange() (*time.Time, *time.Time) {
	from := q.date("start_date", false)
	to := q.date("end_date", true)
	if from != nil && to != nil && to.Before(*from) {
		q.invalid("end_date", "must not be before start_date")
	}
	return from, to
}

func (q *queryParams) limit() int {
	return parsePositiveLimit(q.text("limit"), defaultListLimit, maxListLimit)
}

func (q *queryParams) reportFilter() domain.ReportFilter {
	branchID := q.id("branch_id")
	from, to := q.dateRange()
	return domain.ReportFilter{BranchID: branchID, From: from, To: to}
}

func wantsXLSX(r *http.Request) bool {
	return strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("format")), "xlsx")
}

func (a *API) writeWorkbook(w http.ResponseWriter, r *http.Request, name string, tables []report.Table) {
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", report.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := report.WriteXLSX(w, tables...); err != nil {
		// Headers are gone once excelize starts writing; log only.
		a.log.Error().Err(err).Str("report", name).Msg("write workbook")
	}
}
