// Package api serves the reports as JSON over HTTP.
//
// Routes:
//
//	GET /health
//	GET /reports/companies                      → employers with vacancy counts
//	GET /reports/vacancies                      → all vacancies, highest salary first
//	GET /reports/vacancies/search?keyword=<kw>  → title contains kw (case-sensitive)
//	GET /reports/salary/average                 → mean salary_from
//	GET /reports/salary/above-average           → vacancies above the mean
//
// Report routes answer 503 while a scrape run rebuilds the database.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Konovalexx/hh-parser-2/internal/logging"
	"github.com/Konovalexx/hh-parser-2/internal/report"
)

const version = "1.0.0"

// Handler holds shared dependencies.
type Handler struct {
	reports report.Reporter
	busy    func() bool
	log     *logging.Logger
}

// NewRouter returns the HTTP handler for all routes. While busy reports true
// the database is being rebuilt and report routes answer 503; a nil busy
// means never.
func NewRouter(reports report.Reporter, busy func() bool, log *logging.Logger) http.Handler {
	if busy == nil {
		busy = func() bool { return false }
	}
	h := &Handler{reports: reports, busy: busy, log: log.With("component", "api")}

	r := mux.NewRouter()
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)

	r.Handle("/reports/companies", h.whenIdle(h.companies)).Methods(http.MethodGet)
	r.Handle("/reports/vacancies", h.whenIdle(h.vacancies)).Methods(http.MethodGet)
	r.Handle("/reports/vacancies/search", h.whenIdle(h.search)).Methods(http.MethodGet)
	r.Handle("/reports/salary/average", h.whenIdle(h.averageSalary)).Methods(http.MethodGet)
	r.Handle("/reports/salary/above-average", h.whenIdle(h.aboveAverage)).Methods(http.MethodGet)

	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	r.NotFoundHandler = http.HandlerFunc(notFound)
	return r
}

// whenIdle answers 503 while a scrape run is rebuilding the database.
func (h *Handler) whenIdle(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.busy() {
			w.Header().Set("Retry-After", "60")
			jsonError(w, "scrape in progress, try again later", http.StatusServiceUnavailable)
			return
		}
		next(w, r)
	})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	jsonError(w, "not found", http.StatusNotFound)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "hh-parser",
		"version": version,
	})
}

func (h *Handler) companies(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.CompanyVacancyCounts(r.Context())
	if err != nil {
		h.internalError(w, "companies", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": nonNil(rows)})
}

func (h *Handler) vacancies(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.AllVacancies(r.Context())
	if err != nil {
		h.internalError(w, "vacancies", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vacancies": nonNil(rows)})
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		jsonError(w, "keyword is required", http.StatusBadRequest)
		return
	}
	rows, err := h.reports.VacanciesByKeyword(r.Context(), keyword)
	if err != nil {
		h.internalError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"keyword": keyword, "vacancies": nonNil(rows)})
}

func (h *Handler) averageSalary(w http.ResponseWriter, r *http.Request) {
	avg, err := h.reports.AverageSalary(r.Context())
	if err != nil {
		h.internalError(w, "average salary", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"averageSalaryFrom": avg})
}

func (h *Handler) aboveAverage(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.VacanciesAboveAverage(r.Context())
	if err != nil {
		h.internalError(w, "above average", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vacancies": nonNil(rows)})
}

func (h *Handler) internalError(w http.ResponseWriter, report string, err error) {
	h.log.Error("report query failed", "report", report, "err", err)
	jsonError(w, "internal error", http.StatusInternalServerError)
}

// nonNil makes empty results encode as [] rather than null.
func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
