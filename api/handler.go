// Package api exposes scrape runs over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/CodePeacock/scraper/models"
	"github.com/CodePeacock/scraper/utils"
)

// Runner is satisfied by *services.Orchestrator.
type Runner interface {
	Run(ctx context.Context, locality string, selectors []string) (*models.RunReport, error)
}

type ScrapeHandler struct {
	runner Runner
	logger *utils.Logger
}

func NewScrapeHandler(runner Runner, logger *utils.Logger) *ScrapeHandler {
	return &ScrapeHandler{runner: runner, logger: logger}
}

// Router wires the handler's routes onto a new mux router.
func (h *ScrapeHandler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/scrape", h.HandleScrape).Methods(http.MethodGet)
	return r
}

func (h *ScrapeHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleScrape runs one scrape for ?city=...&sites=a,b. sites defaults to all.
// A sink failure still returns the report, with status 500 and an error field.
func (h *ScrapeHandler) HandleScrape(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	city := q.Get("city")
	sites := strings.Split(q.Get("sites"), ",")
	if strings.TrimSpace(q.Get("sites")) == "" {
		sites = []string{"all"}
	}

	report, err := h.runner.Run(r.Context(), city, sites)
	switch {
	case errors.Is(err, models.ErrConfig):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case err != nil && report != nil:
		h.logger.Error("[api] scrape %q: %v", city, err)
		writeJSON(w, http.StatusInternalServerError, reportBody{RunReport: report, Error: err.Error()})
	case err != nil:
		h.logger.Error("[api] scrape %q: %v", city, err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	default:
		writeJSON(w, http.StatusOK, reportBody{RunReport: report})
	}
}

type errorBody struct {
	Error string `json:"error"`
}

type reportBody struct {
	*models.RunReport
	Error string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
