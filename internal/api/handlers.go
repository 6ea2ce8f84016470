package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mwhite7112/woodpantry-parser/internal/extract"
	"github.com/mwhite7112/woodpantry-parser/internal/logging"
	"github.com/mwhite7112/woodpantry-parser/internal/service"
)

// NewRouter wires all routes with the provided parser service.
func NewRouter(svc *service.ParserService) http.Handler {
	r := chi.NewRouter()
	r.Use(logging.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)
	r.Post("/parse", handleParse(svc))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]string{"status": "ok"})
}

// --- POST /parse ---

type parseRequest struct {
	// Text is a pointer so an explicitly empty string is distinguishable
	// from a missing key.
	Text *string `json:"text"`
}

type parseResponse struct {
	Ingredients []service.Ingredient `json:"ingredients"`
}

func handleParse(svc *service.ParserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req parseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == nil {
			jsonError(w, "missing 'text' in JSON body", http.StatusBadRequest)
			return
		}

		ingredients, err := svc.Parse(r.Context(), *req.Text)
		if err != nil {
			if errors.Is(err, extract.ErrUnavailable) {
				jsonError(w, err.Error(), http.StatusInternalServerError, err)
				return
			}
			jsonError(w, fmt.Sprintf("parse failed: %v", err), http.StatusInternalServerError, err)
			return
		}
		if ingredients == nil {
			ingredients = []service.Ingredient{}
		}
		jsonOK(w, parseResponse{Ingredients: ingredients})
	}
}

// --- helpers ---

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonError(w http.ResponseWriter, msg string, status int, errs ...error) {
	if status >= 500 && len(errs) > 0 {
		slog.Error(msg, "status", status, "error", errs[0])
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg}) //nolint:errcheck
}
