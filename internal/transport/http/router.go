package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"quiz-rooms/internal/app"
	"quiz-rooms/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// ResultLister serves archived scoreboards. postgres.ResultArchive satisfies it.
type ResultLister interface {
	Recent(ctx context.Context, limit int) ([]domain.GameResult, error)
}

type RouterOptions struct {
	AllowedOrigins []string
	// Results is optional; /results is only mounted when set.
	Results ResultLister
}

func NewRouter(service *app.QuizService, ws *WSHandler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Get("/ws", ws.ServeWS)

	r.Get("/rooms/{code}", func(w http.ResponseWriter, r *http.Request) {
		snap, ok := service.Snapshot(chi.URLParam(r, "code"))
		if !ok {
			writeJSON(w, http.StatusNotFound, domain.ErrorPayload{Message: domain.ErrRoomNotFound.Error()})
			return
		}
		writeJSON(w, http.StatusOK, snap)
	})

	if opts.Results != nil {
		r.Get("/results", func(w http.ResponseWriter, r *http.Request) {
			limit := 20
			if raw := r.URL.Query().Get("limit"); raw != "" {
				n, err := strconv.Atoi(raw)
				if err != nil || n <= 0 {
					writeJSON(w, http.StatusBadRequest, domain.ErrorPayload{Message: "limit must be a positive integer"})
					return
				}
				limit = min(n, 100)
			}
			results, err := opts.Results.Recent(r.Context(), limit)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, domain.ErrorPayload{Message: "could not load results"})
				return
			}
			writeJSON(w, http.StatusOK, results)
		})
	}

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
