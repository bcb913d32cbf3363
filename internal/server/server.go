// Package server exposes parsed and merged songs over a read-only HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"songbook/internal/grassiness"
	"songbook/internal/merge"
	"songbook/internal/song"
	"songbook/internal/storage"
)

type Options struct {
	Index   *storage.Index
	Outputs *storage.Outputs
	Scorer  *grassiness.Scorer
	Logger  *slog.Logger
}

type Server struct {
	index   *storage.Index
	outputs *storage.Outputs
	scorer  *grassiness.Scorer
	logger  *slog.Logger
	handler http.Handler
}

// SongDetail is the GET /songs/{slug} body. Song is the parsed song and
// Record the merge result, each present when written for the slug.
type SongDetail struct {
	Slug    string          `json:"slug"`
	Entries []storage.Entry `json:"entries"`
	Song    *song.Song      `json:"song,omitempty"`
	Record  *merge.Record   `json:"record,omitempty"`
}

func New(opts Options) *Server {
	s := &Server{
		index:   opts.Index,
		outputs: opts.Outputs,
		scorer:  opts.Scorer,
		logger:  opts.Logger,
	}
	if s.scorer == nil {
		s.scorer = grassiness.NewScorer(nil)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/songs", s.handleList).Methods(http.MethodGet)
	router.HandleFunc("/songs/{slug}", s.handleSong).Methods(http.MethodGet)
	router.HandleFunc("/songs/{slug}/chordpro", s.handleChordPro).Methods(http.MethodGet)
	router.HandleFunc("/grassiness", s.handleGrassiness).Methods(http.MethodGet)

	s.handler = cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}).Handler(router)
	return s
}

func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("serving songbook", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.index.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if entries == nil {
		entries = []storage.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleSong(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	if err := storage.CheckSlug(slug); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	detail := SongDetail{Slug: slug, Entries: []storage.Entry{}}
	entries, _, err := s.index.Get(r.Context(), slug)
	switch {
	case err == nil:
		detail.Entries = entries
	case !storage.IsDisabled(err):
		s.fail(w, err)
		return
	}

	if s.outputs != nil {
		var parsed song.Song
		if err := s.outputs.ReadJSON(slug, storage.SongExt, &parsed); err == nil {
			detail.Song = &parsed
		} else if !errors.Is(err, os.ErrNotExist) {
			s.fail(w, err)
			return
		}
		var rec merge.Record
		if err := s.outputs.ReadJSON(slug, storage.RecordExt, &rec); err == nil {
			detail.Record = &rec
		} else if !errors.Is(err, os.ErrNotExist) {
			s.fail(w, err)
			return
		}
	}

	if len(detail.Entries) == 0 && detail.Song == nil && detail.Record == nil {
		writeError(w, http.StatusNotFound, "song not found: "+slug)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleChordPro(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	if s.outputs == nil {
		writeError(w, http.StatusNotFound, "no outputs configured")
		return
	}
	text, err := s.outputs.ReadChordPro(slug)
	switch {
	case errors.Is(err, storage.ErrBadSlug):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, os.ErrNotExist):
		writeError(w, http.StatusNotFound, "song not found: "+slug)
		return
	case err != nil:
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(text)
}

func (s *Server) handleGrassiness(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		writeError(w, http.StatusBadRequest, "missing title query parameter")
		return
	}
	writeJSON(w, http.StatusOK, s.scorer.Score(title))
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	if storage.IsDisabled(err) {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.logger.Error("request failed", "err", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
