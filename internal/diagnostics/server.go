// Package diagnostics is a small, optional HTTP surface for
// introspecting a running Pager: a health check and read-only views of
// cache and page state. It never mutates the pager.
package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/cabewaldrop/pagedb/internal/storage"
)

// Server exposes a pager's state over HTTP for introspection.
type Server struct {
	router *chi.Mux
	addr   string
	pager  *storage.Pager
	log    *logrus.Entry
}

// NewServer builds a diagnostics server over pager, listening on addr
// (e.g. ":8080") once Run is called.
func NewServer(addr string, pager *storage.Pager) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	s := &Server{
		router: r,
		addr:   addr,
		pager:  pager,
		log:    logrus.WithField("component", "diagnostics"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/stats", s.handleStats)
	s.router.Get("/pages/{id}", s.handlePage)
}

// Router exposes the chi router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type statsResponse struct {
	PageCount    uint32 `json:"page_count"`
	CacheSize    int    `json:"cache_size"`
	MaxCacheSize int    `json:"max_cache_size"`
	DirtyCount   int    `json:"dirty_count"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statsResponse{
		PageCount:    s.pager.PageCount(),
		CacheSize:    s.pager.CacheSize(),
		MaxCacheSize: s.pager.MaxCacheSize(),
		DirtyCount:   s.pager.DirtyCount(),
	})
}

type pageResponse struct {
	ID      uint32 `json:"id"`
	Variant string `json:"variant"`
	Slots   int    `json:"slots,omitempty"`
	Entries int    `json:"entries,omitempty"`
	Dirty   bool   `json:"dirty"`
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(idParam, 10, 32)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid page id %q", idParam), http.StatusBadRequest)
		return
	}

	page, err := s.pager.Get(uint32(id))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	resp := pageResponse{ID: page.ID(), Dirty: page.IsDirty()}
	switch page.Variant() {
	case storage.VariantLeaf:
		resp.Variant = "leaf"
		resp.Slots = page.NumSlots()
	case storage.VariantInternal:
		resp.Variant = "internal"
		resp.Entries = page.NumEntries()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Run starts the HTTP server and blocks until a shutdown signal is
// received or it errors out, then shuts down gracefully.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.addr).Info("diagnostics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-done:
		s.log.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("diagnostics: server error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("diagnostics: shutdown error: %w", err)
	}
	s.log.Info("diagnostics server stopped")
	return nil
}
