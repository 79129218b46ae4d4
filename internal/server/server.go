// Package server exposes the stammbaum HTTP API: families, members,
// relationships, regions, and assembled graph snapshots.
//
// The server composes the family store, the region engine, and the assembler
// Runner behind a chi router. Region and record mutations are serialized per
// family through a mutex map, honoring the single-writer contract of the
// region model.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stammbaum/pkg/assembler"
	"github.com/matzehuels/stammbaum/pkg/family"
)

// Server is the stammbaum HTTP API.
type Server struct {
	store  family.Store
	runner *assembler.Runner
	logger *log.Logger
	router chi.Router

	// muMu guards the per-family mutation locks.
	muMu  sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a server over the given store and runner.
func New(store family.Store, runner *assembler.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = assembler.NewRunner(nil, nil, logger)
	}
	s := &Server{
		store:  store,
		runner: runner,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(recoverer(s.logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/families", func(r chi.Router) {
			r.Post("/", s.handleCreateFamily)
			r.Get("/", s.handleListFamilies)
			r.Post("/import", s.handleImportFamily)
			r.Post("/import/preset/{key}", s.handleImportPreset)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetFamily)
				r.Delete("/", s.handleDeleteFamily)
				r.Get("/export", s.handleExportFamily)
				r.Get("/graph", s.handleGraph)
				r.Get("/graph.svg", s.handleGraphSVG)
			})
		})

		r.Route("/members", func(r chi.Router) {
			r.Post("/", s.handleCreateMember)
			r.Get("/", s.handleListMembers)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetMember)
				r.Put("/", s.handleUpdateMember)
				r.Delete("/", s.handleDeleteMember)
			})
		})

		r.Route("/relationships", func(r chi.Router) {
			r.Post("/spouse", s.handleCreateSpouse)
			r.Post("/parent-child", s.handleCreateParentChild)
			r.Put("/spouse/{id}", s.handleUpdateSpouse)
			r.Delete("/{kind}/{id}", s.handleDeleteRelation)
		})

		r.Route("/regions", func(r chi.Router) {
			r.Post("/", s.handleCreateRegion)
			r.Get("/", s.handleListRegions)
			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", s.handleUpdateRegion)
				r.Delete("/", s.handleDeleteRegion)
				r.Post("/toggle/{memberID}", s.handleToggleRegion)
				r.Get("/classification", s.handleRegionClassification)
			})
		})
	})

	return r
}

// familyLock returns the mutation mutex for one family tree.
func (s *Server) familyLock(treeID string) *sync.Mutex {
	s.muMu.Lock()
	defer s.muMu.Unlock()
	mu, ok := s.locks[treeID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[treeID] = mu
	}
	return mu
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
