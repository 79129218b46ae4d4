package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stammbaum/pkg/errors"
	"github.com/matzehuels/stammbaum/pkg/family"
	"github.com/matzehuels/stammbaum/pkg/family/exchange"
)

type createFamilyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleCreateFamily(w http.ResponseWriter, r *http.Request) {
	var req createFamilyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, errors.New(errors.ErrCodeValidation, "family name cannot be empty"))
		return
	}

	f := &family.Family{
		ID:          family.NewID(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateFamily(r.Context(), f); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) handleListFamilies(w http.ResponseWriter, r *http.Request) {
	families, err := s.store.Families(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, families)
}

func (s *Server) handleGetFamily(w http.ResponseWriter, r *http.Request) {
	f, err := s.store.Family(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleDeleteFamily(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	mu := s.familyLock(id)
	mu.Lock()
	defer mu.Unlock()

	if err := s.store.DeleteFamily(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportFamily(w http.ResponseWriter, r *http.Request) {
	tree, err := s.store.Tree(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	doc, err := exchange.Export(tree)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type importResponse struct {
	FamilyID string `json:"family_id"`
	Members  int    `json:"members"`
	Linked   bool   `json:"linked,omitempty"`
	Skipped  int    `json:"skipped,omitempty"`
}

func (s *Server) handleImportFamily(w http.ResponseWriter, r *http.Request) {
	var doc exchange.Document
	if err := decodeBody(r, &doc); err != nil {
		writeError(w, err)
		return
	}
	s.runImport(w, r, &doc)
}

func (s *Server) handleImportPreset(w http.ResponseWriter, r *http.Request) {
	doc, err := exchange.Preset(chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, err)
		return
	}
	s.runImport(w, r, doc)
}

// runImport applies the shared import query options and executes the import.
// Query params: target_family imports into an existing tree; linked=true
// marks the imported members as a linked group of their source family.
func (s *Server) runImport(w http.ResponseWriter, r *http.Request, doc *exchange.Document) {
	opts := exchange.Options{
		TargetFamily: r.URL.Query().Get("target_family"),
		FamilyName:   r.URL.Query().Get("name"),
		AsLinked:     r.URL.Query().Get("linked") == "true",
	}
	if opts.TargetFamily != "" {
		mu := s.familyLock(opts.TargetFamily)
		mu.Lock()
		defer mu.Unlock()
	}

	bundle, err := exchange.Import(r.Context(), s.store, doc, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, importResponse{
		FamilyID: bundle.TreeID(),
		Members:  len(bundle.Members),
		Linked:   opts.AsLinked,
		Skipped:  bundle.Skipped,
	})
}
