package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stammbaum/pkg/errors"
	"github.com/matzehuels/stammbaum/pkg/family"
)

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var m family.Member
	if err := decodeBody(r, &m); err != nil {
		writeError(w, err)
		return
	}
	if m.TreeID == "" {
		writeError(w, errors.New(errors.ErrCodeValidation, "member requires tree_id"))
		return
	}
	m.ID = family.NewID()
	if m.FamilyID == "" {
		m.FamilyID = m.TreeID
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	if err := m.Validate(); err != nil {
		writeError(w, err)
		return
	}

	mu := s.familyLock(m.TreeID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.store.PutMember(r.Context(), &m); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, &m)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	treeID := r.URL.Query().Get("family_id")
	if treeID == "" {
		writeError(w, errors.New(errors.ErrCodeValidation, "family_id query parameter is required"))
		return
	}
	members, err := s.store.Members(r.Context(), treeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.Member(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	existing, err := s.store.Member(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var m family.Member
	if err := decodeBody(r, &m); err != nil {
		writeError(w, err)
		return
	}
	// Identity and linkage are immutable through this endpoint; linked
	// membership moves only via imports.
	m.ID = existing.ID
	m.TreeID = existing.TreeID
	m.FamilyID = existing.FamilyID
	m.Linked = existing.Linked
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = time.Now().UTC()
	if err := m.Validate(); err != nil {
		writeError(w, err)
		return
	}

	mu := s.familyLock(m.TreeID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.store.PutMember(r.Context(), &m); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &m)
}

func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.Member(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	mu := s.familyLock(m.TreeID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.store.DeleteMember(r.Context(), m.ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
