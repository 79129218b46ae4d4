package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stammbaum/pkg/errors"
	"github.com/matzehuels/stammbaum/pkg/family"
)

type spouseRequest struct {
	FamilyID     string `json:"family_id"`
	A            string `json:"a"`
	B            string `json:"b"`
	MarriageDate string `json:"marriage_date,omitempty"`
}

func (s *Server) handleCreateSpouse(w http.ResponseWriter, r *http.Request) {
	var req spouseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rel := family.NewSpouseRelation(req.FamilyID, req.A, req.B, req.MarriageDate)
	if err := rel.Validate(); err != nil {
		writeError(w, err)
		return
	}
	s.putRelation(w, r, rel)
}

type parentChildRequest struct {
	FamilyID string `json:"family_id"`
	ParentID string `json:"parent_id"`
	ChildID  string `json:"child_id"`
	Role     string `json:"role"`
}

func (s *Server) handleCreateParentChild(w http.ResponseWriter, r *http.Request) {
	var req parentChildRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rel := family.NewParentChildRelation(req.FamilyID, req.ParentID, req.ChildID, req.Role)
	if err := rel.Validate(); err != nil {
		writeError(w, err)
		return
	}
	s.putRelation(w, r, rel)
}

// putRelation verifies both endpoints exist in the relation's tree before
// storing it.
func (s *Server) putRelation(w http.ResponseWriter, r *http.Request, rel *family.Relation) {
	mu := s.familyLock(rel.TreeID)
	mu.Lock()
	defer mu.Unlock()

	for _, id := range []string{rel.From, rel.To} {
		m, err := s.store.Member(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if m.TreeID != rel.TreeID {
			writeError(w, errors.New(errors.ErrCodeValidation,
				"member %s belongs to a different family", id))
			return
		}
	}

	if err := s.store.PutRelation(r.Context(), rel); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rel)
}

type updateSpouseRequest struct {
	MarriageDate string `json:"marriage_date"`
}

func (s *Server) handleUpdateSpouse(w http.ResponseWriter, r *http.Request) {
	rel, err := s.store.Relation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if rel.Kind != family.RelationSpouse {
		writeError(w, errors.New(errors.ErrCodeValidation, "relation %s is not a spouse relation", rel.ID))
		return
	}

	var req updateSpouseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := errors.ValidateDate(req.MarriageDate); err != nil {
		writeError(w, err)
		return
	}
	rel.MarriageDate = req.MarriageDate

	mu := s.familyLock(rel.TreeID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.store.PutRelation(r.Context(), rel); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rel)
}

func (s *Server) handleDeleteRelation(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if kind != family.RelationSpouse && kind != "parent-child" && kind != family.RelationParentChild {
		writeError(w, errors.New(errors.ErrCodeValidation, "unknown relation kind %q", kind))
		return
	}

	rel, err := s.store.Relation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	mu := s.familyLock(rel.TreeID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.store.DeleteRelation(r.Context(), rel.ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
