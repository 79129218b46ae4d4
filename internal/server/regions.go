package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stammbaum/pkg/errors"
	"github.com/matzehuels/stammbaum/pkg/family"
	"github.com/matzehuels/stammbaum/pkg/region"
)

type createRegionRequest struct {
	FamilyID    string   `json:"family_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Color       string   `json:"color,omitempty"`
	MemberIDs   []string `json:"member_ids,omitempty"`
}

// loadModel builds the region engine for one tree from the current store
// snapshot. Callers hold the family mutation lock across loadModel and the
// following mirror step.
func (s *Server) loadModel(ctx context.Context, treeID string) (*region.Model, *family.Tree, error) {
	tree, err := s.store.Tree(ctx, treeID)
	if err != nil {
		return nil, nil, err
	}
	model := region.New(treeID, region.NewIndex(tree.Members))
	model.Load(tree.Regions)
	return model, tree, nil
}

// mirrorRegion writes one confirmed region mutation back to the store.
func (s *Server) mirrorRegion(ctx context.Context, model *region.Model, regionID string) error {
	rec, err := model.Region(regionID)
	if err != nil {
		return err
	}
	return s.store.PutRegion(ctx, rec)
}

// expandAll resolves each requested member to its atomic toggle unit and
// returns the union.
func expandAll(src region.Source, memberIDs []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, id := range memberIDs {
		group, err := region.ExpandMembership(src, id)
		if err != nil {
			return nil, err
		}
		for _, gid := range group {
			if _, dup := seen[gid]; dup {
				continue
			}
			seen[gid] = struct{}{}
			out = append(out, gid)
		}
	}
	return out, nil
}

func (s *Server) handleCreateRegion(w http.ResponseWriter, r *http.Request) {
	var req createRegionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.FamilyID == "" {
		writeError(w, errors.New(errors.ErrCodeValidation, "region requires family_id"))
		return
	}

	mu := s.familyLock(req.FamilyID)
	mu.Lock()
	defer mu.Unlock()

	model, tree, err := s.loadModel(r.Context(), req.FamilyID)
	if err != nil {
		writeError(w, err)
		return
	}

	// Resolve linked groups before creation so the initial membership never
	// contains a partial group.
	memberIDs, err := expandAll(region.NewIndex(tree.Members), req.MemberIDs)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := model.Create(req.Name, req.Description, req.Color, memberIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.mirrorRegion(r.Context(), model, id); err != nil {
		writeError(w, err)
		return
	}
	rec, _ := model.Region(id)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListRegions(w http.ResponseWriter, r *http.Request) {
	treeID := r.URL.Query().Get("family_id")
	if treeID == "" {
		writeError(w, errors.New(errors.ErrCodeValidation, "family_id query parameter is required"))
		return
	}
	regions, err := s.store.Regions(r.Context(), treeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, regions)
}

type updateRegionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

func (s *Server) handleUpdateRegion(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Region(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateRegionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	mu := s.familyLock(rec.TreeID)
	mu.Lock()
	defer mu.Unlock()

	model, _, err := s.loadModel(r.Context(), rec.TreeID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := model.Update(rec.ID, req.Name, req.Description, req.Color); err != nil {
		writeError(w, err)
		return
	}
	if err := s.mirrorRegion(r.Context(), model, rec.ID); err != nil {
		writeError(w, err)
		return
	}
	updated, _ := model.Region(rec.ID)
	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteRegion is idempotent: deleting an unknown region succeeds, so
// delete-confirmation flows need no existence pre-check.
func (s *Server) handleDeleteRegion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.store.Region(r.Context(), id)
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeError(w, err)
		return
	}

	mu := s.familyLock(rec.TreeID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.store.DeleteRegion(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type toggleResponse struct {
	RegionID  string   `json:"region_id"`
	MemberIDs []string `json:"member_ids"`

	// Group is set when a linked family toggled together, so clients can
	// surface the propagation to the user.
	Group *groupNotification `json:"group,omitempty"`
}

type groupNotification struct {
	FamilyID  string   `json:"family_id"`
	MemberIDs []string `json:"member_ids"`
	Added     bool     `json:"added"`
}

func (s *Server) handleToggleRegion(w http.ResponseWriter, r *http.Request) {
	regionID := chi.URLParam(r, "id")
	memberID := chi.URLParam(r, "memberID")

	rec, err := s.store.Region(r.Context(), regionID)
	if err != nil {
		writeError(w, err)
		return
	}

	mu := s.familyLock(rec.TreeID)
	mu.Lock()
	defer mu.Unlock()

	model, _, err := s.loadModel(r.Context(), rec.TreeID)
	if err != nil {
		writeError(w, err)
		return
	}

	var group *groupNotification
	model.SetNotifier(region.NotifierFunc(func(e region.Event) {
		group = &groupNotification{
			FamilyID:  e.FamilyID,
			MemberIDs: e.MemberIDs,
			Added:     e.Added,
		}
	}))

	members, err := model.Toggle(regionID, memberID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.mirrorRegion(r.Context(), model, regionID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{
		RegionID:  regionID,
		MemberIDs: members,
		Group:     group,
	})
}

type classificationResponse struct {
	RegionID             string      `json:"region_id"`
	IsLinkedFamilyRegion bool        `json:"is_linked_family_region"`
	Mode                 region.Mode `json:"mode"`
}

func (s *Server) handleRegionClassification(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Region(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	model, _, err := s.loadModel(r.Context(), rec.TreeID)
	if err != nil {
		writeError(w, err)
		return
	}
	locked, err := model.IsLinkedFamilyRegion(rec.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	mode, _ := model.Mode(rec.ID)
	writeJSON(w, http.StatusOK, classificationResponse{
		RegionID:             rec.ID,
		IsLinkedFamilyRegion: locked,
		Mode:                 mode,
	})
}
