package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stammbaum/pkg/assembler"
	"github.com/matzehuels/stammbaum/pkg/errors"
	"github.com/matzehuels/stammbaum/pkg/render/dot"
	"github.com/matzehuels/stammbaum/pkg/render/svg"
)

// graphOptions maps query parameters onto assembler options. Unknown
// parameters are ignored; absent ones leave the default full view.
func graphOptions(q url.Values) assembler.Options {
	opts := assembler.Options{
		HideLiving:   q.Get("show_living") == "false",
		HideDeceased: q.Get("show_deceased") == "false",
		HideUnborn:   q.Get("show_unborn") == "false",
		DimDeceased:  q.Get("dim_deceased") == "true",
		DimUnborn:    q.Get("dim_unborn") == "true",
		Refresh:      q.Get("refresh") == "true",
	}
	if focus := q.Get("focus"); focus != "" {
		opts.Focus = strings.Split(focus, ",")
	}
	if strat := q.Get("strategy"); strat != "" {
		opts.Strategy = strat
	}
	if v := q.Get("node_sep"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			opts.NodeSep = f
		}
	}
	if v := q.Get("rank_sep"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			opts.RankSep = f
		}
	}
	return opts
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	treeID := chi.URLParam(r, "id")
	tree, err := s.store.Tree(r.Context(), treeID)
	if err != nil {
		writeError(w, err)
		return
	}

	opts := graphOptions(r.URL.Query())
	snapshot, err := s.runner.Assemble(r.Context(), tree, opts)
	if err != nil {
		// A failed pass never replaces a valid view: serve the retained
		// snapshot when one exists, marked stale.
		if prev, ok := s.runner.Retained(treeID); ok && errors.Is(err, errors.ErrCodeLayoutInternal) {
			s.logger.Error("layout failed, serving retained snapshot", "tree", treeID, "err", err)
			w.Header().Set("X-Snapshot-Stale", "true")
			writeJSON(w, http.StatusOK, prev)
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleGraphSVG(w http.ResponseWriter, r *http.Request) {
	tree, err := s.store.Tree(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	opts := graphOptions(r.URL.Query())
	snapshot, err := s.runner.Assemble(r.Context(), tree, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	var data []byte
	if r.URL.Query().Get("via") == "graphviz" {
		data, err = dot.RenderSVG(dot.Generate(snapshot, dot.Options{}))
		if err != nil {
			writeError(w, err)
			return
		}
	} else {
		data = svg.Render(snapshot, svg.WithTitle(tree.Family.Name))
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
