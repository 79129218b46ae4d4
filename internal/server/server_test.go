package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stammbaum/pkg/family"
	"github.com/matzehuels/stammbaum/pkg/graph"
)

func newTestServer(t *testing.T) (*httptest.Server, *family.MemoryStore) {
	t.Helper()
	store := family.NewMemoryStore()
	logger := log.New(io.Discard)
	srv := New(store, nil, logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

// seedFamily creates a family with members directly in the store and returns
// the tree id with the created member ids.
func seedFamily(t *testing.T, store *family.MemoryStore, names ...string) (string, []string) {
	t.Helper()
	ctx := context.Background()
	f := &family.Family{ID: family.NewID(), Name: "Test", CreatedAt: time.Now().UTC()}
	if err := store.CreateFamily(ctx, f); err != nil {
		t.Fatal(err)
	}
	ids := make([]string, 0, len(names))
	for i, name := range names {
		m := &family.Member{
			ID:       fmt.Sprintf("m%02d", i),
			TreeID:   f.ID,
			FamilyID: f.ID,
			Name:     name,
			Gender:   "female",
		}
		if err := store.PutMember(ctx, m); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, m.ID)
	}
	return f.ID, ids
}

func seedLinkedMembers(t *testing.T, store *family.MemoryStore, treeID, sourceFamily string, n int) []string {
	t.Helper()
	ctx := context.Background()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		m := &family.Member{
			ID:       fmt.Sprintf("linked-%s-%02d", sourceFamily, i),
			TreeID:   treeID,
			FamilyID: sourceFamily,
			Linked:   true,
			Name:     fmt.Sprintf("Linked %d", i),
			Gender:   "male",
		}
		if err := store.PutMember(ctx, m); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, m.ID)
	}
	return ids
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	var out map[string]string
	if status := doJSON(t, http.MethodGet, ts.URL+"/api/health", nil, &out); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if out["status"] != "ok" {
		t.Errorf("status body = %v", out)
	}
}

func TestFamilyLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)

	var created family.Family
	status := doJSON(t, http.MethodPost, ts.URL+"/api/families",
		map[string]string{"name": "Huber"}, &created)
	if status != http.StatusCreated {
		t.Fatalf("create status = %d", status)
	}
	if created.ID == "" || created.Name != "Huber" {
		t.Fatalf("created = %+v", created)
	}

	var got family.Family
	if status := doJSON(t, http.MethodGet, ts.URL+"/api/families/"+created.ID, nil, &got); status != http.StatusOK {
		t.Fatalf("get status = %d", status)
	}

	if status := doJSON(t, http.MethodDelete, ts.URL+"/api/families/"+created.ID, nil, nil); status != http.StatusNoContent {
		t.Fatalf("delete status = %d", status)
	}
	if status := doJSON(t, http.MethodGet, ts.URL+"/api/families/"+created.ID, nil, nil); status != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", status)
	}
}

func TestCreateFamilyEmptyName(t *testing.T) {
	ts, _ := newTestServer(t)
	status := doJSON(t, http.MethodPost, ts.URL+"/api/families",
		map[string]string{"name": "   "}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
}

func TestMemberAndRelationEndpoints(t *testing.T) {
	ts, store := newTestServer(t)
	treeID, ids := seedFamily(t, store, "Anna", "Berta")

	var m family.Member
	status := doJSON(t, http.MethodPost, ts.URL+"/api/members", map[string]any{
		"tree_id": treeID,
		"name":    "Clara",
		"gender":  "female",
	}, &m)
	if status != http.StatusCreated {
		t.Fatalf("create member status = %d", status)
	}

	var rel family.Relation
	status = doJSON(t, http.MethodPost, ts.URL+"/api/relationships/parent-child", map[string]any{
		"family_id": treeID,
		"parent_id": ids[0],
		"child_id":  m.ID,
		"role":      "mother",
	}, &rel)
	if status != http.StatusCreated {
		t.Fatalf("create parent-child status = %d", status)
	}
	if rel.Kind != family.RelationParentChild || rel.From != ids[0] || rel.To != m.ID {
		t.Errorf("relation = %+v", rel)
	}

	var spouse family.Relation
	status = doJSON(t, http.MethodPost, ts.URL+"/api/relationships/spouse", map[string]any{
		"family_id": treeID,
		"a":         ids[1],
		"b":         ids[0],
	}, &spouse)
	if status != http.StatusCreated {
		t.Fatalf("create spouse status = %d", status)
	}
	if spouse.From > spouse.To {
		t.Errorf("spouse endpoints not canonical: %s→%s", spouse.From, spouse.To)
	}

	var members []family.Member
	if status := doJSON(t, http.MethodGet, ts.URL+"/api/members?family_id="+treeID, nil, &members); status != http.StatusOK {
		t.Fatalf("list members status = %d", status)
	}
	if len(members) != 3 {
		t.Errorf("members = %d, want 3", len(members))
	}

	if status := doJSON(t, http.MethodDelete, ts.URL+"/api/relationships/spouse/"+spouse.ID, nil, nil); status != http.StatusNoContent {
		t.Fatalf("delete relation status = %d", status)
	}
}

func TestRelationToUnknownMember(t *testing.T) {
	ts, store := newTestServer(t)
	treeID, ids := seedFamily(t, store, "Anna")

	status := doJSON(t, http.MethodPost, ts.URL+"/api/relationships/spouse", map[string]any{
		"family_id": treeID,
		"a":         ids[0],
		"b":         "ghost",
	}, nil)
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
}

func TestRegionLifecycleAndToggle(t *testing.T) {
	ts, store := newTestServer(t)
	treeID, ids := seedFamily(t, store, "Anna", "Berta")
	linked := seedLinkedMembers(t, store, treeID, "source-fam", 3)

	var rec family.Region
	status := doJSON(t, http.MethodPost, ts.URL+"/api/regions", map[string]any{
		"family_id":  treeID,
		"name":       "Smiths",
		"member_ids": []string{ids[0]},
	}, &rec)
	if status != http.StatusCreated {
		t.Fatalf("create region status = %d", status)
	}

	// Toggling one linked member pulls in the whole group.
	var toggled toggleResponse
	status = doJSON(t, http.MethodPost,
		ts.URL+"/api/regions/"+rec.ID+"/toggle/"+linked[0], nil, &toggled)
	if status != http.StatusOK {
		t.Fatalf("toggle status = %d", status)
	}
	if len(toggled.MemberIDs) != 4 {
		t.Errorf("membership = %v, want seed member + 3 linked", toggled.MemberIDs)
	}
	if toggled.Group == nil || !toggled.Group.Added || len(toggled.Group.MemberIDs) != 3 {
		t.Errorf("group notification = %+v", toggled.Group)
	}

	// Toggling it again removes the whole group.
	status = doJSON(t, http.MethodPost,
		ts.URL+"/api/regions/"+rec.ID+"/toggle/"+linked[1], nil, &toggled)
	if status != http.StatusOK {
		t.Fatalf("toggle status = %d", status)
	}
	if len(toggled.MemberIDs) != 1 {
		t.Errorf("membership after group removal = %v", toggled.MemberIDs)
	}
	if toggled.Group == nil || toggled.Group.Added {
		t.Errorf("group notification = %+v, want removal", toggled.Group)
	}
}

func TestLockedRegionRejectsForeignMember(t *testing.T) {
	ts, store := newTestServer(t)
	treeID, ids := seedFamily(t, store, "Foreign")
	linked := seedLinkedMembers(t, store, treeID, "source-fam", 2)

	var rec family.Region
	status := doJSON(t, http.MethodPost, ts.URL+"/api/regions", map[string]any{
		"family_id":  treeID,
		"name":       "Linked only",
		"member_ids": []string{linked[0]},
	}, &rec)
	if status != http.StatusCreated {
		t.Fatalf("create region status = %d", status)
	}
	// Creation expanded the linked group.
	if len(rec.MemberIDs) != 2 {
		t.Fatalf("initial membership = %v, want full linked group", rec.MemberIDs)
	}

	var cls classificationResponse
	if status := doJSON(t, http.MethodGet, ts.URL+"/api/regions/"+rec.ID+"/classification", nil, &cls); status != http.StatusOK {
		t.Fatalf("classification status = %d", status)
	}
	if !cls.IsLinkedFamilyRegion {
		t.Fatalf("classification = %+v, want locked", cls)
	}

	status = doJSON(t, http.MethodPost,
		ts.URL+"/api/regions/"+rec.ID+"/toggle/"+ids[0], nil, nil)
	if status != http.StatusConflict {
		t.Fatalf("toggle foreign member status = %d, want 409", status)
	}

	// Membership unchanged after the rejected attempt.
	regions, err := store.Regions(context.Background(), treeID)
	if err != nil {
		t.Fatal(err)
	}
	if len(regions) != 1 || len(regions[0].MemberIDs) != 2 {
		t.Errorf("membership changed after rejection: %+v", regions)
	}
}

func TestRegionValidationAndIdempotentDelete(t *testing.T) {
	ts, store := newTestServer(t)
	treeID, _ := seedFamily(t, store, "Anna")

	status := doJSON(t, http.MethodPost, ts.URL+"/api/regions", map[string]any{
		"family_id": treeID,
		"name":      "  ",
	}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("empty name status = %d, want 400", status)
	}

	// Deleting a region that never existed is a successful no-op.
	if status := doJSON(t, http.MethodDelete, ts.URL+"/api/regions/no-such-region", nil, nil); status != http.StatusNoContent {
		t.Fatalf("delete missing region status = %d, want 204", status)
	}
}

func TestGraphEndpoint(t *testing.T) {
	ts, store := newTestServer(t)
	treeID, ids := seedFamily(t, store, "Parent", "Spouse", "Child1", "Child2")
	ctx := context.Background()
	for _, child := range ids[2:] {
		rel := family.NewParentChildRelation(treeID, ids[0], child, family.RoleMother)
		if err := store.PutRelation(ctx, rel); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.PutRelation(ctx, family.NewSpouseRelation(treeID, ids[0], ids[1], "")); err != nil {
		t.Fatal(err)
	}

	var snapshot graph.Snapshot
	status := doJSON(t, http.MethodGet, ts.URL+"/api/families/"+treeID+"/graph", nil, &snapshot)
	if status != http.StatusOK {
		t.Fatalf("graph status = %d", status)
	}
	if len(snapshot.Nodes) != 4 {
		t.Fatalf("nodes = %d, want 4", len(snapshot.Nodes))
	}

	rank := make(map[string]int)
	for _, n := range snapshot.Nodes {
		rank[n.ID] = n.Rank
	}
	if rank[ids[0]] != rank[ids[1]] {
		t.Errorf("spouse ranks differ: %d vs %d", rank[ids[0]], rank[ids[1]])
	}
	for _, child := range ids[2:] {
		if rank[child] < rank[ids[0]]+2 {
			t.Errorf("rank(%s) = %d, want >= parent+2", child, rank[child])
		}
	}
}

func TestGraphSVGEndpoint(t *testing.T) {
	ts, store := newTestServer(t)
	treeID, _ := seedFamily(t, store, "Anna", "Berta")

	resp, err := http.Get(ts.URL + "/api/families/" + treeID + "/graph.svg")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q", ct)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ts, store := newTestServer(t)
	treeID, ids := seedFamily(t, store, "Anna", "Berta")
	if err := store.PutRelation(context.Background(),
		family.NewSpouseRelation(treeID, ids[0], ids[1], "1990")); err != nil {
		t.Fatal(err)
	}

	var doc json.RawMessage
	if status := doJSON(t, http.MethodGet, ts.URL+"/api/families/"+treeID+"/export", nil, &doc); status != http.StatusOK {
		t.Fatalf("export status = %d", status)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/families/import?name=Copy", bytes.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("import status = %d", resp.StatusCode)
	}
	var imported importResponse
	if err := json.NewDecoder(resp.Body).Decode(&imported); err != nil {
		t.Fatal(err)
	}
	if imported.Members != 2 {
		t.Errorf("imported members = %d, want 2", imported.Members)
	}
	if imported.FamilyID == treeID {
		t.Error("import reused the source family id")
	}
}

func TestImportPresetLinked(t *testing.T) {
	ts, store := newTestServer(t)
	treeID, _ := seedFamily(t, store, "Anna")

	url := ts.URL + "/api/families/import/preset/han_dynasty?target_family=" + treeID + "&linked=true"
	var imported importResponse
	if status := doJSON(t, http.MethodPost, url, nil, &imported); status != http.StatusCreated {
		t.Fatalf("preset import status = %d", status)
	}
	if imported.FamilyID != treeID {
		t.Errorf("family id = %q, want target %q", imported.FamilyID, treeID)
	}

	members, err := store.Members(context.Background(), treeID)
	if err != nil {
		t.Fatal(err)
	}
	var linked int
	for _, m := range members {
		if m.Linked {
			linked++
		}
	}
	if linked == 0 {
		t.Error("no members marked linked after linked preset import")
	}
}
