package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/graphein/backend/internal/server/middleware"
	"github.com/graphein/backend/pkg/model"
	"github.com/graphein/backend/pkg/store"
	"github.com/graphein/backend/pkg/version"
)

// fakeGraph implements store.GraphStore in memory and counts writes so the
// handler tests can tell a revision apart from an in-place update.
type fakeGraph struct {
	entities map[uuid.UUID]model.Entity
	created  int
	updated  int
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{entities: make(map[uuid.UUID]model.Entity)}
}

func (f *fakeGraph) CreateEntity(_ context.Context, entity model.Entity) error {
	f.created++
	f.entities[entity.ID] = entity
	return nil
}

func (f *fakeGraph) ReadEntity(_ context.Context, id uuid.UUID) (*model.Entity, error) {
	entity, ok := f.entities[id]
	if !ok {
		return nil, nil
	}
	return &entity, nil
}

func (f *fakeGraph) UpdateEntity(_ context.Context, id uuid.UUID, entity model.Entity) (*model.Entity, error) {
	if _, ok := f.entities[id]; !ok {
		return nil, nil
	}
	f.updated++
	entity.ID = id
	f.entities[id] = entity
	return &entity, nil
}

func (f *fakeGraph) CreateRelationship(context.Context, model.Relationship) error { return nil }

func (f *fakeGraph) ReadRelationship(context.Context, uuid.UUID) (*model.Relationship, error) {
	return nil, nil
}

func (f *fakeGraph) UpdateRelationship(context.Context, uuid.UUID, model.Relationship) (*model.Relationship, error) {
	return nil, nil
}

func (f *fakeGraph) Delete(context.Context, uuid.UUID) (bool, error) { return false, nil }

func (f *fakeGraph) FindEntities(context.Context, store.EntityQuery) ([]model.Entity, error) {
	return nil, nil
}

func (f *fakeGraph) FindRelationships(context.Context, store.RelationshipQuery) ([]model.Relationship, error) {
	return nil, nil
}

func patchEntity(t *testing.T, graph *fakeGraph, id uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id.String())
	cc := &middleware.AppContext{Context: c, App: &middleware.App{
		Graph:    graph,
		Versions: version.NewService(graph),
	}}

	if err := EditEntityHandler(cc); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestEditEntityCreatesRevision(t *testing.T) {
	graph := newFakeGraph()
	entity := model.NewEntity("person", "Ada")
	graph.entities[entity.ID] = entity
	graph.created = 0

	rec := patchEntity(t, graph, entity.ID, `{"name": "Ada Lovelace"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if graph.created != 1 {
		t.Errorf("created %d nodes, want 1 revision node", graph.created)
	}
	if graph.updated != 0 {
		t.Errorf("in-place updates = %d, want 0 on the revision path", graph.updated)
	}

	var resp struct {
		Entity model.Entity `json:"entity"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Entity.Version != 2 {
		t.Errorf("revision version = %d, want 2", resp.Entity.Version)
	}
	if resp.Entity.PreviousVersion == nil || *resp.Entity.PreviousVersion != entity.ID {
		t.Error("revision does not point back at the edited node")
	}
}

func TestEditEntityInPlace(t *testing.T) {
	graph := newFakeGraph()
	entity := model.NewEntity("person", "Ada")
	graph.entities[entity.ID] = entity
	graph.created = 0

	rec := patchEntity(t, graph, entity.ID, `{"name": "Ada Lovelace", "in_place": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if graph.updated != 1 {
		t.Errorf("in-place updates = %d, want 1", graph.updated)
	}
	if graph.created != 0 {
		t.Errorf("created %d nodes, want 0 on the in-place path", graph.created)
	}

	var resp struct {
		Entity model.Entity `json:"entity"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Entity.ID != entity.ID {
		t.Error("in-place update changed the entity id")
	}
	if resp.Entity.Version != entity.Version {
		t.Errorf("version = %d, want %d unchanged", resp.Entity.Version, entity.Version)
	}
	if got := graph.entities[entity.ID].Name; got != "Ada Lovelace" {
		t.Errorf("stored name = %q, want %q", got, "Ada Lovelace")
	}
}

func TestEditEntityInPlaceNotFound(t *testing.T) {
	graph := newFakeGraph()
	rec := patchEntity(t, graph, uuid.New(), `{"name": "x", "in_place": true}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
