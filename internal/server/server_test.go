package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "github.com/kastman/sbml-diff/pkg/errors"
	"github.com/kastman/sbml-diff/pkg/pipeline"
)

const testDoc = `<?xml version="1.0"?>
<sbml xmlns="http://www.sbml.org/sbml/level2/version4" level="2" version="4">
  <model id="m">
    <listOfSpecies><species id="X"/></listOfSpecies>
  </model>
</sbml>`

const testDocOther = `<?xml version="1.0"?>
<sbml xmlns="http://www.sbml.org/sbml/level2/version4" level="2" version="4">
  <model id="m">
    <listOfSpecies><species id="Y"/></listOfSpecies>
  </model>
</sbml>`

func newTestServer(t *testing.T) (*Server, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return New(pipeline.NewRunner(nil, nil), store, nil), store
}

func postCompare(t *testing.T, s *Server, body compareRequest) *httptest.ResponseRecorder {
	t.Helper()
	encoded, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/compare", bytes.NewReader(encoded))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestCompareEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := postCompare(t, s, compareRequest{
		Documents: []documentPayload{
			{Name: "a.xml", Content: testDoc},
			{Name: "b.xml", Content: testDocOther},
		},
		Options: pipeline.Options{Formats: []string{pipeline.FormatDOT}},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp compareResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.ID == "" {
		t.Error("response missing run id")
	}
	if !resp.HasDifferences {
		t.Error("distinct species sets must report differences")
	}
	if !strings.Contains(resp.Artifacts["dot"], "digraph comparison") {
		t.Errorf("dot artifact missing:\n%s", resp.Artifacts["dot"])
	}
}

func TestCompareRecordsRun(t *testing.T) {
	s, store := newTestServer(t)

	rec := postCompare(t, s, compareRequest{
		Documents: []documentPayload{{Name: "a.xml", Content: testDoc}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	runs, err := store.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	if runs[0].ModelNames[0] != "a.xml" {
		t.Errorf("recorded names = %v", runs[0].ModelNames)
	}
}

func TestCompareBadRequests(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name     string
		req      compareRequest
		want     int
		wantCode apperrors.Code
	}{
		{"no documents", compareRequest{}, http.StatusBadRequest, apperrors.ErrCodeInvalidInput},
		{"unnamed document", compareRequest{
			Documents: []documentPayload{{Content: testDoc}},
		}, http.StatusBadRequest, apperrors.ErrCodeInvalidDocument},
		{"path in document name", compareRequest{
			Documents: []documentPayload{{Name: "../a.xml", Content: testDoc}},
		}, http.StatusBadRequest, apperrors.ErrCodeInvalidDocument},
		{"unparseable document", compareRequest{
			Documents: []documentPayload{{Name: "x.xml", Content: "<html/>"}},
		}, http.StatusUnprocessableEntity, apperrors.ErrCodeInvalidDocument},
		{"bad format", compareRequest{
			Documents: []documentPayload{{Name: "a.xml", Content: testDoc}},
			Options:   pipeline.Options{Formats: []string{"pdf"}},
		}, http.StatusUnprocessableEntity, apperrors.ErrCodeInvalidDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postCompare(t, s, tt.req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d, body %s", rec.Code, tt.want, rec.Body)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal error body: %v", err)
			}
			if body["code"] != string(tt.wantCode) {
				t.Errorf("code = %q, want %q", body["code"], tt.wantCode)
			}
		})
	}
}

func TestRunEndpoints(t *testing.T) {
	s, store := newTestServer(t)

	run := Run{ID: "run-1", CreatedAt: time.Now().UTC(), ModelNames: []string{"a.xml"}}
	if err := store.Insert(context.Background(), run); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/runs/run-1", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get run status = %d", rec.Code)
	}
	var got Run
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal run: %v", err)
	}
	if got.ID != "run-1" {
		t.Errorf("run id = %q", got.ID)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/runs/missing", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing run status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/runs?limit=5", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("list runs status = %d", rec.Code)
	}
}

func TestMemoryStoreOrdering(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	base := time.Now().UTC()
	for i, id := range []string{"old", "mid", "new"} {
		run := Run{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := store.Insert(ctx, run); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "new" || runs[1].ID != "mid" {
		t.Errorf("List order wrong: %+v", runs)
	}

	if _, err := store.Get(ctx, "absent"); err != ErrRunNotFound {
		t.Errorf("Get(absent) = %v, want ErrRunNotFound", err)
	}
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}
}
