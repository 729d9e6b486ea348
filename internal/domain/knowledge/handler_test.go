package knowledge

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestHandler_Stats(t *testing.T) {
	dir := t.TempDir()
	sops := writeKB(t, dir, "sops.json", `{
		"metadata": {"version": "1.2.0"},
		"sops": [
			{"sop_id": "sop-1", "title": "a"},
			{"sop_id": "sop-2", "title": "b"}
		]
	}`)
	guidelines := writeKB(t, dir, "guidelines.json", `{"guidelines": [
		{"guideline_id": "gl-1", "title": "c"}
	]}`)

	store := Load(SourcePaths{SOPs: sops, Guidelines: guidelines}, zerolog.Nop())
	h := NewHandler(store)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/knowledge/stats", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Stats(c); err != nil {
		t.Fatalf("stats handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]struct {
		Count   int    `json:"count"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["sops"].Count != 2 || body["sops"].Version != "1.2.0" {
		t.Errorf("unexpected sops stats: %+v", body["sops"])
	}
	if body["policies"].Count != 0 || body["policies"].Version != "unknown" {
		t.Errorf("unexpected policies stats: %+v", body["policies"])
	}
	if body["guidelines"].Count != 1 {
		t.Errorf("unexpected guidelines stats: %+v", body["guidelines"])
	}
}
