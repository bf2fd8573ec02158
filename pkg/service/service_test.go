package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/heyfey/priosched/pkg/model"
)

type stubDriver struct {
	snapshot model.Snapshot
	plan     model.Plan
}

func (s stubDriver) Snapshot() model.Snapshot { return s.snapshot }
func (s stubDriver) Plan() model.Plan         { return s.plan }

func TestHealthz(t *testing.T) {
	svc := New(stubDriver{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	svc.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestSnapshotHandlerReturnsLastSnapshot(t *testing.T) {
	snap := model.Snapshot{
		SchedulerName: "priosched",
		Nodes:         []model.Node{{Name: "n1", Ready: true}},
	}
	svc := New(stubDriver{snapshot: snap})

	req := httptest.NewRequest(http.MethodGet, "/debug/snapshot", nil)
	rec := httptest.NewRecorder()
	svc.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusOK)
	}
	var got model.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if got.SchedulerName != "priosched" || len(got.Nodes) != 1 {
		t.Fatalf("unexpected snapshot body: %+v", got)
	}
}

func TestPlanHandlerReturnsLastPlan(t *testing.T) {
	plan := model.Plan{model.Bind(model.ID{Namespace: "default", Name: "p"}, "n1")}
	svc := New(stubDriver{plan: plan})

	req := httptest.NewRequest(http.MethodGet, "/debug/plan", nil)
	rec := httptest.NewRecorder()
	svc.Router.ServeHTTP(rec, req)

	var got model.Plan
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if len(got) != 1 || got[0].Node != "n1" {
		t.Fatalf("unexpected plan body: %+v", got)
	}
}
