// Package service exposes the driver's state for operator visibility: a
// liveness check, Prometheus metrics, and JSON dumps of the last snapshot
// and plan. It never mutates scheduler state — the driver's tick loop is the
// only write path (§4.5 of SPEC_FULL.md).
package service

import (
	"github.com/gorilla/mux"
	"github.com/heyfey/priosched/config"
	"github.com/heyfey/priosched/pkg/model"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// driverState is the narrow view of the driver the debug service renders,
// kept as an interface so handlers can be tested against a stub instead of
// a real cluster-backed driver.Driver.
type driverState interface {
	Snapshot() model.Snapshot
	Plan() model.Plan
}

// Service hosts the read-only debug HTTP surface.
type Service struct {
	Router *mux.Router
	driver driverState
}

// New builds a Service backed by d and registers its routes.
func New(d driverState) *Service {
	s := &Service{
		Router: mux.NewRouter(),
		driver: d,
	}
	s.initRoutes()
	return s
}

func (s *Service) initRoutes() {
	s.Router.HandleFunc("/", homePage)
	s.Router.HandleFunc("/healthz", s.healthzHandler()).Methods("GET")
	s.Router.HandleFunc(config.DebugEntryPointSnapshot, s.snapshotHandler()).Methods("GET")
	s.Router.HandleFunc(config.DebugEntryPointPlan, s.planHandler()).Methods("GET")
	s.Router.Handle("/metrics", promhttp.Handler())
}
