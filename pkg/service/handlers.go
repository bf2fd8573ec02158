package service

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/heyfey/priosched/config"
)

func homePage(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "%s", config.Msg)
}

func (s *Service) healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	}
}

func (s *Service) snapshotHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.driver.Snapshot())
	}
}

func (s *Service) planHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.driver.Plan())
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, err.Error())
	}
}
