package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/me/rtsched/pkg/model"
)

type healthResponse struct {
	Status      string             `json:"status"`
	Version     string             `json:"version"`
	GoVersion   string             `json:"go_version"`
	Uptime      string             `json:"uptime"`
	Store       string             `json:"store"`
	Workers     int                `json:"workers"`
	Disciplines []model.Discipline `json:"disciplines"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	storeState := "sqlite"
	if s.store == nil {
		storeState = "unavailable"
	}
	respondOK(w, reqID, healthResponse{
		Status:      "healthy",
		Version:     Version,
		GoVersion:   runtime.Version(),
		Uptime:      time.Since(s.startTime).Round(time.Second).String(),
		Store:       storeState,
		Workers:     s.config.Analysis.Workers,
		Disciplines: model.Disciplines,
	})
}
