package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:        "rtsched API",
		Version:     "v1",
		Description: "Schedulability analysis of periodic real-time task sets",
		Endpoints: []endpointInfo{
			{"/api/v1/tasksets", []string{"GET", "POST"}, "Task set registry. POST accepts tasks as JSON or a text/YAML source; identical content returns the existing entry"},
			{"/api/v1/tasksets/{id}", []string{"GET", "DELETE"}, "Single task set"},
			{"/api/v1/tasksets/{id}/analyze", []string{"POST"}, "Analyze a registered task set. ?discipline=cyclic|edf|rm|dm, ?frame_size=N for cyclic"},
			{"/api/v1/analyze", []string{"POST"}, "Analyze an inline task set without registering it"},
			{"/api/v1/health", []string{"GET"}, "Server health and version"},
		},
	})
}
