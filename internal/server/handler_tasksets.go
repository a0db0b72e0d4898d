package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/me/rtsched/internal/store"
	"github.com/me/rtsched/internal/taskset"
	"github.com/me/rtsched/pkg/model"
)

// taskSetRequest carries a task set either as decoded tasks or as source
// text in the text or YAML task-set format. Source wins when both are set.
type taskSetRequest struct {
	Name   string            `json:"name"`
	Tasks  []taskset.RawTask `json:"tasks"`
	Source string            `json:"source"`
	Format string            `json:"format"` // text, yaml, or empty to detect
}

// load validates and normalizes the request body.
func (s *Server) load(req *taskSetRequest) (*taskset.Normalized, error) {
	if req.Source != "" {
		var format taskset.Format
		switch taskset.Format(req.Format) {
		case taskset.FormatAuto, taskset.FormatText, taskset.FormatYAML:
			format = taskset.Format(req.Format)
		default:
			return nil, model.NewValidationError("unknown source format", model.FieldError{
				Field:   "format",
				Message: "must be text or yaml",
			})
		}
		n, err := s.parser.Load([]byte(req.Source), format)
		if err != nil {
			return nil, err
		}
		if req.Name != "" {
			n.Name = req.Name
		}
		return n, nil
	}
	return s.parser.Check(&taskset.Document{Name: req.Name, Tasks: req.Tasks})
}

func (s *Server) handleCreateTaskSet(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req taskSetRequest
	if err := decodeJSON(w, r, s.maxBodyBytes, &req); err != nil {
		respondInputError(w, reqID, err)
		return
	}
	n, err := s.load(&req)
	if err != nil {
		respondInputError(w, reqID, err)
		return
	}

	hash := taskset.ContentHash(n.Tasks, n.Scale)
	existing, err := s.store.GetTaskSetByHash(r.Context(), hash)
	if err != nil {
		s.logger.Error("lookup task set", "hash", hash, "error", err)
		respondInternal(w, reqID, err)
		return
	}
	if existing != nil {
		s.logger.Debug("task set already registered", "id", existing.ID)
		respondOK(w, reqID, existing)
		return
	}

	rec := &model.TaskSetRecord{
		ID:          "ts_" + uuid.New().String(),
		Name:        n.Name,
		ContentHash: hash,
		Scale:       n.Scale,
		Tasks:       n.Tasks,
		Source:      req.Source,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateTaskSet(r.Context(), rec); err != nil {
		s.logger.Error("create task set", "error", err)
		respondInternal(w, reqID, err)
		return
	}
	s.logger.Info("task set registered", "id", rec.ID, "name", rec.Name, "tasks", len(rec.Tasks))
	respondCreated(w, reqID, rec)
}

func (s *Server) handleListTaskSets(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	opts := parseListOptions(r)

	sets, total, err := s.store.ListTaskSets(r.Context(), opts)
	if err != nil {
		s.logger.Error("list task sets", "error", err)
		respondInternal(w, reqID, err)
		return
	}
	if sets == nil {
		sets = []*model.TaskSetRecord{}
	}
	respondList(w, reqID, sets, model.NewPagination(total, opts))
}

func (s *Server) handleGetTaskSet(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	rec, ok := s.taskSet(w, r)
	if !ok {
		return
	}
	respondOK(w, reqID, rec)
}

func (s *Server) handleDeleteTaskSet(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.store.DeleteTaskSet(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("task set", id))
			return
		}
		s.logger.Error("delete task set", "id", id, "error", err)
		respondInternal(w, reqID, err)
		return
	}
	s.logger.Info("task set deleted", "id", id)
	respondOK(w, reqID, map[string]string{"id": id})
}

// taskSet fetches the record named by the {id} URL parameter, writing a 404
// or 500 response and returning false when it cannot.
func (s *Server) taskSet(w http.ResponseWriter, r *http.Request) (*model.TaskSetRecord, bool) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	rec, err := s.store.GetTaskSet(r.Context(), id)
	if err != nil {
		s.logger.Error("get task set", "id", id, "error", err)
		respondInternal(w, reqID, err)
		return nil, false
	}
	if rec == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("task set", id))
		return nil, false
	}
	return rec, true
}

func parseListOptions(r *http.Request) model.ListOptions {
	opts := model.DefaultListOptions()
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Offset = n
		}
	}
	opts.Name = q.Get("name")
	opts.Clamp()
	return opts
}
