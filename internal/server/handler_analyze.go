package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/me/rtsched/internal/cyclic"
	"github.com/me/rtsched/internal/feasibility"
	"github.com/me/rtsched/internal/report"
	"github.com/me/rtsched/pkg/model"
)

// analysisParams are the query parameters of both analyze endpoints.
type analysisParams struct {
	discipline model.Discipline
	frameSize  int64
}

func parseAnalysisParams(r *http.Request) (analysisParams, *model.APIError) {
	p := analysisParams{discipline: model.DisciplineCyclic}
	q := r.URL.Query()
	if v := q.Get("discipline"); v != "" {
		d, ok := model.ParseDiscipline(v)
		if !ok {
			return p, model.NewValidationError("unknown discipline", model.FieldError{
				Field:   "discipline",
				Message: fmt.Sprintf("%q is not one of %v", v, model.Disciplines),
			})
		}
		p.discipline = d
	}
	if v := q.Get("frame_size"); v != "" {
		fs, err := strconv.ParseInt(v, 10, 64)
		if err != nil || fs <= 0 {
			return p, model.NewValidationError("invalid frame size", model.FieldError{
				Field:   "frame_size",
				Message: "must be a positive integer in normalized units",
			})
		}
		if p.discipline != model.DisciplineCyclic {
			return p, model.NewValidationError("frame size applies to cyclic analysis only", model.FieldError{
				Field:   "frame_size",
				Message: "not allowed with discipline " + string(p.discipline),
			})
		}
		p.frameSize = fs
	}
	return p, nil
}

func (s *Server) handleAnalyzeTaskSet(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	params, apiErr := parseAnalysisParams(r)
	if apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}
	rec, ok := s.taskSet(w, r)
	if !ok {
		return
	}
	s.analyze(w, r, params, rec.Name, rec.Scale, rec.Tasks)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	params, apiErr := parseAnalysisParams(r)
	if apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}

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
	s.analyze(w, r, params, n.Name, n.Scale, n.Tasks)
}

// analyze runs one discipline and responds with its report. An unschedulable
// or inconclusive verdict is a successful analysis and answers 200.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request, p analysisParams, name string, scale int64, tasks model.TaskSet) {
	reqID := RequestIDFromContext(r.Context())

	if p.discipline == model.DisciplineCyclic {
		c, err := s.analyzeCyclic(r.Context(), p.frameSize, name, scale, tasks)
		var se *model.ScheduleSizeError
		switch {
		case errors.As(err, &se):
			s.logger.Warn("cyclic analysis over size limits", "name", name, "hyperperiod", se.Hyperperiod, "frames", se.Frames, "jobs", se.Jobs)
			respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("task set exceeds the analysis size limits", model.FieldError{
				Field:   "tasks",
				Message: err.Error(),
			}))
		case errors.Is(err, cyclic.ErrInvalidFrameSize):
			respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(err.Error(), model.FieldError{
				Field:   "frame_size",
				Message: "not a candidate frame size for this task set",
			}))
		case err != nil:
			s.logger.Error("cyclic analysis", "name", name, "error", err)
			respondInternal(w, reqID, err)
		default:
			s.logger.Info("analyzed", "discipline", p.discipline, "name", name, "verdict", c.Verdict)
			respondOK(w, reqID, c)
		}
		return
	}

	rep, err := feasibility.Analyze(p.discipline, tasks)
	if err != nil {
		respondInputError(w, reqID, err)
		return
	}
	s.logger.Info("analyzed", "discipline", p.discipline, "name", name, "verdict", rep.Verdict)
	respondOK(w, reqID, report.NewFeasibility(name, scale, tasks, rep))
}

// analyzeCyclic runs the frame scheduler. Whole-run aborts become part of the
// report; any other error is returned.
func (s *Server) analyzeCyclic(ctx context.Context, frameSize int64, name string, scale int64, tasks model.TaskSet) (*report.Cyclic, error) {
	cfg := s.config.Analysis
	cfg.FrameSize = frameSize

	res, err := cyclic.NewAnalyzer(cfg, s.base).Run(ctx, tasks)
	var (
		ue *model.InfeasibleUtilizationError
		ne *model.NoValidFrameSizeError
	)
	if err != nil && !errors.As(err, &ue) && !errors.As(err, &ne) {
		return nil, err
	}
	s.logger.Debug("cyclic analysis done", "name", name, "timetables", len(res.Timetables()))
	return report.NewCyclic(name, scale, res, err), nil
}
