package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sarchlab/memsim/mem"
	"github.com/sarchlab/memsim/tutorial"
)

func (s *Server) listTutorials(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, map[string]any{"tutorials": s.tutorials.List()})
}

type startTutorialRequest struct {
	TutorialID string `json:"tutorial_id"`
}

func (s *Server) startTutorial(w http.ResponseWriter, r *http.Request) {
	req := startTutorialRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.TutorialID == "" {
		writeError(w, http.StatusBadRequest, "Tutorial ID is required")
		return
	}

	view, err := s.tutorials.Start(req.TutorialID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	s.logger.WithField("tutorial", req.TutorialID).Info("tutorial started")

	writeSuccess(w, map[string]any{
		"tutorial_step": s.stepPayload(view),
	})
}

type tutorialNextRequest struct {
	OperationData *operationData `json:"operation_data"`
}

type operationData struct {
	Type    mem.OpKind `json:"type"`
	Size    int        `json:"size"`
	Address int        `json:"address"`
}

func (s *Server) tutorialNext(w http.ResponseWriter, r *http.Request) {
	req := tutorialNextRequest{}
	// An empty body is fine: verification only runs when operation data
	// is provided.
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.OperationData != nil {
		completed := s.tutorials.VerifyStep(
			req.OperationData.Type,
			req.OperationData.Size,
			req.OperationData.Address,
		)
		if !completed {
			writeError(w, http.StatusBadRequest,
				"Please complete the current step's task before proceeding")
			return
		}
	}

	view, done, err := s.tutorials.Next()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if done {
		writeSuccess(w, map[string]any{
			"completed": true,
			"message":   fmt.Sprintf("Tutorial %q completed!", view.TutorialTitle),
		})
		return
	}

	writeSuccess(w, map[string]any{
		"tutorial_step": s.stepPayload(view),
	})
}

func (s *Server) tutorialPrevious(w http.ResponseWriter, _ *http.Request) {
	view, err := s.tutorials.Previous()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeSuccess(w, map[string]any{
		"tutorial_step": s.stepPayload(view),
	})
}

func (s *Server) endTutorial(w http.ResponseWriter, _ *http.Request) {
	id, err := s.tutorials.End()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.WithField("tutorial", id).Info("tutorial ended")

	writeSuccess(w, map[string]any{
		"message":     "Tutorial ended successfully",
		"tutorial_id": id,
	})
}

func (s *Server) currentTutorialStep(w http.ResponseWriter, _ *http.Request) {
	view, err := s.tutorials.Current()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	step := viewFields(view)
	if snapshot, err := s.simulator.Snapshot(); err == nil {
		step["memory_state"] = statePayload(snapshot)
	}

	writeSuccess(w, map[string]any{"tutorial_step": step})
}

// stepPayload serializes a step view, restarting the simulation when the
// step prescribes a full configuration and attaching the resulting memory
// state.
func (s *Server) stepPayload(view tutorial.StepView) map[string]any {
	payload := viewFields(view)

	cfg, prescribed := stepConfig(view.Step)
	if prescribed {
		snapshot, err := s.start(cfg)
		if err != nil {
			s.logger.WithError(err).
				Error("failed to apply tutorial step configuration")
			return payload
		}

		s.logger.WithField("tutorial", view.TutorialID).
			Info("tutorial step simulation configured")
		payload["memory_state"] = statePayload(snapshot)
	}

	return payload
}

func viewFields(view tutorial.StepView) map[string]any {
	return map[string]any{
		"tutorial_id":    view.TutorialID,
		"tutorial_title": view.TutorialTitle,
		"step_index":     view.StepIndex,
		"total_steps":    view.TotalSteps,
		"step":           view.Step,
		"is_first_step":  view.IsFirstStep,
		"is_last_step":   view.IsLastStep,
	}
}

// stepConfig converts a step's suggested parameters into a full start
// configuration. Only steps that name both sizes restart the simulation.
func stepConfig(step tutorial.Step) (mem.Config, bool) {
	if step.Config == nil {
		return mem.Config{}, false
	}

	if step.Config.MemorySize == 0 || step.Config.PageSize == 0 {
		return mem.Config{}, false
	}

	cfg := mem.Config{
		Technique:  step.Config.Technique,
		MemorySize: step.Config.MemorySize,
		PageSize:   step.Config.PageSize,
		Algorithm:  step.Config.Algorithm,
	}

	if cfg.Technique == "" {
		cfg.Technique = mem.TechniquePaging
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = mem.AlgorithmFIFO
	}

	return cfg, true
}
