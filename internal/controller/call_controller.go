package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rDingyFourFour/handybob-sub000/internal/model"
	"github.com/rDingyFourFour/handybob-sub000/internal/service"
)

type CallOutcomeServiceInterface interface {
	RecordOutcome(ctx context.Context, jobID, callID int, in service.OutcomeInput, now time.Time) (*model.Call, error)
}

var _ CallOutcomeServiceInterface = (*service.CallOutcomeService)(nil)

type CallController struct {
	Service CallOutcomeServiceInterface
	Clock   func() time.Time
}

func (c *CallController) Routes(r chi.Router) {
	r.Post("/jobs/{jobID}/calls/{callID}/outcome", c.RecordOutcome)
}

func (c *CallController) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	jobID, err := idParam(r, "jobID")
	if err != nil {
		writeError(w, err)
		return
	}
	callID, err := idParam(r, "callID")
	if err != nil {
		writeError(w, err)
		return
	}

	var body service.OutcomeInput
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	now := time.Now()
	if c.Clock != nil {
		now = c.Clock()
	}
	call, err := c.Service.RecordOutcome(r.Context(), jobID, callID, body, now)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, call)
}
