package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rDingyFourFour/handybob-sub000/internal/model"
	"github.com/rDingyFourFour/handybob-sub000/internal/service"
)

type FollowupServiceInterface interface {
	JobFollowup(ctx context.Context, jobID int, channelHint string, now time.Time) (*service.JobFollowup, error)
	InvoiceFollowup(ctx context.Context, invoiceID int, channelHint string, now time.Time) (*service.JobFollowup, error)
	DueFollowups(ctx context.Context, now time.Time, limit int) ([]service.JobFollowup, error)
	QueueFollowup(ctx context.Context, jobID int, req service.QueueRequest, now time.Time) (*model.Message, error)
}

var _ FollowupServiceInterface = (*service.FollowupService)(nil)

type FollowupController struct {
	Service FollowupServiceInterface
	Clock   func() time.Time
	Logger  *zap.Logger
}

func (c *FollowupController) Routes(r chi.Router) {
	r.Get("/jobs/{jobID}/followup", c.GetJobFollowup)
	r.Post("/jobs/{jobID}/followups", c.QueueFollowup)
	r.Get("/invoices/{invoiceID}/followup", c.GetInvoiceFollowup)
	r.Get("/followups/due", c.ListDue)
}

func (c *FollowupController) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

func (c *FollowupController) GetJobFollowup(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "jobID")
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := c.Service.JobFollowup(r.Context(), id, r.URL.Query().Get("channel_hint"), c.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, view)
}

func (c *FollowupController) GetInvoiceFollowup(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "invoiceID")
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := c.Service.InvoiceFollowup(r.Context(), id, r.URL.Query().Get("channel_hint"), c.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, view)
}

func (c *FollowupController) ListDue(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	due, err := c.Service.DueFollowups(r.Context(), c.now(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"data":  due,
		"count": len(due),
	})
}

func (c *FollowupController) QueueFollowup(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "jobID")
	if err != nil {
		writeError(w, err)
		return
	}

	var body service.QueueRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	msg, err := c.Service.QueueFollowup(r.Context(), id, body, c.now())
	if err != nil {
		writeError(w, err)
		return
	}
	if c.Logger != nil {
		c.Logger.Debug("follow-up accepted", zap.Int("job_id", id), zap.Int("message_id", msg.ID))
	}
	writeData(w, http.StatusAccepted, msg)
}
