package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	appErrors "github.com/rDingyFourFour/handybob-sub000/internal/errors"
	"github.com/rDingyFourFour/handybob-sub000/internal/followup"
	"github.com/rDingyFourFour/handybob-sub000/internal/metrics"
	"github.com/rDingyFourFour/handybob-sub000/internal/model"
	"github.com/rDingyFourFour/handybob-sub000/internal/queue"
	"github.com/rDingyFourFour/handybob-sub000/internal/repository"
)

const (
	DefaultDueLimit = 50
	MaxDueLimit     = 200
	MaxBodyLength   = 2000

	// openJobPageSize is how many open jobs DueFollowups loads per query.
	openJobPageSize = 200
)

type FollowupService struct {
	Engine    followup.Engine
	Jobs      repository.JobRepositoryInterface
	Customers repository.CustomerRepositoryInterface
	Quotes    repository.QuoteRepositoryInterface
	Calls     repository.CallRepositoryInterface
	Invoices  repository.InvoiceRepositoryInterface
	Messages  repository.MessageRepositoryInterface
	Queue     queue.Queue
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// JobFollowup is the evaluated follow-up state of one job.
type JobFollowup struct {
	Job             *model.Job              `json:"job"`
	Customer        *model.Customer         `json:"customer"`
	QuoteID         *int                    `json:"quote_id,omitempty"`
	CallID          *int                    `json:"call_id,omitempty"`
	InvoiceID       *int                    `json:"invoice_id,omitempty"`
	Due             followup.DueInfo        `json:"due"`
	Recommendation  followup.Recommendation `json:"recommendation"`
	MatchingMessage *model.Message          `json:"matching_message,omitempty"`
	FollowedUpToday bool                    `json:"followed_up_today"`
	EvaluatedAt     time.Time               `json:"evaluated_at"`

	todays []model.Message
}

// QueueRequest asks for a follow-up message. Empty fields fall back to
// the recommended channel and the channel's default template.
type QueueRequest struct {
	Channel string `json:"channel"`
	Body    string `json:"body"`
}

type sources struct {
	job      *model.Job
	customer *model.Customer
	quote    *model.Quote
	call     *model.Call
	invoice  *model.Invoice
}

func (s *FollowupService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *FollowupService) JobFollowup(ctx context.Context, jobID int, channelHint string, now time.Time) (*JobFollowup, error) {
	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	src, err := s.loadJobSources(ctx, job)
	if err != nil {
		return nil, err
	}

	todays, err := s.Messages.ListForJobSince(ctx, job.ID, followup.StartOfDay(now))
	if err != nil {
		return nil, err
	}
	return s.evaluate(src, todays, channelHint, now), nil
}

// InvoiceFollowup evaluates a single invoice, ignoring the job's calls and quotes.
func (s *FollowupService) InvoiceFollowup(ctx context.Context, invoiceID int, channelHint string, now time.Time) (*JobFollowup, error) {
	invoice, err := s.Invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	job, err := s.Jobs.GetByID(ctx, invoice.JobID)
	if err != nil {
		return nil, err
	}
	customer, err := s.Customers.GetByID(ctx, invoice.CustomerID)
	if err != nil {
		return nil, err
	}

	todays, err := s.Messages.ListForInvoiceSince(ctx, invoice.ID, followup.StartOfDay(now))
	if err != nil {
		return nil, err
	}
	src := sources{job: job, customer: customer, invoice: invoice}
	return s.evaluate(src, todays, channelHint, now), nil
}

// DueFollowups lists open jobs that are due today or overdue and have not
// been followed up today, most overdue first.
func (s *FollowupService) DueFollowups(ctx context.Context, now time.Time, limit int) ([]JobFollowup, error) {
	if limit < 1 {
		limit = DefaultDueLimit
	}
	if limit > MaxDueLimit {
		limit = MaxDueLimit
	}

	due := []JobFollowup{}
	afterID := 0
	for {
		jobs, err := s.Jobs.ListOpen(ctx, afterID, openJobPageSize)
		if err != nil {
			return nil, err
		}
		for i := range jobs {
			view, err := s.dueView(ctx, &jobs[i], now)
			if err != nil {
				return nil, err
			}
			if view != nil {
				due = append(due, *view)
			}
		}
		if len(jobs) < openJobPageSize {
			break
		}
		afterID = jobs[len(jobs)-1].ID
	}

	sort.SliceStable(due, func(i, j int) bool {
		if due[i].Due.DiffDays != due[j].Due.DiffDays {
			return due[i].Due.DiffDays < due[j].Due.DiffDays
		}
		return due[i].Job.ID < due[j].Job.ID
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// dueView evaluates one open job and returns nil when it does not belong
// on the due list.
func (s *FollowupService) dueView(ctx context.Context, job *model.Job, now time.Time) (*JobFollowup, error) {
	src, err := s.loadJobSources(ctx, job)
	if err != nil {
		if appErrors.KindOf(err) == appErrors.KindNotFound {
			s.logger().Warn("skipping job with missing rows", zap.Int("job_id", job.ID), zap.Error(err))
			return nil, nil
		}
		return nil, err
	}
	todays, err := s.Messages.ListForJobSince(ctx, job.ID, followup.StartOfDay(now))
	if err != nil {
		return nil, err
	}

	view := s.evaluate(src, todays, "", now)
	if view.Recommendation.ShouldSkipFollowup || view.FollowedUpToday {
		return nil, nil
	}
	if view.Due.Status != followup.DueOverdue && view.Due.Status != followup.DueToday {
		return nil, nil
	}
	return view, nil
}

// QueueFollowup creates a pending message for the job and publishes it for
// delivery. A second message on the same channel on the same day is rejected.
func (s *FollowupService) QueueFollowup(ctx context.Context, jobID int, req QueueRequest, now time.Time) (*model.Message, error) {
	var channel model.Channel
	if strings.TrimSpace(req.Channel) != "" {
		c, ok := model.ParseChannel(req.Channel)
		if !ok {
			return nil, appErrors.NewValidation(fmt.Sprintf("unknown channel %q", req.Channel))
		}
		channel = c
	}
	body := strings.TrimSpace(req.Body)
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return nil, appErrors.NewValidation(fmt.Sprintf("message body exceeds %d characters", MaxBodyLength))
	}

	view, err := s.JobFollowup(ctx, jobID, string(channel), now)
	if err != nil {
		return nil, err
	}
	if view.Recommendation.ShouldSkipFollowup {
		return nil, appErrors.NewValidation(
			fmt.Sprintf("no follow-up needed for this job (%s)", view.Recommendation.Outcome))
	}
	if channel == "" {
		channel = *view.Recommendation.Channel
	}

	params := matchParams(view, now)
	params.Channel = channel
	if existing := followup.FindMatchingMessage(view.todays, params); existing != nil {
		return nil, appErrors.NewValidation(fmt.Sprintf("a %s follow-up was already sent today", channel))
	}

	if body == "" {
		body = RenderFollowupBody(channel, view.Customer, view.Job)
	}
	msg := &model.Message{
		CustomerID: view.Job.CustomerID,
		JobID:      &view.Job.ID,
		QuoteID:    view.QuoteID,
		InvoiceID:  view.InvoiceID,
		Channel:    channel,
		Status:     model.MessageStatusPending,
		Body:       body,
		CreatedAt:  now,
	}
	window := followup.DayWindow(now)
	created, err := s.Messages.CreateUnlessSent(ctx, msg, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, appErrors.NewValidation(fmt.Sprintf("a %s follow-up was already sent today", channel))
	}

	log := s.logger().With(zap.Int("job_id", jobID), zap.Int("message_id", msg.ID), zap.String("channel", string(channel)))
	if err := s.Queue.Publish(queue.FollowupSendTopic, msg.ID); err != nil {
		log.Error("failed to enqueue follow-up", zap.Error(err))
		_ = s.Messages.UpdateStatus(ctx, msg.ID, model.MessageStatusFailed, err.Error(), nil)
		return nil, appErrors.NewPersistence("failed to enqueue follow-up", err)
	}

	s.Metrics.ObserveQueued(string(channel))
	log.Info("follow-up queued")
	return msg, nil
}

func (s *FollowupService) loadJobSources(ctx context.Context, job *model.Job) (sources, error) {
	src := sources{job: job}
	var err error
	if src.customer, err = s.Customers.GetByID(ctx, job.CustomerID); err != nil {
		return src, err
	}
	if src.quote, err = s.Quotes.LatestForJob(ctx, job.ID); err != nil {
		return src, err
	}
	if src.call, err = s.Calls.LatestForJob(ctx, job.ID); err != nil {
		return src, err
	}
	if src.invoice, err = s.Invoices.LatestOpenForJob(ctx, job.ID); err != nil {
		return src, err
	}
	return src, nil
}

func (s *FollowupService) evaluate(src sources, todays []model.Message, channelHint string, now time.Time) *JobFollowup {
	outcome, since := outcomeSignal(src)
	in := followup.RecommendationInput{Outcome: outcome, ChannelHint: channelHint}
	if since != nil {
		days := followup.CalendarDaysBetween(*since, now)
		if days < 0 {
			days = 0
		}
		in.DaysSince = &days
	}
	rec := s.Engine.DeriveRecommendation(in)

	subject := followup.Subject{Now: now}
	if !rec.ShouldSkipFollowup {
		if src.quote != nil {
			subject.QuoteCreatedAt = &src.quote.CreatedAt
		}
		if src.call != nil {
			subject.CallCreatedAt = &src.call.CreatedAt
		}
		if src.invoice != nil {
			subject.InvoiceDueAt = src.invoice.DueAt
		}
		if cadence, ok := s.Engine.CadenceDays(rec.Outcome); ok {
			subject.RecommendedDelayDays = &cadence
		}
	}
	due := s.Engine.ComputeDueInfo(subject)

	view := &JobFollowup{
		Job:            src.job,
		Customer:       src.customer,
		Due:            due,
		Recommendation: rec,
		EvaluatedAt:    now,
		todays:         todays,
	}
	if src.quote != nil {
		view.QuoteID = &src.quote.ID
	}
	if src.call != nil {
		view.CallID = &src.call.ID
	}
	if src.invoice != nil {
		view.InvoiceID = &src.invoice.ID
	}

	params := matchParams(view, now)
	for _, ch := range channelOrder(rec.Channel) {
		params.Channel = ch
		if m := followup.FindMatchingMessage(todays, params); m != nil {
			view.MatchingMessage = m
			view.FollowedUpToday = true
			break
		}
	}

	s.Metrics.ObserveEvaluation(string(due.Status))
	s.logger().Debug("follow-up evaluated",
		zap.Int("job_id", src.job.ID),
		zap.String("due_status", string(due.Status)),
		zap.String("outcome_class", string(rec.Outcome)),
		zap.Bool("followed_up_today", view.FollowedUpToday))
	return view
}

// outcomeSignal picks the outcome text and its reference time with the
// same precedence as due dates: invoice, then call, then quote.
func outcomeSignal(src sources) (string, *time.Time) {
	switch {
	case src.invoice != nil:
		inv := src.invoice
		if !inv.IsOpen() {
			return inv.Status, inv.PaidAt
		}
		if inv.SentAt != nil {
			return inv.Status, inv.SentAt
		}
		return inv.Status, &inv.CreatedAt
	case src.call != nil:
		c := src.call
		if c.OutcomeCode != nil && *c.OutcomeCode != "" {
			return *c.OutcomeCode, &c.CreatedAt
		}
		return c.Summary, &c.CreatedAt
	case src.quote != nil:
		return src.quote.Status, &src.quote.CreatedAt
	}
	return "", nil
}

func matchParams(view *JobFollowup, now time.Time) followup.MatchParams {
	p := followup.MatchParams{Window: followup.DayWindow(now)}
	if view.Job != nil {
		p.JobID = view.Job.ID
	}
	if view.QuoteID != nil {
		p.QuoteID = *view.QuoteID
	}
	if view.InvoiceID != nil {
		p.InvoiceID = *view.InvoiceID
	}
	return p
}

func channelOrder(preferred *model.Channel) []model.Channel {
	if preferred != nil && *preferred == model.ChannelEmail {
		return []model.Channel{model.ChannelEmail, model.ChannelSMS}
	}
	return []model.Channel{model.ChannelSMS, model.ChannelEmail}
}
