package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	appErrors "github.com/rDingyFourFour/handybob-sub000/internal/errors"
	"github.com/rDingyFourFour/handybob-sub000/internal/metrics"
	"github.com/rDingyFourFour/handybob-sub000/internal/model"
	"github.com/rDingyFourFour/handybob-sub000/internal/repository"
)

const MaxOutcomeNotesLength = 2000

// SchemaChecker confirms the calls table carries the outcome columns.
type SchemaChecker interface {
	VerifyCallOutcomeColumns(ctx context.Context) error
	Invalidate(table string)
}

type OutcomeInput struct {
	ReachedCustomer *bool  `json:"reached_customer"`
	OutcomeCode     string `json:"outcome_code"`
	OutcomeNotes    string `json:"outcome_notes"`
}

type CallOutcomeService struct {
	Calls   repository.CallRepositoryInterface
	Schema  SchemaChecker
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// RecordOutcome validates and saves the outcome of a call that belongs to jobID.
func (s *CallOutcomeService) RecordOutcome(ctx context.Context, jobID, callID int, in OutcomeInput, now time.Time) (*model.Call, error) {
	call, err := s.recordOutcome(ctx, jobID, callID, in, now)
	result := "saved"
	if err != nil {
		result = string(appErrors.KindOf(err))
	}
	s.Metrics.ObserveOutcomeRecord(result)

	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.Int("job_id", jobID), zap.Int("call_id", callID))
	switch appErrors.KindOf(err) {
	case "":
		log.Info("call outcome saved", zap.String("outcome_code", in.OutcomeCode))
	case appErrors.KindSchemaOutOfDate, appErrors.KindPersistence:
		log.Error("call outcome not saved", zap.Error(err))
	default:
		log.Warn("call outcome rejected", zap.Error(err))
	}
	return call, err
}

func (s *CallOutcomeService) recordOutcome(ctx context.Context, jobID, callID int, in OutcomeInput, now time.Time) (*model.Call, error) {
	code := model.OutcomeCode(strings.ToLower(strings.TrimSpace(in.OutcomeCode)))
	if !code.Valid() {
		return nil, appErrors.NewValidation(fmt.Sprintf("unknown outcome code %q", in.OutcomeCode))
	}
	notes := strings.TrimSpace(in.OutcomeNotes)
	if utf8.RuneCountInString(notes) > MaxOutcomeNotesLength {
		return nil, appErrors.NewValidation(fmt.Sprintf("outcome notes exceed %d characters", MaxOutcomeNotesLength))
	}

	call, err := s.Calls.GetByID(ctx, callID)
	if err != nil {
		return nil, err
	}
	if call.JobID != jobID {
		return nil, appErrors.NewWrongScope("call does not belong to this job")
	}

	if s.Schema != nil {
		if err := s.Schema.VerifyCallOutcomeColumns(ctx); err != nil {
			return nil, err
		}
	}

	outcome := model.Outcome{
		ReachedCustomer: in.ReachedCustomer,
		Code:            code,
		Notes:           notes,
		RecordedAt:      now,
	}
	if err := s.Calls.UpdateOutcome(ctx, callID, outcome); err != nil {
		if appErrors.KindOf(err) == appErrors.KindSchemaOutOfDate && s.Schema != nil {
			s.Schema.Invalidate("calls")
		}
		return nil, err
	}

	codeStr := string(code)
	call.ReachedCustomer = in.ReachedCustomer
	call.OutcomeCode = &codeStr
	call.OutcomeRecordedAt = &now
	if notes != "" {
		call.OutcomeNotes = &notes
	} else {
		call.OutcomeNotes = nil
	}
	return call, nil
}
