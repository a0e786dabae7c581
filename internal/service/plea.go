package service

import (
	"context"
	"encoding/json"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/command"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/engine"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/plea"
)

// CreatePleaInput carries an initial plea for a defendant.
type CreatePleaInput struct {
	DefendantID      string
	CaseURN          string
	PleaValue        string
	HearingID        string
	DefendantDetails plea.DefendantDetails
	ActorID          string
	CorrelationID    string
}

// CreatePlea allocates a plea record for the defendant and raises the
// listing-officer review task.
func (s *Service) CreatePlea(ctx context.Context, in CreatePleaInput) (engine.Result, error) {
	correlationID, err := s.correlationID(in.CorrelationID)
	if err != nil {
		return engine.Result{}, err
	}
	payload, err := json.Marshal(plea.CreatePayload{
		CaseURN:          in.CaseURN,
		PleaValue:        in.PleaValue,
		HearingID:        in.HearingID,
		DefendantDetails: in.DefendantDetails,
	})
	if err != nil {
		return engine.Result{}, err
	}
	return s.execute(ctx, command.Command{
		StreamID:      in.DefendantID,
		Type:          plea.CommandTypeCreate,
		Origin:        command.OriginUser,
		ActorID:       in.ActorID,
		CorrelationID: correlationID,
		PayloadJSON:   payload,
	})
}

// UpdatePleaInput carries an update to an allocated plea.
type UpdatePleaInput struct {
	DefendantID      string
	PleaValue        string
	HearingID        string
	DefendantDetails plea.DefendantDetails
	DetailsConfirmed bool
	ActorID          string
	CorrelationID    string
}

// UpdatePlea updates an allocated plea; the case URN is stamped from the
// original allocation.
func (s *Service) UpdatePlea(ctx context.Context, in UpdatePleaInput) (engine.Result, error) {
	correlationID, err := s.correlationID(in.CorrelationID)
	if err != nil {
		return engine.Result{}, err
	}
	payload, err := json.Marshal(plea.UpdatePayload{
		PleaValue:        in.PleaValue,
		HearingID:        in.HearingID,
		DefendantDetails: in.DefendantDetails,
		DetailsConfirmed: in.DetailsConfirmed,
	})
	if err != nil {
		return engine.Result{}, err
	}
	return s.execute(ctx, command.Command{
		StreamID:      in.DefendantID,
		Type:          plea.CommandTypeUpdate,
		Origin:        command.OriginUser,
		ActorID:       in.ActorID,
		CorrelationID: correlationID,
		PayloadJSON:   payload,
	})
}
