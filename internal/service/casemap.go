package service

import (
	"context"
	"encoding/json"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/casemap"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/command"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/engine"
)

// AddDefendantInput carries a defendant joining a case.
type AddDefendantInput struct {
	CaseID        string
	DefendantID   string
	OffenceCodes  []string
	CorrelationID string
}

// AddDefendant adds a defendant to a case, enriching charges from offence
// reference data. Enrichment is best-effort: reference data decorates
// events and never gates them, so a code the lookup cannot resolve passes
// through bare and the command proceeds.
func (s *Service) AddDefendant(ctx context.Context, in AddDefendantInput) (engine.Result, error) {
	correlationID, err := s.correlationID(in.CorrelationID)
	if err != nil {
		return engine.Result{}, err
	}
	offences := make([]casemap.Offence, 0, len(in.OffenceCodes))
	for _, code := range in.OffenceCodes {
		offence := casemap.Offence{Code: code}
		if s.offences != nil {
			if entry, err := s.offences.Offence(ctx, code); err == nil {
				offence = casemap.Offence{
					Code:        entry.Code,
					Title:       entry.Title,
					Legislation: entry.Legislation,
				}
			}
		}
		offences = append(offences, offence)
	}
	payload, err := json.Marshal(casemap.AddDefendantPayload{
		DefendantID: in.DefendantID,
		Offences:    offences,
	})
	if err != nil {
		return engine.Result{}, err
	}
	return s.execute(ctx, command.Command{
		StreamID:      in.CaseID,
		Type:          casemap.CommandTypeAddDefendant,
		Origin:        command.OriginSystem,
		CorrelationID: correlationID,
		PayloadJSON:   payload,
	})
}
