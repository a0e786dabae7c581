package service

import (
	"context"
	"encoding/json"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/association"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/command"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/engine"
)

// AssociateInput carries an organisation-association request.
type AssociateInput struct {
	DefendantID        string
	ActorID            string
	OrganisationID     string
	OrganisationName   string
	RepresentationType string
	// LAAContractNumber is set for representation-order associations.
	LAAContractNumber string
	CorrelationID     string
}

// AssociateOrganisation associates a defence organisation with a defendant.
func (s *Service) AssociateOrganisation(ctx context.Context, in AssociateInput) (engine.Result, error) {
	return s.associate(ctx, in, association.CommandTypeAssociate, command.OriginUser)
}

// AssociateByRepOrder applies a representation order, displacing any
// existing association.
func (s *Service) AssociateByRepOrder(ctx context.Context, in AssociateInput) (engine.Result, error) {
	return s.associate(ctx, in, association.CommandTypeAssociateRepOrder, command.OriginSystem)
}

func (s *Service) associate(ctx context.Context, in AssociateInput, commandType command.Type, origin command.Origin) (engine.Result, error) {
	correlationID, err := s.correlationID(in.CorrelationID)
	if err != nil {
		return engine.Result{}, err
	}
	payload, err := json.Marshal(association.AssociatePayload{
		OrganisationID:     in.OrganisationID,
		OrganisationName:   in.OrganisationName,
		RepresentationType: in.RepresentationType,
		LAAContractNumber:  in.LAAContractNumber,
	})
	if err != nil {
		return engine.Result{}, err
	}
	return s.execute(ctx, command.Command{
		StreamID:      in.DefendantID,
		Type:          commandType,
		Origin:        origin,
		ActorID:       in.ActorID,
		CorrelationID: correlationID,
		PayloadJSON:   payload,
	})
}

// DisassociateInput carries a disassociation request.
type DisassociateInput struct {
	DefendantID    string
	ActorID        string
	OrganisationID string
	CaseID         string
	IsLAA          bool
	CorrelationID  string
}

// Disassociate ends an organisation's representation of a defendant. The
// reactor revokes outstanding grants once the event commits.
func (s *Service) Disassociate(ctx context.Context, in DisassociateInput) (engine.Result, error) {
	correlationID, err := s.correlationID(in.CorrelationID)
	if err != nil {
		return engine.Result{}, err
	}
	payload, err := json.Marshal(association.DisassociatePayload{
		OrganisationID: in.OrganisationID,
		CaseID:         in.CaseID,
		IsLAA:          in.IsLAA,
	})
	if err != nil {
		return engine.Result{}, err
	}
	origin := command.OriginUser
	if in.ActorID == "" {
		origin = command.OriginSystem
	}
	return s.execute(ctx, command.Command{
		StreamID:      in.DefendantID,
		Type:          association.CommandTypeDisassociate,
		Origin:        origin,
		ActorID:       in.ActorID,
		CorrelationID: correlationID,
		PayloadJSON:   payload,
	})
}

// LockForRepOrder locks a defendant record pending a representation order.
func (s *Service) LockForRepOrder(ctx context.Context, defendantID, laaContractNumber, correlationID string) (engine.Result, error) {
	correlationID, err := s.correlationID(correlationID)
	if err != nil {
		return engine.Result{}, err
	}
	payload, err := json.Marshal(association.LockPayload{LAAContractNumber: laaContractNumber})
	if err != nil {
		return engine.Result{}, err
	}
	return s.execute(ctx, command.Command{
		StreamID:      defendantID,
		Type:          association.CommandTypeLockRepOrder,
		Origin:        command.OriginSystem,
		CorrelationID: correlationID,
		PayloadJSON:   payload,
	})
}

// UnlockRepOrder resolves a representation-order lock by installing the
// organisation the order names.
func (s *Service) UnlockRepOrder(ctx context.Context, defendantID, organisationID, correlationID string) (engine.Result, error) {
	correlationID, err := s.correlationID(correlationID)
	if err != nil {
		return engine.Result{}, err
	}
	payload, err := json.Marshal(association.UnlockPayload{OrganisationID: organisationID})
	if err != nil {
		return engine.Result{}, err
	}
	return s.execute(ctx, command.Command{
		StreamID:      defendantID,
		Type:          association.CommandTypeUnlockRepOrder,
		Origin:        command.OriginSystem,
		CorrelationID: correlationID,
		PayloadJSON:   payload,
	})
}

// RecordLegalAidStatus records a legal aid status update for an organisation.
func (s *Service) RecordLegalAidStatus(ctx context.Context, defendantID, organisationID, status, correlationID string) (engine.Result, error) {
	correlationID, err := s.correlationID(correlationID)
	if err != nil {
		return engine.Result{}, err
	}
	payload, err := json.Marshal(association.LegalAidStatusPayload{
		OrganisationID: organisationID,
		Status:         status,
	})
	if err != nil {
		return engine.Result{}, err
	}
	return s.execute(ctx, command.Command{
		StreamID:      defendantID,
		Type:          association.CommandTypeRecordLegalAid,
		Origin:        command.OriginSystem,
		CorrelationID: correlationID,
		PayloadJSON:   payload,
	})
}
