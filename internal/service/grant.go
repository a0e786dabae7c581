package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/hmcts/cpp-context-defence-sub003/internal/directory"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/command"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/engine"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/grant"
	"github.com/hmcts/cpp-context-defence-sub003/internal/storage"
)

// defenceClientID resolves the grant stream for a defendant. Defendants not
// yet mapped to a case use their own id, matching how the case mapping
// seeds client identity from the first defendant.
func (s *Service) defenceClientID(ctx context.Context, defendantID string) (string, error) {
	if s.stores.ClientIndex == nil {
		return defendantID, nil
	}
	record, err := s.stores.ClientIndex.GetClientIndex(ctx, defendantID)
	if errors.Is(err, storage.ErrNotFound) {
		return defendantID, nil
	}
	if err != nil {
		return "", err
	}
	return record.DefenceClientID, nil
}

// associatedOrganisationID reads the association read model for the
// defendant; an absent record resolves to the empty id.
func (s *Service) associatedOrganisationID(ctx context.Context, defendantID string) (string, error) {
	if s.stores.Associations == nil {
		return "", nil
	}
	record, err := s.stores.Associations.GetAssociation(ctx, defendantID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return record.OrganisationID, nil
}

func granteeFacts(u directory.User) grant.GranteeFacts {
	return grant.GranteeFacts{
		UserID:            u.ID,
		OrganisationID:    u.OrganisationID,
		Groups:            u.Groups,
		ProsecutorOnCases: u.ProsecutorOnCases,
	}
}

func granterFacts(u directory.User) grant.GranterFacts {
	return grant.GranterFacts{
		UserID:                  u.ID,
		OrganisationID:          u.OrganisationID,
		HasCrossGrantPermission: u.HasCrossGrantPermission,
	}
}

// GrantAccessInput carries a delegated-access grant request.
type GrantAccessInput struct {
	DefendantID   string
	CaseID        string
	GranteeUserID string
	GranterUserID string
	CorrelationID string
}

// GrantAccess grants a user delegated access to the defence client's case
// material.
func (s *Service) GrantAccess(ctx context.Context, in GrantAccessInput) (engine.Result, error) {
	correlationID, err := s.correlationID(in.CorrelationID)
	if err != nil {
		return engine.Result{}, err
	}
	clientID, err := s.defenceClientID(ctx, in.DefendantID)
	if err != nil {
		return engine.Result{}, err
	}
	grantee, err := s.user(ctx, in.GranteeUserID)
	if err != nil {
		return engine.Result{}, err
	}
	granter, err := s.user(ctx, in.GranterUserID)
	if err != nil {
		return engine.Result{}, err
	}
	associatedOrg, err := s.associatedOrganisationID(ctx, in.DefendantID)
	if err != nil {
		return engine.Result{}, err
	}
	payload, err := json.Marshal(grant.GrantPayload{
		CaseID:                   in.CaseID,
		Grantee:                  granteeFacts(grantee),
		Granter:                  granterFacts(granter),
		AssociatedOrganisationID: associatedOrg,
	})
	if err != nil {
		return engine.Result{}, err
	}
	return s.execute(ctx, command.Command{
		StreamID:      clientID,
		Type:          grant.CommandTypeGrantUser,
		Origin:        command.OriginUser,
		ActorID:       in.GranterUserID,
		CorrelationID: correlationID,
		PayloadJSON:   payload,
	})
}

// RemoveAccessInput carries a grant-removal request.
type RemoveAccessInput struct {
	DefendantID   string
	GranteeUserID string
	GranterUserID string
	CorrelationID string
}

// RemoveAccess revokes one user's delegated access.
func (s *Service) RemoveAccess(ctx context.Context, in RemoveAccessInput) (engine.Result, error) {
	correlationID, err := s.correlationID(in.CorrelationID)
	if err != nil {
		return engine.Result{}, err
	}
	clientID, err := s.defenceClientID(ctx, in.DefendantID)
	if err != nil {
		return engine.Result{}, err
	}
	granter, err := s.user(ctx, in.GranterUserID)
	if err != nil {
		return engine.Result{}, err
	}
	associatedOrg, err := s.associatedOrganisationID(ctx, in.DefendantID)
	if err != nil {
		return engine.Result{}, err
	}
	payload, err := json.Marshal(grant.RemovePayload{
		GranteeUserID:            in.GranteeUserID,
		Granter:                  granterFacts(granter),
		AssociatedOrganisationID: associatedOrg,
	})
	if err != nil {
		return engine.Result{}, err
	}
	return s.execute(ctx, command.Command{
		StreamID:      clientID,
		Type:          grant.CommandTypeRemoveUser,
		Origin:        command.OriginUser,
		ActorID:       in.GranterUserID,
		CorrelationID: correlationID,
		PayloadJSON:   payload,
	})
}

// RecordInstruction records that an organisation has been instructed for
// the defence client.
func (s *Service) RecordInstruction(ctx context.Context, defendantID, organisationID, correlationID string) (engine.Result, error) {
	correlationID, err := s.correlationID(correlationID)
	if err != nil {
		return engine.Result{}, err
	}
	clientID, err := s.defenceClientID(ctx, defendantID)
	if err != nil {
		return engine.Result{}, err
	}
	payload, err := json.Marshal(grant.InstructionPayload{OrganisationID: organisationID})
	if err != nil {
		return engine.Result{}, err
	}
	return s.execute(ctx, command.Command{
		StreamID:      clientID,
		Type:          grant.CommandTypeRecordInstruction,
		Origin:        command.OriginSystem,
		CorrelationID: correlationID,
		PayloadJSON:   payload,
	})
}

// ReceiveIDPC queues an initial details of the prosecution case bundle
// against the defence client.
func (s *Service) ReceiveIDPC(ctx context.Context, defendantID string, bundle grant.IDPCBundle, correlationID string) (engine.Result, error) {
	correlationID, err := s.correlationID(correlationID)
	if err != nil {
		return engine.Result{}, err
	}
	clientID, err := s.defenceClientID(ctx, defendantID)
	if err != nil {
		return engine.Result{}, err
	}
	payload, err := json.Marshal(bundle)
	if err != nil {
		return engine.Result{}, err
	}
	return s.execute(ctx, command.Command{
		StreamID:      clientID,
		Type:          grant.CommandTypeReceiveIDPC,
		Origin:        command.OriginSystem,
		CorrelationID: correlationID,
		PayloadJSON:   payload,
	})
}
