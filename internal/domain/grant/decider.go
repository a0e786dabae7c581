package grant

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/command"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
)

const (
	CommandTypeGrantUser         command.Type = "grant.access_user"
	CommandTypeRemoveUser        command.Type = "grant.remove_access_user"
	CommandTypeRemoveAll         command.Type = "grant.remove_all"
	CommandTypeRecordInstruction command.Type = "grant.record_instruction"
	CommandTypeReceiveIDPC       command.Type = "grant.receive_idpc"

	// EventTypeAccessGranted records a user receiving delegated access to the
	// client's case material.
	EventTypeAccessGranted event.Type = "grant.access_granted"
	// EventTypeAccessRevoked records a grant being revoked.
	EventTypeAccessRevoked event.Type = "grant.access_revoked"
	// EventTypeInstructionRecorded records an organisation instructing for
	// this client.
	EventTypeInstructionRecorded event.Type = "grant.instruction_recorded"
	// EventTypeIDPCReceived records a disclosure bundle queued against the
	// client.
	EventTypeIDPCReceived event.Type = "grant.idpc_received"
	// EventTypeCommandRejected records a refused grant command.
	EventTypeCommandRejected event.Type = "grant.command_rejected"

	// Rejection codes for the ordered authorization chain.
	RejectionCodeGranteeNotFound        = "GRANTEE_NOT_FOUND"
	RejectionCodeGranteeIsProsecutor    = "GRANTEE_IS_PROSECUTOR_ON_CASE"
	RejectionCodeGranteeNoOrganisation  = "GRANTEE_HAS_NO_ORGANISATION"
	RejectionCodeGranterNotAuthorised   = "GRANTER_NOT_AUTHORISED"
	RejectionCodeAlreadyGranted         = "GRANTEE_ALREADY_GRANTED"
	RejectionCodeGroupsNotPermitted     = "GRANTEE_GROUPS_NOT_PERMITTED"
	RejectionCodeGranteeNotGranted      = "GRANTEE_NOT_GRANTED"
	RejectionCodeOrganisationIDRequired = "ORGANISATION_ID_REQUIRED"

	entityTypeGrantee = "grantee"
)

// permittedGranteeGroups lists the directory groups allowed to receive
// delegated access.
var permittedGranteeGroups = map[string]bool{
	"ADVOCATE":             true,
	"DEFENCE_ORGANISATION": true,
	"CHAMBERS_ADMIN":       true,
}

// Decide returns the decision for a grant command against current state.
func Decide(state State, cmd command.Command, now func() time.Time, newID func() string) command.Decision {
	if now == nil {
		now = time.Now
	}
	switch cmd.Type {
	case CommandTypeGrantUser:
		return decideGrant(state, cmd, now, newID)
	case CommandTypeRemoveUser:
		return decideRemove(state, cmd, now)
	case CommandTypeRemoveAll:
		return decideRemoveAll(state, cmd, now)
	case CommandTypeRecordInstruction:
		return decideRecordInstruction(cmd, now)
	case CommandTypeReceiveIDPC:
		return decideReceiveIDPC(cmd, now)
	}
	return command.None()
}

func decideGrant(state State, cmd command.Command, now func() time.Time, newID func() string) command.Decision {
	var payload GrantPayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)

	granteeID := strings.TrimSpace(payload.Grantee.UserID)
	if granteeID == "" {
		return rejected(cmd, RejectionCodeGranteeNotFound,
			"grantee does not resolve to a known user", now)
	}
	caseID := strings.TrimSpace(payload.CaseID)
	for _, prosecuted := range payload.Grantee.ProsecutorOnCases {
		if prosecuted != "" && prosecuted == caseID {
			return rejected(cmd, RejectionCodeGranteeIsProsecutor,
				"grantee is prosecuting case "+caseID, now)
		}
	}
	granteeOrg := strings.TrimSpace(payload.Grantee.OrganisationID)
	if granteeOrg == "" {
		return rejected(cmd, RejectionCodeGranteeNoOrganisation,
			"grantee does not belong to an organisation", now)
	}
	if !granterAuthorised(payload.Granter, payload.AssociatedOrganisationID) {
		return rejected(cmd, RejectionCodeGranterNotAuthorised,
			"granter is not authorised to grant access for this client", now)
	}
	if state.Granted(granteeID) || impliedByMembership(granteeOrg, payload.AssociatedOrganisationID) {
		return rejected(cmd, RejectionCodeAlreadyGranted,
			"grantee already holds access to the client's case material", now)
	}
	if !granteeGroupsPermitted(payload.Grantee.Groups) {
		return rejected(cmd, RejectionCodeGroupsNotPermitted,
			"grantee's groups do not permit receiving access", now)
	}

	granted, _ := json.Marshal(GrantedPayload{
		GranteeUserID:  granteeID,
		CaseID:         caseID,
		OrganisationID: granteeOrg,
		Permissions:    permissionsFor(cmd.StreamID, granteeOrg, newID),
	})
	return command.Accept(command.NewEvent(cmd, EventTypeAccessGranted,
		entityTypeGrantee, granteeID, granted, now().UTC()))
}

func decideRemove(state State, cmd command.Command, now func() time.Time) command.Decision {
	var payload RemovePayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)

	if !granterAuthorised(payload.Granter, payload.AssociatedOrganisationID) {
		return rejected(cmd, RejectionCodeGranterNotAuthorised,
			"caller is not authorised to revoke access for this client", now)
	}
	granteeID := strings.TrimSpace(payload.GranteeUserID)
	if granteeID == "" || !state.Granted(granteeID) {
		return rejected(cmd, RejectionCodeGranteeNotGranted,
			"grantee does not hold an active grant", now)
	}
	revoked, _ := json.Marshal(RevokedPayload{GranteeUserID: granteeID})
	return command.Accept(command.NewEvent(cmd, EventTypeAccessRevoked,
		entityTypeGrantee, granteeID, revoked, now().UTC()))
}

// decideRemoveAll emits one revocation per active grantee. Used when the
// authorizing association is removed; grants are scoped to it.
func decideRemoveAll(state State, cmd command.Command, now func() time.Time) command.Decision {
	grantees := make([]string, 0, len(state.GranteePermissions))
	for granteeID := range state.GranteePermissions {
		grantees = append(grantees, granteeID)
	}
	sort.Strings(grantees)

	events := make([]event.Event, 0, len(grantees))
	for _, granteeID := range grantees {
		revoked, _ := json.Marshal(RevokedPayload{GranteeUserID: granteeID})
		events = append(events, command.NewEvent(cmd, EventTypeAccessRevoked,
			entityTypeGrantee, granteeID, revoked, now().UTC()))
	}
	return command.Accept(events...)
}

func decideRecordInstruction(cmd command.Command, now func() time.Time) command.Decision {
	var payload InstructionPayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	organisationID := strings.TrimSpace(payload.OrganisationID)
	if organisationID == "" {
		return rejected(cmd, RejectionCodeOrganisationIDRequired, "organisation id is required", now)
	}
	recorded, _ := json.Marshal(InstructionPayload{OrganisationID: organisationID})
	return command.Accept(command.NewEvent(cmd, EventTypeInstructionRecorded,
		"organisation", organisationID, recorded, now().UTC()))
}

func decideReceiveIDPC(cmd command.Command, now func() time.Time) command.Decision {
	var payload IDPCBundle
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	received, _ := json.Marshal(IDPCBundle{
		BundleID:      strings.TrimSpace(payload.BundleID),
		CaseURN:       strings.TrimSpace(payload.CaseURN),
		DocumentCount: payload.DocumentCount,
	})
	return command.Accept(command.NewEvent(cmd, EventTypeIDPCReceived,
		"idpc", strings.TrimSpace(payload.BundleID), received, now().UTC()))
}

// granterAuthorised reports whether the granter may grant or revoke: their
// organisation must be the one currently associated with the defendant, or
// they must hold the explicit cross-grant permission.
func granterAuthorised(granter GranterFacts, associatedOrganisationID string) bool {
	if granter.HasCrossGrantPermission {
		return true
	}
	granterOrg := strings.TrimSpace(granter.OrganisationID)
	associated := strings.TrimSpace(associatedOrganisationID)
	return granterOrg != "" && granterOrg == associated
}

// impliedByMembership reports whether the grantee already holds access
// implicitly through membership of the associated organisation.
func impliedByMembership(granteeOrg, associatedOrganisationID string) bool {
	associated := strings.TrimSpace(associatedOrganisationID)
	return associated != "" && granteeOrg == associated
}

func granteeGroupsPermitted(groups []string) bool {
	for _, group := range groups {
		if permittedGranteeGroups[group] {
			return true
		}
	}
	return false
}

func permissionsFor(clientID, granteeOrg string, newID func() string) []Permission {
	actions := []struct {
		action string
		object string
	}{
		{"READ", "CASE_MATERIAL"},
		{"READ", "IDPC"},
	}
	permissions := make([]Permission, 0, len(actions))
	for _, entry := range actions {
		permissions = append(permissions, Permission{
			ID:     newID(),
			Action: entry.action,
			Object: entry.object,
			Source: granteeOrg,
			Target: clientID,
			Status: "GRANTED",
		})
	}
	return permissions
}

func rejected(cmd command.Command, code, reason string, now func() time.Time) command.Decision {
	payload, _ := json.Marshal(RejectedPayload{Code: code, Reason: reason})
	return command.Accept(command.NewEvent(cmd, EventTypeCommandRejected,
		"command", string(cmd.Type), payload, now().UTC()))
}
