package grant

// GranteeFacts carries directory lookups about the user receiving access,
// resolved by the service layer. A zero UserID means the grantee did not
// resolve to a known user.
type GranteeFacts struct {
	UserID            string   `json:"user_id"`
	OrganisationID    string   `json:"organisation_id"`
	Groups            []string `json:"groups"`
	ProsecutorOnCases []string `json:"prosecutor_on_cases,omitempty"`
}

// GranterFacts carries directory lookups about the user issuing the grant.
type GranterFacts struct {
	UserID                  string `json:"user_id"`
	OrganisationID          string `json:"organisation_id"`
	HasCrossGrantPermission bool   `json:"has_cross_grant_permission"`
}

// GrantPayload carries a grant-access command. AssociatedOrganisationID is
// the organisation currently associated with the defendant, resolved from the
// association read model so authorization stays a pure function of the
// payload and this stream's state.
type GrantPayload struct {
	CaseID                   string       `json:"case_id"`
	Grantee                  GranteeFacts `json:"grantee"`
	Granter                  GranterFacts `json:"granter"`
	AssociatedOrganisationID string       `json:"associated_organisation_id"`
}

// RemovePayload carries a remove-grant command.
type RemovePayload struct {
	GranteeUserID            string       `json:"grantee_user_id"`
	Granter                  GranterFacts `json:"granter"`
	AssociatedOrganisationID string       `json:"associated_organisation_id"`
}

// InstructionPayload carries a record-instruction command or event.
type InstructionPayload struct {
	OrganisationID string `json:"organisation_id"`
}

// GrantedPayload is the payload of an access-granted event.
type GrantedPayload struct {
	GranteeUserID  string       `json:"grantee_user_id"`
	CaseID         string       `json:"case_id,omitempty"`
	OrganisationID string       `json:"organisation_id"`
	Permissions    []Permission `json:"permissions"`
}

// RevokedPayload is the payload of an access-revoked event.
type RevokedPayload struct {
	GranteeUserID string `json:"grantee_user_id"`
}

// RejectedPayload is the payload of a grant command-rejected event.
type RejectedPayload struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}
