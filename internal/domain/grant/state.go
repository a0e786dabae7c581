package grant

// Permission is one delegated-access record attached to a grant event.
type Permission struct {
	ID     string `json:"id"`
	Action string `json:"action"`
	Object string `json:"object"`
	Source string `json:"source"`
	Target string `json:"target"`
	Status string `json:"status"`
}

// IDPCBundle is initial-details-of-the-prosecution-case metadata queued when
// disclosure arrives before the defence client record exists.
type IDPCBundle struct {
	BundleID      string `json:"bundle_id"`
	CaseURN       string `json:"case_urn,omitempty"`
	DocumentCount int    `json:"document_count,omitempty"`
}

// State captures grant-access facts derived from domain events.
type State struct {
	// OrganisationsInstructed is the set of organisations that have ever
	// recorded an instruction for this client.
	OrganisationsInstructed map[string]bool
	// GranteePermissions maps grantee user id to the permission records of an
	// active grant. Presence of a key means the grant is live.
	GranteePermissions map[string][]Permission
	// PendingIDPC is a disclosure bundle received before the client record
	// existed, queued for later delivery.
	PendingIDPC *IDPCBundle
}

// Granted reports whether the user currently holds an active grant.
func (s State) Granted(userID string) bool {
	_, ok := s.GranteePermissions[userID]
	return ok
}
