package assignment

// AssigneeFacts carries directory lookups resolved by the service layer before
// the decider runs. A zero UserID means the assignee did not resolve to a
// known user.
type AssigneeFacts struct {
	UserID            string   `json:"user_id"`
	OrganisationID    string   `json:"organisation_id"`
	Groups            []string `json:"groups"`
	ProsecutorOnCases []string `json:"prosecutor_on_cases,omitempty"`
}

// AssignPayload carries a single-case assignment command.
type AssignPayload struct {
	CaseID   string        `json:"case_id"`
	Assignee AssigneeFacts `json:"assignee"`
}

// RemovePayload carries a case-assignment removal command.
type RemovePayload struct {
	CaseID string `json:"case_id"`
	// Automatic marks a system-triggered unassignment sweep; a sweep for a
	// case that was never assigned is swallowed rather than rejected.
	Automatic bool `json:"automatic"`
	// OrganisationRetainsAccess reports whether other advocates from the same
	// organisation still hold access to the case.
	OrganisationRetainsAccess bool `json:"organisation_retains_access"`
}

// HearingEntry is one case/hearing pair in a batch assignment.
type HearingEntry struct {
	CaseID    string `json:"case_id"`
	HearingID string `json:"hearing_id"`
}

// AssignHearingPayload carries a batch assignment command over case/hearing
// pairs for one assignee.
type AssignHearingPayload struct {
	Assignee AssigneeFacts  `json:"assignee"`
	Entries  []HearingEntry `json:"entries"`
}

// AssignedPayload is the payload of a case-assigned event, in either the
// advocate or the organisation shape.
type AssignedPayload struct {
	CaseID         string `json:"case_id"`
	HearingID      string `json:"hearing_id,omitempty"`
	OrganisationID string `json:"organisation_id"`
}

// UnassignedPayload is the payload of a case-unassigned event.
type UnassignedPayload struct {
	CaseID    string `json:"case_id"`
	Automatic bool   `json:"automatic"`
}

// RejectedPayload is the payload of an assignment command-rejected event.
type RejectedPayload struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
	CaseID string `json:"case_id,omitempty"`
}

// BatchError is one failing entry inside a rejected hearing batch.
type BatchError struct {
	CaseID    string `json:"case_id"`
	HearingID string `json:"hearing_id,omitempty"`
	Code      string `json:"code"`
	Reason    string `json:"reason"`
}

// BatchRejectedPayload is the payload of a hearing-batch-rejected event. The
// batch is all-or-nothing: one failing entry rejects every assignment in it.
type BatchRejectedPayload struct {
	Errors []BatchError `json:"errors"`
}
