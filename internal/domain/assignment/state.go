package assignment

// Kind distinguishes the shape of a case assignment.
type Kind string

const (
	// KindAdvocate marks a case assigned to an individual advocate.
	KindAdvocate Kind = "advocate"
	// KindOrganisation marks a case assigned at defence-organisation level.
	KindOrganisation Kind = "organisation"
)

// Assignment captures one held case.
type Assignment struct {
	Kind      Kind
	HearingID string
}

// State captures assignment facts derived from domain events.
type State struct {
	// AssignedCases maps case id to the assignment currently held. A key is
	// present iff an assignment event was applied with no later removal.
	AssignedCases map[string]Assignment
	// AssigneeOrganisationID is the organisation the assignee belonged to at
	// the time of the most recent assignment.
	AssigneeOrganisationID string
}

// Assigned reports whether the assignee currently holds the case.
func (s State) Assigned(caseID string) bool {
	_, ok := s.AssignedCases[caseID]
	return ok
}
