package association

// State captures association facts derived from domain events.
type State struct {
	// AssociatedOrganisationID is the organisation currently representing the
	// defendant. Empty when unassociated or locked.
	AssociatedOrganisationID string
	// AssociatedByRepOrder distinguishes an association established via a
	// representation order from an ordinary one.
	AssociatedByRepOrder bool
	// LockedByRepOrder blocks ordinary association commands once a statutory
	// lock event has been applied.
	LockedByRepOrder bool
	// LAAContractNumber is set when the record is locked or associated via a
	// representation order.
	LAAContractNumber string
	// LegalAidStatusByOrg maps organisation id to the last recorded legal aid
	// status for that organisation.
	LegalAidStatusByOrg map[string]string
	// DisassociatedOrganisationIDs is an ordered audit log of organisations
	// previously disassociated. Decisions never read it back.
	DisassociatedOrganisationIDs []string
}

// Associated reports whether any organisation is currently associated.
func (s State) Associated() bool {
	return s.AssociatedOrganisationID != ""
}
