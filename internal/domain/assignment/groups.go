package assignment

// Directory group names the assignment policy recognises.
const (
	// GroupAdvocate marks an individual defence advocate.
	GroupAdvocate = "ADVOCATE"
	// GroupDefenceOrganisation marks membership of a defence organisation;
	// assignees in this group receive organisation-shaped assignments.
	GroupDefenceOrganisation = "DEFENCE_ORGANISATION"
	// GroupChambersAdmin marks chambers administrative staff, permitted to
	// hold assignments on behalf of an advocate.
	GroupChambersAdmin = "CHAMBERS_ADMIN"
)

var allowedGroups = map[string]bool{
	GroupAdvocate:            true,
	GroupDefenceOrganisation: true,
	GroupChambersAdmin:       true,
}

// inAllowedGroups reports whether any of the assignee's groups satisfies the
// allowed-group policy.
func inAllowedGroups(groups []string) bool {
	for _, group := range groups {
		if allowedGroups[group] {
			return true
		}
	}
	return false
}

// inDefenceOrganisationGroup reports whether the assignee belongs to the
// defence-organisation group, which selects the organisation event shape.
func inDefenceOrganisationGroup(groups []string) bool {
	for _, group := range groups {
		if group == GroupDefenceOrganisation {
			return true
		}
	}
	return false
}
