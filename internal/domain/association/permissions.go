package association

// Permission statuses carried on association and disassociation events.
const (
	PermissionStatusGranted = "GRANTED"
	PermissionStatusDeleted = "DELETED"
)

// grantedActions is the fixed action/object matrix an association confers on
// the representing organisation for a defendant's case material.
var grantedActions = []struct {
	action string
	object string
}{
	{"READ", "CASE_MATERIAL"},
	{"READ", "DEFENDANT_RECORD"},
	{"WRITE", "CASE_NOTES"},
}

// permissionsFor regenerates the permission set for a defendant/organisation
// pair. The set is rebuilt on every association and disassociation rather than
// copied from prior events so that a revocation flips every previously granted
// permission's status to DELETED.
func permissionsFor(defendantID, organisationID, status string, newID func() string) []Permission {
	permissions := make([]Permission, 0, len(grantedActions))
	for _, entry := range grantedActions {
		permissions = append(permissions, Permission{
			ID:     newID(),
			Action: entry.action,
			Object: entry.object,
			Source: organisationID,
			Target: defendantID,
			Status: status,
		})
	}
	return permissions
}
