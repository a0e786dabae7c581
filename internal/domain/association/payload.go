package association

// Permission is one delegated-access record attached to an association event.
// Revocation never deletes records: the full set is regenerated with status
// "DELETED" so downstream consumers can flip previously granted permissions.
type Permission struct {
	ID     string `json:"id"`
	Action string `json:"action"`
	Object string `json:"object"`
	Source string `json:"source"`
	Target string `json:"target"`
	Status string `json:"status"`
}

// AssociatePayload carries an associate or rep-order associate command.
type AssociatePayload struct {
	OrganisationID     string `json:"organisation_id"`
	OrganisationName   string `json:"organisation_name"`
	RepresentationType string `json:"representation_type"`
	LAAContractNumber  string `json:"laa_contract_number"`
}

// DisassociatePayload carries a disassociate command.
type DisassociatePayload struct {
	OrganisationID string `json:"organisation_id"`
	CaseID         string `json:"case_id"`
	IsLAA          bool   `json:"is_laa"`
}

// LockPayload carries a representation-order lock command or event.
type LockPayload struct {
	LAAContractNumber string `json:"laa_contract_number"`
}

// UnlockPayload carries a rep-order override unlock command or event.
type UnlockPayload struct {
	OrganisationID string `json:"organisation_id"`
}

// LegalAidStatusPayload carries a legal aid status command or event.
type LegalAidStatusPayload struct {
	OrganisationID string `json:"organisation_id"`
	Status         string `json:"status"`
}

// AssociatedPayload is the payload of an organisation-associated event.
type AssociatedPayload struct {
	OrganisationID     string       `json:"organisation_id"`
	OrganisationName   string       `json:"organisation_name"`
	RepresentationType string       `json:"representation_type"`
	LAAContractNumber  string       `json:"laa_contract_number,omitempty"`
	IsLAA              bool         `json:"is_laa"`
	Permissions        []Permission `json:"permissions"`
}

// DisassociatedPayload is the payload of an organisation-disassociated event.
type DisassociatedPayload struct {
	OrganisationID string       `json:"organisation_id"`
	CaseID         string       `json:"case_id,omitempty"`
	IsLAA          bool         `json:"is_laa"`
	Permissions    []Permission `json:"permissions"`
}

// LAAReferenceRecordedPayload is the payload of an laa-reference-recorded
// event, emitted when a rep order confirms an existing association.
type LAAReferenceRecordedPayload struct {
	OrganisationID    string `json:"organisation_id"`
	LAAContractNumber string `json:"laa_contract_number"`
}

// RejectedPayload is the payload of an association command-rejected event.
type RejectedPayload struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}
