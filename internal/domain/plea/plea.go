package plea

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/command"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
)

const (
	CommandTypeCreate command.Type = "plea.create"
	CommandTypeUpdate command.Type = "plea.update"

	// EventTypeAllocated records the initial plea allocation for a defendant.
	EventTypeAllocated event.Type = "plea.allocated"
	// EventTypeTaskRequested records the review task derived from every
	// allocation.
	EventTypeTaskRequested event.Type = "plea.task_requested"
	// EventTypeUpdated records an update to an allocated plea.
	EventTypeUpdated event.Type = "plea.updated"
	// EventTypeCommandRejected records a refused plea command.
	EventTypeCommandRejected event.Type = "plea.command_rejected"

	RejectionCodeNotAllocated   = "PLEA_NOT_ALLOCATED"
	RejectionCodeCaseURNMissing = "CASE_URN_REQUIRED"

	// Review tasks carry a fixed one-day SLA and a fixed role target.
	reviewTaskSLA  = 24 * time.Hour
	reviewTaskType = "PLEA_REVIEW"
	reviewTaskRole = "LISTING_OFFICER"

	entityTypePlea = "plea"
)

// DefendantDetails is the correction overlay a caller may supply with a plea.
type DefendantDetails struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Address     string `json:"address,omitempty"`
}

// Empty reports whether no correction field is set.
func (d DefendantDetails) Empty() bool {
	return d == DefendantDetails{}
}

// CreatePayload carries a create-plea command.
type CreatePayload struct {
	CaseURN          string           `json:"case_urn"`
	PleaValue        string           `json:"plea_value"`
	HearingID        string           `json:"hearing_id,omitempty"`
	DefendantDetails DefendantDetails `json:"defendant_details,omitempty"`
}

// UpdatePayload carries an update-plea command.
type UpdatePayload struct {
	PleaValue        string           `json:"plea_value"`
	HearingID        string           `json:"hearing_id,omitempty"`
	DefendantDetails DefendantDetails `json:"defendant_details,omitempty"`
	// DetailsConfirmed marks the defendant details as confirmed correct; a
	// confirmed record does not carry a redundant correction overlay.
	DetailsConfirmed bool `json:"details_confirmed"`
}

// AllocatedPayload is the payload of a plea-allocated event.
type AllocatedPayload struct {
	CaseURN          string           `json:"case_urn"`
	PleaValue        string           `json:"plea_value"`
	HearingID        string           `json:"hearing_id,omitempty"`
	DefendantDetails DefendantDetails `json:"defendant_details,omitempty"`
}

// TaskRequestedPayload is the payload of a task-requested event.
type TaskRequestedPayload struct {
	TaskType     string    `json:"task_type"`
	AssignToRole string    `json:"assign_to_role"`
	DueAt        time.Time `json:"due_at"`
	CaseURN      string    `json:"case_urn"`
}

// UpdatedPayload is the payload of a plea-updated event. CaseURN is stamped
// from the cached first allocation.
type UpdatedPayload struct {
	CaseURN          string           `json:"case_urn"`
	PleaValue        string           `json:"plea_value"`
	HearingID        string           `json:"hearing_id,omitempty"`
	DefendantDetails DefendantDetails `json:"defendant_details,omitempty"`
	DetailsConfirmed bool             `json:"details_confirmed"`
}

// RejectedPayload is the payload of a plea command-rejected event.
type RejectedPayload struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// State captures plea facts derived from domain events.
type State struct {
	// CaseURN is cached from the first allocation event and reused to stamp
	// subsequent updates.
	CaseURN string
}

// Allocated reports whether a plea allocation exists for the defendant.
func (s State) Allocated() bool {
	return s.CaseURN != ""
}

// Decide returns the decision for a plea command against current state.
func Decide(state State, cmd command.Command, now func() time.Time) command.Decision {
	if now == nil {
		now = time.Now
	}
	switch cmd.Type {
	case CommandTypeCreate:
		return decideCreate(cmd, now)
	case CommandTypeUpdate:
		return decideUpdate(state, cmd, now)
	}
	return command.None()
}

func decideCreate(cmd command.Command, now func() time.Time) command.Decision {
	var payload CreatePayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	caseURN := strings.TrimSpace(payload.CaseURN)
	if caseURN == "" {
		return rejected(cmd, RejectionCodeCaseURNMissing, "case urn is required", now)
	}

	timestamp := now().UTC()
	allocated, _ := json.Marshal(AllocatedPayload{
		CaseURN:          caseURN,
		PleaValue:        strings.TrimSpace(payload.PleaValue),
		HearingID:        strings.TrimSpace(payload.HearingID),
		DefendantDetails: payload.DefendantDetails,
	})
	task, _ := json.Marshal(TaskRequestedPayload{
		TaskType:     reviewTaskType,
		AssignToRole: reviewTaskRole,
		DueAt:        timestamp.Add(reviewTaskSLA),
		CaseURN:      caseURN,
	})
	return command.Accept(
		command.NewEvent(cmd, EventTypeAllocated, entityTypePlea, cmd.StreamID, allocated, timestamp),
		command.NewEvent(cmd, EventTypeTaskRequested, "task", reviewTaskType, task, timestamp),
	)
}

func decideUpdate(state State, cmd command.Command, now func() time.Time) command.Decision {
	if !state.Allocated() {
		return rejected(cmd, RejectionCodeNotAllocated, "no plea allocation exists for the defendant", now)
	}
	var payload UpdatePayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)

	details := payload.DefendantDetails
	if payload.DetailsConfirmed {
		// Confirmed-correct details make the correction overlay redundant.
		details = DefendantDetails{}
	}
	updated, _ := json.Marshal(UpdatedPayload{
		CaseURN:          state.CaseURN,
		PleaValue:        strings.TrimSpace(payload.PleaValue),
		HearingID:        strings.TrimSpace(payload.HearingID),
		DefendantDetails: details,
		DetailsConfirmed: payload.DetailsConfirmed,
	})
	return command.Accept(command.NewEvent(cmd, EventTypeUpdated,
		entityTypePlea, cmd.StreamID, updated, now().UTC()))
}

// Fold applies an event to plea state. Unknown event types are a no-op.
func Fold(state State, evt event.Event) State {
	if evt.Type == EventTypeAllocated {
		var payload AllocatedPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		if state.CaseURN == "" {
			state.CaseURN = payload.CaseURN
		}
	}
	return state
}

// RegisterCommands registers plea commands with the shared registry.
func RegisterCommands(registry *command.Registry) error {
	if registry == nil {
		return errors.New("command registry is required")
	}
	definitions := []command.Definition{
		{Type: CommandTypeCreate, ValidatePayload: validateCreatePayload},
		{Type: CommandTypeUpdate, ValidatePayload: validateUpdatePayload},
	}
	for _, def := range definitions {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// RegisterEvents registers plea events with the shared registry.
func RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return errors.New("event registry is required")
	}
	definitions := []event.Definition{
		{Type: EventTypeAllocated, ValidatePayload: validateAllocatedPayload},
		{Type: EventTypeTaskRequested, Intent: event.IntentAuditOnly, ValidatePayload: validateTaskPayload},
		{Type: EventTypeUpdated, ValidatePayload: validateUpdatedPayload},
		{Type: EventTypeCommandRejected, Intent: event.IntentAuditOnly, ValidatePayload: validateRejectedPayload},
	}
	for _, def := range definitions {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// EmittableEventTypes returns all event types the plea decider can emit.
func EmittableEventTypes() []event.Type {
	return []event.Type{
		EventTypeAllocated,
		EventTypeTaskRequested,
		EventTypeUpdated,
		EventTypeCommandRejected,
	}
}

func rejected(cmd command.Command, code, reason string, now func() time.Time) command.Decision {
	payload, _ := json.Marshal(RejectedPayload{Code: code, Reason: reason})
	return command.Accept(command.NewEvent(cmd, EventTypeCommandRejected,
		"command", string(cmd.Type), payload, now().UTC()))
}

func validateCreatePayload(raw json.RawMessage) error {
	var payload CreatePayload
	return json.Unmarshal(raw, &payload)
}

func validateUpdatePayload(raw json.RawMessage) error {
	var payload UpdatePayload
	return json.Unmarshal(raw, &payload)
}

func validateAllocatedPayload(raw json.RawMessage) error {
	var payload AllocatedPayload
	return json.Unmarshal(raw, &payload)
}

func validateTaskPayload(raw json.RawMessage) error {
	var payload TaskRequestedPayload
	return json.Unmarshal(raw, &payload)
}

func validateUpdatedPayload(raw json.RawMessage) error {
	var payload UpdatedPayload
	return json.Unmarshal(raw, &payload)
}

func validateRejectedPayload(raw json.RawMessage) error {
	var payload RejectedPayload
	return json.Unmarshal(raw, &payload)
}
