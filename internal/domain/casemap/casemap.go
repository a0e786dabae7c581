package casemap

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/command"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
)

const (
	CommandTypeAddDefendant command.Type = "casemap.add_defendant"

	// EventTypeClientMapped records the defence-client identity being
	// established for the case, seeded from the first defendant id seen.
	EventTypeClientMapped event.Type = "casemap.client_mapped_to_case"
	// EventTypeDefendantAdded records a defendant joining the case, carrying
	// offences enriched from reference data.
	EventTypeDefendantAdded event.Type = "casemap.defendant_added"
	// EventTypeDuplicateDefendant records a repeat add for an already-seen
	// defendant; no mapping changes.
	EventTypeDuplicateDefendant event.Type = "casemap.duplicate_defendant_noticed"
	// EventTypeCommandRejected records a refused casemap command.
	EventTypeCommandRejected event.Type = "casemap.command_rejected"

	RejectionCodeDefendantIDRequired = "DEFENDANT_ID_REQUIRED"

	entityTypeDefendant = "defendant"
)

// Offence is one charge against a defendant, enriched from reference data by
// the service layer before the decider runs.
type Offence struct {
	Code        string `json:"code"`
	Title       string `json:"title,omitempty"`
	Legislation string `json:"legislation,omitempty"`
}

// AddDefendantPayload carries an add-defendant command.
type AddDefendantPayload struct {
	DefendantID string    `json:"defendant_id"`
	Offences    []Offence `json:"offences"`
}

// ClientMappedPayload is the payload of a client-mapped event.
type ClientMappedPayload struct {
	DefenceClientID string `json:"defence_client_id"`
}

// DefendantAddedPayload is the payload of a defendant-added event.
type DefendantAddedPayload struct {
	DefendantID     string    `json:"defendant_id"`
	DefenceClientID string    `json:"defence_client_id"`
	Offences        []Offence `json:"offences"`
}

// DuplicatePayload is the payload of a duplicate-defendant notice.
type DuplicatePayload struct {
	DefendantID string `json:"defendant_id"`
}

// RejectedPayload is the payload of a casemap command-rejected event.
type RejectedPayload struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// State captures case/defendant mapping facts derived from domain events.
type State struct {
	// DefenceClientID is the client identity for the case, established by the
	// first defendant seen.
	DefenceClientID string
	// DefenceClientIDByDefendant maps defendant id to defence-client id,
	// first-seen wins.
	DefenceClientIDByDefendant map[string]string
	// SeenDefendants suppresses duplicate add-defendant commands.
	SeenDefendants map[string]bool
}

// Decide returns the decision for a casemap command against current state.
func Decide(state State, cmd command.Command, now func() time.Time) command.Decision {
	if now == nil {
		now = time.Now
	}
	if cmd.Type != CommandTypeAddDefendant {
		return command.None()
	}

	var payload AddDefendantPayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	defendantID := strings.TrimSpace(payload.DefendantID)
	if defendantID == "" {
		rejectedPayload, _ := json.Marshal(RejectedPayload{
			Code:   RejectionCodeDefendantIDRequired,
			Reason: "defendant id is required",
		})
		return command.Accept(command.NewEvent(cmd, EventTypeCommandRejected,
			"command", string(cmd.Type), rejectedPayload, now().UTC()))
	}

	if state.SeenDefendants[defendantID] {
		duplicate, _ := json.Marshal(DuplicatePayload{DefendantID: defendantID})
		return command.Accept(command.NewEvent(cmd, EventTypeDuplicateDefendant,
			entityTypeDefendant, defendantID, duplicate, now().UTC()))
	}

	var events []event.Event
	clientID := state.DefenceClientID
	if clientID == "" {
		// First defendant on the case seeds the defence-client identity.
		clientID = defendantID
		mapped, _ := json.Marshal(ClientMappedPayload{DefenceClientID: clientID})
		events = append(events, command.NewEvent(cmd, EventTypeClientMapped,
			"defence_client", clientID, mapped, now().UTC()))
	}
	added, _ := json.Marshal(DefendantAddedPayload{
		DefendantID:     defendantID,
		DefenceClientID: clientID,
		Offences:        payload.Offences,
	})
	events = append(events, command.NewEvent(cmd, EventTypeDefendantAdded,
		entityTypeDefendant, defendantID, added, now().UTC()))
	return command.Accept(events...)
}

// Fold applies an event to casemap state. Unknown event types are a no-op.
func Fold(state State, evt event.Event) State {
	switch evt.Type {
	case EventTypeClientMapped:
		var payload ClientMappedPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		if state.DefenceClientID == "" {
			state.DefenceClientID = payload.DefenceClientID
		}
	case EventTypeDefendantAdded:
		var payload DefendantAddedPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		if payload.DefendantID == "" {
			return state
		}
		if state.SeenDefendants == nil {
			state.SeenDefendants = make(map[string]bool)
		}
		state.SeenDefendants[payload.DefendantID] = true
		if state.DefenceClientIDByDefendant == nil {
			state.DefenceClientIDByDefendant = make(map[string]string)
		}
		if _, exists := state.DefenceClientIDByDefendant[payload.DefendantID]; !exists {
			state.DefenceClientIDByDefendant[payload.DefendantID] = payload.DefenceClientID
		}
	}
	return state
}

// RegisterCommands registers casemap commands with the shared registry.
func RegisterCommands(registry *command.Registry) error {
	if registry == nil {
		return errors.New("command registry is required")
	}
	return registry.Register(command.Definition{
		Type:            CommandTypeAddDefendant,
		ValidatePayload: validateAddDefendantPayload,
	})
}

// RegisterEvents registers casemap events with the shared registry.
func RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return errors.New("event registry is required")
	}
	definitions := []event.Definition{
		{Type: EventTypeClientMapped, ValidatePayload: validateClientMappedPayload},
		{Type: EventTypeDefendantAdded, ValidatePayload: validateDefendantAddedPayload},
		{Type: EventTypeDuplicateDefendant, Intent: event.IntentAuditOnly, ValidatePayload: validateDuplicatePayload},
		{Type: EventTypeCommandRejected, Intent: event.IntentAuditOnly, ValidatePayload: validateRejectedPayload},
	}
	for _, def := range definitions {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// EmittableEventTypes returns all event types the casemap decider can emit.
func EmittableEventTypes() []event.Type {
	return []event.Type{
		EventTypeClientMapped,
		EventTypeDefendantAdded,
		EventTypeDuplicateDefendant,
		EventTypeCommandRejected,
	}
}

func validateAddDefendantPayload(raw json.RawMessage) error {
	var payload AddDefendantPayload
	return json.Unmarshal(raw, &payload)
}

func validateClientMappedPayload(raw json.RawMessage) error {
	var payload ClientMappedPayload
	return json.Unmarshal(raw, &payload)
}

func validateDefendantAddedPayload(raw json.RawMessage) error {
	var payload DefendantAddedPayload
	return json.Unmarshal(raw, &payload)
}

func validateDuplicatePayload(raw json.RawMessage) error {
	var payload DuplicatePayload
	return json.Unmarshal(raw, &payload)
}

func validateRejectedPayload(raw json.RawMessage) error {
	var payload RejectedPayload
	return json.Unmarshal(raw, &payload)
}
