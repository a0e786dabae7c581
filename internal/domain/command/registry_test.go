package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	err := reg.Register(Definition{
		Type: "association.associate_organisation",
		ValidatePayload: func(raw json.RawMessage) error {
			var payload struct {
				OrganisationID string `json:"organisationId"`
			}
			if err := json.Unmarshal(raw, &payload); err != nil {
				return err
			}
			if payload.OrganisationID == "" {
				return fmt.Errorf("organisation id is required")
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	reg := newTestRegistry(t)
	err := reg.Register(Definition{Type: "association.associate_organisation"})
	if err == nil {
		t.Fatal("duplicate type was accepted")
	}
}

func TestValidateForDecision(t *testing.T) {
	reg := newTestRegistry(t)
	valid := Command{
		StreamID:    "defendant-1",
		Type:        "association.associate_organisation",
		Origin:      OriginUser,
		ActorID:     "solicitor-1",
		PayloadJSON: []byte(`{"organisationId":"org-1"}`),
	}

	tests := []struct {
		name    string
		mutate  func(*Command)
		wantErr error
	}{
		{name: "valid", mutate: func(*Command) {}},
		{name: "missing stream", mutate: func(c *Command) { c.StreamID = " " }, wantErr: ErrStreamIDRequired},
		{name: "missing type", mutate: func(c *Command) { c.Type = "" }, wantErr: ErrTypeRequired},
		{name: "unknown type", mutate: func(c *Command) { c.Type = "grant.revoke" }, wantErr: ErrTypeUnknown},
		{name: "user command without actor", mutate: func(c *Command) { c.ActorID = "" }, wantErr: ErrActorIDRequired},
		{name: "malformed payload", mutate: func(c *Command) { c.PayloadJSON = []byte("{") }, wantErr: ErrPayloadInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := valid
			tt.mutate(&cmd)
			_, err := reg.ValidateForDecision(cmd)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateForDecision: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateForDecisionNormalizes(t *testing.T) {
	reg := newTestRegistry(t)

	cmd, err := reg.ValidateForDecision(Command{
		StreamID:    "  defendant-1  ",
		Type:        "association.associate_organisation",
		ActorID:     " sweep ",
		PayloadJSON: []byte(`{"organisationId":"org-1"}`),
	})
	if err != nil {
		t.Fatalf("ValidateForDecision: %v", err)
	}
	if cmd.StreamID != "defendant-1" {
		t.Fatalf("StreamID = %q, want trimmed", cmd.StreamID)
	}
	if cmd.Origin != OriginSystem {
		t.Fatalf("Origin = %q, want system default", cmd.Origin)
	}
	if cmd.ActorID != "sweep" {
		t.Fatalf("ActorID = %q, want trimmed", cmd.ActorID)
	}
}

func TestValidateForDecisionRunsPayloadValidator(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.ValidateForDecision(Command{
		StreamID:    "defendant-1",
		Type:        "association.associate_organisation",
		Origin:      OriginSystem,
		PayloadJSON: []byte(`{"organisationId":""}`),
	})
	if err == nil {
		t.Fatal("payload without organisation id was accepted")
	}
}

func TestValidateForDecisionDefaultsEmptyPayload(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(Definition{Type: "grant.remove_all"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	cmd, err := reg.ValidateForDecision(Command{
		StreamID: "client-1",
		Type:     "grant.remove_all",
	})
	if err != nil {
		t.Fatalf("ValidateForDecision: %v", err)
	}
	if string(cmd.PayloadJSON) != "{}" {
		t.Fatalf("PayloadJSON = %s, want {}", cmd.PayloadJSON)
	}
}
