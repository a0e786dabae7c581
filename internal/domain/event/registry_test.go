package event

import (
	"errors"
	"testing"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	defs := []Definition{
		{Type: "grant.access_granted", Intent: IntentState},
		{Type: "grant.command_rejected", Intent: IntentAuditOnly},
	}
	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			t.Fatalf("register %s: %v", def.Type, err)
		}
	}
	return reg
}

func TestRegisterDefaultsToStateIntent(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(Definition{Type: "plea.allocated"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	def, ok := reg.Definition("plea.allocated")
	if !ok {
		t.Fatal("definition not found after register")
	}
	if def.Intent != IntentState {
		t.Fatalf("Intent = %q, want state", def.Intent)
	}
}

func TestRegisterRejectsBadIntent(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(Definition{Type: "plea.allocated", Intent: "advisory"}); err == nil {
		t.Fatal("unknown intent was accepted")
	}
}

func TestValidateForAppend(t *testing.T) {
	reg := newTestRegistry(t)

	tests := []struct {
		name    string
		evt     Event
		wantErr error
	}{
		{
			name: "valid",
			evt:  Event{StreamID: "client-1", Type: "grant.access_granted"},
		},
		{
			name:    "missing stream",
			evt:     Event{Type: "grant.access_granted"},
			wantErr: ErrStreamIDRequired,
		},
		{
			name:    "missing type",
			evt:     Event{StreamID: "client-1"},
			wantErr: ErrTypeRequired,
		},
		{
			name:    "unregistered type",
			evt:     Event{StreamID: "client-1", Type: "grant.access_suspended"},
			wantErr: ErrTypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.ValidateForAppend(tt.evt)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateForAppend: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateForAppendRejectsPreassignedSeq(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.ValidateForAppend(Event{StreamID: "client-1", Type: "grant.access_granted", Seq: 7})
	if err == nil {
		t.Fatal("event with pre-assigned sequence was accepted")
	}
}

func TestValidateForAppendDefaultsPayload(t *testing.T) {
	reg := newTestRegistry(t)
	evt, err := reg.ValidateForAppend(Event{StreamID: "client-1", Type: "grant.command_rejected"})
	if err != nil {
		t.Fatalf("ValidateForAppend: %v", err)
	}
	if string(evt.PayloadJSON) != "{}" {
		t.Fatalf("PayloadJSON = %s, want {}", evt.PayloadJSON)
	}
}

func TestTypeAggregate(t *testing.T) {
	tests := []struct {
		t    Type
		want string
	}{
		{"association.organisation_associated", "association"},
		{"grant.access_granted", "grant"},
		{"bare", "bare"},
	}
	for _, tt := range tests {
		if got := tt.t.Aggregate(); got != tt.want {
			t.Fatalf("Aggregate(%q) = %q, want %q", tt.t, got, tt.want)
		}
	}
}
