package audit

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/command"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
)

func capturedEmitter() (Emitter, *bytes.Buffer) {
	var buf bytes.Buffer
	return Emitter{Logger: log.New(&buf, "", 0)}, &buf
}

func TestCommand_LogsAcceptedOutcome(t *testing.T) {
	emitter, buf := capturedEmitter()

	cmd := command.Command{
		StreamID:      "defendant-1",
		Type:          "association.associate",
		Origin:        command.OriginUser,
		ActorID:       "user-1",
		CorrelationID: "corr-1",
	}
	events := []event.Event{{Type: "association.organisation_associated"}}
	emitter.Command(context.Background(), cmd, events)

	line := buf.String()
	for _, want := range []string{"type=association.associate", "stream=defendant-1", "events=1", "outcome=accepted"} {
		if !strings.Contains(line, want) {
			t.Fatalf("log line %q missing %q", line, want)
		}
	}
}

func TestCommand_LogsRejectionCodes(t *testing.T) {
	emitter, buf := capturedEmitter()

	events := []event.Event{{
		Type:        "association.command_rejected",
		PayloadJSON: []byte(`{"code":"ALREADY_ASSOCIATED","reason":"taken"}`),
	}}
	emitter.Command(context.Background(), command.Command{Type: "association.associate"}, events)

	if !strings.Contains(buf.String(), "outcome=rejected ALREADY_ASSOCIATED") {
		t.Fatalf("log line %q missing rejection outcome", buf.String())
	}
}

func TestCommand_LogsNoOpOutcome(t *testing.T) {
	emitter, buf := capturedEmitter()

	emitter.Command(context.Background(), command.Command{Type: "association.associate_rep_order"}, nil)

	if !strings.Contains(buf.String(), "outcome=no-op") {
		t.Fatalf("log line %q missing no-op outcome", buf.String())
	}
}
