// Package audit emits one log line per executed command so every write-side
// decision is traceable back to its actor and trace context.
package audit

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/command"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"
)

// Emitter writes command audit lines. A zero Emitter logs via the standard
// logger.
type Emitter struct {
	Logger *log.Logger
}

func (e Emitter) printf(format string, args ...any) {
	if e.Logger != nil {
		e.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// rejectionCodes extracts rejection codes from command-rejected events. The
// rejected payloads of every aggregate share the code field.
func rejectionCodes(events []event.Event) []string {
	var codes []string
	for _, evt := range events {
		if !strings.HasSuffix(string(evt.Type), ".command_rejected") {
			continue
		}
		var payload struct {
			Code string `json:"code"`
		}
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err == nil && payload.Code != "" {
			codes = append(codes, payload.Code)
		}
	}
	return codes
}

// Command logs the outcome of one executed command, tagged with the active
// trace and span ids when the context carries a recording span.
func (e Emitter) Command(ctx context.Context, cmd command.Command, events []event.Event) {
	traceID, spanID := "", ""
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		traceID = span.SpanContext().TraceID().String()
		spanID = span.SpanContext().SpanID().String()
	}

	outcome := "accepted"
	codes := rejectionCodes(events)
	switch {
	case len(codes) > 0:
		outcome = "rejected " + strings.Join(codes, ",")
	case len(events) == 0:
		outcome = "no-op"
	}

	e.printf("command type=%s stream=%s origin=%s actor=%s correlation=%s events=%d outcome=%s trace=%s span=%s",
		cmd.Type, cmd.StreamID, cmd.Origin, cmd.ActorID, cmd.CorrelationID, len(events), outcome, traceID, spanID)
}
