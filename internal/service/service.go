// Package service exposes the write-side operations of the defence context.
//
// Each operation resolves external facts (directory lookups, reference
// data, read models) into a command payload, executes the command through
// the engine, and feeds committed events to the projection applier and the
// reactor. Deciders stay pure because everything impure happens here.
package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hmcts/cpp-context-defence-sub003/internal/directory"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/command"
	"github.com/hmcts/cpp-context-defence-sub003/internal/domain/engine"
	"github.com/hmcts/cpp-context-defence-sub003/internal/observability/audit"
	"github.com/hmcts/cpp-context-defence-sub003/internal/platform/id"
	"github.com/hmcts/cpp-context-defence-sub003/internal/projection"
	"github.com/hmcts/cpp-context-defence-sub003/internal/reactor"
	"github.com/hmcts/cpp-context-defence-sub003/internal/refdata"
	"github.com/hmcts/cpp-context-defence-sub003/internal/storage"
)

const tracerName = "github.com/hmcts/cpp-context-defence-sub003/internal/service"

// Stores groups the storage interfaces the service reads and writes.
type Stores struct {
	Events          storage.EventStore
	ClientIndex     storage.ClientIndexStore
	Associations    storage.AssociationStore
	CaseAssignments storage.CaseAssignmentStore
}

// Service executes defence-context commands.
type Service struct {
	handler     engine.Handler
	stores      Stores
	directory   directory.Directory
	offences    refdata.Offences
	projector   projection.Applier
	reactor     reactor.Reactor
	audit       audit.Emitter
	tracer      trace.Tracer
	clock       func() time.Time
	idGenerator func() (string, error)
}

// New creates a Service with default clock and id generation.
func New(registries engine.Registries, stores Stores, dir directory.Directory, offences refdata.Offences) (*Service, error) {
	if registries.Commands == nil || registries.Events == nil {
		return nil, errors.New("registries are required")
	}
	if stores.Events == nil {
		return nil, errors.New("event store is required")
	}
	handler := engine.Handler{
		Commands: registries.Commands,
		Events:   registries.Events,
		Store:    stores.Events,
	}
	s := &Service{
		handler:   handler,
		stores:    stores,
		directory: dir,
		offences:  offences,
		projector: projection.Applier{
			Events:          registries.Events,
			ClientIndex:     stores.ClientIndex,
			Associations:    stores.Associations,
			CaseAssignments: stores.CaseAssignments,
		},
		tracer:      otel.Tracer(tracerName),
		clock:       time.Now,
		idGenerator: id.NewID,
	}
	s.handler.Now = s.clock
	s.reactor = reactor.Reactor{Executor: s.handler, ClientIndex: stores.ClientIndex}
	return s, nil
}

// correlationID returns the supplied id, generating one when empty so every
// decision chain stays traceable.
func (s *Service) correlationID(supplied string) (string, error) {
	if supplied != "" {
		return supplied, nil
	}
	return s.idGenerator()
}

// execute runs one command through the engine, then projects and reacts to
// its committed events. Projection and reaction failures surface to the
// caller but do not roll back the journal append.
func (s *Service) execute(ctx context.Context, cmd command.Command) (engine.Result, error) {
	ctx, span := s.tracer.Start(ctx, "service.execute",
		trace.WithAttributes(
			attribute.String("command.type", string(cmd.Type)),
			attribute.String("command.stream_id", cmd.StreamID),
		))
	defer span.End()

	result, err := s.handler.Execute(ctx, cmd)
	if err != nil {
		span.RecordError(err)
		return engine.Result{}, err
	}
	s.audit.Command(ctx, cmd, result.Decision.Events)

	for _, evt := range result.Decision.Events {
		if err := s.projector.Apply(ctx, evt); err != nil {
			span.RecordError(err)
			return result, err
		}
	}
	for _, evt := range result.Decision.Events {
		if err := s.reactor.React(ctx, evt); err != nil {
			span.RecordError(err)
			return result, err
		}
	}
	return result, nil
}

// user resolves directory facts, tolerating a nil directory as an empty one.
func (s *Service) user(ctx context.Context, userID string) (directory.User, error) {
	if s.directory == nil {
		return directory.User{}, nil
	}
	return s.directory.User(ctx, userID)
}
