// Package errors provides structured error handling with gRPC status mapping.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Command envelope errors
	CodeCommandEmptyStreamID Code = "COMMAND_EMPTY_STREAM_ID"
	CodeCommandUnknownType   Code = "COMMAND_UNKNOWN_TYPE"
	CodeCommandEmptyActorID  Code = "COMMAND_EMPTY_ACTOR_ID"
	CodeCommandInvalidOrigin Code = "COMMAND_INVALID_ORIGIN"
	CodeCommandBadPayload    Code = "COMMAND_BAD_PAYLOAD"

	// Event journal errors
	CodeEventUnknownType    Code = "EVENT_UNKNOWN_TYPE"
	CodeEventBadPayload     Code = "EVENT_BAD_PAYLOAD"
	CodeEventSequenceGap    Code = "EVENT_SEQUENCE_GAP"
	CodeVersionConflict     Code = "EVENT_VERSION_CONFLICT"
	CodeConflictUnresolved  Code = "EVENT_CONFLICT_UNRESOLVED"
	CodeAggregateUnresolved Code = "AGGREGATE_UNRESOLVED"

	// Directory errors
	CodeDirectoryUnavailable Code = "DIRECTORY_UNAVAILABLE"

	// Reference data errors
	CodeOffenceCodeUnknown Code = "OFFENCE_CODE_UNKNOWN"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"

	// Journal query errors
	CodeFilterInvalid Code = "FILTER_INVALID"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeCommandEmptyStreamID,
		CodeCommandUnknownType,
		CodeCommandEmptyActorID,
		CodeCommandInvalidOrigin,
		CodeCommandBadPayload,
		CodeEventUnknownType,
		CodeEventBadPayload,
		CodeFilterInvalid:
		return codes.InvalidArgument

	// Aborted - optimistic concurrency lost the race
	case CodeVersionConflict,
		CodeConflictUnresolved:
		return codes.Aborted

	// FailedPrecondition - journal state does not allow the operation
	case CodeEventSequenceGap,
		CodeAggregateUnresolved:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeOffenceCodeUnknown:
		return codes.NotFound

	// Unavailable - dependency outage
	case CodeDirectoryUnavailable:
		return codes.Unavailable

	default:
		return codes.Internal
	}
}
