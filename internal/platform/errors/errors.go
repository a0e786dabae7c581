package errors

import (
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

// Domain is the error domain stamped on structured error details.
const Domain = "github.com/hmcts/cpp-context-defence-sub003"

// Error carries a machine-readable code alongside the human message.
// errors.Is matches two *Error values by code alone, so callers compare
// against New(code, "") sentinels.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMetadata creates a domain error carrying extra context.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

// Wrap creates a domain error around an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

// ToGRPCStatus renders the error as a gRPC status carrying an
// errdetails.ErrorInfo with the code, domain, and metadata.
func (e *Error) ToGRPCStatus() error {
	grpcCode := e.Code.GRPCCode()
	st := status.New(grpcCode, e.Message)

	detailed, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   string(e.Code),
		Domain:   Domain,
		Metadata: e.Metadata,
	})
	if err != nil {
		// Detail marshalling failed; the bare status still carries the message.
		return st.Err()
	}
	return detailed.Err()
}
