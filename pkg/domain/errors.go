package domain

import "errors"

// ErrBusy is returned when a submission is attempted while another is pending.
var ErrBusy = errors.New("a request is already pending")

// ErrEmptyURL is returned when the submitted URL is blank.
var ErrEmptyURL = errors.New("video url is required")

// GenericFailureMessage is shown when the service fails without a detail.
const GenericFailureMessage = "Failed to generate itinerary"

// FailureKind classifies why a submission failed.
type FailureKind string

const (
	KindTransport FailureKind = "transport" // Request never produced a status
	KindStatus    FailureKind = "status"    // Non-success HTTP status
	KindEmbedded  FailureKind = "embedded"  // HTTP success carrying an "error" field
	KindDecode    FailureKind = "decode"    // Success body was not JSON
)

// TransportError wraps a failure that happened before any status was available.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a non-success HTTP response from the generation service.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return GenericFailureMessage
	}
	return e.Detail
}

// EmbeddedError is an error reported inside a successful response body.
type EmbeddedError struct {
	Message string
	// Detail carries the optional diagnostic the service sends next to the error.
	Detail string
}

func (e *EmbeddedError) Error() string { return e.Message }

// DecodeError is a success response whose body could not be parsed.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// Message returns the text shown to the user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Error()
	}
	var embedded *EmbeddedError
	if errors.As(err, &embedded) {
		return embedded.Message
	}
	var transport *TransportError
	if errors.As(err, &transport) {
		return transport.Error()
	}
	var decode *DecodeError
	if errors.As(err, &decode) {
		return decode.Error()
	}
	return err.Error()
}

// KindOf classifies err. Unknown errors count as transport failures.
func KindOf(err error) FailureKind {
	var statusErr *StatusError
	var embedded *EmbeddedError
	var decode *DecodeError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &statusErr):
		return KindStatus
	case errors.As(err, &embedded):
		return KindEmbedded
	case errors.As(err, &decode):
		return KindDecode
	default:
		return KindTransport
	}
}

// NewStatusError builds a StatusError, falling back to the generic message.
func NewStatusError(code int, detail string) *StatusError {
	return &StatusError{Code: code, Detail: detail}
}

// String implements fmt.Stringer for log output.
func (k FailureKind) String() string {
	if k == "" {
		return "none"
	}
	return string(k)
}
