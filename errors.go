package httpcore

import "errors"

// ErrNeedMore is returned by the header scanner when the supplied slice
// does not yet contain a full header block. Callers keep buffering and
// retry once more bytes arrive.
var ErrNeedMore = errors.New("httpcore: need more data")

// ErrorKind classifies a parse or protocol failure so a Context can map it
// to a status code and so the server/client role can decide whether the
// connection is recoverable. See §7 of the design for the disposition
// table this mirrors.
type ErrorKind int

const (
	// ErrHeadersTooLarge: the header block exceeded MaxHeadersNum or
	// MaxHeadersSize before a terminator was found.
	ErrHeadersTooLarge ErrorKind = iota
	// ErrMalformedHeaders: the request-line/status-line or a header field
	// could not be parsed.
	ErrMalformedHeaders
	// ErrConflictingFraming: both Content-Length and chunked
	// Transfer-Encoding were present, or Content-Length was duplicated.
	ErrConflictingFraming
	// ErrBodyTooLarge: a buffered request/response body's declared or
	// observed size meets or exceeds the caller's limit.
	ErrBodyTooLarge
	// ErrBadChunkSize: a chunk-size line could not be parsed as hex.
	ErrBadChunkSize
	// ErrChunkTooLarge: a chunk's declared size would overrun a buffered
	// body's limit.
	ErrChunkTooLarge
	// ErrConnectionClosed: the peer closed the stream before the current
	// message was fully framed.
	ErrConnectionClosed
	// ErrReadWrite: the underlying stream reported a read or write error.
	ErrReadWrite
	// ErrTimedOut: a deadline elapsed before the expected bytes arrived.
	ErrTimedOut
	// ErrHandlerDeclined: the handler returned nil from a callback,
	// declining to continue the exchange.
	ErrHandlerDeclined
)

func (k ErrorKind) String() string {
	switch k {
	case ErrHeadersTooLarge:
		return "headers too large"
	case ErrMalformedHeaders:
		return "malformed headers"
	case ErrConflictingFraming:
		return "conflicting or duplicate framing headers"
	case ErrBodyTooLarge:
		return "body too large"
	case ErrBadChunkSize:
		return "malformed chunk size"
	case ErrChunkTooLarge:
		return "chunk exceeds buffered limit"
	case ErrConnectionClosed:
		return "connection closed prematurely"
	case ErrReadWrite:
		return "read/write error"
	case ErrTimedOut:
		return "timed out"
	case ErrHandlerDeclined:
		return "handler declined request"
	default:
		return "unknown error"
	}
}

// ProtoError pairs an ErrorKind with the underlying cause, if any.
type ProtoError struct {
	Kind ErrorKind
	Err  error
}

func (e *ProtoError) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Err.Error()
	}
	return e.Kind.String()
}

func (e *ProtoError) Unwrap() error { return e.Err }

func newProtoError(kind ErrorKind, err error) *ProtoError {
	return &ProtoError{Kind: kind, Err: err}
}

// StatusForError maps an ErrorKind to the HTTP status code a server-role
// Context should render for it, per §7.
func StatusForError(kind ErrorKind) int {
	switch kind {
	case ErrHeadersTooLarge:
		return StatusRequestHeaderFieldsTooLarge
	case ErrBodyTooLarge, ErrChunkTooLarge:
		return StatusRequestEntityTooLarge
	case ErrTimedOut:
		return StatusRequestTimeout
	case ErrMalformedHeaders, ErrConflictingFraming, ErrBadChunkSize, ErrHandlerDeclined:
		return StatusBadRequest
	default:
		return StatusBadRequest
	}
}

// Minimal subset of status codes the engine itself needs to name; a full
// table belongs to the application layer, not the wire engine.
const (
	StatusContinue                    = 100
	StatusOK                          = 200
	StatusNoContent                   = 204
	StatusBadRequest                  = 400
	StatusRequestTimeout               = 408
	StatusRequestEntityTooLarge        = 413
	StatusRequestHeaderFieldsTooLarge  = 431
	StatusNotModified                  = 304
)
