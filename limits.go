package httpcore

import "time"

// Default per-connection deadlines. Values match the long-standing
// defaults of the rotor-http state machine this engine's control flow is
// modeled on: a generous hour to drain a slow client's response, a short
// window for the first header byte, and a two-minute idle keep-alive.
const (
	DefaultIdleTimeout         = 120 * time.Second
	DefaultHeaderByteTimeout   = 45 * time.Second
	DefaultSendResponseTimeout = 3600 * time.Second
)

// Limits exposed for tuning, mirroring the RFC 7230 guidance on bounded
// header and chunk-size parsing (see header scanner in head.go).
const (
	// MaxHeadersNum is the maximum number of headers accepted in a single
	// request or response.
	MaxHeadersNum = 256

	// MaxHeadersSize is the maximum number of bytes accepted for the
	// request/status line plus the header block, terminator included.
	MaxHeadersSize = 16384

	// MaxChunkHead is the maximum number of bytes accepted for a single
	// chunk-size line (hex size, optional ';'-extension, CRLF).
	MaxChunkHead = 128
)
