package httpcore

// RecvModeKind selects how a handler wants to receive a message body.
type RecvModeKind int

const (
	// RecvBuffered bounds the body by MaxBytes. Body data is passed to the
	// handler as it arrives, so the handler may see it in several slices;
	// the engine does not accumulate it into one.
	RecvBuffered RecvModeKind = iota
	// RecvProgressive passes the body to the handler as it arrives, with
	// no size limit.
	RecvProgressive
)

// RecvMode is chosen by a Server/Client handler when it accepts a message
// with a body, per §3 and §4.5. The zero value is RecvBuffered with
// MaxBytes zero, which enforces no size limit.
type RecvMode struct {
	Kind RecvModeKind

	// MaxBytes bounds a buffered body: a Content-Length at or above it is
	// ErrBodyTooLarge, and a chunked body whose total exceeds it is
	// ErrChunkTooLarge. Zero disables both checks.
	MaxBytes int

	// MinChunk is recorded on the body tracker but does not change
	// delivery: slices smaller than MinChunk are passed on as they arrive,
	// and data is not held back to reach it.
	MinChunk int
}

// Buffered builds a RecvMode that limits the body to maxBytes (see
// RecvMode.MaxBytes); the body is still delivered as it arrives.
func Buffered(maxBytes int) RecvMode {
	return RecvMode{Kind: RecvBuffered, MaxBytes: maxBytes}
}

// Progressive builds a RecvMode that delivers the body as it arrives and
// records minChunk in MinChunk, which does not change delivery.
func Progressive(minChunk int) RecvMode {
	return RecvMode{Kind: RecvProgressive, MinChunk: minChunk}
}

func (m RecvMode) String() string {
	switch m.Kind {
	case RecvBuffered:
		return "buffered"
	case RecvProgressive:
		return "progressive"
	default:
		return "unknown"
	}
}
