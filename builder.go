package httpcore

import (
	"fmt"

	"github.com/valyala/bytebufferpool"
)

// BodyPolicy constrains which framing a Builder will accept for the
// message it is assembling, set once from the role driving it (a 204
// response can never declare a body; a HEAD response must suppress one
// even though the status line looks like it carries one).
type BodyPolicy int

const (
	// BodyPolicyNormal allows the caller to pick fixed-length, chunked,
	// or no body.
	BodyPolicyNormal BodyPolicy = iota
	// BodyPolicyDenied forbids any body; Builder writes Content-Length: 0
	// implicitly and rejects SetChunked/WriteBody.
	BodyPolicyDenied
	// BodyPolicyIgnored allows the caller to attempt a body but Builder
	// silently discards it (a HEAD response: the caller reasons about the
	// body as if sending it, but no body bytes are written to the wire).
	BodyPolicyIgnored
)

type builderStage int

const (
	stageStartLine builderStage = iota
	stageHeaders
	stageBodyFixed
	stageBodyChunked
	stageDone
)

// MessageState is the tagged-variant bookkeeping a Builder carries to
// enforce §4.2's invariants: the start line is written exactly once,
// at most one of Content-Length/chunked framing is chosen, and once a
// framing choice is made it cannot change.
type MessageState struct {
	stage         builderStage
	policy        BodyPolicy
	framed        bool // true once Content-Length or chunked has been chosen
	chunked       bool
	remaining     int // bytes left to write for a fixed-length body
}

func (ms *MessageState) reset(policy BodyPolicy) {
	ms.stage = stageStartLine
	ms.policy = policy
	ms.framed = false
	ms.chunked = false
	ms.remaining = 0
}

// Builder assembles one outgoing HTTP/1.x message (request or response)
// into a pooled buffer, enforcing MessageState's framing invariants as
// each piece is written. A Builder is reused across messages on the same
// connection via Reset.
type Builder struct {
	buf   *bytebufferpool.ByteBuffer
	state MessageState
}

// NewBuilder returns a Builder ready to write a message under policy.
func NewBuilder(policy BodyPolicy) *Builder {
	b := &Builder{buf: AcquireByteBuffer()}
	b.state.reset(policy)
	return b
}

// Reset prepares b to write a new message, releasing the previous
// buffer's contents (but keeping the underlying allocation) for reuse.
func (b *Builder) Reset(policy BodyPolicy) {
	b.buf.Reset()
	b.state.reset(policy)
}

// Release returns the underlying buffer to the pool. The Builder must not
// be used afterward.
func (b *Builder) Release() {
	ReleaseByteBuffer(b.buf)
	b.buf = nil
}

// Bytes returns the bytes written so far, valid until the next write or
// Reset.
func (b *Builder) Bytes() []byte { return b.buf.B }

// IsStarted reports whether the status/request line has already been
// written, so a caller deciding whether it may still overwrite this
// message (e.g. with an interim response or an error page) knows whether
// the handler has already claimed it.
func (b *Builder) IsStarted() bool { return b.state.stage != stageStartLine }

var errBuilderOutOfOrder = fmt.Errorf("httpcore: builder method called out of order")
var errBuilderFramingChosen = fmt.Errorf("httpcore: body framing already chosen")
var errBuilderBodyDenied = fmt.Errorf("httpcore: body not allowed by policy")

// WriteRequestLine writes "METHOD SP path SP version CRLF" and moves the
// Builder into the header-writing stage. It may only be called once, and
// only before any header or body has been written.
func (b *Builder) WriteRequestLine(method, path, version []byte) error {
	if b.state.stage != stageStartLine {
		return errBuilderOutOfOrder
	}
	b.buf.Write(method)
	b.buf.WriteByte(' ')
	b.buf.Write(path)
	b.buf.WriteByte(' ')
	b.buf.Write(version)
	b.buf.Write(strCRLF)
	b.state.stage = stageHeaders
	return nil
}

// WriteStatusLine writes "version SP code SP reason CRLF". Like
// WriteRequestLine, it may only be called once.
func (b *Builder) WriteStatusLine(version []byte, code int, reason []byte) error {
	if b.state.stage != stageStartLine {
		return errBuilderOutOfOrder
	}
	b.buf.Write(version)
	b.buf.WriteByte(' ')
	b.buf.B = AppendUint(b.buf.B, code)
	b.buf.WriteByte(' ')
	b.buf.Write(reason)
	b.buf.Write(strCRLF)
	b.state.stage = stageHeaders
	return nil
}

// WriteHeader appends one "Key: Value\r\n" header line. Callers must not
// pass Content-Length or Transfer-Encoding here; use SetContentLength or
// SetChunked, which enforce the exactly-one-framing-header invariant.
func (b *Builder) WriteHeader(key, value []byte) error {
	if b.state.stage != stageHeaders {
		return errBuilderOutOfOrder
	}
	if equalFold(key, strContentLength) || equalFold(key, strTransferEncoding) {
		return fmt.Errorf("httpcore: use SetContentLength/SetChunked to set framing headers")
	}
	b.buf.Write(key)
	b.buf.Write(strColonSpace)
	b.buf.Write(value)
	b.buf.Write(strCRLF)
	return nil
}

// WriteDefaultHeaders writes Server and Date, the two headers every
// response carries unless the handler overrides them beforehand.
func (b *Builder) WriteDefaultHeaders(serverName []byte) error {
	if serverName == nil {
		serverName = defaultServerName
	}
	if err := b.WriteHeader(strServer, serverName); err != nil {
		return err
	}
	return b.WriteHeader(strDate, getServerDate())
}

// SetContentLength declares a fixed-length body of n bytes and writes the
// Content-Length header. It is an error to call this after SetChunked, or
// twice, or when the policy denies a body (n must be 0 in that case and
// is written implicitly by FinishHeaders instead).
func (b *Builder) SetContentLength(n int) error {
	if b.state.stage != stageHeaders {
		return errBuilderOutOfOrder
	}
	if b.state.framed {
		return errBuilderFramingChosen
	}
	if b.state.policy == BodyPolicyDenied && n != 0 {
		return errBuilderBodyDenied
	}
	b.buf.Write(strContentLength)
	b.buf.Write(strColonSpace)
	b.buf.B = AppendUint(b.buf.B, n)
	b.buf.Write(strCRLF)
	b.state.framed = true
	b.state.remaining = n
	return nil
}

// SetChunked declares a chunked body and writes "Transfer-Encoding:
// chunked". Forbidden under BodyPolicyDenied.
func (b *Builder) SetChunked() error {
	if b.state.stage != stageHeaders {
		return errBuilderOutOfOrder
	}
	if b.state.framed {
		return errBuilderFramingChosen
	}
	if b.state.policy == BodyPolicyDenied {
		return errBuilderBodyDenied
	}
	b.buf.Write(strTransferEncoding)
	b.buf.Write(strColonSpace)
	b.buf.Write(strChunked)
	b.buf.Write(strCRLF)
	b.state.framed = true
	b.state.chunked = true
	return nil
}

// FinishHeaders closes the header block. If no framing was chosen it
// implicitly writes Content-Length: 0 (the only framing a Denied-policy
// message, or a deliberately empty Normal-policy one, ever needs).
func (b *Builder) FinishHeaders() error {
	if b.state.stage != stageHeaders {
		return errBuilderOutOfOrder
	}
	if !b.state.framed {
		if err := b.SetContentLength(0); err != nil {
			return err
		}
	}
	b.buf.Write(strCRLF)
	if b.state.chunked {
		b.state.stage = stageBodyChunked
	} else {
		b.state.stage = stageBodyFixed
	}
	return nil
}

// WriteBody writes body data. Under fixed framing it is an error to write
// more than the declared Content-Length; under chunked framing each call
// becomes one chunk. Under BodyPolicyIgnored the bytes are counted but
// discarded, matching a HEAD response's "compute a body, send none"
// contract.
func (b *Builder) WriteBody(data []byte) error {
	switch b.state.stage {
	case stageBodyFixed:
		if len(data) > b.state.remaining {
			return fmt.Errorf("httpcore: body write exceeds declared Content-Length")
		}
		b.state.remaining -= len(data)
		if b.state.policy != BodyPolicyIgnored {
			b.buf.Write(data)
		}
		return nil
	case stageBodyChunked:
		if len(data) == 0 {
			return nil
		}
		if b.state.policy != BodyPolicyIgnored {
			if err := writeHexInt(b.buf, len(data)); err != nil {
				return err
			}
			b.buf.Write(strCRLF)
			b.buf.Write(data)
			b.buf.Write(strCRLF)
		}
		return nil
	default:
		return errBuilderOutOfOrder
	}
}

// Done finalizes the message: for chunked framing it writes the
// terminating zero-chunk, for fixed framing it requires every declared
// byte to have been written. Done is idempotent -- calling it again once
// the message is already finished is a no-op.
func (b *Builder) Done() error {
	switch b.state.stage {
	case stageDone:
		return nil
	case stageBodyFixed:
		if b.state.remaining != 0 {
			return fmt.Errorf("httpcore: %d declared body bytes never written", b.state.remaining)
		}
	case stageBodyChunked:
		if b.state.policy != BodyPolicyIgnored {
			b.buf.WriteByte('0')
			b.buf.Write(strCRLF)
			b.buf.Write(strCRLF)
		}
	default:
		return errBuilderOutOfOrder
	}
	b.state.stage = stageDone
	return nil
}
