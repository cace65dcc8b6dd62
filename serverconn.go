package httpcore

import "time"

// connServerStage is the server-role connection state machine's internal
// phase, distinct from the coarser ConnState an Intent reports to the
// reactor.
type connServerStage int

const (
	cssReadHead connServerStage = iota
	cssReadBody
	cssWriteResponse
	cssDone
)

// ServerConn drives the server-role half of one connection: it scans
// request heads and bodies out of a Stream's input buffer, invokes a
// Server handler's callbacks, and serializes the handler's response into
// the Stream's output buffer. It never blocks and never touches a socket
// directly; each call to Advance consumes whatever bytes are currently
// available and returns an Intent telling the caller what to wait for
// next.
type ServerConn struct {
	stream  Stream
	handler Server
	ctx     *connContext

	stage connServerStage
	head  Head
	mode  RecvMode
	body  *BodyProgress

	builder          *Builder
	respondedBuilder *Builder
	outSent          int

	idleTimeout time.Duration
	headTimeout time.Duration
	bodyTimeout time.Duration

	closeAfterWrite bool
}

// NewServerConn wires handler to drive stream, rendering protocol errors
// via errorPage (nil selects the built-in default).
func NewServerConn(stream Stream, handler Server, errorPage func(ErrorKind) (int, []byte)) *ServerConn {
	return &ServerConn{
		stream:      stream,
		handler:     handler,
		ctx:         newConnContext(stream, errorPage),
		stage:       cssReadHead,
		idleTimeout: DefaultIdleTimeout,
		headTimeout: DefaultHeaderByteTimeout,
		bodyTimeout: DefaultSendResponseTimeout,
	}
}

// Advance runs one step of the state machine using whatever bytes are
// already sitting in stream.Input(), and returns the next Intent. closed
// reports that the peer has already closed its write side (EOF observed);
// a request head or body that is still incomplete at that point ends the
// connection.
func (c *ServerConn) Advance(closed bool) Intent {
	for {
		switch c.stage {
		case cssReadHead:
			if intent, done := c.advanceReadHead(closed); !done {
				return intent
			}
		case cssReadBody:
			if intent, done := c.advanceReadBody(closed); !done {
				return intent
			}
		case cssWriteResponse:
			return c.advanceWriteResponse()
		case cssDone:
			if c.closeAfterWrite {
				return closeIntent(nil)
			}
			return Intent{State: StateIdle, Expect: BytesExpectation(1), Deadline: c.deadlineFrom(c.idleTimeout)}
		}
	}
}

// advanceReadHead tries to scan a full request head out of the input
// buffer. done is false when it needs more bytes (the returned Intent
// already reflects that) or hit a protocol error (the returned Intent is
// a close Intent after queuing an error response).
func (c *ServerConn) advanceReadHead(closed bool) (Intent, bool) {
	in := c.stream.Input()
	n, err := ScanRequestHead(&c.head, in.Bytes())
	if err == ErrNeedMore {
		if closed {
			return closeIntent(nil), false
		}
		return Intent{State: StateReadHead, Expect: DelimiterExpectation(0, strCRLFCRLF, MaxHeadersSize), Deadline: c.deadlineFrom(c.headTimeout)}, false
	}
	if err != nil {
		return c.fail(err), false
	}
	in.Consume(n)

	c.builder = NewBuilder(BodyPolicyNormal)
	mode, next := c.handler.OnHeaders(c.ctx, &c.head, c.builder)
	if next == nil {
		return c.failAfterHeaders(newProtoError(ErrHandlerDeclined, nil), c.head.MustClose || !c.headHasNoBody()), false
	}
	c.handler = next
	c.mode = mode

	bp, berr := NewBodyProgress(c.head.BodyKind, c.head.ContentLength, mode)
	if berr != nil {
		return c.failAfterHeaders(berr, true), false
	}
	c.body = bp

	if c.head.HasExpectContinue && !c.builder.IsStarted() {
		c.queueContinue()
	}

	if bp.Done() {
		return c.finishRequest(), true
	}
	c.stage = cssReadBody
	return Intent{}, true
}

// headHasNoBody reports whether the just-parsed request head carries no
// body at all -- BodyNone, or a declared-empty fixed body -- the only
// shape for which declining the request after headers still leaves the
// connection in a clean keep-alive state, per spec.md §4.4 step 4.
func (c *ServerConn) headHasNoBody() bool {
	return c.head.BodyKind == BodyNone || (c.head.BodyKind == BodyFixed && c.head.ContentLength == 0)
}

func (c *ServerConn) advanceReadBody(closed bool) (Intent, bool) {
	in := c.stream.Input()
	data, n, err := c.body.Advance(in.Bytes(), closed)
	if err != nil {
		return c.failAfterHeaders(err, true), false
	}
	if n > 0 {
		in.Consume(n)
	}
	if len(data) > 0 {
		next := c.handler.OnBody(c.ctx, data)
		if next == nil {
			return c.failAfterHeaders(newProtoError(ErrHandlerDeclined, nil), true), false
		}
		c.handler = next
	}
	if !c.body.Done() {
		if n == 0 && !closed {
			return Intent{State: StateReadBody, Expect: BytesExpectation(1), Deadline: c.deadlineFrom(c.bodyTimeout)}, false
		}
		if closed {
			return c.failAfterHeaders(newProtoError(ErrConnectionClosed, nil), true), false
		}
	}
	if c.body.Done() {
		return c.finishRequest(), true
	}
	return Intent{}, true
}

func (c *ServerConn) finishRequest() Intent {
	b := c.builder
	c.builder = nil
	next := c.handler.OnComplete(c.ctx, b)
	if err := b.Done(); err != nil {
		next = nil
	}
	if next == nil {
		c.closeAfterWrite = true
	} else {
		c.handler = next
	}
	c.respondedBuilder = b
	c.outSent = 0
	c.stage = cssWriteResponse
	return Intent{}
}

func (c *ServerConn) advanceWriteResponse() Intent {
	out := c.stream.Output()
	data := c.respondedBuilder.Bytes()[c.outSent:]
	if len(data) > 0 {
		out.Append(data)
		c.outSent = len(c.respondedBuilder.Bytes())
	}
	c.respondedBuilder.Release()
	c.respondedBuilder = nil

	if c.head.MustClose {
		c.closeAfterWrite = true
	}

	if c.closeAfterWrite {
		c.stage = cssDone
		return Intent{State: StateClose, Expect: FlushExpectation(0), Deadline: c.deadlineFrom(c.idleTimeout)}
	}

	c.head.reset()
	c.stage = cssReadHead
	return Intent{State: StateWriteBody, Expect: FlushExpectation(0), Deadline: c.deadlineFrom(c.idleTimeout)}
}

// queueContinue writes a "100 Continue" interim response directly to the
// output buffer, bypassing the handler's own Builder since it belongs to
// the eventual final response.
func (c *ServerConn) queueContinue() {
	b := NewBuilder(BodyPolicyDenied)
	_ = b.WriteStatusLine(strHTTP11, StatusContinue, []byte("Continue"))
	_ = b.FinishHeaders()
	_ = b.Done()
	c.stream.Output().Append(b.Bytes())
	b.Release()
}

// fail renders a fresh error page and force-closes the connection. It is
// only used for failures that happen before a response Builder for the
// current request exists (a malformed head, most prominently), where
// there is nothing else that could already have claimed the response.
func (c *ServerConn) fail(err error) Intent {
	return c.renderErrorPage(err, true)
}

// failAfterHeaders handles a failure that happens once a response
// Builder has already been handed to the handler (a decline from
// OnHeaders/OnBody, or a body-framing error). If the handler already
// started writing into that Builder, its bytes belong to the handler and
// must be flushed as-is rather than overwritten with a generic error
// page -- but the connection is force-closed regardless, since an
// in-progress response the engine didn't finish producing can't be
// trusted to carry a correct framing for keep-alive. Otherwise the
// Builder is discarded and a standard error page is rendered, with
// closeAfter deciding whether spec.md §4.4 step 4's keep-alive case
// applies (a handler decline with no body read yet and no Connection:
// close on the request).
func (c *ServerConn) failAfterHeaders(err error, closeAfter bool) Intent {
	if c.builder != nil && c.builder.IsStarted() {
		_ = c.builder.Done()
		c.stream.Output().Append(c.builder.Bytes())
		c.builder.Release()
		c.builder = nil
		c.closeAfterWrite = true
		c.stage = cssDone
		return Intent{State: StateClose, Expect: FlushExpectation(0), Err: err}
	}
	if c.builder != nil {
		c.builder.Release()
		c.builder = nil
	}
	return c.renderErrorPage(err, closeAfter)
}

func (c *ServerConn) renderErrorPage(err error, closeAfter bool) Intent {
	kind := ErrMalformedHeaders
	if pe, ok := err.(*ProtoError); ok {
		kind = pe.Kind
	}
	status, body := c.ctx.EmitErrorPage(kind)
	b := NewBuilder(BodyPolicyNormal)
	_ = b.WriteStatusLine(strHTTP11, status, []byte("Error"))
	_ = b.SetContentLength(len(body))
	_ = b.FinishHeaders()
	_ = b.WriteBody(body)
	_ = b.Done()
	c.stream.Output().Append(b.Bytes())
	b.Release()

	if !closeAfter && !c.head.MustClose {
		c.head.reset()
		c.stage = cssReadHead
		return Intent{State: StateWriteBody, Expect: FlushExpectation(0), Deadline: c.deadlineFrom(c.idleTimeout), Err: err}
	}
	c.closeAfterWrite = true
	c.stage = cssDone
	return Intent{State: StateClose, Expect: FlushExpectation(0), Err: err}
}

// Timeout is called by the reactor when a read deadline elapses instead
// of the peer closing the connection. Per spec.md §7, if no response has
// been sent yet this renders a 408 Request Timeout (via ErrTimedOut) and
// closes; a timeout mid-body or mid-write is handled the same way since
// the connection cannot be trusted to resynchronize.
func (c *ServerConn) Timeout() Intent {
	return c.failAfterHeaders(newProtoError(ErrTimedOut, nil), true)
}

func (c *ServerConn) deadlineFrom(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return time.Now().Add(d)
}
