package httpcore

import "time"

type connClientStage int

const (
	ccsWriteRequest connClientStage = iota
	ccsReadHead
	ccsReadBody
	ccsIdle
	ccsDone
)

// ClientConn drives the client-role half of one connection: it asks a
// Client handler to write a request, serializes it, scans the response
// head and body out of the Stream's input, and feeds them back to the
// handler through the same ownership-transfer pattern ServerConn uses.
type ClientConn struct {
	stream  Stream
	handler Client
	ctx     *connContext

	stage connClientStage
	head  Head
	mode  RecvMode
	body  *BodyProgress

	lastMethod []byte
	outBuilder *Builder
	outSent    int

	writeTimeout time.Duration
	headTimeout  time.Duration
	bodyTimeout  time.Duration

	closeAfterResponse bool
}

// NewClientConn wires handler to drive stream as the client role.
func NewClientConn(stream Stream, handler Client) *ClientConn {
	return &ClientConn{
		stream:       stream,
		handler:      handler,
		ctx:          newConnContext(stream, nil),
		stage:        ccsWriteRequest,
		writeTimeout: 30 * time.Second,
		headTimeout:  30 * time.Second,
		bodyTimeout:  60 * time.Second,
	}
}

// Advance runs one step using whatever bytes are already available, per
// the same contract as ServerConn.Advance.
func (c *ClientConn) Advance(closed bool) Intent {
	for {
		switch c.stage {
		case ccsWriteRequest:
			if intent, done := c.advanceWriteRequest(); !done {
				return intent
			}
		case ccsReadHead:
			if intent, done := c.advanceReadHead(closed); !done {
				return intent
			}
		case ccsReadBody:
			if intent, done := c.advanceReadBody(closed); !done {
				return intent
			}
		case ccsIdle:
			return Intent{State: StateIdle, Expect: SleepExpectation()}
		case ccsDone:
			return closeIntent(nil)
		}
	}
}

func (c *ClientConn) advanceWriteRequest() (Intent, bool) {
	b := NewBuilder(BodyPolicyNormal)
	mode, next := c.handler.WriteRequest(c.ctx, b)
	if next == nil {
		b.Release()
		c.stage = ccsIdle
		return Intent{}, true
	}
	c.handler = next
	c.mode = mode
	if err := b.Done(); err != nil {
		b.Release()
		return c.fail(err), false
	}
	c.stream.Output().Append(b.Bytes())
	c.lastMethod = append(c.lastMethod[:0], parseWrittenMethod(b.Bytes())...)
	b.Release()
	c.stage = ccsReadHead
	return Intent{State: StateWriteBody, Expect: FlushExpectation(0), Deadline: c.deadlineFrom(c.writeTimeout)}, false
}

func (c *ClientConn) advanceReadHead(closed bool) (Intent, bool) {
	in := c.stream.Input()
	isHead := equalFold(c.lastMethod, strHead)
	n, err := ScanResponseHead(&c.head, in.Bytes(), isHead)
	if err == ErrNeedMore {
		if closed {
			return c.fail(newProtoError(ErrConnectionClosed, nil)), false
		}
		return Intent{State: StateReadHead, Expect: DelimiterExpectation(0, strCRLFCRLF, MaxHeadersSize), Deadline: c.deadlineFrom(c.headTimeout)}, false
	}
	if err != nil {
		return c.fail(err), false
	}
	in.Consume(n)

	mode, next := c.handler.OnResponseHeaders(c.ctx, &c.head)
	if next == nil {
		return c.fail(newProtoError(ErrHandlerDeclined, nil)), false
	}
	c.handler = next
	if mode.Kind != c.mode.Kind || mode.MaxBytes != 0 || mode.MinChunk != 0 {
		c.mode = mode
	}

	bp, berr := NewBodyProgress(c.head.BodyKind, c.head.ContentLength, c.mode)
	if berr != nil {
		return c.fail(berr), false
	}
	c.body = bp

	if bp.Done() {
		return c.finishResponse(), true
	}
	c.stage = ccsReadBody
	return Intent{}, true
}

func (c *ClientConn) advanceReadBody(closed bool) (Intent, bool) {
	in := c.stream.Input()
	data, n, err := c.body.Advance(in.Bytes(), closed)
	if err != nil {
		return c.fail(err), false
	}
	if n > 0 {
		in.Consume(n)
	}
	if len(data) > 0 {
		next := c.handler.OnResponseBody(c.ctx, data)
		if next == nil {
			return c.fail(newProtoError(ErrHandlerDeclined, nil)), false
		}
		c.handler = next
	}
	if !c.body.Done() {
		if n == 0 && !closed {
			return Intent{State: StateReadBody, Expect: BytesExpectation(1), Deadline: c.deadlineFrom(c.bodyTimeout)}, false
		}
		if closed && c.head.BodyKind != BodyEOF {
			return c.fail(newProtoError(ErrConnectionClosed, nil)), false
		}
	}
	if c.body.Done() {
		return c.finishResponse(), true
	}
	return Intent{}, true
}

func (c *ClientConn) finishResponse() Intent {
	next := c.handler.OnResponseComplete(c.ctx)
	mustClose := c.head.MustClose
	c.head.reset()
	if next == nil || mustClose {
		c.closeAfterResponse = true
		c.stage = ccsDone
		return Intent{}
	}
	c.handler = next
	c.stage = ccsWriteRequest
	return Intent{}
}

func (c *ClientConn) fail(err error) Intent {
	c.stage = ccsDone
	return closeIntent(err)
}

// Timeout is called by the reactor when a read deadline elapses instead
// of the peer closing the connection, per spec.md §7 -- a client-role
// connection has no error page to render, so it simply closes carrying
// ErrTimedOut instead of treating the deadline as an ordinary EOF.
func (c *ClientConn) Timeout() Intent {
	return c.fail(newProtoError(ErrTimedOut, nil))
}

func (c *ClientConn) deadlineFrom(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return time.Now().Add(d)
}

// parseWrittenMethod extracts the method token from a just-written request
// line, so the client role knows whether to expect a HEAD response's
// always-empty body.
func parseWrittenMethod(req []byte) []byte {
	for i, c := range req {
		if c == ' ' {
			return req[:i]
		}
	}
	return nil
}
