package httpcore

import (
	"strings"
	"testing"
)

type sliceRing struct{ buf []byte }

func (r *sliceRing) Bytes() []byte { return r.buf }
func (r *sliceRing) Consume(n int) { r.buf = append(r.buf[:0], r.buf[n:]...) }
func (r *sliceRing) Append(p []byte) { r.buf = append(r.buf, p...) }
func (r *sliceRing) Len() int { return len(r.buf) }

type testStream struct {
	in, out sliceRing
}

func (s *testStream) Input() RingBuffer  { return &s.in }
func (s *testStream) Output() RingBuffer { return &s.out }
func (s *testStream) Socket() interface{} { return nil }

// echoServer replies with the request path as the response body and
// never changes handler identity, covering the simplest OnHeaders ->
// OnComplete path with no request body.
type echoServer struct{}

func (echoServer) OnHeaders(ctx Context, head *Head, b *Builder) (RecvMode, Server) {
	return Buffered(1024), echoServer{}
}
func (echoServer) OnBody(ctx Context, data []byte) Server { return echoServer{} }
func (echoServer) OnComplete(ctx Context, b *Builder) Server {
	_ = b.WriteStatusLine(strHTTP11, StatusOK, []byte("OK"))
	_ = b.SetContentLength(2)
	_ = b.FinishHeaders()
	_ = b.WriteBody([]byte("ok"))
	return echoServer{}
}

func TestServerConnSimpleRequestResponse(t *testing.T) {
	s := &testStream{}
	s.in.Append([]byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n"))

	sc := NewServerConn(s, echoServer{}, nil)
	intent := sc.Advance(false)
	if intent.State != StateWriteBody {
		t.Fatalf("expected StateWriteBody, got %s (err=%v)", intent.State, intent.Err)
	}
	out := string(s.out.Bytes())
	if !strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("unexpected response %q", out)
	}
	if !strings.HasSuffix(out, "\r\n\r\nok") {
		t.Fatalf("unexpected response body in %q", out)
	}
}

func TestServerConnKeepAliveSecondRequest(t *testing.T) {
	s := &testStream{}
	s.in.Append([]byte("GET /a HTTP/1.1\r\nHost: x\r\n\r\n"))

	sc := NewServerConn(s, echoServer{}, nil)
	sc.Advance(false)
	s.out.Consume(s.out.Len())

	s.in.Append([]byte("GET /b HTTP/1.1\r\nHost: x\r\n\r\n"))
	intent := sc.Advance(false)
	if intent.State != StateWriteBody {
		t.Fatalf("expected second request to be served, got %s (err=%v)", intent.State, intent.Err)
	}
	if !strings.Contains(string(s.out.Bytes()), "200 OK") {
		t.Fatalf("expected second response, got %q", s.out.Bytes())
	}
}

func TestServerConnConnectionCloseEndsWithClose(t *testing.T) {
	s := &testStream{}
	s.in.Append([]byte("GET / HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n"))

	sc := NewServerConn(s, echoServer{}, nil)
	intent := sc.Advance(false)
	if intent.State != StateClose {
		t.Fatalf("expected StateClose after Connection: close, got %s", intent.State)
	}
}

func TestServerConnNeedsMoreBytes(t *testing.T) {
	s := &testStream{}
	s.in.Append([]byte("GET / HTTP/1.1\r\nHost: x\r\n"))

	sc := NewServerConn(s, echoServer{}, nil)
	intent := sc.Advance(false)
	if intent.State != StateReadHead {
		t.Fatalf("expected StateReadHead while waiting for more header bytes, got %s", intent.State)
	}
}

// bodyCapturingServer buffers the request body and echoes it back,
// exercising OnBody plus a fixed-length request.
type bodyCapturingServer struct {
	captured []byte
}

func (h *bodyCapturingServer) OnHeaders(ctx Context, head *Head, b *Builder) (RecvMode, Server) {
	return Buffered(1024), h
}
func (h *bodyCapturingServer) OnBody(ctx Context, data []byte) Server {
	h.captured = append(h.captured, data...)
	return h
}
func (h *bodyCapturingServer) OnComplete(ctx Context, b *Builder) Server {
	_ = b.WriteStatusLine(strHTTP11, StatusOK, []byte("OK"))
	_ = b.SetContentLength(len(h.captured))
	_ = b.FinishHeaders()
	_ = b.WriteBody(h.captured)
	return h
}

func TestServerConnRequestWithFixedBody(t *testing.T) {
	s := &testStream{}
	s.in.Append([]byte("POST /upload HTTP/1.1\r\nHost: x\r\nContent-Length: 5\r\n\r\nhello"))

	h := &bodyCapturingServer{}
	sc := NewServerConn(s, h, nil)
	intent := sc.Advance(false)
	if intent.State != StateWriteBody {
		t.Fatalf("expected response to be written, got %s (err=%v)", intent.State, intent.Err)
	}
	if !strings.HasSuffix(string(s.out.Bytes()), "hello") {
		t.Fatalf("expected echoed body, got %q", s.out.Bytes())
	}
}

func TestServerConnMalformedHeadRespondsAndCloses(t *testing.T) {
	s := &testStream{}
	s.in.Append([]byte("NOTAREQUESTLINE\r\n\r\n"))

	sc := NewServerConn(s, echoServer{}, nil)
	intent := sc.Advance(false)
	if intent.State != StateClose {
		t.Fatalf("expected StateClose for a malformed request, got %s", intent.State)
	}
	if !strings.HasPrefix(string(s.out.Bytes()), "HTTP/1.1 400") {
		t.Fatalf("expected a 400 error page, got %q", s.out.Bytes())
	}
}

// TestServerConnHandlerDeclineNoBodyStaysAlive covers spec.md §4.4 step 4:
// a handler that declines a request with no body (and no Connection:
// close) still leaves the connection in a clean keep-alive state, since
// there is nothing left unread on the wire to desynchronize framing.
func TestServerConnHandlerDeclineNoBodyStaysAlive(t *testing.T) {
	s := &testStream{}
	s.in.Append([]byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n"))

	sc := NewServerConn(s, decliningServer{}, nil)
	intent := sc.Advance(false)
	if intent.State != StateWriteBody {
		t.Fatalf("expected a bodyless decline to keep the connection alive, got %s (err=%v)", intent.State, intent.Err)
	}
	if !strings.HasPrefix(string(s.out.Bytes()), "HTTP/1.1 400") {
		t.Fatalf("expected a 400 error page, got %q", s.out.Bytes())
	}
}

// TestServerConnHandlerDeclineWithBodyCloses covers the companion case: a
// handler declining a request that does carry a body can't keep the
// connection alive, since the body bytes were never consumed off the
// wire and would be misread as the next request's head.
func TestServerConnHandlerDeclineWithBodyCloses(t *testing.T) {
	s := &testStream{}
	s.in.Append([]byte("POST / HTTP/1.1\r\nHost: x\r\nContent-Length: 5\r\n\r\nhello"))

	sc := NewServerConn(s, decliningServer{}, nil)
	intent := sc.Advance(false)
	if intent.State != StateClose {
		t.Fatalf("expected StateClose when handler declines a body-bearing request, got %s", intent.State)
	}
}

// TestServerConnOnHeadersSuppressesContinue covers spec.md §4.4 step 5: a
// handler that writes its response inside OnHeaders (answering before the
// body arrives) suppresses the engine's own "100 Continue" interim
// response for an Expect: 100-continue request.
func TestServerConnOnHeadersSuppressesContinue(t *testing.T) {
	s := &testStream{}
	s.in.Append([]byte("POST / HTTP/1.1\r\nHost: x\r\nContent-Length: 5\r\nExpect: 100-continue\r\n\r\n"))

	sc := NewServerConn(s, rejectingServer{}, nil)
	intent := sc.Advance(false)
	if intent.State != StateClose {
		t.Fatalf("expected StateClose, got %s (err=%v)", intent.State, intent.Err)
	}
	out := string(s.out.Bytes())
	if strings.Contains(out, "100 Continue") {
		t.Fatalf("expected no 100 Continue once the handler already started a response, got %q", out)
	}
	if !strings.HasPrefix(out, "HTTP/1.1 403") {
		t.Fatalf("expected the handler's own 403 response, got %q", out)
	}
}

type decliningServer struct{}

func (decliningServer) OnHeaders(ctx Context, head *Head, b *Builder) (RecvMode, Server) {
	return Buffered(1024), nil
}
func (decliningServer) OnBody(ctx Context, data []byte) Server   { return nil }
func (decliningServer) OnComplete(ctx Context, b *Builder) Server { return nil }

// rejectingServer answers with a 403 directly from OnHeaders, before any
// body is read, and declines to continue the exchange.
type rejectingServer struct{}

func (rejectingServer) OnHeaders(ctx Context, head *Head, b *Builder) (RecvMode, Server) {
	_ = b.WriteStatusLine(strHTTP11, 403, []byte("Forbidden"))
	_ = b.SetContentLength(0)
	_ = b.FinishHeaders()
	return Buffered(1024), nil
}
func (rejectingServer) OnBody(ctx Context, data []byte) Server   { return nil }
func (rejectingServer) OnComplete(ctx Context, b *Builder) Server { return nil }
