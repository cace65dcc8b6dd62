package httpcore

import (
	"strings"
	"testing"
)

// oneShotClient issues a single GET and records the response body, then
// declines to start a second request.
type oneShotClient struct {
	path string
	body []byte
}

func (c *oneShotClient) WriteRequest(ctx Context, b *Builder) (RecvMode, Client) {
	_ = b.WriteRequestLine(strGet, []byte(c.path), strHTTP11)
	_ = b.WriteHeader(strHost, []byte("example.com"))
	_ = b.FinishHeaders()
	return Buffered(1024), c
}

func (c *oneShotClient) OnResponseHeaders(ctx Context, head *Head) (RecvMode, Client) {
	return Buffered(1024), c
}

func (c *oneShotClient) OnResponseBody(ctx Context, data []byte) Client {
	c.body = append(c.body, data...)
	return c
}

func (c *oneShotClient) OnResponseComplete(ctx Context) Client {
	return nil
}

func TestClientConnWritesRequestThenReadsResponse(t *testing.T) {
	s := &testStream{}
	c := &oneShotClient{path: "/status"}
	cc := NewClientConn(s, c)

	intent := cc.Advance(false)
	if intent.State != StateWriteBody {
		t.Fatalf("expected request to be queued for write, got %s (err=%v)", intent.State, intent.Err)
	}
	req := string(s.out.Bytes())
	if !strings.HasPrefix(req, "GET /status HTTP/1.1\r\n") {
		t.Fatalf("unexpected request line in %q", req)
	}
	s.out.Consume(s.out.Len())

	s.in.Append([]byte("HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok"))
	intent = cc.Advance(false)
	if intent.State != StateClose {
		t.Fatalf("expected connection to close after the lone exchange, got %s", intent.State)
	}
	if string(c.body) != "ok" {
		t.Fatalf("unexpected response body %q", c.body)
	}
}

func TestClientConnNeedsMoreResponseBytes(t *testing.T) {
	s := &testStream{}
	c := &oneShotClient{path: "/"}
	cc := NewClientConn(s, c)

	cc.Advance(false)
	s.out.Consume(s.out.Len())

	s.in.Append([]byte("HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhel"))
	intent := cc.Advance(false)
	if intent.State != StateReadBody {
		t.Fatalf("expected StateReadBody while body is incomplete, got %s (err=%v)", intent.State, intent.Err)
	}
}

// repeatingClient issues two requests in sequence over the same
// connection, exercising the keep-alive transition back to
// ccsWriteRequest.
type repeatingClient struct {
	n    int
	done int
}

func (c *repeatingClient) WriteRequest(ctx Context, b *Builder) (RecvMode, Client) {
	_ = b.WriteRequestLine(strGet, []byte("/"), strHTTP11)
	_ = b.WriteHeader(strHost, []byte("example.com"))
	_ = b.FinishHeaders()
	return Buffered(1024), c
}

func (c *repeatingClient) OnResponseHeaders(ctx Context, head *Head) (RecvMode, Client) {
	return Buffered(1024), c
}

func (c *repeatingClient) OnResponseBody(ctx Context, data []byte) Client { return c }

func (c *repeatingClient) OnResponseComplete(ctx Context) Client {
	c.done++
	if c.done >= c.n {
		return nil
	}
	return c
}

func TestClientConnSecondRequestAfterKeepAliveResponse(t *testing.T) {
	s := &testStream{}
	c := &repeatingClient{n: 2}
	cc := NewClientConn(s, c)

	cc.Advance(false)
	s.out.Consume(s.out.Len())
	s.in.Append([]byte("HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n"))
	intent := cc.Advance(false)
	if intent.State != StateWriteBody {
		t.Fatalf("expected a second request to be written, got %s (err=%v)", intent.State, intent.Err)
	}
	if c.done != 1 {
		t.Fatalf("expected exactly one completed response so far, got %d", c.done)
	}
}
