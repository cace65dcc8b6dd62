package httpcore

import (
	"strings"
	"testing"
)

func TestBuilderFixedLengthResponse(t *testing.T) {
	b := NewBuilder(BodyPolicyNormal)
	defer b.Release()

	if err := b.WriteStatusLine(strHTTP11, StatusOK, []byte("OK")); err != nil {
		t.Fatalf("status line: %s", err)
	}
	if err := b.WriteHeader([]byte("X-Test"), []byte("1")); err != nil {
		t.Fatalf("header: %s", err)
	}
	if err := b.SetContentLength(5); err != nil {
		t.Fatalf("content-length: %s", err)
	}
	if err := b.FinishHeaders(); err != nil {
		t.Fatalf("finish headers: %s", err)
	}
	if err := b.WriteBody([]byte("hello")); err != nil {
		t.Fatalf("write body: %s", err)
	}
	if err := b.Done(); err != nil {
		t.Fatalf("done: %s", err)
	}

	out := string(b.Bytes())
	if !strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("unexpected status line in %q", out)
	}
	if !strings.Contains(out, "Content-Length: 5\r\n") {
		t.Fatalf("missing content-length in %q", out)
	}
	if !strings.HasSuffix(out, "\r\n\r\nhello") {
		t.Fatalf("missing body in %q", out)
	}
}

func TestBuilderChunkedResponse(t *testing.T) {
	b := NewBuilder(BodyPolicyNormal)
	defer b.Release()

	_ = b.WriteStatusLine(strHTTP11, StatusOK, []byte("OK"))
	_ = b.SetChunked()
	_ = b.FinishHeaders()
	_ = b.WriteBody([]byte("abc"))
	_ = b.WriteBody([]byte("de"))
	if err := b.Done(); err != nil {
		t.Fatalf("done: %s", err)
	}

	out := string(b.Bytes())
	want := "3\r\nabc\r\n2\r\nde\r\n0\r\n\r\n"
	if !strings.HasSuffix(out, want) {
		t.Fatalf("unexpected chunked tail in %q, want suffix %q", out, want)
	}
}

func TestBuilderDeniedPolicyForcesEmptyBody(t *testing.T) {
	b := NewBuilder(BodyPolicyDenied)
	defer b.Release()

	_ = b.WriteStatusLine(strHTTP11, StatusNoContent, []byte("No Content"))
	if err := b.FinishHeaders(); err != nil {
		t.Fatalf("finish headers: %s", err)
	}
	if err := b.SetChunked(); err == nil {
		t.Fatalf("expected SetChunked to fail under Denied policy")
	}
	out := string(b.Bytes())
	if !strings.Contains(out, "Content-Length: 0\r\n") {
		t.Fatalf("expected implicit Content-Length: 0 in %q", out)
	}
}

func TestBuilderRejectsFramingHeaderViaWriteHeader(t *testing.T) {
	b := NewBuilder(BodyPolicyNormal)
	defer b.Release()

	_ = b.WriteStatusLine(strHTTP11, StatusOK, []byte("OK"))
	if err := b.WriteHeader(strContentLength, []byte("5")); err == nil {
		t.Fatalf("expected WriteHeader to reject Content-Length")
	}
}

func TestBuilderRejectsSecondFramingChoice(t *testing.T) {
	b := NewBuilder(BodyPolicyNormal)
	defer b.Release()

	_ = b.WriteStatusLine(strHTTP11, StatusOK, []byte("OK"))
	_ = b.SetContentLength(0)
	if err := b.SetChunked(); err == nil {
		t.Fatalf("expected SetChunked to fail after SetContentLength")
	}
}

func TestBuilderDoneRejectsShortFixedBody(t *testing.T) {
	b := NewBuilder(BodyPolicyNormal)
	defer b.Release()

	_ = b.WriteStatusLine(strHTTP11, StatusOK, []byte("OK"))
	_ = b.SetContentLength(5)
	_ = b.FinishHeaders()
	_ = b.WriteBody([]byte("ab"))
	if err := b.Done(); err == nil {
		t.Fatalf("expected Done to reject incomplete fixed body")
	}
}

func TestBuilderDoneIsIdempotent(t *testing.T) {
	b := NewBuilder(BodyPolicyNormal)
	defer b.Release()

	_ = b.WriteStatusLine(strHTTP11, StatusOK, []byte("OK"))
	_ = b.SetContentLength(0)
	_ = b.FinishHeaders()
	if err := b.Done(); err != nil {
		t.Fatalf("first done: %s", err)
	}
	if err := b.Done(); err != nil {
		t.Fatalf("second done should be a no-op: %s", err)
	}
}
