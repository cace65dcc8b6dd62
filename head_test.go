package httpcore

import (
	"bytes"
	"testing"
)

func TestScanRequestHeadFixedLength(t *testing.T) {
	var h Head
	raw := []byte("POST /upload HTTP/1.1\r\nHost: example.com\r\nContent-Length: 5\r\n\r\nhello-extra")
	n, err := ScanRequestHead(&h, raw)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !bytes.Equal(h.Method, strPost) {
		t.Fatalf("method = %q", h.Method)
	}
	if string(h.Path) != "/upload" {
		t.Fatalf("path = %q", h.Path)
	}
	if h.BodyKind != BodyFixed || h.ContentLength != 5 {
		t.Fatalf("body kind=%s len=%d", h.BodyKind, h.ContentLength)
	}
	rest := raw[n:]
	if string(rest) != "hello-extra" {
		t.Fatalf("unexpected remainder %q", rest)
	}
}

func TestScanRequestHeadChunked(t *testing.T) {
	var h Head
	raw := []byte("GET / HTTP/1.1\r\nHost: x\r\nTransfer-Encoding: chunked\r\n\r\n")
	_, err := ScanRequestHead(&h, raw)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if h.BodyKind != BodyChunked {
		t.Fatalf("expected chunked, got %s", h.BodyKind)
	}
}

func TestScanRequestHeadConflictingFraming(t *testing.T) {
	var h Head
	raw := []byte("POST / HTTP/1.1\r\nHost: x\r\nContent-Length: 5\r\nTransfer-Encoding: chunked\r\n\r\n")
	_, err := ScanRequestHead(&h, raw)
	pe, ok := err.(*ProtoError)
	if !ok || pe.Kind != ErrConflictingFraming {
		t.Fatalf("expected ErrConflictingFraming, got %v", err)
	}
}

func TestScanRequestHeadDuplicateContentLength(t *testing.T) {
	var h Head
	raw := []byte("POST / HTTP/1.1\r\nContent-Length: 5\r\nContent-Length: 6\r\n\r\n")
	_, err := ScanRequestHead(&h, raw)
	pe, ok := err.(*ProtoError)
	if !ok || pe.Kind != ErrConflictingFraming {
		t.Fatalf("expected ErrConflictingFraming, got %v", err)
	}
}

// TestScanRequestHeadDuplicateContentLengthSameValue covers spec.md §4.1
// item 3's unconditional "duplicate Content-Length headers are a fatal
// parse error" -- even two identical values must be rejected, since a
// request-smuggling intermediary may only observe one of them.
func TestScanRequestHeadDuplicateContentLengthSameValue(t *testing.T) {
	var h Head
	raw := []byte("POST / HTTP/1.1\r\nContent-Length: 5\r\nContent-Length: 5\r\n\r\n")
	_, err := ScanRequestHead(&h, raw)
	pe, ok := err.(*ProtoError)
	if !ok || pe.Kind != ErrConflictingFraming {
		t.Fatalf("expected ErrConflictingFraming for identical duplicate Content-Length, got %v", err)
	}
}

func TestScanRequestHeadNeedMore(t *testing.T) {
	var h Head
	_, err := ScanRequestHead(&h, []byte("GET / HTTP/1.1\r\nHost: x\r\n"))
	if err != ErrNeedMore {
		t.Fatalf("expected ErrNeedMore, got %v", err)
	}
}

func TestScanResponseHeadEOFBody(t *testing.T) {
	var h Head
	raw := []byte("HTTP/1.1 200 OK\r\nConnection: close\r\n\r\n")
	_, err := ScanResponseHead(&h, raw, false)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if h.BodyKind != BodyEOF || !h.MustClose {
		t.Fatalf("expected EOF body + must-close, got kind=%s close=%v", h.BodyKind, h.MustClose)
	}
}

func TestScanResponseHeadNoBodyForHead(t *testing.T) {
	var h Head
	raw := []byte("HTTP/1.1 200 OK\r\nContent-Length: 1000\r\n\r\n")
	_, err := ScanResponseHead(&h, raw, true)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if h.BodyKind != BodyNone {
		t.Fatalf("expected no body for HEAD response, got %s", h.BodyKind)
	}
}

func TestScanResponseHeadNoBodyFor204(t *testing.T) {
	var h Head
	raw := []byte("HTTP/1.1 204 No Content\r\n\r\n")
	_, err := ScanResponseHead(&h, raw, false)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if h.BodyKind != BodyNone {
		t.Fatalf("expected no body for 204, got %s", h.BodyKind)
	}
}

func TestHeaderContinuationLine(t *testing.T) {
	var h Head
	raw := []byte("GET / HTTP/1.1\r\nX-Long: part-one\r\n part-two\r\n\r\n")
	_, err := ScanRequestHead(&h, raw)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	v := h.Get([]byte("X-Long"))
	if string(v) != "part-one part-two" {
		t.Fatalf("unexpected continuation value %q", v)
	}
}

func TestLeadingBlankLineTolerated(t *testing.T) {
	var h Head
	raw := []byte("\r\nGET / HTTP/1.1\r\n\r\n")
	n, err := ScanRequestHead(&h, raw)
	if err != nil {
		t.Fatalf("unexpected error for one leading blank line: %s", err)
	}
	if n != len(raw) || string(h.Method) != "GET" {
		t.Fatalf("unexpected n=%d method=%q", n, h.Method)
	}
	_, err = ScanRequestHead(&h, []byte("\r\n\r\nGET / HTTP/1.1\r\n\r\n"))
	if err == nil {
		t.Fatalf("expected error for two leading blank lines")
	}
}

func TestExpectContinueDetected(t *testing.T) {
	var h Head
	raw := []byte("POST / HTTP/1.1\r\nContent-Length: 1\r\nExpect: 100-continue\r\n\r\n")
	_, err := ScanRequestHead(&h, raw)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !h.HasExpectContinue {
		t.Fatalf("expected Expect: 100-continue to be detected")
	}
}
