package httpcore

import (
	"bytes"
	"fmt"
)

// HeaderField is a single parsed header line, key and value borrowed from
// the scanned buffer. Neither slice survives past the buffer's next reuse;
// callers that need to keep one must copy it.
type HeaderField struct {
	Key   []byte
	Value []byte
}

// Head is the parsed start-line plus header block of one HTTP message,
// along with the body framing §4.1 resolves from it. A Head borrows all of
// its byte slices from the buffer passed to ScanRequestHead/ScanResponseHead
// and is only valid until that buffer is reused.
type Head struct {
	// Request line, set by ScanRequestHead.
	Method  []byte
	Path    []byte
	Version []byte

	// Status line, set by ScanResponseHead.
	StatusCode int
	Reason     []byte

	Headers []HeaderField

	// Resolved framing, per RFC 7230 §3.3.3.
	BodyKind      BodyKind
	ContentLength int

	// MustClose is true when the connection cannot be reused for another
	// message after this one, either because the peer asked for it or
	// because the framing requires reading until EOF.
	MustClose bool

	// HasExpectContinue is true when the request carried
	// "Expect: 100-continue".
	HasExpectContinue bool

	// IsHTTP10 records the protocol version for default-persistence rules.
	IsHTTP10 bool
}

// Get returns the value of the first header matching key, case-insensitively,
// or nil if absent.
func (h *Head) Get(key []byte) []byte {
	for i := range h.Headers {
		if equalFold(h.Headers[i].Key, key) {
			return h.Headers[i].Value
		}
	}
	return nil
}

func (h *Head) reset() {
	h.Method = nil
	h.Path = nil
	h.Version = nil
	h.StatusCode = 0
	h.Reason = nil
	h.Headers = h.Headers[:0]
	h.BodyKind = BodyNone
	h.ContentLength = 0
	h.MustClose = false
	h.HasExpectContinue = false
	h.IsHTTP10 = false
}

// ScanRequestHead parses a request-line plus header block from buf. It
// returns the number of bytes consumed (the header block including its
// terminating CRLFCRLF) and ErrNeedMore if buf does not yet hold a full
// block. One empty line (CRLF or bare LF) before the request-line is
// skipped and counted in the consumed bytes; a second one is
// ErrMalformedHeaders. head is reused across calls; its slices always
// reference buf.
func ScanRequestHead(head *Head, buf []byte) (int, error) {
	head.reset()

	skip := 0
	if bytes.HasPrefix(buf, strCRLF) {
		skip = len(strCRLF)
	} else if len(buf) > 0 && buf[0] == '\n' {
		skip = 1
	}
	block, n, err := cutHeaderBlock(buf[skip:])
	if err != nil {
		return 0, err
	}
	n += skip

	s := headerScanner{b: block}
	line := s.readLine()
	if line == nil {
		return 0, newProtoError(ErrMalformedHeaders, fmt.Errorf("missing request line"))
	}
	method, path, version, perr := parseRequestLine(line)
	if perr != nil {
		return 0, newProtoError(ErrMalformedHeaders, perr)
	}
	head.Method = method
	head.Path = path
	head.Version = version
	head.IsHTTP10 = bytes.Equal(version, strHTTP10)

	if err := scanHeaderFields(&s, head); err != nil {
		return 0, err
	}

	if err := resolveRequestFraming(head); err != nil {
		return 0, err
	}

	return n, nil
}

// ScanResponseHead parses a status-line plus header block from buf.
// isHeadRequest and the parsed status code (1xx, 204, 304) tell the
// resolver that no body follows, since a response's body presence depends
// on the request method and status code, not just its own headers (RFC 7230
// §3.3.3 item 1).
func ScanResponseHead(head *Head, buf []byte, isHeadRequest bool) (int, error) {
	head.reset()

	block, n, err := cutHeaderBlock(buf)
	if err != nil {
		return 0, err
	}

	s := headerScanner{b: block}
	line := s.readLine()
	if line == nil {
		return 0, newProtoError(ErrMalformedHeaders, fmt.Errorf("missing status line"))
	}
	version, code, reason, perr := parseStatusLine(line)
	if perr != nil {
		return 0, newProtoError(ErrMalformedHeaders, perr)
	}
	head.Version = version
	head.StatusCode = code
	head.Reason = reason
	head.IsHTTP10 = bytes.Equal(version, strHTTP10)

	if err := scanHeaderFields(&s, head); err != nil {
		return 0, err
	}

	noBody := isHeadRequest || code < 200 || code == StatusNoContent || code == StatusNotModified
	if err := resolveResponseFraming(head, noBody); err != nil {
		return 0, err
	}

	return n, nil
}

// cutHeaderBlock locates the CRLFCRLF terminator and returns the header
// block including the terminator, plus its length. A leading CRLF is
// ErrMalformedHeaders here; ScanRequestHead strips the one empty line it
// tolerates before calling this.
func cutHeaderBlock(buf []byte) ([]byte, int, error) {
	if bytes.HasPrefix(buf, strCRLF) {
		return nil, 0, newProtoError(ErrMalformedHeaders, fmt.Errorf("empty leading line"))
	}
	if len(buf) > MaxHeadersSize {
		buf = buf[:MaxHeadersSize]
	}
	i := bytes.Index(buf, strCRLFCRLF)
	if i < 0 {
		if len(buf) >= MaxHeadersSize {
			return nil, 0, newProtoError(ErrHeadersTooLarge, nil)
		}
		return nil, 0, ErrNeedMore
	}
	n := i + len(strCRLFCRLF)
	if n > MaxHeadersSize {
		return nil, 0, newProtoError(ErrHeadersTooLarge, nil)
	}
	return buf[:n], n, nil
}

func scanHeaderFields(s *headerScanner, head *Head) error {
	for s.next() {
		if len(head.Headers) >= MaxHeadersNum {
			return newProtoError(ErrHeadersTooLarge, fmt.Errorf("too many headers"))
		}
		head.Headers = append(head.Headers, HeaderField{Key: s.key, Value: s.value})
	}
	if s.err != nil {
		return newProtoError(ErrMalformedHeaders, s.err)
	}
	return nil
}

// parseRequestLine splits "METHOD SP request-target SP HTTP-version".
func parseRequestLine(line []byte) (method, path, version []byte, err error) {
	sp1 := bytes.IndexByte(line, ' ')
	if sp1 < 0 {
		return nil, nil, nil, fmt.Errorf("malformed request line: %q", line)
	}
	rest := line[sp1+1:]
	sp2 := bytes.IndexByte(rest, ' ')
	if sp2 < 0 {
		return nil, nil, nil, fmt.Errorf("malformed request line: %q", line)
	}
	method = line[:sp1]
	path = rest[:sp2]
	version = rest[sp2+1:]
	if len(path) == 0 {
		return nil, nil, nil, fmt.Errorf("empty request target")
	}
	if !bytes.Equal(version, strHTTP10) && !bytes.Equal(version, strHTTP11) {
		return nil, nil, nil, fmt.Errorf("unsupported HTTP version: %q", version)
	}
	return method, path, version, nil
}

// parseStatusLine splits "HTTP-version SP status-code SP reason-phrase".
func parseStatusLine(line []byte) (version []byte, code int, reason []byte, err error) {
	sp1 := bytes.IndexByte(line, ' ')
	if sp1 < 0 {
		return nil, 0, nil, fmt.Errorf("malformed status line: %q", line)
	}
	version = line[:sp1]
	if !bytes.Equal(version, strHTTP10) && !bytes.Equal(version, strHTTP11) {
		return nil, 0, nil, fmt.Errorf("unsupported HTTP version: %q", version)
	}
	rest := line[sp1+1:]
	var codeBytes []byte
	if sp2 := bytes.IndexByte(rest, ' '); sp2 >= 0 {
		codeBytes = rest[:sp2]
		reason = rest[sp2+1:]
	} else {
		codeBytes = rest
	}
	code, perr := ParseUint(codeBytes)
	if perr != nil || code < 100 || code > 599 {
		return nil, 0, nil, fmt.Errorf("malformed status code: %q", codeBytes)
	}
	return version, code, reason, nil
}

// resolveRequestFraming implements RFC 7230 §3.3.3 for the server role: a
// request body is never EOF-delimited, Transfer-Encoding wins if both
// headers are present but that is itself an error signal worth rejecting,
// and Expect/Connection govern the response-side behavior.
func resolveRequestFraming(h *Head) error {
	te := h.Get(strTransferEncoding)
	clValue, hasCL, clDup, err := contentLength(h)
	if err != nil {
		return newProtoError(ErrMalformedHeaders, err)
	}
	if clDup {
		return newProtoError(ErrConflictingFraming, fmt.Errorf("duplicate Content-Length"))
	}

	switch {
	case te != nil:
		if !equalFold(lastCommaToken(te), strChunked) {
			return newProtoError(ErrConflictingFraming, fmt.Errorf("unsupported Transfer-Encoding: %q", te))
		}
		if hasCL {
			return newProtoError(ErrConflictingFraming, fmt.Errorf("both Content-Length and Transfer-Encoding present"))
		}
		h.BodyKind = BodyChunked
	case hasCL:
		if clValue > 0 {
			h.BodyKind = BodyFixed
			h.ContentLength = clValue
		} else {
			h.BodyKind = BodyNone
		}
	default:
		h.BodyKind = BodyNone
	}

	h.MustClose = connectionWantsClose(h)
	if exp := h.Get(strExpect); exp != nil && equalFold(trimSpace(exp), str100Continue) {
		h.HasExpectContinue = true
	}
	return nil
}

// resolveResponseFraming implements RFC 7230 §3.3.3 for the client role.
// noBody is true when the request method (HEAD) or status code (1xx, 204,
// 304) forces an empty body regardless of framing headers.
func resolveResponseFraming(h *Head, noBody bool) error {
	if noBody {
		h.BodyKind = BodyNone
		h.MustClose = connectionWantsClose(h)
		return nil
	}

	te := h.Get(strTransferEncoding)
	clValue, hasCL, clDup, err := contentLength(h)
	if err != nil {
		return newProtoError(ErrMalformedHeaders, err)
	}
	if clDup {
		return newProtoError(ErrConflictingFraming, fmt.Errorf("duplicate Content-Length"))
	}

	switch {
	case te != nil:
		if !equalFold(lastCommaToken(te), strChunked) {
			return newProtoError(ErrConflictingFraming, fmt.Errorf("unsupported Transfer-Encoding: %q", te))
		}
		h.BodyKind = BodyChunked
	case hasCL:
		h.BodyKind = BodyFixed
		h.ContentLength = clValue
	default:
		h.MustClose = true
		h.BodyKind = BodyEOF
	}

	if h.BodyKind != BodyEOF {
		h.MustClose = connectionWantsClose(h)
	}
	return nil
}

// contentLength returns the parsed Content-Length, whether it was present,
// and whether it was duplicated -- any second occurrence is a fatal
// duplicate regardless of whether its value agrees with the first.
func contentLength(h *Head) (value int, present, duplicate bool, err error) {
	for i := range h.Headers {
		if !equalFold(h.Headers[i].Key, strContentLength) {
			continue
		}
		v, perr := ParseUint(trimSpace(h.Headers[i].Value))
		if perr != nil {
			return 0, false, false, fmt.Errorf("malformed Content-Length: %q", h.Headers[i].Value)
		}
		// Any second Content-Length header is a fatal parse error per
		// spec §4.1 item 3, even when both occurrences agree -- a
		// request-smuggling proxy may only see one of them.
		if present {
			return 0, true, true, nil
		}
		value = v
		present = true
	}
	return value, present, false, nil
}

// connectionWantsClose reports whether the Connection header (or the
// absence of keep-alive on an HTTP/1.0 message) requires closing the
// connection after this message.
func connectionWantsClose(h *Head) bool {
	conn := h.Get(strConnection)
	if conn == nil {
		return h.IsHTTP10
	}
	tok := lastCommaToken(conn)
	if equalFold(tok, strClose) {
		return true
	}
	if h.IsHTTP10 {
		return !equalFold(tok, strKeepAlive)
	}
	return false
}

// headerScanner walks header lines within an already-cut block, handling
// obs-fold continuation lines the way RFC 7230 §3.2.4 tolerates them.
type headerScanner struct {
	b []byte
	r int

	key   []byte
	value []byte
	err   error
}

func (s *headerScanner) next() bool {
	if s.r >= len(s.b) {
		return false
	}
	if bytes.HasPrefix(s.b[s.r:], strCRLF) {
		s.r += 2
		return false
	}

	kv, err := s.readContinuedLineSlice()
	if len(kv) == 0 {
		s.err = err
		return false
	}

	k, v, ok := bytes.Cut(kv, strColon)
	if !ok {
		s.err = fmt.Errorf("malformed header line: %q", kv)
		return false
	}
	if !isValidHeaderKey(k) {
		s.err = fmt.Errorf("malformed header key: %q", k)
		return false
	}

	s.key = k
	s.value = trimSpace(v)
	if err != nil {
		s.err = err
		return false
	}
	return true
}

func (s *headerScanner) readLine() []byte {
	i := bytes.IndexByte(s.b[s.r:], '\n')
	if i < 0 {
		return nil
	}
	line := s.b[s.r : s.r+i+1]
	s.r += i + 1

	if line[len(line)-1] == '\n' {
		drop := 1
		if len(line) > 1 && line[len(line)-2] == '\r' {
			drop = 2
		}
		line = line[:len(line)-drop]
	}
	return line
}

func (s *headerScanner) readContinuedLineSlice() ([]byte, error) {
	line := s.readLine()
	if len(line) == 0 {
		return line, nil
	}
	if bytes.IndexByte(line, ':') < 0 {
		return nil, fmt.Errorf("malformed header: missing colon: %q", line)
	}

	if s.r < len(s.b) && (s.b[s.r] == ' ' || s.b[s.r] == '\t') {
		// Copy rather than append in place: line aliases s.b, and growing it
		// via append could silently overwrite not-yet-scanned header bytes.
		mline := append([]byte(nil), trimSpace(line)...)
		for s.skipSpace() {
			mline = append(mline, ' ')
			mline = append(mline, trimSpace(s.readLine())...)
		}
		return mline, nil
	}
	return trimSpace(line), nil
}

func (s *headerScanner) skipSpace() bool {
	skipped := false
	for s.r < len(s.b) && (s.b[s.r] == ' ' || s.b[s.r] == '\t') {
		s.r++
		skipped = true
	}
	return skipped
}

func isValidHeaderKey(k []byte) bool {
	if len(k) == 0 {
		return false
	}
	for _, c := range k {
		if c <= ' ' || c == ':' || c == 0x7f {
			return false
		}
	}
	return true
}
