package httpcore

import "fmt"

// bodyReaderKind distinguishes the six concrete tracking strategies a
// BodyProgress can hold, mirroring §4.3's BufferFixed/BufferEof/
// BufferChunked/ProgressiveFixed/ProgressiveEof/ProgressiveChunked union.
type bodyReaderKind int

const (
	brBufferFixed bodyReaderKind = iota
	brBufferEOF
	brBufferChunked
	brProgressiveFixed
	brProgressiveEOF
	brProgressiveChunked
)

// chunkSubstate tracks where a chunked decode sits between chunk-size
// lines, chunk data, the CRLF after chunk data, and the trailing
// zero-chunk's own terminator.
type chunkSubstate int

const (
	chunkExpectSize chunkSubstate = iota
	chunkExpectData
	chunkExpectDataCRLF
	chunkExpectTrailerEnd
	chunkDone
)

// BodyProgress tracks how much of a message body has been consumed from
// the connection's input and decides, on each call to Advance, how many
// more bytes the engine needs before it can hand more body to the handler
// or conclude the message. It never retains a reference to the input
// buffer across calls; Advance takes the currently available slice fresh
// each time.
type BodyProgress struct {
	kind RecvModeKind
	body bodyReaderKind

	// remaining counts bytes left for a fixed-length body, or 0 once an
	// EOF/chunked body is exhausted.
	remaining int

	minChunk int

	// bufLimit bounds the total body bytes a BufferChunked tracker will
	// accumulate; bufOff counts how many it has delivered so far. Both are
	// zero (and unchecked) for progressive/EOF/fixed trackers.
	bufLimit int
	bufOff   int

	chunkState   chunkSubstate
	chunkLeft    int // bytes left in the current chunk's data
	chunkHeadBuf []byte

	done bool
}

// NewBodyProgress builds a tracker for a message whose framing is kind and
// whose handler asked for mode.
func NewBodyProgress(kind BodyKind, contentLength int, mode RecvMode) (*BodyProgress, error) {
	bp := &BodyProgress{kind: mode.Kind, minChunk: mode.MinChunk}
	progressive := mode.Kind == RecvProgressive

	switch kind {
	case BodyNone:
		bp.done = true
	case BodyFixed:
		bp.remaining = contentLength
		if progressive {
			bp.body = brProgressiveFixed
		} else {
			bp.body = brBufferFixed
			if mode.MaxBytes > 0 && contentLength >= mode.MaxBytes {
				return nil, newProtoError(ErrBodyTooLarge, nil)
			}
		}
		bp.done = contentLength == 0
	case BodyEOF:
		if progressive {
			bp.body = brProgressiveEOF
		} else {
			bp.body = brBufferEOF
		}
	case BodyChunked:
		if progressive {
			bp.body = brProgressiveChunked
		} else {
			bp.body = brBufferChunked
			bp.bufLimit = mode.MaxBytes
		}
		bp.chunkState = chunkExpectSize
	default:
		return nil, fmt.Errorf("httpcore: BodyProgress does not support %s", kind)
	}
	return bp, nil
}

// Done reports whether the body has been fully consumed.
func (bp *BodyProgress) Done() bool { return bp.done }

// Advance consumes as much of buf as forms complete body data (respecting
// chunk boundaries) and returns the slice to deliver to the handler, the
// number of bytes consumed from buf (which may include chunk framing bytes
// the handler never sees), and any framing error; Done reports afterwards
// whether the body is now complete. Bytes are delivered as soon as they are
// available, in both buffered and progressive mode. closed
// reports that the peer has closed the stream with no more bytes coming,
// which only BodyEOF tracking treats as a legitimate end of body.
func (bp *BodyProgress) Advance(buf []byte, closed bool) (deliver []byte, consumed int, err error) {
	if bp.done {
		return nil, 0, nil
	}

	switch bp.body {
	case brBufferFixed, brProgressiveFixed:
		return bp.advanceFixed(buf)
	case brBufferEOF, brProgressiveEOF:
		return bp.advanceEOF(buf, closed)
	case brBufferChunked, brProgressiveChunked:
		return bp.advanceChunked(buf)
	}
	return nil, 0, fmt.Errorf("httpcore: unreachable body kind")
}

func (bp *BodyProgress) advanceFixed(buf []byte) ([]byte, int, error) {
	n := bp.remaining
	if n > len(buf) {
		n = len(buf)
	}
	bp.remaining -= n
	if bp.remaining == 0 {
		bp.done = true
	}
	if n == 0 {
		return nil, 0, nil
	}
	return buf[:n], n, nil
}

func (bp *BodyProgress) advanceEOF(buf []byte, closed bool) ([]byte, int, error) {
	if len(buf) == 0 {
		if closed {
			bp.done = true
		}
		return nil, 0, nil
	}
	if closed {
		bp.done = true
	}
	return buf, len(buf), nil
}

// advanceChunked decodes as many complete chunk-size/chunk-data/CRLF
// groups as buf contains, returning the concatenated data bytes as a
// single slice when possible. When a chunk's data spans more than one
// Advance call the data already seen was already delivered and consumed,
// so chunkLeft tracks what remains of the current chunk across calls.
func (bp *BodyProgress) advanceChunked(buf []byte) ([]byte, int, error) {
	total := 0
	var out []byte

	for total < len(buf) {
		rest := buf[total:]
		switch bp.chunkState {
		case chunkExpectSize:
			line, n, ok := cutCRLFLine(rest, MaxChunkHead)
			if !ok {
				if n < 0 {
					return out, total, newProtoError(ErrBadChunkSize, fmt.Errorf("chunk header too long"))
				}
				return out, total, nil // need more
			}
			size, perr := parseHexInt(stripChunkExtension(line))
			if perr != nil {
				return out, total, newProtoError(ErrBadChunkSize, perr)
			}
			if bp.body == brBufferChunked && bp.bufLimit > 0 && bp.bufOff+size > bp.bufLimit {
				return out, total, newProtoError(ErrChunkTooLarge, nil)
			}
			total += n
			if size == 0 {
				bp.chunkState = chunkExpectTrailerEnd
			} else {
				bp.chunkLeft = size
				bp.chunkState = chunkExpectData
				bp.bufOff += size
			}
		case chunkExpectData:
			avail := len(buf) - total
			take := bp.chunkLeft
			if take > avail {
				take = avail
			}
			if take > 0 {
				out = append(out, buf[total:total+take]...)
				total += take
				bp.chunkLeft -= take
			}
			if bp.chunkLeft > 0 {
				return out, total, nil // need more
			}
			bp.chunkState = chunkExpectDataCRLF
		case chunkExpectDataCRLF:
			if len(rest) < 2 {
				return out, total, nil
			}
			if rest[0] != '\r' || rest[1] != '\n' {
				return out, total, newProtoError(ErrBadChunkSize, fmt.Errorf("missing chunk CRLF"))
			}
			total += 2
			bp.chunkState = chunkExpectSize
		case chunkExpectTrailerEnd:
			// No trailers are supported: a single CRLF must terminate the
			// message immediately after the zero chunk.
			if len(rest) < 2 {
				return out, total, nil
			}
			if rest[0] != '\r' || rest[1] != '\n' {
				return out, total, newProtoError(ErrMalformedHeaders, fmt.Errorf("trailers are not supported"))
			}
			total += 2
			bp.chunkState = chunkDone
			bp.done = true
			return out, total, nil
		case chunkDone:
			return out, total, nil
		}
	}
	return out, total, nil
}

// cutCRLFLine finds a CRLF-terminated line within the first limit bytes of
// b. ok is false with n>=0 meaning "need more data" and n<0 meaning the
// line exceeded limit without terminating.
func cutCRLFLine(b []byte, limit int) (line []byte, n int, ok bool) {
	search := b
	if len(search) > limit {
		search = search[:limit]
	}
	for i := 1; i < len(search); i++ {
		if search[i] == '\n' && search[i-1] == '\r' {
			return b[:i-1], i + 1, true
		}
	}
	if len(b) >= limit {
		return nil, -1, false
	}
	return nil, 0, false
}

func stripChunkExtension(line []byte) []byte {
	for i, c := range line {
		if c == ';' {
			return trimSpace(line[:i])
		}
	}
	return trimSpace(line)
}
