package httpcore

// RingBuffer is the minimal contract the engine needs from a connection's
// input or output byte buffer. It performs no I/O itself; the reactor
// package backs it with a growable slice plus a read offset, and tests can
// back it with a plain slice.
type RingBuffer interface {
	// Bytes returns the currently buffered, unconsumed bytes. The slice
	// is only valid until the next call to Consume or Append.
	Bytes() []byte

	// Consume drops the first n bytes of Bytes(), as the engine finishes
	// using them.
	Consume(n int)

	// Append adds p to the end of the buffer, growing it as needed. Used
	// by in-memory test streams and by the reactor after a socket read.
	Append(p []byte)

	// Len returns len(Bytes()).
	Len() int
}

// Stream is everything the engine asks of the non-blocking byte stream
// underneath a connection. It is defined here so the engine can be
// exercised in tests without a real socket; the reactor package adapts it
// to a net.Conn plus a pair of RingBuffers. Implementing a reactor loop,
// a listener, or TLS is out of this package's scope -- Stream only needs
// to name the shape those layers must present.
type Stream interface {
	// Input returns the buffer of bytes already read from the peer but
	// not yet consumed by the engine.
	Input() RingBuffer

	// Output returns the buffer of bytes the engine has queued to be
	// written to the peer but not yet flushed.
	Output() RingBuffer

	// Socket returns an opaque handle to the underlying connection
	// (typically a net.Conn), for callbacks that need to inspect peer
	// addresses or perform a protocol upgrade/hijack. The engine itself
	// never calls methods on it.
	Socket() interface{}
}
