package reactor

import (
	"errors"
	"log"
	"net"
	"os"
	"time"

	"github.com/httpcore/httpcore"
	"github.com/httpcore/httpcore/tcplisten"
)

var defaultLogger Logger = log.Default()

// byteRing is the simplest possible httpcore.RingBuffer: a growable slice
// with a read cursor, acceptable for one connection's buffers since they
// are bounded by MaxHeadersSize/body limits rather than needing a true
// circular layout.
type byteRing struct {
	buf []byte
	off int
}

func (r *byteRing) Bytes() []byte { return r.buf[r.off:] }

func (r *byteRing) Consume(n int) {
	r.off += n
	if r.off == len(r.buf) {
		r.buf = r.buf[:0]
		r.off = 0
	} else if r.off > 4096 && r.off > len(r.buf)/2 {
		r.buf = append(r.buf[:0], r.buf[r.off:]...)
		r.off = 0
	}
}

func (r *byteRing) Append(p []byte) { r.buf = append(r.buf, p...) }

func (r *byteRing) Len() int { return len(r.buf) - r.off }

// connStream adapts a net.Conn to httpcore.Stream.
type connStream struct {
	conn  net.Conn
	input byteRing
	out   byteRing
}

func (s *connStream) Input() httpcore.RingBuffer  { return &s.input }
func (s *connStream) Output() httpcore.RingBuffer { return &s.out }
func (s *connStream) Socket() interface{}         { return s.conn }

// readChunkSize is how many bytes to ask the kernel for on each Read,
// independent of what the engine's Expectation asked for -- the engine
// only needs "at least this many new bytes", not an exact count.
const readChunkSize = 4096

// ServeServerConn drives handler over conn until the connection closes,
// using httpcore.ServerConn to do all protocol-level work. It is the
// net.Conn-facing counterpart of httpcore.NewServerConn.
func ServeServerConn(conn net.Conn, handler httpcore.Server, errorPage func(httpcore.ErrorKind) (int, []byte)) error {
	s := &connStream{conn: conn}
	sc := httpcore.NewServerConn(s, handler, errorPage)

	closed := false
	readBuf := make([]byte, readChunkSize)

	for {
		intent := sc.Advance(closed)

		if len(s.out.Bytes()) > 0 {
			if _, err := conn.Write(s.out.Bytes()); err != nil {
				return err
			}
			s.out.Consume(s.out.Len())
		}

		switch intent.State {
		case httpcore.StateClose, httpcore.StateHijacked:
			return intent.Err
		}

		if !intent.Deadline.IsZero() {
			_ = conn.SetReadDeadline(intent.Deadline)
		} else {
			_ = conn.SetReadDeadline(time.Time{})
		}

		if intent.Expect.Kind == httpcore.ExpectSleep {
			continue
		}

		n, err := conn.Read(readBuf)
		if n > 0 {
			s.input.Append(readBuf[:n])
		}
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				intent := sc.Timeout()
				if len(s.out.Bytes()) > 0 {
					if _, werr := conn.Write(s.out.Bytes()); werr != nil {
						return werr
					}
					s.out.Consume(s.out.Len())
				}
				return intent.Err
			}
			closed = true
			if n == 0 {
				// Let one last Advance observe EOF against whatever is
				// still buffered; any output it queues is not written.
				sc.Advance(true)
				return nil
			}
		}
	}
}

// ServeClientConn is ServeServerConn's client-role counterpart, driving
// an httpcore.ClientConn over conn.
func ServeClientConn(conn net.Conn, handler httpcore.Client) error {
	s := &connStream{conn: conn}
	cc := httpcore.NewClientConn(s, handler)

	closed := false
	readBuf := make([]byte, readChunkSize)

	for {
		intent := cc.Advance(closed)

		if len(s.out.Bytes()) > 0 {
			if _, err := conn.Write(s.out.Bytes()); err != nil {
				return err
			}
			s.out.Consume(s.out.Len())
		}

		switch intent.State {
		case httpcore.StateClose, httpcore.StateHijacked:
			return intent.Err
		case httpcore.StateIdle:
			return nil
		}

		if !intent.Deadline.IsZero() {
			_ = conn.SetReadDeadline(intent.Deadline)
		} else {
			_ = conn.SetReadDeadline(time.Time{})
		}

		if intent.Expect.Kind == httpcore.ExpectSleep {
			continue
		}

		n, err := conn.Read(readBuf)
		if n > 0 {
			s.input.Append(readBuf[:n])
		}
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				intent := cc.Timeout()
				if len(s.out.Bytes()) > 0 {
					if _, werr := conn.Write(s.out.Bytes()); werr != nil {
						return werr
					}
					s.out.Consume(s.out.Len())
				}
				return intent.Err
			}
			closed = true
			if n == 0 {
				cc.Advance(true)
				return nil
			}
		}
	}
}

// ListenAndServe accepts connections on addr (optionally with
// SO_REUSEPORT via tcplisten) and serves each with a fresh handler from
// newHandler, using the worker pool for goroutine reuse.
func ListenAndServe(addr string, reusePort bool, maxWorkers int, newHandler func() httpcore.Server, errorPage func(httpcore.ErrorKind) (int, []byte)) error {
	cfg := tcplisten.Config{ReusePort: reusePort}
	ln, err := cfg.NewListener("tcp", addr)
	if err != nil {
		return err
	}
	defer ln.Close()

	wp := &workerPool{
		WorkerFunc: func(c net.Conn) error {
			return ServeServerConn(c, newHandler(), errorPage)
		},
		MaxWorkersCount: maxWorkers,
		Logger:          defaultLogger,
		connState:       func(net.Conn, ConnState) {},
	}
	wp.Start()
	defer wp.Stop()

	for {
		c, err := ln.Accept()
		if err != nil {
			return err
		}
		if !wp.Serve(c) {
			c.Close()
		}
	}
}
