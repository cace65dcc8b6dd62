package httpcore

import "time"

// ExpectationKind names what the engine is waiting for before it can make
// further progress, per §6's I/O-expectation ABI. The reactor translates
// this into concrete epoll/kqueue readiness registration and buffer sizing
// decisions; the engine itself never touches a socket.
type ExpectationKind int

const (
	// ExpectBytes asks for at least N more bytes to be read into the
	// input buffer before the engine is invoked again.
	ExpectBytes ExpectationKind = iota
	// ExpectDelimiter asks the reactor to keep reading until Needle is
	// found at or after Start, or until Max bytes have accumulated.
	ExpectDelimiter
	// ExpectFlush asks the reactor to drain the output buffer down to
	// Lowwater bytes before resuming reads.
	ExpectFlush
	// ExpectSleep means the engine has nothing to do until a timer or an
	// external wakeup fires; no I/O is expected.
	ExpectSleep
)

// Expectation is the I/O half of an Intent: what bytes or drain condition
// the engine needs satisfied before its next invocation.
type Expectation struct {
	Kind ExpectationKind

	// ExpectBytes
	Bytes int

	// ExpectDelimiter
	Start  int
	Needle []byte
	Max    int

	// ExpectFlush
	Lowwater int
}

func BytesExpectation(n int) Expectation {
	return Expectation{Kind: ExpectBytes, Bytes: n}
}

func DelimiterExpectation(start int, needle []byte, max int) Expectation {
	return Expectation{Kind: ExpectDelimiter, Start: start, Needle: needle, Max: max}
}

func FlushExpectation(lowwater int) Expectation {
	return Expectation{Kind: ExpectFlush, Lowwater: lowwater}
}

func SleepExpectation() Expectation {
	return Expectation{Kind: ExpectSleep}
}

// ConnState names the coarse phase of the connection state machine, the
// "next state" half of an Intent.
type ConnState int

const (
	StateReadHead ConnState = iota
	StateReadBody
	StateWriteHead
	StateWriteBody
	StateIdle
	StateClose
	StateHijacked
)

func (s ConnState) String() string {
	switch s {
	case StateReadHead:
		return "read-head"
	case StateReadBody:
		return "read-body"
	case StateWriteHead:
		return "write-head"
	case StateWriteBody:
		return "write-body"
	case StateIdle:
		return "idle"
	case StateClose:
		return "close"
	case StateHijacked:
		return "hijacked"
	default:
		return "unknown"
	}
}

// Intent is the complete return value of every connection-state-machine
// step: the next state, what I/O it is waiting on, and the deadline by
// which that I/O must arrive. A zero Deadline means no timeout applies.
type Intent struct {
	State       ConnState
	Expect      Expectation
	Deadline    time.Time
	Err         error
}

func closeIntent(err error) Intent {
	return Intent{State: StateClose, Expect: SleepExpectation(), Err: err}
}
