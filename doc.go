/*
Package httpcore implements the per-connection HTTP/1.x wire-protocol
engine: header parsing, body framing (fixed-length, chunked, EOF-delimited),
outgoing message construction, and the keep-alive state machine that drives
both a server and a client role on top of a non-blocking byte stream.

httpcore itself never touches a socket. It is driven by an external event
loop (see the reactor package for a concrete goroutine-per-connection
adapter) through two calls on ServerConn and ClientConn -- Advance, after
bytes were read or flushed or the peer closed, and Timeout, when a deadline
passed -- and replies with an Intent describing the next state, the next
I/O expectation, and a deadline. Everything the engine
needs from the surrounding byte stream is expressed through the Stream
interface in stream.go, so the engine can be exercised in tests without a
real connection.

The package deliberately does not support request pipelining, HTTP
upgrades/CONNECT tunneling, or HTTP/0.9: one message is read and one
message is written per keep-alive turn, in order.
*/
package httpcore
