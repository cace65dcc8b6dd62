package httpcore

// Server is the server-role handler contract. Each callback takes
// ownership of the handler value and returns the handler to use for the
// rest of the exchange -- usually itself, sometimes a different value
// implementing the same interface to model a state transition, or nil.
// Nil from OnHeaders or OnBody declines the request: the engine emits an
// error page unless the handler already started a response, and keeps the
// connection open only when OnHeaders declined a request without a body
// that did not ask to close. Nil from OnComplete closes the connection
// after the response. This mirrors a tagged-variant state machine encoded
// in the handler itself rather than in the engine.
type Server interface {
	// OnHeaders is called once a request's head has finished parsing. It
	// chooses how the body, if any, should be delivered and returns the
	// Server to receive the following callbacks. b is the response
	// builder for this exchange: a handler that wants to reject the
	// request outright (or otherwise answer before the body is read) may
	// write a status line into b right here, which also suppresses the
	// engine's own "100 Continue" interim response for an
	// Expect: 100-continue request -- per spec.md §4.4 step 5, the
	// interim response is only emitted when b is still unstarted once
	// OnHeaders returns.
	OnHeaders(ctx Context, head *Head, b *Builder) (RecvMode, Server)

	// OnBody delivers body data as it arrives, under RecvBuffered and
	// RecvProgressive alike, so it may be called several times for one
	// body. It is never called for a request with BodyNone.
	OnBody(ctx Context, data []byte) Server

	// OnComplete is called once the request (head and any body) has been
	// fully received. The handler writes a response into b and returns
	// the Server to use for the next request on this connection, or nil
	// to close the connection after this response is flushed.
	OnComplete(ctx Context, b *Builder) Server
}

// Client is the client-role handler contract, driven once per request:
// the engine asks it to write a request, then delivers the response back
// through the same ownership-transfer pattern as Server.
type Client interface {
	// WriteRequest is called when the connection is ready to send a new
	// request. The handler writes into b and chooses the RecvMode for
	// the response body.
	WriteRequest(ctx Context, b *Builder) (RecvMode, Client)

	// OnResponseHeaders is called once the response head has parsed. It
	// may revise the RecvMode chosen earlier (e.g. after inspecting
	// Content-Type) and returns the Client to receive following
	// callbacks.
	OnResponseHeaders(ctx Context, head *Head) (RecvMode, Client)

	// OnResponseBody delivers response body data as it arrives, like
	// Server.OnBody.
	OnResponseBody(ctx Context, data []byte) Client

	// OnResponseComplete is called once the response has been fully
	// received. The handler returns the Client to drive the next request
	// on this connection, or nil to let the connection go idle or close.
	OnResponseComplete(ctx Context) Client
}
