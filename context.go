package httpcore

// Scope is a key/value store shared across a connection's lifetime,
// letting a handler stash per-connection state (auth results, counters,
// parsed path parameters) between callback invocations. It is backed by
// userData's atomic slot reuse so repeated Set calls on the same key do
// not grow unbounded.
type Scope interface {
	// Set stores value under key, replacing any existing value.
	Set(key string, value interface{})
	// Get returns the value stored under key, or nil if absent.
	Get(key string) interface{}
	// Remove deletes the value stored under key, if any.
	Remove(key string)
}

// scope adapts the package's userData slot store to the Scope interface.
type scope struct {
	data userData
}

func newScope() *scope { return &scope{} }

func (s *scope) Set(key string, value interface{}) { s.data.Set(key, value) }
func (s *scope) Get(key string) interface{}        { return s.data.Get(key) }
func (s *scope) Remove(key string)                 { s.data.Remove(key) }
func (s *scope) reset()                            { s.data.Reset() }

// Context is what a handler callback receives alongside a parsed Head: the
// connection-lifetime Scope plus enough connection metadata to render a
// default error page or make routing decisions. EmitErrorPage is the hook
// §5 describes for turning an ErrorKind into a renderable response body;
// the errpage package supplies the default HTML implementation, a handler
// is free to replace it by wrapping Context.
type Context interface {
	Scope

	// Stream exposes the underlying connection's Stream, mainly so a
	// handler can call Socket() for logging or Hijack.
	Stream() Stream

	// EmitErrorPage renders a default body for a protocol-level error,
	// returning the status code and the rendered bytes. Called by the
	// server role when a request fails before a handler ever sees it
	// (e.g. ErrHeadersTooLarge), or when a handler declines.
	EmitErrorPage(kind ErrorKind) (status int, body []byte)
}

// connContext is the engine's concrete Context, one per connection.
type connContext struct {
	*scope
	stream       Stream
	errorPage    func(ErrorKind) (int, []byte)
}

func newConnContext(s Stream, errorPage func(ErrorKind) (int, []byte)) *connContext {
	if errorPage == nil {
		errorPage = defaultErrorPage
	}
	return &connContext{scope: newScope(), stream: s, errorPage: errorPage}
}

func (c *connContext) Stream() Stream { return c.stream }

func (c *connContext) EmitErrorPage(kind ErrorKind) (int, []byte) {
	return c.errorPage(kind)
}

// defaultErrorPage renders a minimal plain-text body naming the error.
// The errpage package provides a richer HTML-escaping renderer; this
// fallback keeps connContext usable without importing it.
func defaultErrorPage(kind ErrorKind) (int, []byte) {
	status := StatusForError(kind)
	body := append([]byte(nil), kind.String()...)
	return status, body
}
