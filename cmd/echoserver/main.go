// Command echoserver answers every request with a plain-text body that
// echoes the request method and path followed by any request body,
// demonstrating the server-role handler contract end to end.
package main

import (
	"flag"
	"log"

	"github.com/httpcore/httpcore"
	"github.com/httpcore/httpcore/errpage"
	"github.com/httpcore/httpcore/reactor"
)

var addr = flag.String("addr", ":8080", "address to listen on")

// echoHandler implements httpcore.Server. It accumulates the echo text in
// body; OnHeaders and OnBody return the same receiver, and OnComplete
// returns a fresh echoHandler for the next request.
type echoHandler struct {
	body []byte
}

func (h *echoHandler) OnHeaders(ctx httpcore.Context, head *httpcore.Head, b *httpcore.Builder) (httpcore.RecvMode, httpcore.Server) {
	h.body = append(h.body[:0], "method="...)
	h.body = append(h.body, head.Method...)
	h.body = append(h.body, " path="...)
	h.body = append(h.body, head.Path...)
	h.body = append(h.body, '\n')
	return httpcore.Buffered(1 << 20), h
}

func (h *echoHandler) OnBody(ctx httpcore.Context, data []byte) httpcore.Server {
	h.body = append(h.body, data...)
	return h
}

func (h *echoHandler) OnComplete(ctx httpcore.Context, b *httpcore.Builder) httpcore.Server {
	_ = b.WriteStatusLine([]byte("HTTP/1.1"), httpcore.StatusOK, []byte("OK"))
	_ = b.WriteDefaultHeaders(nil)
	_ = b.WriteHeader([]byte("Content-Type"), []byte("text/plain; charset=utf-8"))
	_ = b.SetContentLength(len(h.body))
	_ = b.FinishHeaders()
	_ = b.WriteBody(h.body)
	return &echoHandler{}
}

func main() {
	flag.Parse()
	log.Printf("listening on %s", *addr)
	err := reactor.ListenAndServe(*addr, false, 256, func() httpcore.Server {
		return &echoHandler{}
	}, errpage.Render)
	if err != nil {
		log.Fatal(err)
	}
}
