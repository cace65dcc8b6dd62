// Command echoclient issues a single GET request against an echoserver
// instance and prints the response body, demonstrating the client-role
// handler contract end to end.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"

	"github.com/httpcore/httpcore"
	"github.com/httpcore/httpcore/reactor"
)

var (
	addr = flag.String("addr", "127.0.0.1:8080", "address to connect to")
	path = flag.String("path", "/", "request path")
)

// oneShotClient implements httpcore.Client for a single GET request, then
// declines to start another one.
type oneShotClient struct {
	path string
	body []byte
	done bool
}

func (c *oneShotClient) WriteRequest(ctx httpcore.Context, b *httpcore.Builder) (httpcore.RecvMode, httpcore.Client) {
	_ = b.WriteRequestLine([]byte("GET"), []byte(c.path), []byte("HTTP/1.1"))
	_ = b.WriteHeader([]byte("Host"), []byte(*addr))
	_ = b.FinishHeaders()
	return httpcore.Buffered(1 << 20), c
}

func (c *oneShotClient) OnResponseHeaders(ctx httpcore.Context, head *httpcore.Head) (httpcore.RecvMode, httpcore.Client) {
	return httpcore.Buffered(1 << 20), c
}

func (c *oneShotClient) OnResponseBody(ctx httpcore.Context, data []byte) httpcore.Client {
	c.body = append(c.body, data...)
	return c
}

func (c *oneShotClient) OnResponseComplete(ctx httpcore.Context) httpcore.Client {
	c.done = true
	return nil
}

func main() {
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	client := &oneShotClient{path: *path}
	if err := reactor.ServeClientConn(conn, client); err != nil {
		log.Fatal(err)
	}
	fmt.Print(string(client.body))
}
