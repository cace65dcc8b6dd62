package httpcore

var (
	defaultServerName  = []byte("httpcore")
	defaultContentType = []byte("text/plain; charset=utf-8")
)

var (
	strCRLF         = []byte("\r\n")
	strCRLFCRLF     = []byte("\r\n\r\n")
	strColon        = []byte(":")
	strColonSpace   = []byte(": ")
	strHTTP10       = []byte("HTTP/1.0")
	strHTTP11       = []byte("HTTP/1.1")

	strGet  = []byte("GET")
	strHead = []byte("HEAD")
	strPost = []byte("POST")

	strConnection       = []byte("Connection")
	strContentLength    = []byte("Content-Length")
	strContentType      = []byte("Content-Type")
	strDate             = []byte("Date")
	strHost             = []byte("Host")
	strServer           = []byte("Server")
	strTransferEncoding = []byte("Transfer-Encoding")
	strUserAgent        = []byte("User-Agent")
	strExpect           = []byte("Expect")

	strClose        = []byte("close")
	strKeepAlive    = []byte("keep-alive")
	strChunked      = []byte("chunked")
	str100Continue  = []byte("100-continue")
)
