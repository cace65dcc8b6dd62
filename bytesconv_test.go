package httpcore

import (
	"bytes"
	"testing"
	"time"
)

func TestAppendHTTPDate(t *testing.T) {
	d := time.Date(2009, time.November, 10, 23, 0, 0, 0, time.UTC)
	s := string(AppendHTTPDate(nil, d))
	expectedS := "Tue, 10 Nov 2009 23:00:00 GMT"
	if s != expectedS {
		t.Fatalf("unexpected date %q. Expecting %q", s, expectedS)
	}

	b := []byte("prefix")
	s = string(AppendHTTPDate(b, d))
	if s[:len(b)] != string(b) {
		t.Fatalf("unexpected prefix %q. Expecting %q", s[:len(b)], b)
	}
	s = s[len(b):]
	if s != expectedS {
		t.Fatalf("unexpected date %q. Expecting %q", s, expectedS)
	}
}

func TestParseHTTPDateRoundTrip(t *testing.T) {
	d := time.Date(2021, time.March, 5, 1, 2, 3, 0, time.UTC)
	b := AppendHTTPDate(nil, d)
	got, err := ParseHTTPDate(b)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !got.Equal(d) {
		t.Fatalf("got %s, want %s", got, d)
	}
}

func TestParseUintSuccess(t *testing.T) {
	testParseUintSuccess(t, "0", 0)
	testParseUintSuccess(t, "123", 123)
	testParseUintSuccess(t, "123456789012345678", 123456789012345678)
}

func TestParseUintError(t *testing.T) {
	testParseUintError(t, "")
	testParseUintError(t, "-123")
	testParseUintError(t, "foobar234")
	testParseUintError(t, "123w")
	testParseUintError(t, "1234.545")
	testParseUintError(t, "12345678901234567890")
}

func testParseUintError(t *testing.T, s string) {
	n, err := ParseUint([]byte(s))
	if err == nil {
		t.Fatalf("Expecting error when parsing %q. obtained %d", s, n)
	}
	if n >= 0 {
		t.Fatalf("Unexpected n=%d when parsing %q. Expected negative num", n, s)
	}
}

func testParseUintSuccess(t *testing.T, s string, expectedN int) {
	n, err := ParseUint([]byte(s))
	if err != nil {
		t.Fatalf("Unexpected error when parsing %q: %s", s, err)
	}
	if n != expectedN {
		t.Fatalf("Unexpected value %d. Expected %d. num=%q", n, expectedN, s)
	}
}

func TestParseHexIntSuccess(t *testing.T) {
	cases := map[string]int{
		"0":    0,
		"a":    10,
		"1E":   30,
		"ffff": 0xffff,
	}
	for s, want := range cases {
		got, err := parseHexInt([]byte(s))
		if err != nil {
			t.Fatalf("parseHexInt(%q): unexpected error %s", s, err)
		}
		if got != want {
			t.Fatalf("parseHexInt(%q) = %d, want %d", s, got, want)
		}
	}
}

func TestParseHexIntError(t *testing.T) {
	for _, s := range []string{"", "gg", "1.2"} {
		if _, err := parseHexInt([]byte(s)); err == nil {
			t.Fatalf("parseHexInt(%q): expected error", s)
		}
	}
}

func TestWriteHexInt(t *testing.T) {
	cases := map[int]string{
		0:      "0",
		10:     "a",
		0xffff: "ffff",
	}
	for n, want := range cases {
		var buf bytes.Buffer
		if err := writeHexInt(&buf, n); err != nil {
			t.Fatalf("writeHexInt(%d): unexpected error %s", n, err)
		}
		if buf.String() != want {
			t.Fatalf("writeHexInt(%d) = %q, want %q", n, buf.String(), want)
		}
	}
}

func TestEqualFold(t *testing.T) {
	if !equalFold([]byte("Content-Length"), []byte("content-length")) {
		t.Fatal("expected case-insensitive match")
	}
	if equalFold([]byte("Content-Length"), []byte("content-len")) {
		t.Fatal("expected mismatch on different length")
	}
}

func TestLastCommaToken(t *testing.T) {
	cases := map[string]string{
		"chunked":             "chunked",
		"gzip, chunked":       "chunked",
		"gzip,   chunked   ":  "chunked",
		" gzip , identity ":   "identity",
	}
	for s, want := range cases {
		if got := string(lastCommaToken([]byte(s))); got != want {
			t.Fatalf("lastCommaToken(%q) = %q, want %q", s, got, want)
		}
	}
}
