package logging

import (
	"bytes"
	"net/http"
	"testing"
	"time"
)

const logOutput = `127.0.0.1 - - [10/Oct/2000:13:55:36 -0700] "GET /apache_pb.gif?size=2 HTTP/1.1" 418 2326 "" "" 42 127.0.0.1 flow-42`

func testRequest() *http.Request {
	r, _ := http.NewRequest("GET", "http://frank@127.0.0.1", nil)
	r.RequestURI = "/apache_pb.gif?size=2"
	r.RemoteAddr = "127.0.0.1"
	return r
}

func testDate() time.Time {
	l := time.FixedZone("foo", -7*3600)
	return time.Date(2000, 10, 10, 13, 55, 36, 0, l)
}

func testAccessEntry() *AccessEntry {
	return &AccessEntry{
		Request:      testRequest(),
		ResponseSize: 2326,
		StatusCode:   http.StatusTeapot,
		RequestTime:  testDate(),
		Duration:     42 * time.Millisecond,
		FlowId:       "flow-42",
	}
}

func testAccessLog(t *testing.T, o Options, entry *AccessEntry, expectedOutput string) {
	var buf bytes.Buffer
	o.AccessLogOutput = &buf
	Init(o)
	LogAccess(entry)
	got := buf.String()
	if got != "" {
		got = got[:len(got)-1]
	}

	if got != expectedOutput {
		t.Error("got wrong access log.")
		t.Log("expected:", expectedOutput)
		t.Log("got     :", got)
	}
}

func TestAccessLogFormatFull(t *testing.T) {
	testAccessLog(t, Options{}, testAccessEntry(), logOutput)
}

func TestAccessLogIgnoresEmptyEntry(t *testing.T) {
	testAccessLog(t, Options{}, nil, "")
}

func TestNoPanicOnMissingRequest(t *testing.T) {
	entry := testAccessEntry()
	entry.Request = nil
	entry.FlowId = ""
	testAccessLog(t, Options{}, entry, `- - - [10/Oct/2000:13:55:36 -0700] "  " 418 2326 "" "" 42  -`)
}

func TestUseXForwardedForHost(t *testing.T) {
	entry := testAccessEntry()
	entry.Request.Header.Set("X-Forwarded-For", "192.168.3.3")
	testAccessLog(t, Options{}, entry, `192.168.3.3 - - [10/Oct/2000:13:55:36 -0700] "GET /apache_pb.gif?size=2 HTTP/1.1" 418 2326 "" "" 42 127.0.0.1 flow-42`)
}

func TestStripQuery(t *testing.T) {
	testAccessLog(
		t,
		Options{AccessLogStripQuery: true},
		testAccessEntry(),
		`127.0.0.1 - - [10/Oct/2000:13:55:36 -0700] "GET /apache_pb.gif HTTP/1.1" 418 2326 "" "" 42 127.0.0.1 flow-42`,
	)
}

func TestAccessLogDisabled(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{AccessLogOutput: &buf, AccessLogDisabled: true})
	LogAccess(testAccessEntry())
	if buf.Len() != 0 {
		t.Error("access log written while disabled")
	}
}
