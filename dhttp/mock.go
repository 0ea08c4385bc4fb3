package dhttp

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/pkg/errors"

	"github.com/datawire/dworld/derror"
	"github.com/datawire/dworld/dlog"
)

// An ErrorCode identifies a simulated transport failure.
type ErrorCode int

// Transport failures that a mock can simulate.
const (
	BadServerResponse ErrorCode = iota + 1
	TimedOut
	CannotFindHost
	CannotConnectToHost
	NotConnectedToInternet
	Cancelled
)

var errorCodeNames = map[ErrorCode]string{ //nolint:gochecknoglobals // read-only table
	BadServerResponse:      "bad server response",
	TimedOut:               "timed out",
	CannotFindHost:         "cannot find host",
	CannotConnectToHost:    "cannot connect to host",
	NotConnectedToInternet: "not connected to internet",
	Cancelled:              "cancelled",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("error code %d", int(c))
}

// Error is a simulated transport failure.
type Error struct {
	Code ErrorCode
}

func (e *Error) Error() string {
	return "dhttp: " + e.Code.String()
}

// Timeout reports whether the failure is a timeout, like net.Error.
func (e *Error) Timeout() bool {
	return e.Code == TimedOut
}

// A Handler answers a request that a MockTransport has intercepted.
type Handler func(*http.Request) (*http.Response, error)

// DefaultHandler is what a MockTransport with no Handler answers with: a BadServerResponse
// failure.
func DefaultHandler(*http.Request) (*http.Response, error) {
	return Failure(BadServerResponse)
}

// MockTransport is an http.RoundTripper that never touches the network.  Every request is
// recorded, logged at debug level to the request's Context, and answered by Handler (or by
// DefaultHandler if Handler is nil).  A Handler that panics fails the request instead of crashing
// the test.
type MockTransport struct {
	mu       sync.Mutex
	Handler  Handler
	requests []*http.Request
}

var _ http.RoundTripper = (*MockTransport)(nil)

// SetHandler replaces Handler; safe to call while requests are in flight.
func (m *MockTransport) SetHandler(h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Handler = h
}

// Requests returns every request seen so far, oldest first.
func (m *MockTransport) Requests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*http.Request(nil), m.requests...)
}

// RoundTrip implements http.RoundTripper.
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	handler := m.Handler
	m.mu.Unlock()

	if handler == nil {
		handler = DefaultHandler
	}
	dlog.Debugf(req.Context(), "dhttp: mock %s %s", req.Method, req.URL)
	return serve(handler, req)
}

func serve(handler Handler, req *http.Request) (resp *http.Response, err error) {
	defer func() {
		if perr := derror.PanicToError(recover()); perr != nil {
			dlog.Errorf(req.Context(), "dhttp: mock handler for %s %s: %+v", req.Method, req.URL, perr)
			resp, err = nil, perr
		}
	}()

	resp, err = handler(req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errors.Errorf("dhttp: mock handler for %s %s returned neither a response nor an error",
			req.Method, req.URL)
	}
	if resp.Request == nil {
		resp.Request = req
	}
	return resp, nil
}

// MockSession returns a producer of clients that send everything through transport.
func MockSession(transport *MockTransport) func() *http.Client {
	client := &http.Client{Transport: transport}
	return func() *http.Client { return client }
}

// MockRequester answers every request with handler (or DefaultHandler if handler is nil), without
// a client in between.
func MockRequester(handler Handler) Requester {
	if handler == nil {
		handler = DefaultHandler
	}
	return func(req *http.Request) (*http.Response, error) {
		return serve(handler, req)
	}
}

// Custom returns a canned response with the given status code, body, and headers (which may be
// nil).  It is meant to be returned from a Handler.
func Custom(req *http.Request, statusCode int, body []byte, header http.Header) (*http.Response, error) {
	if header == nil {
		header = make(http.Header)
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode)),
		StatusCode:    statusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}

// Successful is a canned "200 OK".
func Successful(req *http.Request, body []byte, header http.Header) (*http.Response, error) {
	return Custom(req, http.StatusOK, body, header)
}

// HTTP403 is a canned "403 Forbidden".
func HTTP403(req *http.Request, body []byte, header http.Header) (*http.Response, error) {
	return Custom(req, http.StatusForbidden, body, header)
}

// HTTP404 is a canned "404 Not Found".
func HTTP404(req *http.Request, body []byte, header http.Header) (*http.Response, error) {
	return Custom(req, http.StatusNotFound, body, header)
}

// HTTP500 is a canned "500 Internal Server Error".
func HTTP500(req *http.Request, body []byte, header http.Header) (*http.Response, error) {
	return Custom(req, http.StatusInternalServerError, body, header)
}

// Failure is a canned transport failure.
func Failure(code ErrorCode) (*http.Response, error) {
	return nil, &Error{Code: code}
}
