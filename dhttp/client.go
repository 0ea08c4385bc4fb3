// Package dhttp provides the HTTP session that a World hands out: a real *http.Client, or one whose
// transport never touches the network and instead answers from a handler that a test supplies.
package dhttp

import (
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/http2"
)

// ClientConfig configures NewClient.  The zero value is usable: no overall timeout, HTTP/2
// enabled.
type ClientConfig struct {
	// Timeout limits the whole exchange, including reading the response body.  Zero means no
	// limit.
	Timeout time.Duration

	// DisableHTTP2 restricts the client to HTTP/1.1.
	DisableHTTP2 bool
}

// NewClient returns an *http.Client with its own connection pool.
func NewClient(cfg ClientConfig) (*http.Client, error) {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if !cfg.DisableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			return nil, errors.Wrap(err, "dhttp: configure HTTP/2")
		}
	}
	return &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}, nil
}

// LiveSession builds a client from cfg, and returns a producer that hands out that one client, so
// that every caller shares its connection pool.
func LiveSession(cfg ClientConfig) (func() *http.Client, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return func() *http.Client { return client }, nil
}

// A Requester performs a single HTTP exchange.  It is the shape that code which just needs
// "send this, get that" should depend on.
type Requester func(*http.Request) (*http.Response, error)

// LiveRequester sends each request with whatever client session returns at the time.
func LiveRequester(session func() *http.Client) Requester {
	return func(req *http.Request) (*http.Response, error) {
		return session().Do(req)
	}
}
