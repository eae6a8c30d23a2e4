// Package httputil provides the shared outbound HTTP client used for audit
// webhook delivery, plus the semaphore bounding fire-and-forget dispatch.
package httputil

import (
	"io"
	"net"
	"net/http"
	"sync"
	"time"
)

// maxDrainSize bounds how much of a response body is consumed when draining
// for connection reuse.
const maxDrainSize = 1 * 1024 * 1024

// Shared transport with pooled connections. Audit delivery is frequent and
// small; reusing TCP connections matters more than per-call tuning.
var sharedTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ForceAttemptHTTP2:     true,
	MaxIdleConns:          64,
	MaxIdleConnsPerHost:   8,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
}

var (
	fastClient   *http.Client
	mediumClient *http.Client
	clientOnce   sync.Once
)

func initClients() {
	fastClient = &http.Client{Timeout: 5 * time.Second, Transport: sharedTransport}
	mediumClient = &http.Client{Timeout: 15 * time.Second, Transport: sharedTransport}
}

// FastClient returns the shared 5s-timeout client (health probes).
func FastClient() *http.Client {
	clientOnce.Do(initClients)
	return fastClient
}

// MediumClient returns the shared 15s-timeout client (webhook delivery).
func MediumClient() *http.Client {
	clientOnce.Do(initClients)
	return mediumClient
}

// ReadErrorBody reads a response body for error reporting, capped at 1MB so
// a misbehaving collector cannot balloon memory.
func ReadErrorBody(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxDrainSize))
}

// DrainAndClose drains and closes a response body so the connection returns
// to the pool.
func DrainAndClose(body io.ReadCloser) {
	if body != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(body, maxDrainSize))
		_ = body.Close()
	}
}
