// Package httpx builds the HTTP client used for object-store transfers.
//
// Transfers run over long-lived connections carrying multi-megabyte part
// bodies, so the transport keeps a generous idle pool and no client-level
// timeout; each operation carries its own context deadline instead.
package httpx

import (
	"crypto/tls"
	"net"
	"net/http"
	"os"

	"golang.org/x/net/http2"

	"github.com/tauri-drive/engine/internal/constants"
)

// NewTransferClient returns an HTTP client tuned for uploads and downloads
// against the object store.
//
// The client has no overall timeout. A request that streams a 5 GiB file is
// legitimate and slow; stalls are caught by the dial, TLS handshake, and
// response-header timeouts plus the per-operation context deadline.
func NewTransferClient() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   constants.ConnectTimeout,
			KeepAlive: constants.HTTPDialKeepAlive,
		}).DialContext,

		// Part uploads run up to MaxConcurrentParts at a time against a
		// single host, so a small per-host pool is enough.
		MaxIdleConns:        64,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     constants.HTTPIdleConnTimeout,

		TLSHandshakeTimeout:   constants.HTTPTLSHandshakeTimeout,
		ResponseHeaderTimeout: constants.ReadTimeout,
		ExpectContinueTimeout: constants.HTTPExpectContinueTimeout,

		// Bodies are opaque object bytes; compressing them again wastes CPU.
		DisableCompression: true,

		ForceAttemptHTTP2: true,
	}

	if err := http2.ConfigureTransport(transport); err != nil {
		transport.ForceAttemptHTTP2 = false
	}

	// Escape hatch for proxies and middleboxes that mishandle HTTP/2.
	if os.Getenv("DISABLE_HTTP2") == "true" {
		transport.ForceAttemptHTTP2 = false
		transport.TLSNextProto = make(map[string]func(authority string, c *tls.Conn) http.RoundTripper)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   0,
	}
}
