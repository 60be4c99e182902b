package httpx

import (
	"net/http"
	"testing"

	"github.com/tauri-drive/engine/internal/constants"
)

func TestNewTransferClient(t *testing.T) {
	client := NewTransferClient()

	if client.Timeout != 0 {
		t.Errorf("client timeout = %v, want 0 (deadlines come from context)", client.Timeout)
	}

	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("transport is %T, want *http.Transport", client.Transport)
	}

	if !transport.DisableCompression {
		t.Error("compression should be disabled for object transfers")
	}
	if transport.ResponseHeaderTimeout != constants.ReadTimeout {
		t.Errorf("response header timeout = %v, want %v", transport.ResponseHeaderTimeout, constants.ReadTimeout)
	}
	if transport.IdleConnTimeout != constants.HTTPIdleConnTimeout {
		t.Errorf("idle conn timeout = %v, want %v", transport.IdleConnTimeout, constants.HTTPIdleConnTimeout)
	}
	if transport.MaxIdleConnsPerHost < constants.MaxConcurrentParts {
		t.Errorf("per-host pool %d is smaller than part concurrency %d",
			transport.MaxIdleConnsPerHost, constants.MaxConcurrentParts)
	}
}

func TestNewTransferClientHTTP2Disabled(t *testing.T) {
	t.Setenv("DISABLE_HTTP2", "true")

	client := NewTransferClient()
	transport := client.Transport.(*http.Transport)

	if transport.ForceAttemptHTTP2 {
		t.Error("ForceAttemptHTTP2 should be off when DISABLE_HTTP2=true")
	}
	if transport.TLSNextProto == nil || len(transport.TLSNextProto) != 0 {
		t.Error("TLSNextProto should be an empty non-nil map to pin HTTP/1.1")
	}
}
