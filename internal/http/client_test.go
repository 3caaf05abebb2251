package http

import (
	"errors"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorType
	}{
		{nil, ErrorTypeSuccess},
		{errors.New("api error InvalidAccessKeyId: The AWS Access Key Id you provided does not exist"), ErrorTypeCredential},
		{errors.New("RESPONSE 403: AuthenticationFailed"), ErrorTypeCredential},
		{errors.New("dial tcp: lookup bucket.example: no such host"), ErrorTypeNetwork},
		{errors.New("read: connection reset by peer"), ErrorTypeNetwork},
		{errors.New("StatusCode: 503, SlowDown"), ErrorTypeRetryable},
		{errors.New("NoSuchBucket: 404"), ErrorTypeFatal},
		{fmt.Errorf("list: %w", errors.New("ServerBusy")), ErrorTypeRetryable},
	}

	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %s, want %s", ErrorTypeName(got), ErrorTypeName(tt.want))
			}
		})
	}
}

func TestNewTransport_DisableHTTP2(t *testing.T) {
	t.Setenv("HTTP_PROXY", "")
	t.Setenv("HTTPS_PROXY", "")
	t.Setenv("http_proxy", "")
	t.Setenv("https_proxy", "")

	t.Setenv("DISABLE_HTTP2", "true")
	tr := NewTransport()
	if tr.ForceAttemptHTTP2 {
		t.Error("DISABLE_HTTP2 should turn off HTTP/2")
	}

	t.Setenv("DISABLE_HTTP2", "")
	tr = NewTransport()
	if !tr.ForceAttemptHTTP2 {
		t.Error("HTTP/2 should be on by default")
	}
}

func TestNewClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(nethttp.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(nethttp.StatusOK)
	}))
	defer srv.Close()

	resp, err := NewClient(nil).Get(srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}
