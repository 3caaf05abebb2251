// Package http builds the HTTP client shared by the live storage providers.
package http

import (
	"crypto/tls"
	nethttp "net/http"
	"os"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/http2"

	"github.com/orbit-drive/orbit/internal/constants"
	"github.com/orbit-drive/orbit/internal/logging"
)

// retryLogger adapts the component logger to retryablehttp.LeveledLogger.
type retryLogger struct {
	logger *logging.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	// Only log errors and warnings
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}

// NewTransport returns a pooled transport with HTTP/2 enabled.
//
// Proxy settings come from HTTP_PROXY, HTTPS_PROXY and NO_PROXY. HTTP/2 is
// turned off when a proxy is set or DISABLE_HTTP2=true.
func NewTransport() *nethttp.Transport {
	tr := &nethttp.Transport{
		Proxy:                 nethttp.ProxyFromEnvironment,
		MaxIdleConns:          128,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       constants.HTTPIdleConnTimeout,
		TLSHandshakeTimeout:   constants.HTTPTLSHandshakeTimeout,
		ExpectContinueTimeout: constants.HTTPExpectContinueTimeout,
		DisableCompression:    true,
		ForceAttemptHTTP2:     true,
	}

	_ = http2.ConfigureTransport(tr)

	if os.Getenv("DISABLE_HTTP2") == "true" || proxyFromEnv() {
		tr.ForceAttemptHTTP2 = false
		tr.TLSNextProto = make(map[string]func(string, *tls.Conn) nethttp.RoundTripper)
	}

	return tr
}

// NewClient returns a *http.Client that retries transient failures with
// exponential backoff. The client has no overall timeout; callers bound each
// request with a context.
func NewClient(logger *logging.Logger) *nethttp.Client {
	if logger == nil {
		logger = logging.Nop()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = &nethttp.Client{Transport: NewTransport()}
	retryClient.RetryMax = constants.HTTPRetryMax
	retryClient.RetryWaitMin = constants.HTTPRetryWaitMin
	retryClient.RetryWaitMax = constants.HTTPRetryWaitMax
	retryClient.Logger = &retryLogger{logger: logger}

	return retryClient.StandardClient()
}

func proxyFromEnv() bool {
	for _, key := range []string{"HTTP_PROXY", "HTTPS_PROXY", "http_proxy", "https_proxy"} {
		if os.Getenv(key) != "" {
			return true
		}
	}
	return false
}
