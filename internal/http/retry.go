package http

import (
	"strings"
)

// ErrorType represents different classes of storage errors
type ErrorType int

const (
	// ErrorTypeSuccess indicates operation succeeded
	ErrorTypeSuccess ErrorType = iota
	// ErrorTypeCredential indicates authentication/authorization failure (403, bad signature, unknown key)
	ErrorTypeCredential
	// ErrorTypeNetwork indicates network/connection issues (timeouts, connection refused, etc.)
	ErrorTypeNetwork
	// ErrorTypeRetryable indicates server errors that can be retried (500, 502, 503, throttling)
	ErrorTypeRetryable
	// ErrorTypeFatal indicates client errors that should not be retried (400, 404, invalid request)
	ErrorTypeFatal
)

// ClassifyError determines the error type of an S3 or Azure failure.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeSuccess
	}

	errStr := strings.ToLower(err.Error())

	// Credential-related errors
	// Includes both AWS (InvalidAccessKeyId, SignatureDoesNotMatch) and Azure (AuthenticationFailed) errors
	if strings.Contains(errStr, "expired") ||
		strings.Contains(errStr, "invalid token") ||
		strings.Contains(errStr, "invalidaccesskeyid") ||
		strings.Contains(errStr, "signaturedoesnotmatch") ||
		strings.Contains(errStr, "accessdenied") ||
		strings.Contains(errStr, "403") ||
		strings.Contains(errStr, "401") ||
		strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "authentication failed") ||
		strings.Contains(errStr, "authenticationfailed") ||
		strings.Contains(errStr, "signature not valid") ||
		strings.Contains(errStr, "authorization failure") {
		return ErrorTypeCredential
	}

	// Network errors
	if strings.Contains(errStr, "tls handshake timeout") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "eof") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "timeout") {
		return ErrorTypeNetwork
	}

	// Server side and throttling errors
	if strings.Contains(errStr, "internalerror") ||
		strings.Contains(errStr, "serviceunavailable") ||
		strings.Contains(errStr, "slowdown") ||
		strings.Contains(errStr, "throttl") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504") ||
		strings.Contains(errStr, "serverbusy") ||
		strings.Contains(errStr, "service unavailable") {
		return ErrorTypeRetryable
	}

	return ErrorTypeFatal
}

// ErrorTypeName returns a human-readable name for an ErrorType
func ErrorTypeName(errType ErrorType) string {
	switch errType {
	case ErrorTypeSuccess:
		return "success"
	case ErrorTypeCredential:
		return "credential"
	case ErrorTypeNetwork:
		return "network"
	case ErrorTypeRetryable:
		return "retryable"
	case ErrorTypeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}
