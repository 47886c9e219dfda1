package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	httputils "helpdesk/helpdesk/utils/http"

	"github.com/anthropics/anthropic-sdk-go"
)

type FailureKind int

const (
	FailureUnavailable FailureKind = iota
	FailureRateLimit
	FailureTimeout
	FailureAuth
)

func (k FailureKind) String() string {
	switch k {
	case FailureRateLimit:
		return "rate_limit"
	case FailureTimeout:
		return "timeout"
	case FailureAuth:
		return "auth"
	default:
		return "unavailable"
	}
}

// Classify maps a provider error to a fallback bucket. Status codes are
// checked first, then the same text markers the provider puts in messages.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureUnavailable
	}
	if k, ok := classifyStatus(statusOf(err)); ok {
		return k
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate_limit") || strings.Contains(msg, "429"):
		return FailureRateLimit
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "408"):
		return FailureTimeout
	case strings.Contains(msg, "401") || strings.Contains(msg, "authentication") ||
		strings.Contains(msg, "incorrect api key"):
		return FailureAuth
	}
	return FailureUnavailable
}

func statusOf(err error) int {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	var se *httputils.StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

func classifyStatus(code int) (FailureKind, bool) {
	switch code {
	case http.StatusTooManyRequests:
		return FailureRateLimit, true
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return FailureTimeout, true
	case http.StatusUnauthorized, http.StatusForbidden:
		return FailureAuth, true
	}
	return 0, false
}
