package shared

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

var _ net.Error = timeoutError{}

func TestServiceErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewUpstreamError("AIRSTACK_REQUEST_FAILED", "airstack request failed", "AirstackClient", "Execute", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Category != ErrorCategoryUpstream {
		t.Errorf("expected upstream category, got %s", err.Category)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestUpstreamTimeoutCategory(t *testing.T) {
	err := NewUpstreamError("NEYNAR_REQUEST_FAILED", "neynar request failed", "NeynarClient", "CastByURL", fmt.Errorf("get: %w", timeoutError{}))

	if err.Category != ErrorCategoryTimeout {
		t.Errorf("expected timeout category, got %s", err.Category)
	}
}

func TestCategoryOf(t *testing.T) {
	wrapped := fmt.Errorf("resolve: %w", NewServiceError(ErrorCategoryValidation, "BAD", "bad", "svc", "op", nil))

	if got := CategoryOf(wrapped); got != ErrorCategoryValidation {
		t.Errorf("expected validation, got %q", got)
	}
	if got := CategoryOf(context.Canceled); got != "" {
		t.Errorf("expected empty category for plain error, got %q", got)
	}
}

func TestServiceErrorFields(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewServiceError(ErrorCategoryCache, "CACHE_READ_FAILED", "cache read failed", "CacheService", "GetJSON", cause).
		WithDetails(map[string]string{"key": "neynarCast/url/x"})

	fields := err.Fields()
	if fields["error_category"] != ErrorCategoryCache || fields["error_code"] != "CACHE_READ_FAILED" {
		t.Errorf("unexpected fields %v", fields)
	}
	if fields["underlying_error"] != cause.Error() || fields["details"] == nil {
		t.Errorf("expected cause and details in fields, got %v", fields)
	}

	if _, ok := NewServiceError(ErrorCategoryNotFound, "X", "x", "s", "o", nil).Fields()["underlying_error"]; ok {
		t.Error("expected no underlying_error without a cause")
	}
}
