package telemetry

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewTracedHTTPClient wraps base so every outbound request opens a
// child span and propagates trace context to the callee, grounded on
// the teacher's telemetry.NewTracedHTTPClient. base may be nil, in
// which case http.DefaultTransport is used.
func NewTracedHTTPClient(base http.RoundTripper) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Transport: otelhttp.NewTransport(base),
	}
}
