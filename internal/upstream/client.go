// Package upstream performs the single bounded outbound call to the AI
// inference endpoint. Exactly one attempt per inbound request: the call
// either succeeds, times out, fails with an upstream status, or fails in
// transport. There is no retry policy.
package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout is the wall-clock deadline for one relay attempt. It is
// intentionally longer than the transport's dial and TLS timeouts below.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of an upstream response is buffered.
const maxResponseBytes = 4 << 20

// ErrTimeout reports that the deadline elapsed before the upstream
// responded. The in-flight request is actively cancelled, not abandoned.
var ErrTimeout = errors.New("upstream call timed out")

// UpstreamError reports a non-2xx response from the upstream service.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

// TransportError reports a failure to complete the exchange at all:
// DNS, connect, reset, protocol violation.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("upstream transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client relays payloads to one fixed inference endpoint.
type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
}

// New builds a client for the given endpoint. A non-positive timeout
// falls back to DefaultTimeout.
func New(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		timeout:  timeout,
		httpClient: &http.Client{
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Relay posts payload to the endpoint and returns the raw response body.
// The call is bounded by the client timeout via context cancellation, so a
// hung upstream releases its connection instead of leaking it. Exactly one
// terminal outcome is produced: the body, ErrTimeout, *UpstreamError or
// *TransportError.
func (c *Client) Relay(ctx context.Context, payload []byte) ([]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		// The deadline can also fire mid-body.
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &UpstreamError{Status: resp.StatusCode}
	}
	return body, nil
}

// Endpoint returns the configured upstream URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Timeout returns the per-call deadline.
func (c *Client) Timeout() time.Duration { return c.timeout }
