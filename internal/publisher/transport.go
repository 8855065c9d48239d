package publisher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	ierrors "github.com/jamesprial/go-grip/internal/errors"
)

// maxResponseBody bounds how much of a proxy response is kept for errors.
const maxResponseBody = 64 << 10

// TransportRequest is one outbound publish request.
type TransportRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// TransportResponse is the proxy's reply.
type TransportResponse struct {
	StatusCode int
	Body       []byte
}

// Transport sends publish requests. Implementations must honor ctx and be
// safe for concurrent use. A non-2xx status is not a transport error.
type Transport interface {
	Do(ctx context.Context, req *TransportRequest) (*TransportResponse, error)
}

// HTTPTransport is the net/http Transport.
type HTTPTransport struct {
	Client *http.Client
}

// NewHTTPTransport returns a transport using a client with timeout.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{Client: &http.Client{Timeout: timeout}}
}

// Do implements Transport.
func (t *HTTPTransport) Do(ctx context.Context, req *TransportRequest) (*TransportResponse, error) {
	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, ierrors.New(domainPublisher, "HTTPTransport.Do", ierrors.ErrTransport, err)
	}
	for k, v := range req.Header {
		httpReq.Header[k] = v
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, ierrors.New(domainPublisher, "HTTPTransport.Do", ierrors.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, ierrors.New(domainPublisher, "HTTPTransport.Do", ierrors.ErrTransport,
			fmt.Errorf("read response: %w", err))
	}
	return &TransportResponse{StatusCode: resp.StatusCode, Body: body}, nil
}
