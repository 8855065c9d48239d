// Package publisher publishes GRIP items to one or more proxy control
// endpoints.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jamesprial/go-grip/internal/auth"
	ierrors "github.com/jamesprial/go-grip/internal/errors"
	"github.com/jamesprial/go-grip/internal/grip"
	"github.com/jamesprial/go-grip/internal/sigverify"
	pkggrip "github.com/jamesprial/go-grip/pkg/grip"
)

// Client publishes to a single proxy endpoint. It is safe for concurrent use.
type Client struct {
	controlURI string
	publishURL string
	auth       auth.Auth
	verifier   *sigverify.Verifier

	transport Transport
	logger    *slog.Logger
	metrics   *Metrics
}

// NewClient resolves cfg into a client.
func NewClient(cfg EndpointConfig, opts ...Option) (*Client, error) {
	if cfg.ControlURI == "" {
		return nil, ierrors.Invalid(domainPublisher, "NewClient", ErrEmptyControlURI)
	}
	pubURL, err := publishURL(cfg.ControlURI)
	if err != nil {
		return nil, ierrors.Invalid(domainPublisher, "NewClient",
			fmt.Errorf("%w: %v", ErrInvalidGripURI, err))
	}

	o := buildOptions(opts)
	c := &Client{
		controlURI: cfg.ControlURI,
		publishURL: pubURL,
		auth:       cfg.resolveAuth(),
		transport:  o.transport,
		logger:     o.logger.With("endpoint", cfg.ControlURI),
		metrics:    o.metrics,
	}

	verifyKey := cfg.VerifyKey
	if verifyKey == nil {
		verifyKey = cfg.Key
	}
	if verifyKey != nil {
		v, err := sigverify.NewVerifier(verifyKey, sigverify.WithIssuer(cfg.VerifyIss))
		if err != nil {
			return nil, err
		}
		c.verifier = v
	}
	return c, nil
}

// ControlURI returns the endpoint's control URI.
func (c *Client) ControlURI() string { return c.controlURI }

// Publish sends item addressed to channel.
func (c *Client) Publish(ctx context.Context, channel string, item *grip.Item) error {
	if channel == "" {
		return ierrors.Invalid(domainPublisher, "Publish", grip.ErrEmptyChannelName)
	}
	if item == nil {
		return ierrors.Invalid(domainPublisher, "Publish", ErrNoItems)
	}
	return c.PublishItems(ctx, []*grip.Item{item.ForChannel(channel)})
}

type publishBody struct {
	Items []*grip.Item `json:"items"`
}

// PublishItems sends already addressed items in one request. Failures are
// returned as *PublishError.
func (c *Client) PublishItems(ctx context.Context, items []*grip.Item) error {
	if len(items) == 0 {
		return ierrors.Invalid(domainPublisher, "PublishItems", ErrNoItems)
	}

	body, err := json.Marshal(publishBody{Items: items})
	if err != nil {
		return c.fail(EndpointFailure{Err: ierrors.New(domainPublisher, "PublishItems", ierrors.ErrInternal, err)})
	}

	header := make(http.Header)
	header.Set(pkggrip.HeaderContentType, pkggrip.ContentTypeJSON)
	if c.auth != nil {
		value, err := c.auth.BuildHeader()
		if err != nil {
			return c.fail(EndpointFailure{Err: err})
		}
		header.Set(pkggrip.HeaderAuthorization, value)
	}

	start := time.Now()
	resp, err := c.transport.Do(ctx, &TransportRequest{
		Method: http.MethodPost,
		URL:    c.publishURL,
		Header: header,
		Body:   body,
	})
	elapsed := time.Since(start)

	if err != nil {
		c.metrics.observe(c.controlURI, outcomeTransportError, elapsed)
		return c.fail(EndpointFailure{Err: err})
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.observe(c.controlURI, outcomeHTTPError, elapsed)
		return c.fail(EndpointFailure{
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
			Err:        fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode),
		})
	}

	c.metrics.observe(c.controlURI, outcomeSuccess, elapsed)
	c.logger.Debug("published", "items", len(items), "duration_ms", elapsed.Milliseconds())
	return nil
}

func (c *Client) fail(f EndpointFailure) error {
	f.ControlURI = c.controlURI
	c.logger.Warn("publish failed",
		"status", f.StatusCode,
		"error", f.Err,
	)
	return newPublishError(f)
}

// verify checks a Grip-Sig header against this endpoint's verify key.
// ok is false when the endpoint has no verify key.
func (c *Client) verify(ctx context.Context, header string) (valid, ok bool) {
	if c.verifier == nil {
		return false, false
	}
	return c.verifier.Verify(ctx, header).Valid, true
}

func asFailures(c *Client, err error) []EndpointFailure {
	var pe *PublishError
	if errors.As(err, &pe) {
		return pe.Failures
	}
	return []EndpointFailure{{ControlURI: c.controlURI, Err: err}}
}
