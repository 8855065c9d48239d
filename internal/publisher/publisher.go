package publisher

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	ierrors "github.com/jamesprial/go-grip/internal/errors"
	"github.com/jamesprial/go-grip/internal/grip"
)

// Publisher fans items out to every configured endpoint.
type Publisher struct {
	mu      sync.RWMutex
	clients []*Client

	opts   []Option
	limit  int
	logger *slog.Logger
}

// New builds a publisher with one client per config. opts apply to every
// client as well as the publisher.
func New(configs []EndpointConfig, opts ...Option) (*Publisher, error) {
	o := buildOptions(opts)
	p := &Publisher{
		opts:   opts,
		limit:  o.concurrency,
		logger: o.logger,
	}
	for _, cfg := range configs {
		if err := p.AddEndpoint(cfg); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// AddEndpoint adds a client built from cfg with the publisher's options.
func (p *Publisher) AddEndpoint(cfg EndpointConfig) error {
	c, err := NewClient(cfg, p.opts...)
	if err != nil {
		return err
	}
	p.AddClient(c)
	return nil
}

// AddClient adds an existing client.
func (p *Publisher) AddClient(c *Client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clients = append(p.clients, c)
}

// Clients returns the configured clients.
func (p *Publisher) Clients() []*Client {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*Client(nil), p.clients...)
}

// Publish sends item to channel on every endpoint concurrently and waits
// for all of them. One endpoint failing never cancels the others; every
// failure is collected into a single *PublishError.
func (p *Publisher) Publish(ctx context.Context, channel string, item *grip.Item) error {
	clients := p.Clients()
	if len(clients) == 0 {
		p.logger.Debug("publish skipped, no endpoints", "channel", channel)
		return nil
	}

	var g errgroup.Group
	if p.limit > 0 {
		g.SetLimit(p.limit)
	}
	results := make([][]EndpointFailure, len(clients))
	for i, c := range clients {
		g.Go(func() error {
			if err := c.Publish(ctx, channel, item); err != nil {
				results[i] = asFailures(c, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	var failures []EndpointFailure
	for _, r := range results {
		failures = append(failures, r...)
	}
	if len(failures) == 0 {
		return nil
	}
	p.logger.Warn("publish incomplete",
		"channel", channel,
		"failed", len(failures),
		"endpoints", len(clients),
	)
	return newPublishError(failures...)
}

// PublishFormats builds an item from formats and publishes it.
func (p *Publisher) PublishFormats(ctx context.Context, channel string, formats []grip.Format, opts ...grip.ItemOption) error {
	item, err := grip.NewItem(formats, opts...)
	if err != nil {
		return err
	}
	return p.Publish(ctx, channel, item)
}

// PublishHTTPResponse publishes body as an http-response item. A nil body
// is rejected; use grip.Text("") for an empty one.
func (p *Publisher) PublishHTTPResponse(ctx context.Context, channel string, body grip.Content, opts ...grip.ItemOption) error {
	if body == nil {
		return ierrors.Invalid(domainPublisher, "PublishHTTPResponse", grip.ErrNoContent)
	}
	return p.PublishFormats(ctx, channel, []grip.Format{grip.HTTPResponseFormat{Body: body}}, opts...)
}

// PublishHTTPStream appends content to streams held on channel.
func (p *Publisher) PublishHTTPStream(ctx context.Context, channel string, content grip.Content, opts ...grip.ItemOption) error {
	f, err := grip.NewHTTPStreamFormat(content, false)
	if err != nil {
		return err
	}
	return p.PublishFormats(ctx, channel, []grip.Format{f}, opts...)
}

// PublishHTTPStreamClose ends the streams held on channel.
func (p *Publisher) PublishHTTPStreamClose(ctx context.Context, channel string, opts ...grip.ItemOption) error {
	f, err := grip.NewHTTPStreamFormat(nil, true)
	if err != nil {
		return err
	}
	return p.PublishFormats(ctx, channel, []grip.Format{f}, opts...)
}

// PublishWebSocketMessage sends content to websockets subscribed to channel.
func (p *Publisher) PublishWebSocketMessage(ctx context.Context, channel string, content grip.Content, opts ...grip.ItemOption) error {
	f, err := grip.NewWebSocketMessageFormat(content, false, 0)
	if err != nil {
		return err
	}
	return p.PublishFormats(ctx, channel, []grip.Format{f}, opts...)
}

// PublishWebSocketClose closes websockets subscribed to channel. A zero
// code sends the close without one.
func (p *Publisher) PublishWebSocketClose(ctx context.Context, channel string, code int, opts ...grip.ItemOption) error {
	f, err := grip.NewWebSocketMessageFormat(nil, true, code)
	if err != nil {
		return err
	}
	return p.PublishFormats(ctx, channel, []grip.Format{f}, opts...)
}

// SigStatus is the result of checking a Grip-Sig header against every
// endpoint.
type SigStatus struct {
	// IsProxied reports whether the request came through a proxy.
	IsProxied bool

	// NeedsSigned reports whether every endpoint has a verify key, so an
	// unsigned request cannot be trusted as proxied.
	NeedsSigned bool

	// IsSigned reports whether the header verified against some endpoint.
	IsSigned bool
}

// ValidateGripSig checks header. Without a header nothing is proxied. When
// every endpoint has a verify key the header must verify against one of
// them; otherwise its presence alone marks the request as proxied.
func (p *Publisher) ValidateGripSig(ctx context.Context, header string) SigStatus {
	clients := p.Clients()
	if header == "" || len(clients) == 0 {
		return SigStatus{}
	}

	allKeyed := true
	signed := false
	for _, c := range clients {
		valid, keyed := c.verify(ctx, header)
		if !keyed {
			allKeyed = false
			continue
		}
		if valid {
			signed = true
		}
	}

	if !allKeyed {
		return SigStatus{IsProxied: true, IsSigned: signed}
	}
	return SigStatus{IsProxied: signed, NeedsSigned: true, IsSigned: signed}
}
