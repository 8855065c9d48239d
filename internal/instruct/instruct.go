// Package instruct builds the hold instruction a backend returns to a GRIP
// proxy: Grip-* response headers, an application/grip-instruct body, or a
// WebSocket-over-HTTP event body.
package instruct

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	ierrors "github.com/jamesprial/go-grip/internal/errors"
	"github.com/jamesprial/go-grip/internal/grip"
	pkggrip "github.com/jamesprial/go-grip/pkg/grip"
)

// Mode is the hold mode of an instruction.
type Mode string

// Hold modes. ModeNone means no hold has been requested yet.
const (
	ModeNone      Mode = ""
	ModeResponse  Mode = pkggrip.HoldModeResponse
	ModeStream    Mode = pkggrip.HoldModeStream
	ModeWebSocket Mode = "websocket"
)

type keepAlive struct {
	content grip.Content
	timeout int
}

type link struct {
	uri     string
	timeout int
}

// Instruct accumulates the hold instruction for one inbound request. It is
// not safe for concurrent use and is not meant to be reused.
//
// The hold mode can be set once. Setting the same mode again is allowed and
// replaces its timeout; requesting a different mode fails with
// ErrHoldModeConflict and leaves the instruction unchanged.
type Instruct struct {
	mode     Mode
	timeout  int
	channels []grip.Channel
	status   int
	keep     *keepAlive
	next     *link
	meta     map[string]string
}

// New returns an empty instruction.
func New() *Instruct {
	return &Instruct{meta: make(map[string]string)}
}

// Mode returns the current hold mode.
func (g *Instruct) Mode() Mode { return g.mode }

// Channels returns the subscribed channels in first-insertion order.
func (g *Instruct) Channels() []grip.Channel {
	return slices.Clone(g.channels)
}

// AddChannel subscribes to name, resuming after prevID when non-empty.
func (g *Instruct) AddChannel(name, prevID string) error {
	ch, err := grip.NewChannel(name, prevID)
	if err != nil {
		return err
	}
	g.AddChannels(ch)
	return nil
}

// AddChannels subscribes to channels. A channel whose name is already
// present replaces the earlier entry in place.
func (g *Instruct) AddChannels(channels ...grip.Channel) {
	for _, ch := range channels {
		i := slices.IndexFunc(g.channels, func(c grip.Channel) bool { return c.Name() == ch.Name() })
		if i >= 0 {
			g.channels[i] = ch
			continue
		}
		g.channels = append(g.channels, ch)
	}
}

// SetHoldLongPoll holds the request until one http-response item arrives.
// A zero timeout leaves the proxy default.
func (g *Instruct) SetHoldLongPoll(timeout int) error {
	if timeout < 0 {
		return ierrors.Invalid(domainInstruct, "SetHoldLongPoll", ErrInvalidTimeout)
	}
	if err := g.setMode("SetHoldLongPoll", ModeResponse); err != nil {
		return err
	}
	g.timeout = timeout
	return nil
}

// SetHoldStream holds the request as a stream of http-stream items.
func (g *Instruct) SetHoldStream() error {
	return g.setMode("SetHoldStream", ModeStream)
}

// SetHoldWebSocket answers a WebSocket-over-HTTP request, subscribing the
// connection to the instruction's channels.
func (g *Instruct) SetHoldWebSocket() error {
	return g.setMode("SetHoldWebSocket", ModeWebSocket)
}

func (g *Instruct) setMode(op string, mode Mode) error {
	if g.mode != ModeNone && g.mode != mode {
		return ierrors.Invalid(domainInstruct, op,
			fmt.Errorf("%w: %s, requested %s", ErrHoldModeConflict, g.mode, mode)).
			WithContext("current", string(g.mode))
	}
	g.mode = mode
	return nil
}

// SetStatus sets the status the held response carries once the proxy
// releases it. The immediate response carrying the instruction is always
// 200.
func (g *Instruct) SetStatus(code int) error {
	if code < 100 || code > 599 {
		return ierrors.Invalid(domainInstruct, "SetStatus", fmt.Errorf("%w: %d", ErrInvalidStatus, code))
	}
	g.status = code
	return nil
}

// Status returns the held response status, or 0 if unset.
func (g *Instruct) Status() int { return g.status }

// SetKeepAlive makes the proxy send content on an otherwise idle hold every
// timeout seconds.
func (g *Instruct) SetKeepAlive(content grip.Content, timeout int) error {
	if timeout < 0 {
		return ierrors.Invalid(domainInstruct, "SetKeepAlive", ErrInvalidTimeout)
	}
	g.keep = &keepAlive{content: content, timeout: timeout}
	return nil
}

// SetNextLink asks the proxy to fetch uri for more data once the hold
// completes, after timeout seconds when non-zero.
func (g *Instruct) SetNextLink(uri string, timeout int) error {
	if uri == "" {
		return ierrors.Invalid(domainInstruct, "SetNextLink", ErrEmptyLink)
	}
	if timeout < 0 {
		return ierrors.Invalid(domainInstruct, "SetNextLink", ErrInvalidTimeout)
	}
	g.next = &link{uri: uri, timeout: timeout}
	return nil
}

// SetMeta stores a connection meta value on the proxy.
func (g *Instruct) SetMeta(key, value string) error {
	if key == "" {
		return ierrors.Invalid(domainInstruct, "SetMeta", ErrEmptyMetaKey)
	}
	g.meta[key] = value
	return nil
}

func (g *Instruct) metaKeys() []string {
	keys := make([]string, 0, len(g.meta))
	for k := range g.meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (k *keepAlive) headerValue() string {
	var value string
	if text, ok := k.content.(grip.Text); ok && cstringSafe(string(text)) {
		value = escapeCString(string(text)) + "; format=cstring"
	} else {
		var raw []byte
		if k.content != nil {
			raw = k.content.Bytes()
		}
		value = grip.EncodeBase64(raw) + "; format=base64"
	}
	if k.timeout > 0 {
		value += "; timeout=" + strconv.Itoa(k.timeout)
	}
	return value
}

// cstringSafe reports whether s can travel as a cstring header parameter.
// Only printable ASCII and the escapable \n, \r, \t and \\ qualify.
func cstringSafe(s string) bool {
	for _, r := range s {
		switch {
		case r == '\n', r == '\r', r == '\t', r == '\\':
		case r < 0x20, r >= 0x7f, r == ';', r == ',', r == '"':
			return false
		}
	}
	return true
}

func escapeCString(s string) string {
	return strings.NewReplacer(`\`, `\\`, "\r", `\r`, "\n", `\n`, "\t", `\t`).Replace(s)
}

func (l *link) headerValue() string {
	value := "<" + l.uri + ">; rel=next"
	if l.timeout > 0 {
		value += "; timeout=" + strconv.Itoa(l.timeout)
	}
	return value
}

func quoteMeta(v string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v) + `"`
}
