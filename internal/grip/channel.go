// Package grip implements the GRIP message model: channels, format variants
// and items published to a proxy.
package grip

import (
	"encoding/json"
	"fmt"
	"strings"

	ierrors "github.com/jamesprial/go-grip/internal/errors"
)

const domainGrip = "grip"

// Channel is a named topic a held connection subscribes to. PrevID, when
// set, asks the proxy to deliver everything published after that id. It is
// passed through and never interpreted locally.
type Channel struct {
	name   string
	prevID string
}

// NewChannel creates a channel. An empty name is a validation error.
func NewChannel(name, prevID string) (Channel, error) {
	if name == "" {
		return Channel{}, ierrors.Invalid(domainGrip, "NewChannel", ErrEmptyChannelName)
	}
	return Channel{name: name, prevID: prevID}, nil
}

// MustChannel is like NewChannel but panics on an empty name.
// Intended for static channel names.
func MustChannel(name string) Channel {
	ch, err := NewChannel(name, "")
	if err != nil {
		panic(err)
	}
	return ch
}

// Name returns the channel name.
func (c Channel) Name() string { return c.name }

// PrevID returns the resume cursor, or "" if none was supplied.
func (c Channel) PrevID() string { return c.prevID }

type channelJSON struct {
	Name   string `json:"name"`
	PrevID string `json:"prevId,omitempty"`
}

// Export returns {"name": ...} plus "prevId" when one was supplied.
func (c Channel) Export() map[string]any {
	out := map[string]any{"name": c.name}
	if c.prevID != "" {
		out["prevId"] = c.prevID
	}
	return out
}

// MarshalJSON encodes the channel as its export.
func (c Channel) MarshalJSON() ([]byte, error) {
	return json.Marshal(channelJSON{Name: c.name, PrevID: c.prevID})
}

// UnmarshalJSON decodes an exported channel, rejecting empty names.
func (c *Channel) UnmarshalJSON(data []byte) error {
	var raw channelJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ch, err := NewChannel(raw.Name, raw.PrevID)
	if err != nil {
		return err
	}
	*c = ch
	return nil
}

// String renders the channel as one Grip-Channel header entry.
func (c Channel) String() string {
	if c.prevID == "" {
		return c.name
	}
	return c.name + "; prev-id=" + c.prevID
}

// FormatChannels renders channels as a Grip-Channel header value.
func FormatChannels(channels []Channel) string {
	parts := make([]string, 0, len(channels))
	for _, ch := range channels {
		parts = append(parts, ch.String())
	}
	return strings.Join(parts, ", ")
}

// ParseChannels parses a Grip-Channel header value such as
// "a; prev-id=1, b". Unknown parameters are ignored.
func ParseChannels(header string) ([]Channel, error) {
	var channels []Channel
	for _, entry := range strings.Split(header, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		params := strings.Split(entry, ";")
		name := strings.TrimSpace(params[0])
		if name == "" {
			return nil, ierrors.Invalid(domainGrip, "ParseChannels",
				fmt.Errorf("%w: empty name in %q", ErrInvalidChannelHeader, entry))
		}
		var prevID string
		for _, param := range params[1:] {
			key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok {
				return nil, ierrors.Invalid(domainGrip, "ParseChannels",
					fmt.Errorf("%w: malformed parameter %q", ErrInvalidChannelHeader, param))
			}
			if strings.TrimSpace(key) == "prev-id" {
				prevID = strings.Trim(strings.TrimSpace(value), `"`)
			}
		}
		channels = append(channels, Channel{name: name, prevID: prevID})
	}
	return channels, nil
}
