package grip

import (
	"encoding/json"
	"fmt"

	ierrors "github.com/jamesprial/go-grip/internal/errors"
)

// Item is one logical message, possibly expressed in several formats.
// Items are immutable once built and safe to share between goroutines.
type Item struct {
	channel string
	id      string
	prevID  string
	formats []Format
}

// ItemOption configures an Item at construction.
type ItemOption func(*Item)

// WithID sets the item id used by the proxy for ordered delivery.
func WithID(id string) ItemOption {
	return func(i *Item) { i.id = id }
}

// WithPrevID sets the id of the item expected to precede this one.
func WithPrevID(prevID string) ItemOption {
	return func(i *Item) { i.prevID = prevID }
}

// WithChannel sets the channel the item is addressed to. Publishers set
// this themselves, so it is only needed when exporting items directly.
func WithChannel(channel string) ItemOption {
	return func(i *Item) { i.channel = channel }
}

// NewItem builds an item. The format list must be non-empty and format
// names must be unique; violations fail here so a bad item can never be
// partially published.
func NewItem(formats []Format, opts ...ItemOption) (*Item, error) {
	if len(formats) == 0 {
		return nil, ierrors.Invalid(domainGrip, "NewItem", ErrNoFormats)
	}

	seen := make(map[string]struct{}, len(formats))
	for _, f := range formats {
		if f == nil {
			return nil, ierrors.Invalid(domainGrip, "NewItem", ErrNilFormat)
		}
		if _, dup := seen[f.Name()]; dup {
			return nil, ierrors.Invalid(domainGrip, "NewItem",
				fmt.Errorf("%w: %s", ErrDuplicateFormat, f.Name())).
				WithContext("format", f.Name())
		}
		seen[f.Name()] = struct{}{}
	}

	item := &Item{formats: append([]Format(nil), formats...)}
	for _, opt := range opts {
		opt(item)
	}
	return item, nil
}

// Channel returns the channel name, or "" if the item is not yet addressed.
func (i *Item) Channel() string { return i.channel }

// ID returns the item id.
func (i *Item) ID() string { return i.id }

// PrevID returns the previous item id.
func (i *Item) PrevID() string { return i.prevID }

// Formats returns a copy of the item's formats in construction order.
func (i *Item) Formats() []Format {
	return append([]Format(nil), i.formats...)
}

// ForChannel returns a copy of the item addressed to channel.
func (i *Item) ForChannel(channel string) *Item {
	cp := *i
	cp.channel = channel
	return &cp
}

// Export merges the format exports keyed by format name with the channel,
// id and prev-id fields. The previous id is emitted under "prev-id", the
// key the proxy's publish endpoint reads, not under "prevId".
func (i *Item) Export() map[string]any {
	out := make(map[string]any, len(i.formats)+3)
	if i.channel != "" {
		out["channel"] = i.channel
	}
	if i.id != "" {
		out["id"] = i.id
	}
	if i.prevID != "" {
		out["prev-id"] = i.prevID
	}
	for _, f := range i.formats {
		out[f.Name()] = f.Export()
	}
	return out
}

// MarshalJSON encodes the item export.
func (i *Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.Export())
}
