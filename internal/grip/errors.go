package grip

import (
	"errors"
)

// Sentinel errors for message model construction.
// They are wrapped in a DomainError of kind ErrInvalid by the constructors.
var (
	// ErrEmptyChannelName indicates a channel was constructed without a name.
	ErrEmptyChannelName = errors.New("channel name is empty")

	// ErrNoFormats indicates an item was constructed without any format.
	ErrNoFormats = errors.New("item has no formats")

	// ErrNilFormat indicates a nil format was passed to an item.
	ErrNilFormat = errors.New("item format is nil")

	// ErrDuplicateFormat indicates two formats in one item share a name.
	ErrDuplicateFormat = errors.New("duplicate format in item")

	// ErrContentWithClose indicates content was supplied together with a
	// close action. The wire format cannot carry both.
	ErrContentWithClose = errors.New("content supplied with close action")

	// ErrNoContent indicates a format that requires content received none.
	ErrNoContent = errors.New("format has no content")

	// ErrInvalidCloseCode indicates a websocket close code outside 1000-4999,
	// or a close code given without a close action.
	ErrInvalidCloseCode = errors.New("invalid close code")

	// ErrInvalidChannelHeader indicates a Grip-Channel header could not be parsed.
	ErrInvalidChannelHeader = errors.New("invalid channel header")
)
