package instruct

import "errors"

const domainInstruct = "instruct"

var (
	// ErrHoldModeConflict is returned when a different hold mode is
	// requested after one was already set.
	ErrHoldModeConflict = errors.New("hold mode already set")

	// ErrWebSocketBody is returned by Body in websocket mode, which is
	// rendered with WebSocketEvents instead.
	ErrWebSocketBody = errors.New("websocket mode has no grip-instruct body")

	// ErrInvalidTimeout indicates a negative timeout.
	ErrInvalidTimeout = errors.New("timeout must not be negative")

	// ErrInvalidStatus indicates a status code outside 100..599.
	ErrInvalidStatus = errors.New("invalid status code")

	// ErrEmptyLink indicates a next link without a URI.
	ErrEmptyLink = errors.New("link uri is empty")

	// ErrEmptyMetaKey indicates a meta entry without a key.
	ErrEmptyMetaKey = errors.New("meta key is empty")
)
