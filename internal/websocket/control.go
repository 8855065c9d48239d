package websocket

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	ierrors "github.com/jamesprial/go-grip/internal/errors"
)

// Control message types understood by the proxy.
const (
	ControlSubscribe   = "subscribe"
	ControlUnsubscribe = "unsubscribe"
	ControlDetach      = "detach"
	ControlKeepAlive   = "keep-alive"
	ControlSetMeta     = "set-meta"
)

// ControlPrefix marks a TEXT event as a control message.
const ControlPrefix = "c:"

// MessagePrefix marks a TEXT event as a message for the client when the
// grip extension is negotiated.
const MessagePrefix = "m:"

// ControlMessage returns "c:" followed by a JSON object with "type" first
// and the remaining args in key order.
func ControlMessage(msgType string, args map[string]any) (string, error) {
	if msgType == "" {
		return "", ierrors.Invalid(domainWebSocket, "ControlMessage", ErrEmptyControlType)
	}

	var buf bytes.Buffer
	buf.WriteString(ControlPrefix)
	buf.WriteString(`{"type":`)
	typeJSON, err := json.Marshal(msgType)
	if err != nil {
		return "", err
	}
	buf.Write(typeJSON)

	keys := make([]string, 0, len(args))
	for k := range args {
		if k != "type" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return "", err
		}
		valueJSON, err := json.Marshal(args[k])
		if err != nil {
			return "", ierrors.Invalid(domainWebSocket, "ControlMessage",
				fmt.Errorf("encode %q: %w", k, err))
		}
		buf.WriteByte(',')
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(valueJSON)
	}
	buf.WriteByte('}')
	return buf.String(), nil
}

// ParseControlMessage decodes a "c:" prefixed message. ok is false for
// anything that is not a control message.
func ParseControlMessage(text string) (args map[string]any, ok bool) {
	if len(text) < len(ControlPrefix) || text[:len(ControlPrefix)] != ControlPrefix {
		return nil, false
	}
	if err := json.Unmarshal([]byte(text[len(ControlPrefix):]), &args); err != nil {
		return nil, false
	}
	if _, hasType := args["type"].(string); !hasType {
		return nil, false
	}
	return args, true
}
