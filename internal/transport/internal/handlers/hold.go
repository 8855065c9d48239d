// Package handlers implements the HTTP handlers of the GRIP demo backend.
package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jamesprial/go-grip/internal/grip"
	"github.com/jamesprial/go-grip/internal/instruct"
	"github.com/jamesprial/go-grip/internal/transport/transportcore"
)

// streamKeepAlive is sent on idle stream holds when keep_alive is set.
const streamKeepAlive = grip.Text("\n")

// holdHandler answers with a hold instruction for the channels named in
// the query.
type holdHandler struct {
	mode      instruct.Mode
	responder transportcore.ErrorResponder
}

// NewHoldHandler creates a handler that holds requests in mode, which must
// be instruct.ModeResponse or instruct.ModeStream.
//
// Query parameters:
//   - channel: required, Grip-Channel syntax ("a; prev-id=1, b"), may repeat
//   - timeout: long-poll timeout in seconds (response mode)
//   - status: status code of the held response (response mode)
//   - keep_alive: keep-alive interval in seconds (stream mode)
func NewHoldHandler(mode instruct.Mode, responder transportcore.ErrorResponder) http.Handler {
	if mode != instruct.ModeResponse && mode != instruct.ModeStream {
		panic(fmt.Sprintf("unsupported hold mode %q", mode))
	}
	if responder == nil {
		panic("responder cannot be nil")
	}
	return &holdHandler{mode: mode, responder: responder}
}

func (h *holdHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	g, err := h.build(r)
	if err != nil {
		h.responder.BadRequest(w, err)
		return
	}
	if err := g.Write(w); err != nil {
		h.responder.InternalError(w, err)
	}
}

func (h *holdHandler) build(r *http.Request) (*instruct.Instruct, error) {
	query := r.URL.Query()

	g := instruct.New()
	for _, v := range query["channel"] {
		channels, err := grip.ParseChannels(v)
		if err != nil {
			return nil, err
		}
		g.AddChannels(channels...)
	}
	if len(g.Channels()) == 0 {
		return nil, transportcore.ErrMissingChannel
	}

	switch h.mode {
	case instruct.ModeResponse:
		timeout, err := intParam(query.Get("timeout"))
		if err != nil {
			return nil, fmt.Errorf("timeout: %w", err)
		}
		if err := g.SetHoldLongPoll(timeout); err != nil {
			return nil, err
		}
		if s := query.Get("status"); s != "" {
			code, err := intParam(s)
			if err != nil {
				return nil, fmt.Errorf("status: %w", err)
			}
			if err := g.SetStatus(code); err != nil {
				return nil, err
			}
		}
	case instruct.ModeStream:
		if err := g.SetHoldStream(); err != nil {
			return nil, err
		}
		interval, err := intParam(query.Get("keep_alive"))
		if err != nil {
			return nil, fmt.Errorf("keep_alive: %w", err)
		}
		if interval > 0 {
			if err := g.SetKeepAlive(streamKeepAlive, interval); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// intParam parses an optional integer query value; empty is zero.
func intParam(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
