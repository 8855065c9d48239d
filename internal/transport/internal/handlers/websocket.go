package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/jamesprial/go-grip/internal/grip"
	"github.com/jamesprial/go-grip/internal/transport/transportcore"
	"github.com/jamesprial/go-grip/internal/websocket"
)

// webSocketHandler echoes WebSocket-over-HTTP messages back to the client.
// On open it accepts the connection and subscribes it to the channel query
// parameter, so messages published to that channel reach the client too.
type webSocketHandler struct {
	responder transportcore.ErrorResponder
	logger    *slog.Logger
}

// NewWebSocketHandler creates the WebSocket-over-HTTP echo handler.
// If logger is nil, it uses the default slog logger.
func NewWebSocketHandler(responder transportcore.ErrorResponder, logger *slog.Logger) http.Handler {
	if responder == nil {
		panic("responder cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &webSocketHandler{responder: responder, logger: logger}
}

func (h *webSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.NewContext(r)
	if err != nil {
		h.responder.BadRequest(w, err)
		return
	}

	if ws.IsOpening() {
		ws.Accept()
		if channel := r.URL.Query().Get("channel"); channel != "" {
			if err := ws.Subscribe(channel); err != nil {
				h.responder.InternalError(w, err)
				return
			}
		}
	}

loop:
	for {
		msg, err := ws.Recv()
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			break loop
		case errors.Is(err, websocket.ErrClosed):
			ws.Close(ws.CloseCode())
			break loop
		case errors.Is(err, websocket.ErrDisconnected):
			h.logger.Debug("websocket disconnected", "connection_id", ws.ID())
			break loop
		default:
			h.responder.BadRequest(w, err)
			return
		}

		switch m := msg.(type) {
		case grip.Text:
			ws.Send(string(m))
		case grip.Binary:
			ws.SendBinary(m)
		}
	}

	if err := ws.Write(w); err != nil {
		h.logger.Error("failed to write websocket events", "connection_id", ws.ID(), "error", err)
	}
}
