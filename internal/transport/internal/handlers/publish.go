package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/google/uuid"

	ierrors "github.com/jamesprial/go-grip/internal/errors"
	"github.com/jamesprial/go-grip/internal/grip"
	"github.com/jamesprial/go-grip/internal/transport/transportcore"
	pkggrip "github.com/jamesprial/go-grip/pkg/grip"
)

// maxPublishBody bounds the message accepted by the publish endpoint.
const maxPublishBody = 64 << 10

// Publisher publishes formats to a channel. *publisher.Publisher satisfies it.
type Publisher interface {
	PublishFormats(ctx context.Context, channel string, formats []grip.Format, opts ...grip.ItemOption) error
}

type publishResponse struct {
	Channel string `json:"channel"`
	ID      string `json:"id"`
}

// publishHandler publishes the request body to every configured proxy as
// http-response, http-stream and ws-message, so long-polls, streams and
// websocket subscribers of the channel all receive it.
type publishHandler struct {
	publisher Publisher
	responder transportcore.ErrorResponder
	newID     func() string
}

// NewPublishHandler creates the handler for POST /publish/{channel}.
// Items get the id query parameter, or a random UUID when it is absent;
// prev-id is passed through. newID may be nil.
func NewPublishHandler(p Publisher, responder transportcore.ErrorResponder, newID func() string) http.Handler {
	if p == nil {
		panic("publisher cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &publishHandler{publisher: p, responder: responder, newID: newID}
}

func (h *publishHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	channel := r.PathValue("channel")
	if channel == "" {
		h.responder.BadRequest(w, transportcore.ErrMissingChannel)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPublishBody+1))
	if err != nil {
		h.responder.BadRequest(w, fmt.Errorf("read body: %w", err))
		return
	}
	if len(body) > maxPublishBody {
		h.responder.BadRequest(w, fmt.Errorf("body exceeds %d bytes", maxPublishBody))
		return
	}

	content := bodyContent(r, body)
	formats := []grip.Format{
		grip.HTTPResponseFormat{Body: content},
		grip.HTTPStreamFormat{Content: content},
		grip.WebSocketMessageFormat{Content: content},
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		id = h.newID()
	}
	opts := []grip.ItemOption{grip.WithID(id)}
	if prevID := r.URL.Query().Get("prev-id"); prevID != "" {
		opts = append(opts, grip.WithPrevID(prevID))
	}

	if err := h.publisher.PublishFormats(r.Context(), channel, formats, opts...); err != nil {
		switch ierrors.StatusCode(err) {
		case http.StatusBadRequest:
			h.responder.BadRequest(w, err)
		case http.StatusBadGateway:
			h.responder.PublishFailed(w, err)
		default:
			h.responder.InternalError(w, err)
		}
		return
	}

	w.Header().Set(pkggrip.HeaderContentType, pkggrip.ContentTypeJSON)
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(publishResponse{Channel: channel, ID: id}); err != nil {
		slog.Error("failed to encode publish response", "error", err)
	}
}

// bodyContent treats application/octet-stream bodies as binary and
// everything else as text.
func bodyContent(r *http.Request, body []byte) grip.Content {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get(pkggrip.HeaderContentType))
	if mediaType == "application/octet-stream" {
		return grip.Binary(body)
	}
	return grip.Text(body)
}
