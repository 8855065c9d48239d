package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/go-grip/internal/auth"
	ierrors "github.com/jamesprial/go-grip/internal/errors"
	"github.com/jamesprial/go-grip/internal/grip"
)

type recordedRequest struct {
	Path          string
	Authorization string
	ContentType   string
	Body          map[string]any
}

type proxyStub struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	reply    string
}

func newProxyStub(t *testing.T, status int, reply string) (*proxyStub, *httptest.Server) {
	t.Helper()
	stub := &proxyStub{status: status, reply: reply}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)

		stub.mu.Lock()
		stub.requests = append(stub.requests, recordedRequest{
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			Body:          body,
		})
		stub.mu.Unlock()

		w.WriteHeader(stub.status)
		_, _ = w.Write([]byte(stub.reply))
	}))
	t.Cleanup(srv.Close)
	return stub, srv
}

func (s *proxyStub) recorded() []recordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recordedRequest(nil), s.requests...)
}

func streamItem(t *testing.T, text string, opts ...grip.ItemOption) *grip.Item {
	t.Helper()
	item, err := grip.NewItem([]grip.Format{grip.HTTPStreamFormat{Content: grip.Text(text)}}, opts...)
	require.NoError(t, err)
	return item
}

func TestClient_Publish(t *testing.T) {
	t.Parallel()

	stub, srv := newProxyStub(t, http.StatusOK, "Published")
	client, err := NewClient(EndpointConfig{ControlURI: srv.URL, Auth: auth.Basic{User: "u", Pass: "p"}})
	require.NoError(t, err)

	err = client.Publish(context.Background(), "room", streamItem(t, "hello", grip.WithID("2"), grip.WithPrevID("1")))
	require.NoError(t, err)

	reqs := stub.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/publish/", reqs[0].Path)
	assert.Equal(t, "Basic dTpw", reqs[0].Authorization)
	assert.Equal(t, "application/json", reqs[0].ContentType)

	want := map[string]any{
		"items": []any{
			map[string]any{
				"channel":     "room",
				"id":          "2",
				"prev-id":     "1",
				"http-stream": map[string]any{"content": "hello"},
			},
		},
	}
	assert.Equal(t, want, reqs[0].Body)
}

func TestClient_Publish_JWTAuth(t *testing.T) {
	t.Parallel()

	stub, srv := newProxyStub(t, http.StatusOK, "")
	client, err := NewClient(EndpointConfig{ControlURI: srv.URL + "/", ControlIss: "realm", Key: []byte("secret")})
	require.NoError(t, err)

	require.NoError(t, client.Publish(context.Background(), "c", streamItem(t, "x")))

	reqs := stub.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/publish/", reqs[0].Path)

	token := strings.TrimPrefix(reqs[0].Authorization, "Bearer ")
	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) { return []byte("secret"), nil })
	require.NoError(t, err)
	assert.Equal(t, "realm", claims["iss"])
	assert.Contains(t, claims, "exp")
}

func TestClient_Publish_Non2xx(t *testing.T) {
	t.Parallel()

	_, srv := newProxyStub(t, http.StatusBadRequest, "bad item")
	client, err := NewClient(EndpointConfig{ControlURI: srv.URL})
	require.NoError(t, err)

	err = client.Publish(context.Background(), "c", streamItem(t, "x"))
	require.Error(t, err)

	var pe *PublishError
	require.True(t, errors.As(err, &pe))
	require.Len(t, pe.Failures, 1)
	assert.Equal(t, srv.URL, pe.Failures[0].ControlURI)
	assert.Equal(t, http.StatusBadRequest, pe.Failures[0].StatusCode)
	assert.Equal(t, "bad item", pe.Failures[0].Body)
	assert.True(t, errors.Is(err, ierrors.ErrPublish))
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
}

type failingTransport struct{ err error }

func (f failingTransport) Do(context.Context, *TransportRequest) (*TransportResponse, error) {
	return nil, f.err
}

func TestClient_Publish_TransportError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	client, err := NewClient(EndpointConfig{ControlURI: "http://proxy:5561"}, WithTransport(failingTransport{err: cause}))
	require.NoError(t, err)

	err = client.Publish(context.Background(), "c", streamItem(t, "x"))

	var pe *PublishError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 0, pe.Failures[0].StatusCode)
	assert.True(t, errors.Is(err, cause))
}

func TestClient_ContextCancelled(t *testing.T) {
	t.Parallel()

	_, srv := newProxyStub(t, http.StatusOK, "")
	client, err := NewClient(EndpointConfig{ControlURI: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = client.Publish(ctx, "c", streamItem(t, "x"))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, errors.Is(err, ierrors.ErrTransport))
}

func TestClient_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewClient(EndpointConfig{})
	assert.True(t, errors.Is(err, ErrEmptyControlURI))

	client, err := NewClient(EndpointConfig{ControlURI: "http://proxy"}, WithTransport(failingTransport{}))
	require.NoError(t, err)

	err = client.Publish(context.Background(), "", streamItem(t, "x"))
	assert.True(t, errors.Is(err, grip.ErrEmptyChannelName))

	err = client.Publish(context.Background(), "c", nil)
	assert.True(t, errors.Is(err, ErrNoItems))

	err = client.PublishItems(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrNoItems))
}
