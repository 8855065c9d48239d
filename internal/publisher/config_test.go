package publisher

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/go-grip/internal/auth"
)

func TestParseGripURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		uri  string
		want EndpointConfig
	}{
		{
			name: "plain",
			uri:  "http://localhost:5561",
			want: EndpointConfig{ControlURI: "http://localhost:5561"},
		},
		{
			name: "trailing slash trimmed",
			uri:  "http://localhost:5561/",
			want: EndpointConfig{ControlURI: "http://localhost:5561"},
		},
		{
			name: "iss and base64 key",
			uri:  "https://api.fanout.io/realm/123?iss=123&key=base64:c2VjcmV0",
			want: EndpointConfig{ControlURI: "https://api.fanout.io/realm/123", ControlIss: "123", Key: []byte("secret")},
		},
		{
			name: "verify params and extra query",
			uri:  "http://proxy:5561/?verify-iss=pushpin&verify-key=plain&foo=bar",
			want: EndpointConfig{ControlURI: "http://proxy:5561?foo=bar", VerifyIss: "pushpin", VerifyKey: []byte("plain")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseGripURI(tt.uri)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseGripURI_Errors(t *testing.T) {
	t.Parallel()

	for _, uri := range []string{"", "localhost:5561", "http://%zz", "/relative"} {
		_, err := ParseGripURI(uri)
		assert.True(t, errors.Is(err, ErrInvalidGripURI), "uri %q: %v", uri, err)
	}

	_, err := ParseGripURI("http://proxy/?key=base64:***")
	assert.True(t, errors.Is(err, auth.ErrInvalidKeyParam))
}

func TestPublishURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		control string
		want    string
	}{
		{control: "http://localhost:5561", want: "http://localhost:5561/publish/"},
		{control: "http://localhost:5561/", want: "http://localhost:5561/publish/"},
		{control: "https://api.fanout.io/realm/123", want: "https://api.fanout.io/realm/123/publish/"},
		{control: "http://proxy:5561?foo=bar", want: "http://proxy:5561/publish/?foo=bar"},
	}

	for _, tt := range tests {
		got, err := publishURL(tt.control)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.control)
	}
}

func TestEndpointConfig_ResolveAuth(t *testing.T) {
	t.Parallel()

	assert.Nil(t, EndpointConfig{}.resolveAuth())
	assert.Equal(t, auth.Bearer{Token: "tok"}, EndpointConfig{Key: "tok"}.resolveAuth())
	assert.Equal(t, auth.Basic{User: "u"}, EndpointConfig{Key: "tok", Auth: auth.Basic{User: "u"}}.resolveAuth())

	jwtAuth, ok := EndpointConfig{ControlIss: "realm", Key: []byte("k")}.resolveAuth().(auth.JWT)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"iss": "realm"}, jwtAuth.Claims)
}
