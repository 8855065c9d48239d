package publisher

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jamesprial/go-grip/internal/auth"
	ierrors "github.com/jamesprial/go-grip/internal/errors"
)

// EndpointConfig describes one proxy publish endpoint. It is resolved once
// when the Client is built.
type EndpointConfig struct {
	// ControlURI is the proxy control base, e.g. http://localhost:5561.
	ControlURI string

	// ControlIss and Key sign a JWT (claims {"iss": ControlIss}) for every
	// request. Key alone without ControlIss is sent as a bearer token.
	ControlIss string
	Key        any

	// Auth overrides ControlIss/Key.
	Auth auth.Auth

	// VerifyIss and VerifyKey validate Grip-Sig headers from this proxy.
	// VerifyKey defaults to Key.
	VerifyIss string
	VerifyKey any
}

// ParseGripURI converts a GRIP URI such as
// http://localhost:5561/?iss=realm&key=base64:c2VjcmV0 into an
// EndpointConfig. The iss, key, verify-iss and verify-key parameters are
// consumed; other query parameters stay on the control URI.
func ParseGripURI(uri string) (EndpointConfig, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return EndpointConfig{}, ierrors.Invalid(domainPublisher, "ParseGripURI",
			fmt.Errorf("%w: %v", ErrInvalidGripURI, err))
	}
	if u.Scheme == "" || u.Host == "" {
		return EndpointConfig{}, ierrors.Invalid(domainPublisher, "ParseGripURI",
			fmt.Errorf("%w: %q needs scheme and host", ErrInvalidGripURI, uri))
	}

	params := u.Query()
	take := func(name string) string {
		v := params.Get(name)
		params.Del(name)
		return v
	}

	var cfg EndpointConfig
	cfg.ControlIss = take("iss")
	cfg.VerifyIss = take("verify-iss")

	if key := take("key"); key != "" {
		decoded, err := auth.DecodeKeyParam(key)
		if err != nil {
			return EndpointConfig{}, err
		}
		cfg.Key = decoded
	}
	if key := take("verify-key"); key != "" {
		decoded, err := auth.DecodeKeyParam(key)
		if err != nil {
			return EndpointConfig{}, err
		}
		cfg.VerifyKey = decoded
	}

	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = params.Encode()
	u.Fragment = ""
	cfg.ControlURI = u.String()
	return cfg, nil
}

// publishURL returns <control_uri>/publish/, adding the separating slash
// when the control URI lacks one.
func publishURL(controlURI string) (string, error) {
	u, err := url.Parse(controlURI)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.Path += "publish/"
	u.RawPath = ""
	return u.String(), nil
}

func (c EndpointConfig) resolveAuth() auth.Auth {
	switch {
	case c.Auth != nil:
		return c.Auth
	case c.Key != nil && c.ControlIss != "":
		return auth.JWT{Claims: map[string]any{"iss": c.ControlIss}, Key: c.Key}
	case c.Key != nil:
		if token := keyString(c.Key); token != "" {
			return auth.Bearer{Token: token}
		}
	}
	return nil
}

func keyString(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case []byte:
		return string(k)
	}
	return ""
}
