// gripctl is a command-line client for GRIP proxies. It publishes items to
// one or more proxies, checks Grip-Sig tokens and prints hold instructions
// for use in scripts and shell backends.
//
// Usage:
//
//	gripctl publish --grip-url URI --channel NAME [flags] TEXT...
//	gripctl verify --key KEY [--iss ISS] TOKEN
//	gripctl hold --channel NAME [--mode response|stream] [flags]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/jamesprial/go-grip/internal/auth"
	"github.com/jamesprial/go-grip/internal/config"
	"github.com/jamesprial/go-grip/internal/grip"
	"github.com/jamesprial/go-grip/internal/instruct"
	"github.com/jamesprial/go-grip/internal/publisher"
	"github.com/jamesprial/go-grip/internal/sigverify"
	pkggrip "github.com/jamesprial/go-grip/pkg/grip"
)

// errInvalidSignature is returned by verify so the process exits non-zero.
var errInvalidSignature = errors.New("signature invalid")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env carries the process streams so commands can be tested.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	e := env{stdin: stdin, stdout: stdout, stderr: stderr}
	if len(args) == 0 {
		printUsage(stderr)
		return errors.New("missing command")
	}

	switch args[0] {
	case "publish":
		return e.publish(ctx, args[1:])
	case "verify":
		return e.verify(ctx, args[1:])
	case "hold":
		return e.hold(args[1:])
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `gripctl: GRIP proxy command-line client.

Commands:
  publish   publish an item to a channel on every configured proxy
  verify    check a Grip-Sig token
  hold      print the hold instruction headers (or body) for a request

Run "gripctl COMMAND --help" for the flags of a command.
`)
}

// parseFlags parses args, treating --help as a successful no-op.
func parseFlags(fs *pflag.FlagSet, args []string) (help bool, err error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

func (e env) publish(ctx context.Context, args []string) error {
	var (
		gripURLs   []string
		configPath string
		channel    string
		id         string
		prevID     string
		format     string
		closeHold  bool
		code       int
		timeout    time.Duration
		verbose    bool
	)

	fs := pflag.NewFlagSet("publish", pflag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.StringArrayVar(&gripURLs, "grip-url", nil, "GRIP URI of a proxy; repeatable (default $GRIP_URL)")
	fs.StringVar(&configPath, "config", "", "YAML endpoints file (default $GRIP_CONFIG)")
	fs.StringVarP(&channel, "channel", "c", "", "channel to publish to (required)")
	fs.StringVar(&id, "id", "", "item id (default random UUID)")
	fs.StringVar(&prevID, "prev-id", "", "id of the previous item on the channel")
	fs.StringVarP(&format, "format", "f", "all", "http-response, http-stream, ws-message or all")
	fs.BoolVar(&closeHold, "close", false, "close held streams and websockets instead of sending content")
	fs.IntVar(&code, "code", 0, "http-response status, or websocket close code with --close")
	fs.DurationVar(&timeout, "timeout", publisher.DefaultTimeout, "request timeout per proxy")
	fs.BoolVarP(&verbose, "verbose", "v", false, "log each request")

	if help, err := parseFlags(fs, args); help || err != nil {
		return err
	}
	if channel == "" {
		return errors.New("--channel is required")
	}

	endpoints, err := publishEndpoints(gripURLs, configPath)
	if err != nil {
		return err
	}
	if len(endpoints) == 0 {
		return errors.New("no proxies configured: pass --grip-url, --config or set GRIP_URL")
	}

	content, err := e.readContent(fs.Args(), closeHold)
	if err != nil {
		return err
	}
	formats, err := buildFormats(format, content, closeHold, code)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(e.stderr, &slog.HandlerOptions{Level: level}))

	pub, err := publisher.New(endpoints,
		publisher.WithTransport(publisher.NewHTTPTransport(timeout)),
		publisher.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	if id == "" {
		id = uuid.NewString()
	}
	opts := []grip.ItemOption{grip.WithID(id)}
	if prevID != "" {
		opts = append(opts, grip.WithPrevID(prevID))
	}

	if err := pub.PublishFormats(ctx, channel, formats, opts...); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "published %s to %s on %d proxies\n", id, channel, len(endpoints))
	return nil
}

// publishEndpoints resolves flags, falling back to GRIP_URL and GRIP_CONFIG.
func publishEndpoints(gripURLs []string, configPath string) ([]publisher.EndpointConfig, error) {
	if len(gripURLs) == 0 {
		for _, uri := range strings.Split(os.Getenv("GRIP_URL"), ",") {
			if uri = strings.TrimSpace(uri); uri != "" {
				gripURLs = append(gripURLs, uri)
			}
		}
	}
	if configPath == "" {
		configPath = os.Getenv("GRIP_CONFIG")
	}

	entries := make([]config.Endpoint, 0, len(gripURLs))
	for _, uri := range gripURLs {
		entries = append(entries, config.Endpoint{GripURI: uri})
	}
	if configPath != "" {
		fromFile, err := config.LoadEndpointsFile(configPath)
		if err != nil {
			return nil, err
		}
		entries = append(entries, fromFile...)
	}

	cfg := &config.Config{Endpoints: entries}
	return cfg.EndpointConfigs()
}

// readContent joins the positional arguments, or reads stdin for "-".
func (e env) readContent(args []string, closeHold bool) (grip.Content, error) {
	if closeHold {
		if len(args) > 0 {
			return nil, errors.New("--close takes no content")
		}
		return nil, nil
	}
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(e.stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return grip.Text(data), nil
	}
	if len(args) == 0 {
		return nil, errors.New("missing content: pass TEXT or - for stdin")
	}
	return grip.Text(strings.Join(args, " ")), nil
}

func buildFormats(name string, content grip.Content, closeHold bool, code int) ([]grip.Format, error) {
	var formats []grip.Format
	want := func(n string) bool { return name == "all" || name == n }

	if want(pkggrip.FormatHTTPResponse) && !closeHold {
		formats = append(formats, grip.HTTPResponseFormat{Code: code, Body: content})
	}
	if want(pkggrip.FormatHTTPStream) {
		f, err := grip.NewHTTPStreamFormat(content, closeHold)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	if want(pkggrip.FormatWebSocketMessage) {
		var closeCode int
		if closeHold {
			closeCode = code
		}
		f, err := grip.NewWebSocketMessageFormat(content, closeHold, closeCode)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}

	if len(formats) == 0 {
		if name == pkggrip.FormatHTTPResponse && closeHold {
			return nil, errors.New("--close does not apply to http-response")
		}
		return nil, fmt.Errorf("unknown format %q", name)
	}
	return formats, nil
}

func (e env) verify(ctx context.Context, args []string) error {
	var (
		key    string
		iss    string
		leeway time.Duration
	)

	fs := pflag.NewFlagSet("verify", pflag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.StringVarP(&key, "key", "k", "", `verify key: secret, "base64:..." or @file with a PEM or JWK (required)`)
	fs.StringVar(&iss, "iss", "", "required issuer")
	fs.DurationVar(&leeway, "leeway", 0, "allowed clock skew")

	if help, err := parseFlags(fs, args); help || err != nil {
		return err
	}
	if key == "" {
		return errors.New("--key is required")
	}
	if fs.NArg() != 1 {
		return errors.New("expected exactly one TOKEN argument")
	}

	keyValue, err := readKey(key)
	if err != nil {
		return err
	}

	opts := []sigverify.Option{sigverify.WithLeeway(leeway)}
	if iss != "" {
		opts = append(opts, sigverify.WithIssuer(iss))
	}
	verifier, err := sigverify.NewVerifier(keyValue, opts...)
	if err != nil {
		return err
	}

	res := verifier.Verify(ctx, fs.Arg(0))
	if !res.Valid {
		fmt.Fprintf(e.stdout, "invalid: %v\n", res.Err)
		return errInvalidSignature
	}

	enc := json.NewEncoder(e.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res.Claims)
}

// readKey loads @path keys from disk and decodes "base64:" values.
func readKey(flag string) ([]byte, error) {
	if path, ok := strings.CutPrefix(flag, "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
		return data, nil
	}
	return auth.DecodeKeyParam(flag)
}

func (e env) hold(args []string) error {
	var (
		channels         []string
		mode             string
		timeout          int
		status           int
		keepAlive        string
		keepAliveTimeout int
		nextLink         string
		meta             []string
		body             bool
	)

	fs := pflag.NewFlagSet("hold", pflag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.StringArrayVarP(&channels, "channel", "c", nil, `channel in Grip-Channel syntax ("a; prev-id=1"); repeatable (required)`)
	fs.StringVarP(&mode, "mode", "m", pkggrip.HoldModeResponse, "response or stream")
	fs.IntVar(&timeout, "timeout", 0, "long-poll timeout in seconds")
	fs.IntVar(&status, "status", 0, "status code of the held response")
	fs.StringVar(&keepAlive, "keep-alive", "", "keep-alive data sent on idle holds")
	fs.IntVar(&keepAliveTimeout, "keep-alive-timeout", 0, "keep-alive interval in seconds")
	fs.StringVar(&nextLink, "next-link", "", "URI the proxy fetches when the hold completes")
	fs.StringArrayVar(&meta, "meta", nil, "connection meta as key=value; repeatable")
	fs.BoolVar(&body, "body", false, "print the application/grip-instruct body instead of headers")

	if help, err := parseFlags(fs, args); help || err != nil {
		return err
	}
	if len(channels) == 0 {
		return errors.New("--channel is required")
	}

	g := instruct.New()
	for _, c := range channels {
		parsed, err := grip.ParseChannels(c)
		if err != nil {
			return err
		}
		g.AddChannels(parsed...)
	}

	var err error
	switch mode {
	case pkggrip.HoldModeResponse:
		err = g.SetHoldLongPoll(timeout)
	case pkggrip.HoldModeStream:
		err = g.SetHoldStream()
	default:
		err = fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		return err
	}

	if status != 0 {
		if err := g.SetStatus(status); err != nil {
			return err
		}
	}
	if keepAlive != "" {
		if err := g.SetKeepAlive(grip.Text(keepAlive), keepAliveTimeout); err != nil {
			return err
		}
	}
	if nextLink != "" {
		if err := g.SetNextLink(nextLink, 0); err != nil {
			return err
		}
	}
	for _, kv := range meta {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("--meta %q: expected key=value", kv)
		}
		if err := g.SetMeta(k, v); err != nil {
			return err
		}
	}

	if body {
		b, err := g.Body()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(e.stdout, string(b))
		return err
	}
	return g.Headers().Write(e.stdout)
}
