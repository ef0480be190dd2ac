package remotegpio

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/specialistvlad/smartnodego/internal/component"
	"github.com/specialistvlad/smartnodego/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Default timeouts for connecting and for a single request.
const (
	DefaultConnectTimeout = 15 * time.Second
	DefaultRequestTimeout = 5 * time.Second
)

// Requester sends one command to the remote controller and waits for its
// reply. *Bridge implements it.
type Requester interface {
	Request(ctx context.Context, event string, data map[string]any) (any, error)
}

// Bridge is a persistent socket.io connection to a remote GPIO controller.
type Bridge struct {
	io *socket.Socket
}

var _ Requester = (*Bridge)(nil)

// bridgeConfig holds the parsed constructor arguments.
type bridgeConfig struct {
	url                *url.URL
	namespace          string
	insecureSkipVerify bool
	connectTimeout     time.Duration
	requestTimeout     time.Duration
}

func parseBridgeArgs(args component.Args) (*bridgeConfig, error) {
	rawURL, err := args.String(0, "url", "")
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("argument \"url\" must be an absolute URL, got %q", rawURL)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}

	cfg := &bridgeConfig{url: u}
	if cfg.namespace, err = args.String(-1, "namespace", "/"); err != nil {
		return nil, err
	}
	if cfg.insecureSkipVerify, err = args.Bool(-1, "insecure_skip_verify", false); err != nil {
		return nil, err
	}
	if cfg.connectTimeout, err = args.Duration(-1, "timeout", DefaultConnectTimeout); err != nil {
		return nil, err
	}
	if cfg.requestTimeout, err = args.Duration(-1, "request_timeout", DefaultRequestTimeout); err != nil {
		return nil, err
	}
	if cfg.connectTimeout <= 0 || cfg.requestTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be positive")
	}
	return cfg, nil
}

// NewBridge connects to the controller and blocks until the connection is
// established, fails, or the "timeout" argument elapses. Arguments: url
// (required), namespace, insecure_skip_verify, timeout and request_timeout.
func NewBridge(ctx context.Context, args component.Args) (any, error) {
	cfg, err := parseBridgeArgs(args)
	if err != nil {
		return nil, err
	}

	logger := ctxlog.FromContext(ctx).With("url", cfg.url.String())
	logger.Info("Connecting to remote GPIO controller...")

	opts := socket.DefaultOptions()
	if cfg.url.Path != "" && cfg.url.Path != "/" {
		opts.SetPath(cfg.url.Path)
	}
	opts.SetAutoConnect(false)
	opts.SetAckTimeout(cfg.requestTimeout)
	if cfg.insecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	scheme := cfg.url.Scheme
	switch scheme {
	case "ws":
		scheme = "http"
	case "wss":
		scheme = "https"
	}
	baseURL := fmt.Sprintf("%s://%s", scheme, cfg.url.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})

	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})

	io.Connect()

	timer := time.NewTimer(cfg.connectTimeout)
	defer timer.Stop()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &Bridge{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-timer.C:
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", cfg.connectTimeout)
	}
}

// Request emits event with data and waits for the controller to acknowledge
// it. The controller acks with (error, result): a nil error is success and
// result is returned. Each reply is bound to its own request by the ack id.
func (b *Bridge) Request(ctx context.Context, event string, data map[string]any) (any, error) {
	if !b.io.Connected() {
		return nil, fmt.Errorf("remote GPIO controller is not connected")
	}
	logger := ctxlog.FromContext(ctx).With("sid", b.io.Id(), "event", event)

	done := make(chan reply, 1)
	ack := func(args []any, err error) {
		select {
		case done <- ackReply(event, args, err):
		default:
		}
	}

	if logger.Enabled(ctx, slog.LevelDebug) {
		jsonData, _ := json.Marshal(data)
		logger.Debug("Emitting event", "data", string(jsonData))
	}
	if err := b.io.Emit(event, data, ack); err != nil {
		return nil, fmt.Errorf("failed to emit '%s': %w", event, err)
	}

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type reply struct {
	value any
	err   error
}

// ackReply decodes the arguments of an acknowledgement. err is set by the
// client when the ack timed out or the connection dropped.
func ackReply(event string, args []any, err error) reply {
	if err != nil {
		return reply{err: fmt.Errorf("request '%s' failed: %w", event, err)}
	}
	if len(args) > 0 && args[0] != nil {
		msg := fmt.Sprint(args[0])
		if m, ok := args[0].(map[string]any); ok && m["message"] != nil {
			msg = fmt.Sprint(m["message"])
		}
		return reply{err: fmt.Errorf("%s: %s", event, msg)}
	}
	if len(args) > 1 {
		return reply{value: args[1]}
	}
	return reply{}
}

// Close disconnects from the controller.
func (b *Bridge) Close() error {
	b.io.Disconnect()
	return nil
}
