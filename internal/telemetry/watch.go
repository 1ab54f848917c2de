package telemetry

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// WatchOptions configures Watch.
type WatchOptions struct {
	Namespace          string
	InsecureSkipVerify bool
}

// Watch connects to a telemetry server and writes one summary line per
// frame event to out until ctx ends. A failed connection is returned as an
// error; cancellation is not.
func Watch(ctx context.Context, rawURL string, opts WatchOptions, out io.Writer) error {
	logger := ctxlog.FromContext(ctx).With("url", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("URL %q must include scheme and host", rawURL)
	}

	clientOpts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		clientOpts.SetPath(parsedURL.Path)
	}
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		clientOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	clientOpts.SetTransports(types.NewSet(transports.WebSocket))

	namespace := opts.Namespace
	if namespace == "" {
		namespace = "/"
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, clientOpts)
	client := manager.Socket(namespace, clientOpts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		client.Disconnect()
	}()

	errc := make(chan error, 1)
	var mu sync.Mutex

	client.On(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "namespace", namespace, "sid", client.Id())
	})
	client.On(types.EventName("connect_error"), func(errs ...any) {
		var err error = fmt.Errorf("connect error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case errc <- err:
		default:
		}
	})
	client.On(types.EventName(EventFrame), func(data ...any) {
		if len(data) == 0 {
			return
		}
		p, err := Decode(data[0])
		if err != nil {
			logger.Warn("Malformed frame event.", "error", err)
			return
		}
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(out, p.Summary())
	})

	client.Connect()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errc:
		return fmt.Errorf("socket.io connection failed: %w", err)
	}
}
