package http_client

import (
	"context"
	"net/http"
	"time"

	"github.com/specialistvlad/smartnodego/internal/component"
)

// DefaultTimeout bounds every request made with a client built without an
// explicit timeout.
const DefaultTimeout = 10 * time.Second

// NewClient builds a shared *http.Client. It takes the request timeout as the
// first positional or the "timeout" keyword argument (duration string or
// seconds).
func NewClient(_ context.Context, args component.Args) (any, error) {
	timeout, err := args.Duration(0, "timeout", DefaultTimeout)
	if err != nil {
		return nil, err
	}
	return newHTTPClient(timeout), nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        16,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
