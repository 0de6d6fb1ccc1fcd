package resolver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jxo-me/dyndns/consts"
	"github.com/jxo-me/dyndns/core/logger"
	"github.com/jxo-me/dyndns/internal/util"
	"github.com/pkg/errors"
)

const (
	NetworkIPv4 = "tcp4"
	NetworkIPv6 = "tcp6"
)

// Error is returned when the public address could not be retrieved.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to retrieve public IP from %s: %s", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type Option func(*WebResolver)

// WithHTTPClient replaces the family-pinned default client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *WebResolver) {
		if client != nil {
			r.client = client
		}
	}
}

func WithLogger(log logger.ILogger) Option {
	return func(r *WebResolver) {
		if log != nil {
			r.logger = log
		}
	}
}

// WebResolver asks an IP echo service for the caller's address.
// The trimmed response body is returned as is.
type WebResolver struct {
	url     string
	network string
	client  *http.Client
	logger  logger.ILogger
}

// NewWebResolver creates a resolver for url. network is NetworkIPv4 or
// NetworkIPv6 and pins the default client to that address family.
func NewWebResolver(url, network string, opts ...Option) *WebResolver {
	r := &WebResolver{
		url:     url,
		network: network,
		logger:  logger.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = util.CreateNoProxyHTTPClient(network)
	}
	return r
}

func (r *WebResolver) String() string {
	return r.network + " " + r.url
}

// Resolve implements resolver.IResolver.
func (r *WebResolver) Resolve(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, http.NoBody)
	if err != nil {
		return "", &Error{URL: r.url, Err: errors.Wrap(err, "creating request")}
	}
	req.Header.Set(consts.HeaderCacheControl, "no-cache")

	resp, err := r.client.Do(req)
	body, err := util.GetHTTPResponseOrg(resp, r.url, err)
	if err != nil {
		return "", &Error{URL: r.url, Err: err}
	}

	addr := strings.TrimSpace(string(body))
	r.logger.Debugf("%s reported %q", r, addr)
	return addr, nil
}
