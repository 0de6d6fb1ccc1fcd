package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/jxo-me/dyndns/config"
	"github.com/jxo-me/dyndns/consts"
	icache "github.com/jxo-me/dyndns/core/cache"
	core "github.com/jxo-me/dyndns/core/ddns"
	"github.com/jxo-me/dyndns/core/hook"
	"github.com/jxo-me/dyndns/core/logger"
	"github.com/jxo-me/dyndns/core/resolver"
	"github.com/jxo-me/dyndns/internal/util"
	"github.com/jxo-me/dyndns/sdk/cache"
	"github.com/jxo-me/dyndns/sdk/ddns"
	"github.com/jxo-me/dyndns/sdk/ddns/digitalocean"
	xhook "github.com/jxo-me/dyndns/sdk/hook"
	"github.com/jxo-me/dyndns/sdk/report"
	xresolver "github.com/jxo-me/dyndns/sdk/resolver"
	"github.com/pkg/errors"
)

const (
	// MinDelay is the shortest interval accepted by the daemon loop.
	MinDelay = time.Minute
	// DefaultDelay is used when no interval is configured.
	DefaultDelay = 5 * time.Minute
	// failedTimesWarn is the number of failed lookups after which they are logged as errors.
	failedTimesWarn = 3
)

// Summary is the outcome of one run.
type Summary struct {
	IPv4    string
	IPv6    string
	Updated int
	Results []ddns.Result
	// Skipped is set when the daemon reused cached addresses and did not
	// contact the provider.
	Skipped bool
}

type Option func(*DDNSService)

func WithName(name string) Option {
	return func(s *DDNSService) {
		s.name = name
	}
}

func WithDelay(delay time.Duration) Option {
	return func(s *DDNSService) {
		s.delay = delay
	}
}

func WithProvider(p core.IProvider) Option {
	return func(s *DDNSService) {
		s.provider = p
	}
}

func WithResolvers(ipv4, ipv6 resolver.IResolver) Option {
	return func(s *DDNSService) {
		s.ipv4 = ipv4
		s.ipv6 = ipv6
	}
}

func WithHook(h hook.IHook) Option {
	return func(s *DDNSService) {
		s.hook = h
	}
}

// WithOutput sets where the per-record report is written.
func WithOutput(w io.Writer, opts ...report.Option) Option {
	return func(s *DDNSService) {
		s.reporter = report.New(w, opts...)
	}
}

// WithHTTPClient makes every component share client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *DDNSService) {
		s.client = client
	}
}

func WithLogger(log logger.ILogger) Option {
	return func(s *DDNSService) {
		if log != nil {
			s.logger = log
		}
	}
}

// DDNSService runs the resolve, list, compare and update cycle for a
// settings value, once or periodically.
type DDNSService struct {
	name     string
	settings config.Settings
	delay    time.Duration
	provider core.IProvider
	ipv4     resolver.IResolver
	ipv6     resolver.IResolver
	hook     hook.IHook
	reporter *report.Reporter
	client   *http.Client
	logger   logger.ILogger

	ipCache  [2]icache.IIpCache
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewDDNS(settings config.Settings, opts ...Option) *DDNSService {
	s := &DDNSService{
		name:     consts.DefaultDDNSName,
		settings: settings,
		delay:    DefaultDelay,
		logger:   logger.Default(),
		ipCache:  [2]icache.IIpCache{&cache.IpCache{}, &cache.IpCache{}},
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.delay < MinDelay {
		s.delay = MinDelay
	}
	if s.reporter == nil {
		s.reporter = report.New(os.Stdout)
	}
	if s.provider == nil {
		s.provider = digitalocean.New(settings.APIHost, settings.APIKey,
			digitalocean.WithHTTPClient(s.client),
			digitalocean.WithLogger(s.logger))
	}
	if s.ipv4 == nil {
		s.ipv4 = xresolver.NewWebResolver(settings.IPCheckURL, xresolver.NetworkIPv4,
			xresolver.WithHTTPClient(s.client),
			xresolver.WithLogger(s.logger))
	}
	if s.ipv6 == nil && settings.IPv6 {
		s.ipv6 = xresolver.NewWebResolver(settings.IPv6CheckURL, xresolver.NetworkIPv6,
			xresolver.WithHTTPClient(s.client),
			xresolver.WithLogger(s.logger))
	}
	if s.hook == nil && settings.WebhookURL != "" {
		s.hook = xhook.NewHook(settings.WebhookURL, settings.WebhookBody, s.client, s.logger)
	}
	return s
}

func (s *DDNSService) String() string {
	return s.name
}

// Hash identifies the settings and interval the service runs with.
func (s *DDNSService) Hash() string {
	b, _ := json.Marshal(struct {
		Settings config.Settings
		Delay    time.Duration
	}{s.settings, s.delay})
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// RunOnce performs a full run without consulting the address cache.
func (s *DDNSService) RunOnce(ctx context.Context) (Summary, error) {
	return s.run(ctx, false)
}

func (s *DDNSService) run(ctx context.Context, useCache bool) (Summary, error) {
	var summary Summary

	addrs, err := s.resolve(ctx)
	if err != nil {
		return summary, err
	}
	summary.IPv4, summary.IPv6 = addrs.IPv4, addrs.IPv6

	if useCache {
		changed4 := s.ipCache[0].Check(addrs.IPv4)
		changed6 := s.settings.IPv6 && s.ipCache[1].Check(addrs.IPv6)
		if !changed4 && !changed6 {
			s.logger.Debugf("addresses unchanged (%s %s), skipping %s", addrs.IPv4, addrs.IPv6, s.provider)
			summary.Skipped = true
			return summary, nil
		}
	}

	reconciler := ddns.NewReconciler(s.provider, s.settings.IPv6,
		ddns.WithObserver(s.reporter),
		ddns.WithLogger(s.logger))

	domains := make([]string, 0, len(s.settings.Domains))
	for _, spec := range s.settings.Domains {
		res, err := reconciler.Reconcile(ctx, spec, addrs)
		summary.Results = append(summary.Results, res)
		summary.Updated += res.Updated
		if err != nil {
			// already applied updates stay in place
			s.ipCache[0].Reset()
			s.ipCache[1].Reset()
			return summary, err
		}
		domains = append(domains, spec.Name)
	}
	s.reporter.Summary(summary.Updated)

	if s.hook != nil {
		event := hook.Event{IPv4: addrs.IPv4, IPv6: addrs.IPv6, Updated: summary.Updated, Domains: domains}
		if err := s.hook.ExecHook(ctx, event); err != nil {
			s.logger.Warnf("%s: %s", s.hook, err)
		}
	}
	return summary, nil
}

func (s *DDNSService) resolve(ctx context.Context) (ddns.Addrs, error) {
	var addrs ddns.Addrs
	var err error

	addrs.IPv4, err = s.ipv4.Resolve(ctx)
	if err != nil {
		return addrs, errors.WithStack(err)
	}
	if s.settings.IPv6 && s.ipv6 != nil {
		addrs.IPv6, err = s.ipv6.Resolve(ctx)
		if err != nil {
			return addrs, errors.WithStack(err)
		}
	}
	return addrs, nil
}

// Start blocks, running the cycle immediately and then once per delay,
// until Stop is called. Errors are logged and retried on the next tick.
func (s *DDNSService) Start() error {
	defer close(s.done)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	if !s.waitForNetworkConnected(ctx) {
		return nil
	}

	ticker := time.NewTicker(s.delay)
	defer ticker.Stop()
	for {
		s.tick(ctx)
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *DDNSService) tick(ctx context.Context) {
	summary, err := s.run(ctx, true)
	if err == nil {
		s.ipCache[0].ResetFailedTimes()
		if !summary.Skipped {
			s.logger.Infof("%s: %d records updated", s, summary.Updated)
		}
		return
	}
	if ctx.Err() != nil {
		return
	}

	var rerr *xresolver.Error
	if errors.As(err, &rerr) {
		s.ipCache[0].IncreaseFailedTimes()
		if s.ipCache[0].GetFailedTimes() >= failedTimesWarn {
			s.logger.Errorf("%s: %d consecutive address lookups failed: %s", s, s.ipCache[0].GetFailedTimes(), err)
			return
		}
	}
	s.logger.Warnf("%s: %s", s, err)
}

// Stop ends Start and waits for it to return.
func (s *DDNSService) Stop() error {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
	return nil
}

// waitForNetworkConnected 等待网络连接后继续
func (s *DDNSService) waitForNetworkConnected(ctx context.Context) bool {
	addr := s.provider.Endpoint()
	if addr == "" {
		return true
	}
	client := s.client
	if client == nil {
		client = util.CreateHTTPClient()
	}
	timeout := consts.NetworkConnectedWait * time.Second
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, addr, http.NoBody)
		if err != nil {
			return true
		}
		resp, err := client.Do(req)
		if err == nil {
			// 网络已连接
			_ = resp.Body.Close()
			return true
		}
		s.logger.Debugf("waiting for network: %s, retrying in %s", err, timeout)
		select {
		case <-time.After(timeout):
		case <-ctx.Done():
			return false
		}
	}
}
