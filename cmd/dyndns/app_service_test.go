package main

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jxo-me/dyndns/config"
	"github.com/jxo-me/dyndns/core/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConfigManager struct {
	notifier config.Notifier
	started  chan struct{}
	stop     chan struct{}
	once     sync.Once
}

func (m *mockConfigManager) Start(n config.Notifier) error {
	m.notifier = n
	close(m.started)
	<-m.stop
	return nil
}

func (m *mockConfigManager) Shutdown() {
	m.once.Do(func() { close(m.stop) })
}

type mockDDNS struct {
	name string
	hash string
}

func (s *mockDDNS) String() string { return s.name }
func (s *mockDDNS) Hash() string { return s.hash }
func (s *mockDDNS) Start() error { return nil }
func (s *mockDDNS) Stop() error { return nil }

type mockServiceManager struct {
	mu       sync.Mutex
	services map[string]service.IDDNSService
	added    []string
	removed  []string
}

func (m *mockServiceManager) Add(s service.IDDNSService) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services[s.String()] = s
	m.added = append(m.added, s.Hash())
}

func (m *mockServiceManager) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.services, name)
	m.removed = append(m.removed, name)
}

func (m *mockServiceManager) Services() []service.IDDNSService {
	m.mu.Lock()
	defer m.mu.Unlock()
	values := make([]service.IDDNSService, 0, len(m.services))
	for _, s := range m.services {
		values = append(values, s)
	}
	sort.Slice(values, func(i, j int) bool { return values[i].String() < values[j].String() })
	return values
}

func (m *mockServiceManager) addedHashes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.added...)
}

func TestAppServiceAppliesConfigUpdates(t *testing.T) {
	cm := &mockConfigManager{started: make(chan struct{}), stop: make(chan struct{})}
	sm := &mockServiceManager{services: map[string]service.IDDNSService{}}
	newService := func(s config.Settings) service.IDDNSService {
		return &mockDDNS{name: "default", hash: s.Domains[0].Name}
	}
	log := zerolog.Nop()
	app := NewAppService(cm, sm, newService, &log)

	runErr := make(chan error, 1)
	go func() { runErr <- app.Run() }()
	<-cm.started

	cm.notifier.ConfigDidUpdate(config.Settings{Domains: []config.DomainSpec{{Name: "example.com", Subdomains: []string{"home"}}}})
	cm.notifier.ConfigDidUpdate(config.Settings{Domains: []config.DomainSpec{{Name: "example.org", Subdomains: []string{"home"}}}})

	require.Eventually(t, func() bool { return len(sm.addedHashes()) == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"example.com", "example.org"}, sm.addedHashes())

	require.NoError(t, app.Shutdown())
	require.NoError(t, <-runErr)
	assert.Equal(t, []string{"default"}, sm.removed)
	assert.Empty(t, sm.Services())
}

func TestAppServiceConfigUpdateAfterShutdown(t *testing.T) {
	cm := &mockConfigManager{started: make(chan struct{}), stop: make(chan struct{})}
	sm := &mockServiceManager{services: map[string]service.IDDNSService{}}
	log := zerolog.Nop()
	app := NewAppService(cm, sm, func(config.Settings) service.IDDNSService { return &mockDDNS{name: "default"} }, &log)

	go func() { _ = app.Run() }()
	<-cm.started
	require.NoError(t, app.Shutdown())

	done := make(chan struct{})
	go func() {
		cm.notifier.ConfigDidUpdate(config.Settings{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ConfigDidUpdate blocked after shutdown")
	}
	assert.Empty(t, sm.addedHashes())
}
