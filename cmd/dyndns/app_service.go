package main

import (
	"sync"

	"github.com/jxo-me/dyndns/config"
	"github.com/jxo-me/dyndns/core/service"
	"github.com/jxo-me/dyndns/pkg/overwatch"
	"github.com/rs/zerolog"
)

// AppService is the main service that runs when no command lines flags are passed to dyndns daemon
// it manages all the running services such as the updater
type AppService struct {
	configManager    config.Manager
	serviceManager   overwatch.Manager
	newService       func(config.Settings) service.IDDNSService
	shutdownC        chan struct{}
	shutdownOnce     sync.Once
	doneC            chan struct{}
	configUpdateChan chan config.Settings
	log              *zerolog.Logger
}

// NewAppService creates a new AppService with needed supporting services
func NewAppService(configManager config.Manager, serviceManager overwatch.Manager, newService func(config.Settings) service.IDDNSService, log *zerolog.Logger) *AppService {
	return &AppService{
		configManager:    configManager,
		serviceManager:   serviceManager,
		newService:       newService,
		shutdownC:        make(chan struct{}),
		doneC:            make(chan struct{}),
		configUpdateChan: make(chan config.Settings),
		log:              log,
	}
}

// Run starts the run loop to handle config updates and run forever
func (s *AppService) Run() error {
	go s.actionLoop()
	return s.configManager.Start(s)
}

// Shutdown kills all the running services and waits for them to stop
func (s *AppService) Shutdown() error {
	s.configManager.Shutdown()
	s.shutdownOnce.Do(func() {
		close(s.shutdownC)
	})
	<-s.doneC
	return nil
}

// ConfigDidUpdate is a delegate notification from the config manager
// it is trigger when the config file has been updated and now the service needs
// to update its services accordingly
func (s *AppService) ConfigDidUpdate(c config.Settings) {
	select {
	case s.configUpdateChan <- c:
	case <-s.shutdownC:
	}
}

// actionLoop handles the actions from running processes
func (s *AppService) actionLoop() {
	defer close(s.doneC)
	for {
		select {
		case c := <-s.configUpdateChan:
			s.handleConfigUpdate(c)
		case <-s.shutdownC:
			for _, svc := range s.serviceManager.Services() {
				s.serviceManager.Remove(svc.String())
			}
			return
		}
	}
}

func (s *AppService) handleConfigUpdate(c config.Settings) {
	svc := s.newService(c)
	s.log.Info().Str("service", svc.String()).Int("domains", len(c.Domains)).Msg("applying config")
	// the manager restarts the service only when its hash changed
	s.serviceManager.Add(svc)
}
