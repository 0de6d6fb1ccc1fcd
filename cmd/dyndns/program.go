package main

import (
	"io"
	"time"

	"github.com/judwhite/go-svc"
	"github.com/jxo-me/dyndns/config"
	"github.com/jxo-me/dyndns/consts"
	"github.com/jxo-me/dyndns/core/logger"
	"github.com/jxo-me/dyndns/core/service"
	"github.com/jxo-me/dyndns/pkg/overwatch"
	"github.com/jxo-me/dyndns/pkg/watcher"
	xservice "github.com/jxo-me/dyndns/sdk/service"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// program runs the daemon under go-svc.
type program struct {
	configPath string
	interval   time.Duration
	overrides  func(*config.Settings)
	log        logger.ILogger
	zlog       *zerolog.Logger
	output     io.Writer

	appService *AppService
}

func (p *program) Init(env svc.Environment) error {
	// fail before daemonizing when the config is unusable
	if _, err := config.Load(p.configPath, p.overrides); err != nil {
		return errors.Wrap(err, "ERROR")
	}

	f, err := watcher.NewFile()
	if err != nil {
		return errors.Wrap(err, "cannot watch config file")
	}
	configManager, err := config.NewFileManager(f, p.configPath, p.zlog)
	if err != nil {
		return errors.Wrapf(err, "cannot setup config file %s for monitoring", p.configPath)
	}
	configManager.ReadConfig = p.readConfig
	p.zlog.Info().Msgf("monitoring config file at: %s", p.configPath)

	serviceCallback := func(t string, name string, err error) {
		if err != nil {
			p.log.Errorf("%s service: %s encountered an error: %s", t, name, err)
		}
	}
	serviceManager := overwatch.NewAppManager(serviceCallback)

	p.appService = NewAppService(configManager, serviceManager, p.newService, p.zlog)
	return nil
}

func (p *program) Start() error {
	go func() {
		if err := p.appService.Run(); err != nil {
			p.log.Errorf("failed to start app service: %s", err)
		}
	}()
	return nil
}

func (p *program) Stop() error {
	err := p.appService.Shutdown()
	p.log.Infof("service %s shutdown", consts.DefaultDDNSName)
	return err
}

func (p *program) readConfig(path string, log *zerolog.Logger) (config.Settings, error) {
	s, err := config.Load(path, p.overrides)
	if err != nil {
		return config.Settings{}, err
	}
	log.Debug().Str("path", path).Int("domains", len(s.Domains)).Msg("config loaded")
	return *s, nil
}

func (p *program) newService(settings config.Settings) service.IDDNSService {
	return xservice.NewDDNS(settings,
		xservice.WithName(consts.DefaultDDNSName),
		xservice.WithDelay(p.interval),
		xservice.WithLogger(p.log),
		xservice.WithOutput(p.output))
}
