package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/judwhite/go-svc"
	"github.com/jxo-me/dyndns/cmd/dyndns/cliutil"
	"github.com/jxo-me/dyndns/config"
	"github.com/jxo-me/dyndns/core/logger"
	"github.com/jxo-me/dyndns/sdk/service"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var (
	Version   = "DEV"
	BuildTime = "unknown"
)

const (
	flagOutput   = "output"
	flagInterval = "interval"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp()
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := &cli.App{}
	app.Name = "dyndns"
	app.Usage = "keep DigitalOcean DNS records pointed at this host's public address"
	app.UsageText = "dyndns [global options] [command] [command options] [subdomain...]"
	app.Version = fmt.Sprintf("%s (built %s)", Version, BuildTime)
	app.Description = `dyndns looks up the public IPv4 (and optionally IPv6) address of this
	machine and updates the A/AAAA records of the configured subdomains that
	point somewhere else. Records that do not exist are reported, never created.`
	app.Flags = append(cliutil.SettingsFlags(), cliutil.LogFlags()...)
	app.Before = func(c *cli.Context) error {
		cliutil.CreateLoggerFromContext(c)
		return nil
	}
	app.Action = cliutil.ConfiguredAction(runUpdate)
	app.Commands = commands()
	// exit codes are handled in main
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app
}

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "update",
			Usage:     "Update stale records once and exit",
			ArgsUsage: "[subdomain...]",
			Flags:     cliutil.SettingsFlags(),
			Action:    cliutil.ConfiguredAction(runUpdate),
		},
		{
			Name:  "config",
			Usage: "Print the effective settings with the API key redacted",
			Flags: append(cliutil.SettingsFlags(),
				&cli.StringFlag{
					Name:    flagOutput,
					Aliases: []string{"o"},
					Usage:   "output `FORMAT`: yaml or json",
					Value:   "yaml",
				},
			),
			Action: cliutil.ConfiguredAction(func(c *cli.Context, settings *config.Settings) error {
				return settings.Write(c.App.Writer, c.String(flagOutput))
			}),
		},
		{
			Name:  "daemon",
			Usage: "Update records periodically and reload the config file when it changes",
			Flags: append(cliutil.SettingsFlags(),
				&cli.DurationFlag{
					Name:    flagInterval,
					Aliases: []string{"i"},
					Usage:   "time between runs, at least 1m",
					Value:   service.DefaultDelay,
					EnvVars: []string{"DYNDNS_INTERVAL"},
				},
			),
			Action: cliutil.ConfiguredAction(runDaemon),
		},
		{
			Name:  "version",
			Usage: "Print the version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "dyndns %s (%s %s/%s)\n",
					c.App.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
				return nil
			},
		},
	}
}

func runUpdate(c *cli.Context, settings *config.Settings) error {
	srv := service.NewDDNS(*settings,
		service.WithLogger(logger.Default()),
		service.WithOutput(c.App.Writer))
	if _, err := srv.RunOnce(c.Context); err != nil {
		return errors.Wrap(err, "ERROR")
	}
	return nil
}

func runDaemon(c *cli.Context, _ *config.Settings) error {
	interval := c.Duration(flagInterval)
	if interval < service.MinDelay {
		return errors.Errorf("ERROR: interval %s is shorter than %s", interval, service.MinDelay)
	}
	if cliutil.FlagString(c, cliutil.FlagDomain) != "" {
		return errors.New("ERROR: daemon mode needs a config file, --domain is not supported")
	}
	p := &program{
		configPath: cliutil.FlagString(c, cliutil.FlagConfig),
		interval:   interval,
		overrides:  cliutil.FlagOverrides(c),
		log:        logger.Default(),
		zlog:       cliutil.CreateZeroLoggerFromContext(c),
		output:     c.App.Writer,
	}
	return svc.Run(p, os.Interrupt, syscall.SIGTERM)
}
