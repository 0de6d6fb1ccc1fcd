package cliutil

import (
	"github.com/jxo-me/dyndns/config"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

const errorExitCode = 1

// ConfiguredAction loads the settings before calling actionFunc. Loading
// failures end the command before any network call is made.
func ConfiguredAction(actionFunc func(*cli.Context, *config.Settings) error) cli.ActionFunc {
	return WithErrorHandler(func(c *cli.Context) error {
		settings, err := LoadSettings(c)
		if err != nil {
			return cli.Exit("ERROR: "+err.Error(), errorExitCode)
		}
		return actionFunc(c, settings)
	})
}

// WithErrorHandler turns every error into an exit code so that cli prints it
// to the error writer and terminates with a non-zero status.
func WithErrorHandler(actionFunc cli.ActionFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		err := actionFunc(c)
		if err == nil {
			return nil
		}
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			return err
		}
		return cli.Exit(err.Error(), errorExitCode)
	}
}
