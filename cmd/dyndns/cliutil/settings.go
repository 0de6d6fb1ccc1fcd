package cliutil

import (
	"github.com/jxo-me/dyndns/config"
	"github.com/jxo-me/dyndns/consts"
	"github.com/urfave/cli/v2"
)

const (
	FlagConfig           = "config"
	FlagDomain           = "domain"
	FlagAPIKey           = "apikey"
	FlagIPv6             = "ipv6"
	FlagAPIHost          = "api-host"
	FlagIPCheckEndpoint  = "ipcheck-endpoint"
	FlagIPv6CheckEnpoint = "ipv6check-endpoint"
)

// SettingsFlags returns fresh flag instances for a command that needs
// settings. Every command gets its own so values never leak between them.
func SettingsFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    FlagConfig,
			Aliases: []string{"c"},
			Usage:   "path to the config `FILE`",
			Value:   consts.DefaultConfigFile,
			EnvVars: []string{"DYNDNS_CONFIG"},
		},
		&cli.StringFlag{
			Name:  FlagDomain,
			Usage: "update `DOMAIN` without a config file; subdomains are given as arguments",
		},
		&cli.StringFlag{
			Name:    FlagAPIKey,
			Usage:   "API token used with --domain",
			EnvVars: []string{"DYNDNS_API_KEY"},
		},
		&cli.BoolFlag{
			Name:  FlagIPv6,
			Usage: "also update AAAA records",
		},
		&cli.StringFlag{
			Name:  FlagAPIHost,
			Usage: "DNS provider API base `URL`",
		},
		&cli.StringFlag{
			Name:  FlagIPCheckEndpoint,
			Usage: "`URL` that echoes the public IPv4 address",
		},
		&cli.StringFlag{
			Name:  FlagIPv6CheckEnpoint,
			Usage: "`URL` that echoes the public IPv6 address",
		},
	}
}

// LoadSettings reads settings from --config, or from --domain, --apikey and
// the positional subdomains when --domain is given. Explicit endpoint flags
// override both.
func LoadSettings(c *cli.Context) (*config.Settings, error) {
	if domain := FlagString(c, FlagDomain); domain != "" {
		base := config.Default()
		if err := config.ApplyEnv(base); err != nil {
			return nil, err
		}
		FlagOverrides(c)(base)
		apiKey := FlagString(c, FlagAPIKey)
		if apiKey == "" {
			apiKey = base.APIKey
		}
		return config.FromArgs(domain, apiKey, c.Args().Slice(), base)
	}
	return config.Load(FlagString(c, FlagConfig), FlagOverrides(c))
}

// FlagOverrides applies the flags the user set explicitly.
func FlagOverrides(c *cli.Context) func(*config.Settings) {
	ipv6 := FlagBool(c, FlagIPv6)
	ipv6Set := FlagIsSet(c, FlagIPv6)
	apiHost := FlagString(c, FlagAPIHost)
	ipCheck := FlagString(c, FlagIPCheckEndpoint)
	ipv6Check := FlagString(c, FlagIPv6CheckEnpoint)
	apiKey := ""
	if FlagIsSet(c, FlagAPIKey) {
		apiKey = FlagString(c, FlagAPIKey)
	}
	return func(s *config.Settings) {
		if ipv6Set {
			s.IPv6 = ipv6
		}
		if apiHost != "" {
			s.APIHost = apiHost
		}
		if ipCheck != "" {
			s.IPCheckURL = ipCheck
		}
		if ipv6Check != "" {
			s.IPv6CheckURL = ipv6Check
		}
		if apiKey != "" {
			s.APIKey = apiKey
		}
	}
}

// flagContext returns the nearest context, starting at c, in which name was
// set. Settings flags exist both globally and on every command, so
// "dyndns --config x update" must not fall back to the command's default.
func flagContext(c *cli.Context, name string) *cli.Context {
	for _, ctx := range c.Lineage() {
		if ctx.IsSet(name) {
			return ctx
		}
	}
	return c
}

func FlagString(c *cli.Context, name string) string {
	return flagContext(c, name).String(name)
}

func FlagBool(c *cli.Context, name string) bool {
	return flagContext(c, name).Bool(name)
}

func FlagIsSet(c *cli.Context, name string) bool {
	return flagContext(c, name).IsSet(name)
}
