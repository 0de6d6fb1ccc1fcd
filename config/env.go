package config

import (
	"strings"

	"github.com/jxo-me/dyndns/consts"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// envKeys are the scalar keys that may be overridden from the environment,
// e.g. DYNDNS_API_KEY.
var envKeys = []string{KeyAPIHost, KeyAPIKey, KeyIPv6, KeyIPCheck, KeyIPv6Check, KeyWebhookURL}

// ApplyEnv overrides file values with DYNDNS_* environment variables.
func ApplyEnv(s *Settings) error {
	v := viper.New()
	v.SetEnvPrefix(consts.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return errors.Wrapf(err, "binding %s", key)
		}
	}
	return applyFrom(v, s)
}

func applyFrom(v *viper.Viper, s *Settings) error {
	for _, key := range envKeys {
		if !v.IsSet(key) {
			continue
		}
		value := strings.TrimSpace(v.GetString(key))
		switch key {
		case KeyAPIHost:
			s.APIHost = value
		case KeyAPIKey:
			s.APIKey = value
		case KeyIPCheck:
			s.IPCheckURL = value
		case KeyIPv6Check:
			s.IPv6CheckURL = value
		case KeyWebhookURL:
			s.WebhookURL = value
		case KeyIPv6:
			b, err := parseBool(value)
			if err != nil {
				return errors.Wrapf(err, "%s_%s", consts.EnvPrefix, strings.ToUpper(key))
			}
			s.IPv6 = b
		}
	}
	return nil
}
