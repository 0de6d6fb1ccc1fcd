package config

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jxo-me/dyndns/consts"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingAPIKey = errors.New("api_key not set in config")
	ErrNoDomains     = errors.New("no domain names specified in config")
	ErrUnknownFormat = errors.New("unknown output format")
)

// DomainSpec 一个 domain= 行
type DomainSpec struct {
	Name       string   `yaml:"name" json:"name"`
	Subdomains []string `yaml:"subdomains" json:"subdomains"`
}

func (d DomainSpec) String() string {
	return d.Name + " " + strings.Join(d.Subdomains, ", ")
}

// Settings is the immutable result of reading the configuration file.
type Settings struct {
	APIHost      string       `yaml:"apiHost" json:"api_host"`
	APIKey       string       `yaml:"apiKey" json:"api_key"`
	IPv6         bool         `yaml:"ipv6" json:"ipv6"`
	IPCheckURL   string       `yaml:"ipCheckEndpoint" json:"ipcheck_endpoint"`
	IPv6CheckURL string       `yaml:"ipv6CheckEndpoint" json:"ipv6check_endpoint"`
	WebhookURL   string       `yaml:"webhookURL,omitempty" json:"webhook_url,omitempty"`
	WebhookBody  string       `yaml:"webhookBody,omitempty" json:"webhook_body,omitempty"`
	Domains      []DomainSpec `yaml:"domains" json:"domains"`
}

// Default returns settings holding only the built-in endpoints.
func Default() *Settings {
	return &Settings{
		APIHost:      consts.DefaultAPIHost,
		IPCheckURL:   consts.DefaultIPCheckURL,
		IPv6CheckURL: consts.DefaultIPv6CheckURL,
	}
}

// Validate 检查必填项
func (s *Settings) Validate() error {
	if len(s.APIKey) == 0 {
		return ErrMissingAPIKey
	}
	if len(s.Domains) == 0 {
		return ErrNoDomains
	}
	return nil
}

// FromArgs builds settings for an invocation without a config file.
// Endpoints are taken from base when it is not nil.
func FromArgs(domain, apiKey string, subdomains []string, base *Settings) (*Settings, error) {
	s := Default()
	if base != nil {
		c := *base
		s = &c
	}
	s.APIKey = apiKey
	s.Domains = nil
	if domain != "" {
		s.Domains = []DomainSpec{{Name: domain, Subdomains: uniqueLabels(subdomains)}}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Redacted returns a copy that is safe to print.
func (s *Settings) Redacted() *Settings {
	c := *s
	if c.APIKey != "" {
		c.APIKey = "********"
	}
	c.Domains = append([]DomainSpec(nil), s.Domains...)
	return &c
}

// Write prints the settings with the api key redacted.
func (s *Settings) Write(w io.Writer, format string) error {
	r := s.Redacted()
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		enc.SetIndent(2)
		return enc.Encode(r)
	default:
		return errors.Wrap(ErrUnknownFormat, fmt.Sprintf("%q", format))
	}
}

// uniqueLabels trims labels, drops empty ones and keeps the first occurrence.
func uniqueLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
