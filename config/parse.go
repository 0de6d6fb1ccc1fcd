package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Recognized configuration keys.
const (
	KeyAPIHost      = "api_host"
	KeyAPIKey       = "api_key"
	KeyIPv6         = "ipv6"
	KeyIPCheck      = "ipcheck_endpoint"
	KeyIPv6Check    = "ipv6check_endpoint"
	KeyDomain       = "domain"
	KeyWebhookURL   = "webhook_url"
	KeyWebhookBody  = "webhook_body"
	commentPrefix   = "#"
	keyValueSep     = "="
	domainSeparator = " "
	labelSeparator  = ","
)

var (
	errInvalidKey  = errors.New("invalid key")
	errInvalidBool = errors.New("expected true or false")
)

// ParseError reports a malformed configuration line. Line is 1-based.
// Key is empty when the line could not be split into a key and a value.
type ParseError struct {
	Line int
	Key  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("parsing config at line %d", e.Line)
	}
	return fmt.Sprintf("parsing config at line %d: key %q: %s", e.Line, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load reads the file at path, applies environment overrides and then
// overrides in order, and validates the result.
func Load(path string, overrides ...func(*Settings)) (*Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, err
	}
	if err = ApplyEnv(s); err != nil {
		return nil, err
	}
	for _, override := range overrides {
		override(s)
	}
	if err = s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Parse reads key=value lines into settings seeded with the defaults.
// The result is not validated.
func Parse(r io.Reader) (*Settings, error) {
	s := Default()
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if len(text) == 0 || strings.HasPrefix(text, commentPrefix) {
			continue
		}
		if err := s.set(line, text); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	return s, nil
}

func (s *Settings) set(line int, text string) error {
	sep := strings.Index(text, keyValueSep)
	if sep < 0 {
		return &ParseError{Line: line}
	}
	key := strings.TrimSpace(text[:sep])
	value := strings.TrimSpace(text[sep+1:])

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
	case KeyWebhookBody:
		s.WebhookBody = value
	case KeyIPv6:
		v, err := parseBool(value)
		if err != nil {
			return &ParseError{Line: line, Key: key, Err: err}
		}
		s.IPv6 = v
	case KeyDomain:
		d, ok := parseDomain(value)
		if !ok {
			return &ParseError{Line: line}
		}
		// repeated domain= lines stay separate entries
		s.Domains = append(s.Domains, d)
	default:
		return &ParseError{Line: line, Key: key, Err: errInvalidKey}
	}
	return nil
}

func parseDomain(value string) (DomainSpec, bool) {
	sep := strings.Index(value, domainSeparator)
	if sep < 0 {
		return DomainSpec{}, false
	}
	return DomainSpec{
		Name:       value[:sep],
		Subdomains: uniqueLabels(strings.Split(value[sep+1:], labelSeparator)),
	}, true
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, errInvalidBool
}
