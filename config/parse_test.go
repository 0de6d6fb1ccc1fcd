package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jxo-me/dyndns/consts"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDomainLine(t *testing.T) {
	s, err := Parse(strings.NewReader("domain = example.com host1, host2\n"))
	require.NoError(t, err)
	require.Len(t, s.Domains, 1)
	assert.Equal(t, DomainSpec{Name: "example.com", Subdomains: []string{"host1", "host2"}}, s.Domains[0])
}

func TestParseAllKeys(t *testing.T) {
	conf := `# dyndns
api_host=https://dns.example.net/v2
api_key=secret
ipv6=True
ipcheck_endpoint=https://v4.example.net
ipv6check_endpoint=https://v6.example.net

webhook_url=https://hooks.example.net/?n=#{updated}
webhook_body={"ip":"#{ipv4Addr}"}
domain=example.com home,office ,, home
domain=example.org @
`
	s, err := Parse(strings.NewReader(conf))
	require.NoError(t, err)

	assert.Equal(t, "https://dns.example.net/v2", s.APIHost)
	assert.Equal(t, "secret", s.APIKey)
	assert.True(t, s.IPv6)
	assert.Equal(t, "https://v4.example.net", s.IPCheckURL)
	assert.Equal(t, "https://v6.example.net", s.IPv6CheckURL)
	assert.Equal(t, "https://hooks.example.net/?n=#{updated}", s.WebhookURL)
	assert.Equal(t, `{"ip":"#{ipv4Addr}"}`, s.WebhookBody)
	assert.Equal(t, []DomainSpec{
		{Name: "example.com", Subdomains: []string{"home", "office"}},
		{Name: "example.org", Subdomains: []string{"@"}},
	}, s.Domains)
	assert.NoError(t, s.Validate())
}

func TestParseDefaults(t *testing.T) {
	s, err := Parse(strings.NewReader("api_key=k\n"))
	require.NoError(t, err)
	assert.Equal(t, consts.DefaultAPIHost, s.APIHost)
	assert.Equal(t, consts.DefaultIPCheckURL, s.IPCheckURL)
	assert.Equal(t, consts.DefaultIPv6CheckURL, s.IPv6CheckURL)
	assert.False(t, s.IPv6)
}

func TestParseDuplicateDomainsAreKept(t *testing.T) {
	s, err := Parse(strings.NewReader("domain=example.com a\ndomain=example.com b\n"))
	require.NoError(t, err)
	assert.Equal(t, []DomainSpec{
		{Name: "example.com", Subdomains: []string{"a"}},
		{Name: "example.com", Subdomains: []string{"b"}},
	}, s.Domains)
}

func TestParseSubdomainsKeepCase(t *testing.T) {
	s, err := Parse(strings.NewReader("domain=example.com Home, home\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Home", "home"}, s.Domains[0].Subdomains)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		conf string
		line int
		key  string
		msg  string
	}{
		{
			name: "unknown key",
			conf: "api_key=k\n\nfoo=bar\n",
			line: 3,
			key:  "foo",
			msg:  `parsing config at line 3: key "foo": invalid key`,
		},
		{
			name: "missing separator",
			conf: "api_key=k\nnoseparator\n",
			line: 2,
			msg:  "parsing config at line 2",
		},
		{
			name: "domain without subdomains",
			conf: "domain=example.com\n",
			line: 1,
			msg:  "parsing config at line 1",
		},
		{
			name: "bad boolean",
			conf: "# c\nipv6=yes\n",
			line: 2,
			key:  "ipv6",
			msg:  `parsing config at line 2: key "ipv6": expected true or false`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.conf))
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.line, perr.Line)
			assert.Equal(t, tt.key, perr.Key)
			assert.EqualError(t, err, tt.msg)
		})
	}
}

func TestValidate(t *testing.T) {
	s, err := Parse(strings.NewReader("domain=example.com home\n"))
	require.NoError(t, err)
	assert.ErrorIs(t, s.Validate(), ErrMissingAPIKey)

	s, err = Parse(strings.NewReader("api_key=k\n"))
	require.NoError(t, err)
	assert.ErrorIs(t, s.Validate(), ErrNoDomains)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "dyndns.conf")
	require.NoError(t, os.WriteFile(path, []byte("api_key=k\ndomain=example.com home\n"), 0600))
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "k", s.APIKey)

	missing := filepath.Join(dir, "nodomains.conf")
	require.NoError(t, os.WriteFile(missing, []byte("api_key=k\n"), 0600))
	_, err = Load(missing)
	assert.ErrorIs(t, err, ErrNoDomains)

	_, err = Load(filepath.Join(dir, "absent.conf"))
	assert.Error(t, err)
}

func TestFromArgs(t *testing.T) {
	s, err := FromArgs("example.com", "k", []string{"home", " office", "home"}, nil)
	require.NoError(t, err)
	assert.Equal(t, consts.DefaultAPIHost, s.APIHost)
	assert.Equal(t, []DomainSpec{{Name: "example.com", Subdomains: []string{"home", "office"}}}, s.Domains)

	_, err = FromArgs("example.com", "", []string{"home"}, nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = FromArgs("", "k", nil, nil)
	assert.ErrorIs(t, err, ErrNoDomains)
}

func TestWriteRedactsKey(t *testing.T) {
	s := &Settings{APIKey: "secret", Domains: []DomainSpec{{Name: "example.com", Subdomains: []string{"home"}}}}

	var buf bytes.Buffer
	require.NoError(t, s.Write(&buf, "yaml"))
	assert.NotContains(t, buf.String(), "secret")
	assert.Contains(t, buf.String(), "example.com")

	buf.Reset()
	require.NoError(t, s.Write(&buf, "json"))
	assert.NotContains(t, buf.String(), "secret")
	assert.Contains(t, buf.String(), `"api_key": "********"`)

	assert.Error(t, s.Write(&buf, "xml"))
	assert.Equal(t, "secret", s.APIKey)
}
