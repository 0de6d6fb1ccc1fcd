package digitalocean

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jxo-me/dyndns/consts"
	"github.com/jxo-me/dyndns/core/ddns"
	"github.com/jxo-me/dyndns/core/logger"
	"github.com/jxo-me/dyndns/internal/util"
	"github.com/pkg/errors"
)

const (
	Endpoint string = consts.DefaultAPIHost
	Code     string = "digitalocean"
	// MaxPages bounds how many record pages one listing may follow.
	MaxPages = 1000
)

// APIError is a response outside the 2xx range. Body is the raw response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("failed to call %s API (status %d):\n%s", Code, e.StatusCode, e.Body)
}

type recordsResponse struct {
	DomainRecords []ddns.Record `json:"domain_records"`
	Links         struct {
		Pages struct {
			Next string `json:"next"`
		} `json:"pages"`
	} `json:"links"`
}

type updateRequest struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Data string `json:"data"`
}

type Option func(*DigitalOcean)

func WithHTTPClient(client *http.Client) Option {
	return func(d *DigitalOcean) {
		if client != nil {
			d.client = client
		}
	}
}

func WithLogger(log logger.ILogger) Option {
	return func(d *DigitalOcean) {
		if log != nil {
			d.logger = log
		}
	}
}

// DigitalOcean talks to the DigitalOcean domains API with a bearer token.
type DigitalOcean struct {
	apiHost string
	apiKey  string
	client  *http.Client
	logger  logger.ILogger
}

// New creates a client. apiHost defaults to Endpoint when empty.
func New(apiHost, apiKey string, opts ...Option) *DigitalOcean {
	if apiHost == "" {
		apiHost = Endpoint
	}
	d := &DigitalOcean{
		apiHost: strings.TrimRight(apiHost, "/"),
		apiKey:  apiKey,
		logger:  logger.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.client == nil {
		d.client = util.CreateHTTPClient()
	}
	return d
}

func (d *DigitalOcean) String() string {
	return Code
}

func (d *DigitalOcean) Endpoint() string {
	return d.apiHost
}

// ListRecords returns every record of domain, following pagination links.
func (d *DigitalOcean) ListRecords(ctx context.Context, domain string) ([]ddns.Record, error) {
	var records []ddns.Record
	next := d.apiHost + "/domains/" + url.PathEscape(domain) + "/records"
	visited := make(map[string]struct{})
	for next != "" {
		if _, ok := visited[next]; ok {
			return nil, errors.Errorf("listing records of %s: page %s requested twice", domain, next)
		}
		if len(visited) >= MaxPages {
			return nil, errors.Errorf("listing records of %s: more than %d pages", domain, MaxPages)
		}
		visited[next] = struct{}{}

		var page recordsResponse
		if err := d.request(ctx, http.MethodGet, next, nil, &page); err != nil {
			return nil, err
		}
		records = append(records, page.DomainRecords...)
		next = page.Links.Pages.Next
	}
	d.logger.Debugf("found %d records for %s", len(records), domain)
	return records, nil
}

// UpdateRecord replaces type, name and data of record id.
func (d *DigitalOcean) UpdateRecord(ctx context.Context, domain string, id int64, recordType, name, data string) error {
	path := fmt.Sprintf("%s/domains/%s/records/%d", d.apiHost, url.PathEscape(domain), id)
	return d.request(ctx, http.MethodPut, path, &updateRequest{
		Type: recordType,
		Name: name,
		Data: data,
	}, nil)
}

// request 统一请求接口
func (d *DigitalOcean) request(ctx context.Context, method, url string, data interface{}, result interface{}) error {
	var body io.Reader = http.NoBody
	if data != nil {
		buf, err := json.Marshal(data)
		if err != nil {
			return errors.Wrap(err, "encoding request")
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, url)
	}
	req.Header.Set(consts.HeaderAccept, consts.MIMEApplicationJSON)
	req.Header.Set(consts.HeaderAuthorization, "Bearer "+d.apiKey)
	if data != nil {
		req.Header.Set(consts.HeaderContentType, consts.MIMEApplicationJSON)
	}

	resp, err := d.client.Do(req)
	err = util.GetHTTPResponse(resp, url, err, result)
	var serr *util.StatusError
	if errors.As(err, &serr) {
		return &APIError{StatusCode: serr.StatusCode, Body: string(serr.Body)}
	}
	if err != nil {
		return errors.Wrapf(err, "failed to call %s API", Code)
	}
	return nil
}
