package util

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/jxo-me/dyndns/consts"
	"github.com/pkg/errors"
)

var dialer = &net.Dialer{
	Timeout:   30 * time.Second,
	KeepAlive: 30 * time.Second,
}

// StatusError is returned for responses outside the 2xx range.
// Body holds the raw response body.
type StatusError struct {
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.URL, e.StatusCode, e.Body)
}

// CreateHTTPClient 创建 HTTP Client
func CreateHTTPClient() *http.Client {
	return &http.Client{
		Timeout: consts.HTTPClientTimeout * time.Second,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// CreateNoProxyHTTPClient 创建只走 network (tcp4/tcp6) 且不使用代理的 HTTP Client
func CreateNoProxyHTTPClient(network string) *http.Client {
	return &http.Client{
		Timeout: consts.HTTPClientTimeout * time.Second,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, addr string) (net.Conn, error) {
				return dialer.DialContext(ctx, network, addr)
			},
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// GetHTTPResponse 处理 HTTP 结果，返回序列化的json
func GetHTTPResponse(resp *http.Response, url string, err error, result interface{}) error {
	body, err := GetHTTPResponseOrg(resp, url, err)
	if err == nil && result != nil && len(body) > 0 {
		err = json.Unmarshal(body, result)
		if err != nil {
			err = errors.Wrapf(err, "decoding response from %s", url)
		}
	}
	return err
}

// GetHTTPResponseOrg 处理 HTTP 结果，返回 byte
func GetHTTPResponseOrg(resp *http.Response, url string, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading response from %s", url)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return body, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: body}
	}
	return body, nil
}
