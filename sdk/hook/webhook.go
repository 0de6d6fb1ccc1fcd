package hook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jxo-me/dyndns/consts"
	"github.com/jxo-me/dyndns/core/hook"
	"github.com/jxo-me/dyndns/core/logger"
	"github.com/jxo-me/dyndns/internal/util"
	"github.com/pkg/errors"
)

const (
	Code = "webhook"
)

// Webhook Webhook
type Webhook struct {
	// 支持的变量 #{ipv4Addr}=新的IPv4地址,
	// #{ipv6Addr}=新的IPv6地址,
	// #{updated}=更新的记录数,
	// #{domains}=域名，多个以,分割
	WebhookURL string
	// 如 RequestBody 为空则为 GET 请求，否则为 POST 请求。支持的变量同上
	WebhookRequestBody string
	client             *http.Client
	logger             logger.ILogger
}

// hasJSONPrefix returns true if the string starts with a JSON open brace.
func hasJSONPrefix(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

func NewHook(url string, requestBody string, client *http.Client, log logger.ILogger) *Webhook {
	if client == nil {
		client = util.CreateHTTPClient()
	}
	if log == nil {
		log = logger.Default()
	}
	return &Webhook{
		WebhookURL:         url,
		WebhookRequestBody: requestBody,
		client:             client,
		logger:             log,
	}
}

func (w *Webhook) String() string {
	return Code
}

// ExecHook 有记录更新时调用 Webhook
func (w *Webhook) ExecHook(ctx context.Context, event hook.Event) error {
	if w.WebhookURL == "" || event.Updated == 0 {
		return nil
	}

	method := http.MethodGet
	postPara := ""
	contentType := "application/x-www-form-urlencoded"
	if w.WebhookRequestBody != "" {
		method = http.MethodPost
		postPara = replacePara(event, w.WebhookRequestBody, false)
		if json.Valid([]byte(postPara)) {
			contentType = consts.MIMEApplicationJSON
		} else if hasJSONPrefix(postPara) {
			// 如果 RequestBody 的 JSON 无效但前缀为 JSON 括号则为 JSON
			w.logger.Warnf("webhook request body is not valid JSON: %s", postPara)
		}
	}

	requestURL := replacePara(event, w.WebhookURL, true)
	u, err := url.Parse(requestURL)
	if err != nil {
		return errors.Wrap(err, "webhook url")
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), strings.NewReader(postPara))
	if err != nil {
		return errors.Wrap(err, "creating webhook request")
	}
	req.Header.Set(consts.HeaderContentType, contentType)

	resp, err := w.client.Do(req)
	body, err := util.GetHTTPResponseOrg(resp, requestURL, err)
	if err != nil {
		return errors.Wrap(err, "webhook call failed")
	}
	w.logger.Infof("webhook call succeeded, response: %q", string(body))
	return nil
}

// replacePara 替换参数
func replacePara(event hook.Event, orgPara string, escape bool) string {
	value := func(s string) string {
		if escape {
			return url.QueryEscape(s)
		}
		return s
	}
	return strings.NewReplacer(
		"#{ipv4Addr}", value(event.IPv4),
		"#{ipv6Addr}", value(event.IPv6),
		"#{updated}", strconv.Itoa(event.Updated),
		"#{domains}", value(strings.Join(event.Domains, ",")),
	).Replace(orgPara)
}
