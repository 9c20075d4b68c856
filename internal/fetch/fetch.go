// Package fetch performs outbound HTTP requests for the curl command.
package fetch

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultUserAgent = "vshell-curl/1.0"

// Client wraps a shared resty client.
type Client struct {
	rc *resty.Client
}

func New(timeout time.Duration) *Client {
	rc := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", defaultUserAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	return &Client{rc: rc}
}

// Fetch issues one request and returns the status code and body.
func (c *Client) Fetch(ctx context.Context, method, url string, headers map[string]string, body string) (int, string, error) {
	req := c.rc.R().SetContext(ctx).SetHeaders(headers)
	if body != "" {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, url)
	if err != nil {
		return 0, "", err
	}
	return resp.StatusCode(), resp.String(), nil
}
