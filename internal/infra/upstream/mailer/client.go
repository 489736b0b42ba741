package mailer

import (
	"context"
	"net/http"
	"time"

	"github.com/csdewars/ewars/internal/domain/alert"
	"github.com/csdewars/ewars/internal/infra/upstream"
)

const sendPath = "/send-alert"

// Client posts alert messages to the mail gateway.
type Client struct {
	http *upstream.Client
}

// NewClient builds a gateway client against baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...upstream.Option) *Client {
	all := append([]upstream.Option{upstream.WithTimeout(timeout)}, opts...)
	return &Client{http: upstream.New("mail gateway", baseURL, all...)}
}

// Send implements alert.Mailer.
func (c *Client) Send(ctx context.Context, msg alert.Message) error {
	_, err := c.http.Do(ctx, http.MethodPost, sendPath, msg)
	return err
}

var _ alert.Mailer = (*Client)(nil)
