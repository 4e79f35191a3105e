package remote

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// Open streams an artifact from the artifact server; it satisfies artifacts.Source.
// The caller closes the returned body.
func (c *Client) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	var body io.ReadCloser
	err := c.do(ctx, http.MethodGet, "/"+url.PathEscape(name), nil, func(resp *http.Response) error {
		body = resp.Body
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
