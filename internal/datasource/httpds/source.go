package httpds

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Source is an extract published at a URL.
type Source struct {
	client *Client
	url    string
}

// NewSource returns a Source fetching url through c.
func NewSource(c *Client, url string) *Source {
	return &Source{client: c, url: url}
}

// Name returns the URL.
func (s *Source) Name() string { return s.url }

// Open downloads the extract. Any non-2xx final status is an error.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("httpds: GET %s: %s", s.url, http.StatusText(resp.StatusCode))
	}
	return resp.Body, nil
}
