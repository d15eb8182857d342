package bcb

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// diskCache is an http.RoundTripper keeping successful responses on disk for the day.
type diskCache struct {
	base   http.RoundTripper
	dir    string
	now    func() time.Time
	logger *zap.Logger
}

func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	// the day is part of the key, so entries expire every day.
	key := fmt.Sprintf("%s %s %s", c.now().Format(time.DateOnly), req.Method, req.URL.String())
	key = fmt.Sprintf("bcb-%x", sha1.Sum([]byte(key)))

	if resp, err := c.get(key, req); err == nil {
		return resp, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		c.logger.Warn("cache write failed (ignored)", zap.Error(err))
	}
	return resp, nil
}

func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores resp. DumpResponse leaves resp.Body readable.
func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key), content, 0644)
}

// WithDailyCache keeps the responses of the day in dir, os.TempDir() when empty.
//
// It wraps the transport of the http client, so it must follow WithHTTPClient.
func WithDailyCache(dir string) Option {
	return func(c *Client) {
		if dir == "" {
			dir = os.TempDir()
		}
		base := c.client.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		client := *c.client
		client.Transport = &diskCache{base: base, dir: dir, now: time.Now, logger: c.logger}
		c.client = &client
	}
}
