// Package bcb fetches the time series of the Banco Central do Brasil (SGS).
//
// Series are identified as "BCB-<code>", for instance "BCB-433" for the IPCA. The monthly value
// of a series is the point dated the first day of the month. A "BCB-<code>:daily" id reads a
// daily rate series instead, and returns the rate of the month compounded from its daily
// rates.
package bcb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/indices"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Prefix of the series ids served by a Client.
const Prefix = "BCB"

// DefaultBaseURL is the address of the SGS API.
const DefaultBaseURL = "https://api.bcb.gov.br/dados/serie"

const (
	dailySuffix = ":daily"
	dateFormat  = "02/01/2006"
)

// Client is an indices.Source for the SGS API.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the address of the API.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") } }

// WithHTTPClient sets the http client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.client = h } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient returns a Client for the SGS API.
func NewClient(opts ...Option) *Client {
	c := &Client{baseURL: DefaultBaseURL, client: http.DefaultClient, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// point is a value of a series, as served by the API.
type point struct {
	Date  string
	Value decimal.Decimal
}

// Fetch implements indices.Source.
func (c *Client) Fetch(ctx context.Context, id string, m indices.Month) (float64, error) {
	code, daily, err := parseID(id)
	if err != nil {
		return 0, err
	}
	if daily {
		return c.fetchDaily(ctx, code, m)
	}

	date := m.Start().Format(dateFormat)
	points, err := c.series(ctx, code, date, date)
	if err != nil {
		return 0, fmt.Errorf("%s: %v: %w", id, m, err)
	}
	for _, p := range points {
		if p.Date == date {
			return p.Value.InexactFloat64(), nil
		}
	}
	return 0, fmt.Errorf("%s: %v: %w", id, m, indices.ErrNotYetPublished)
}

// fetchDaily compounds the daily rates of month m: (Π(1 + rate/100) - 1) × 100.
func (c *Client) fetchDaily(ctx context.Context, code string, m indices.Month) (float64, error) {
	id := Prefix + "-" + code + dailySuffix
	points, err := c.series(ctx, code, m.Start().Format(dateFormat), m.End().Format(dateFormat))
	if err != nil {
		return 0, fmt.Errorf("%s: %v: %w", id, m, err)
	}
	hundred := decimal.NewFromInt(100)
	factor := decimal.NewFromInt(1)
	days := 0
	for _, p := range points {
		if !strings.HasSuffix(p.Date, m.Start().Format("/01/2006")) {
			continue
		}
		factor = factor.Mul(decimal.NewFromInt(1).Add(p.Value.Div(hundred)))
		days++
	}
	if days == 0 {
		return 0, fmt.Errorf("%s: %v: %w", id, m, indices.ErrNotYetPublished)
	}
	c.logger.Debug("compounded daily rates", zap.String("series", id), zap.Stringer("month", m), zap.Int("days", days))
	return factor.Sub(decimal.NewFromInt(1)).Mul(hundred).InexactFloat64(), nil
}

// parseID returns the SGS code of id.
func parseID(id string) (code string, daily bool, err error) {
	rest, ok := strings.CutPrefix(id, Prefix+"-")
	if !ok {
		return "", false, fmt.Errorf("invalid BCB series %q: must start with %q", id, Prefix+"-")
	}
	rest, daily = strings.CutSuffix(rest, dailySuffix)
	if _, err := strconv.Atoi(rest); err != nil {
		return "", false, fmt.Errorf("invalid BCB series %q: code must be a number", id)
	}
	return rest, daily, nil
}

// series downloads the points of a series between two dates, inclusive.
//
// A 404 means the API has no point in the range. Transport errors, server errors and
// unreadable payloads are reported as indices.ErrSourceUnavailable.
func (c *Client) series(ctx context.Context, code, from, to string) ([]point, error) {
	q := url.Values{}
	q.Set("formato", "json")
	q.Set("dataInicial", from)
	q.Set("dataFinal", to)
	addr := fmt.Sprintf("%s/bcdata.sgs.%s/dados?%s", c.baseURL, code, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Join(indices.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("sgs", zap.String("url", addr), zap.String("status", resp.Status))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, indices.ErrNotYetPublished
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %s", indices.ErrSourceUnavailable, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("cannot http GET %v: %v", resp.Request.URL.Path, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Join(indices.ErrSourceUnavailable, err)
	}
	points, err := parsePoints(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", indices.ErrSourceUnavailable, err)
	}
	return points, nil
}

// parsePoints reads a payload like [{"data":"01/02/2024","valor":"0.83"}].
func parsePoints(body []byte) ([]point, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("invalid SGS payload: %w", err)
	}
	if _, ok := v.([]any); !ok {
		return nil, fmt.Errorf("invalid SGS payload: expecting an array, got %T", v)
	}
	dates, err := texts(jsonpath.Get("$[*].data", v))
	if err != nil {
		return nil, err
	}
	values, err := texts(jsonpath.Get("$[*].valor", v))
	if err != nil {
		return nil, err
	}
	if len(dates) != len(values) {
		return nil, fmt.Errorf("invalid SGS payload: %d dates for %d values", len(dates), len(values))
	}

	points := make([]point, len(dates))
	for i := range dates {
		d, err := decimal.NewFromString(values[i])
		if err != nil {
			return nil, fmt.Errorf("invalid SGS value %q on %s: %w", values[i], dates[i], err)
		}
		points[i] = point{Date: dates[i], Value: d}
	}
	return points, nil
}

// texts converts the result of a jsonpath query into strings.
func texts(v any, err error) ([]string, error) {
	if err != nil {
		return nil, fmt.Errorf("invalid SGS payload: %w", err)
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("invalid SGS payload: unexpected %T", v)
	}
	out := make([]string, len(list))
	for i, x := range list {
		switch x := x.(type) {
		case string:
			out[i] = x
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		default:
			return nil, fmt.Errorf("invalid SGS payload: unexpected %T", x)
		}
	}
	return out, nil
}
