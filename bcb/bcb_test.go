package bcb

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/etnz/indices"
)

// sgs serves canned payloads by path and counts requests.
type sgs struct {
	status   int
	payloads map[string]string
	requests int
	queries  []string
}

func (s *sgs) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.requests++
	s.queries = append(s.queries, r.URL.RawQuery)
	if s.status != 0 {
		w.WriteHeader(s.status)
		return
	}
	payload, ok := s.payloads[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(payload))
}

func newTestClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(append([]Option{WithBaseURL(srv.URL), WithHTTPClient(srv.Client())}, opts...)...)
}

var february = indices.NewMonth(2024, time.February)

func TestClient_Fetch(t *testing.T) {
	api := &sgs{payloads: map[string]string{
		"/bcdata.sgs.433/dados":  `[{"data":"01/02/2024","valor":"0.83"}]`,
		"/bcdata.sgs.189/dados":  `[{"data":"01/01/2024","valor":"0.07"}]`,
		"/bcdata.sgs.1619/dados": `[]`,
	}}
	c := newTestClient(t, api)
	ctx := context.Background()

	got, err := c.Fetch(ctx, "BCB-433", february)
	if err != nil {
		t.Fatalf("Fetch(BCB-433) unexpected error: %v", err)
	}
	if got != 0.83 {
		t.Errorf("Fetch(BCB-433) = %v, want 0.83", got)
	}
	if want := "dataFinal=01%2F02%2F2024&dataInicial=01%2F02%2F2024&formato=json"; api.queries[0] != want {
		t.Errorf("query = %q, want %q", api.queries[0], want)
	}

	for _, id := range []string{"BCB-189", "BCB-1619", "BCB-999"} {
		if _, err := c.Fetch(ctx, id, february); !errors.Is(err, indices.ErrNotYetPublished) {
			t.Errorf("Fetch(%s) error = %v, want ErrNotYetPublished", id, err)
		}
	}
}

func TestClient_FetchDaily(t *testing.T) {
	api := &sgs{payloads: map[string]string{
		"/bcdata.sgs.12/dados": `[
			{"data":"01/02/2024","valor":"0.043739"},
			{"data":"02/02/2024","valor":"0.043739"},
			{"data":"05/02/2024","valor":"0.043739"}
		]`,
	}}
	c := newTestClient(t, api)

	got, err := c.Fetch(context.Background(), "BCB-12:daily", february)
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	want := (math.Pow(1.00043739, 3) - 1) * 100
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Fetch() = %v, want %v", got, want)
	}
	if want := "dataFinal=29%2F02%2F2024&dataInicial=01%2F02%2F2024&formato=json"; api.queries[0] != want {
		t.Errorf("query = %q, want %q", api.queries[0], want)
	}
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		api     *sgs
		id      string
		wantErr error
	}{
		{"server error", &sgs{status: http.StatusBadGateway}, "BCB-433", indices.ErrSourceUnavailable},
		{"throttled", &sgs{status: http.StatusTooManyRequests}, "BCB-433", indices.ErrSourceUnavailable},
		{"html payload", &sgs{payloads: map[string]string{"/bcdata.sgs.433/dados": "<html>"}}, "BCB-433", indices.ErrSourceUnavailable},
		{"not found", &sgs{}, "BCB-12:daily", indices.ErrNotYetPublished},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestClient(t, tt.api).Fetch(context.Background(), tt.id, february)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Fetch() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	_, err := newTestClient(t, &sgs{status: http.StatusForbidden}).Fetch(context.Background(), "BCB-433", february)
	if err == nil || errors.Is(err, indices.ErrSourceUnavailable) || errors.Is(err, indices.ErrNotYetPublished) {
		t.Errorf("Fetch() on 403 error = %v, want a plain error", err)
	}

	for _, id := range []string{"433", "BCB-IPCA", "CSV-INCC"} {
		if _, err := NewClient().Fetch(context.Background(), id, february); err == nil {
			t.Errorf("Fetch(%q) expected an error", id)
		}
	}
}

func TestClient_TransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(WithBaseURL(srv.URL))
	if _, err := c.Fetch(context.Background(), "BCB-433", february); !errors.Is(err, indices.ErrSourceUnavailable) {
		t.Errorf("Fetch() error = %v, want ErrSourceUnavailable", err)
	}
}

func TestClient_DailyCache(t *testing.T) {
	api := &sgs{payloads: map[string]string{"/bcdata.sgs.433/dados": `[{"data":"01/02/2024","valor":"0.83"}]`}}
	c := newTestClient(t, api, WithDailyCache(t.TempDir()))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := c.Fetch(ctx, "BCB-433", february)
		if err != nil {
			t.Fatalf("Fetch() #%d unexpected error: %v", i, err)
		}
		if got != 0.83 {
			t.Errorf("Fetch() #%d = %v, want 0.83", i, got)
		}
	}
	if api.requests != 1 {
		t.Errorf("server got %d requests, want 1", api.requests)
	}
}
