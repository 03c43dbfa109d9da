// Package feed loads academic directory snapshots from a file, an HTTP
// endpoint or the embedded demo data set.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/litescript/ls-globe/internal/logging"
	"github.com/litescript/ls-globe/internal/metrics"
	"github.com/litescript/ls-globe/internal/points"
)

const (
	// SourceDemo selects the embedded demo snapshot.
	SourceDemo = "demo"

	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 30 * time.Second

	// maxBody caps how much of a response is read.
	maxBody = 32 << 20
)

// ErrStatus is returned for non-200 HTTP responses.
var ErrStatus = errors.New("unexpected status code")

// Kind classifies a source string.
type Kind string

const (
	KindDemo Kind = "demo"
	KindHTTP Kind = "http"
	KindFile Kind = "file"
)

// KindOf reports how a source will be loaded. Anything that is not the
// demo keyword or an http(s) URL is a file path.
func KindOf(source string) Kind {
	s := strings.TrimSpace(source)
	switch {
	case s == "" || strings.EqualFold(s, SourceDemo):
		return KindDemo
	case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
		return KindHTTP
	default:
		return KindFile
	}
}

// Fetcher loads directory snapshots.
type Fetcher struct {
	client  *http.Client
	source  string
	timeout time.Duration
	metrics *metrics.Metrics
	log     *logging.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithSource sets the snapshot source: "demo", a file path, a file://
// URL or an http(s) URL.
func WithSource(source string) Option {
	return func(f *Fetcher) {
		f.source = strings.TrimSpace(source)
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithMetrics records fetch durations and failures.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// WithLogger sets the fetcher's logger.
func WithLogger(l *logging.Logger) Option {
	return func(f *Fetcher) {
		f.log = l
	}
}

// NewFetcher creates a fetcher for the demo data unless a source is given.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		source:  SourceDemo,
		timeout: DefaultTimeout,
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.source == "" {
		f.source = SourceDemo
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: f.timeout}
	}
	return f
}

// Result contains the result of a fetch operation.
type Result struct {
	Points    []points.GeoPoint
	Dropped   int
	Source    string
	FetchedAt time.Time
	Duration  time.Duration
	Error     error
}

// Fetch retrieves and decodes one snapshot. Malformed records are dropped
// and counted; only transport failures and non-array documents are errors.
func (f *Fetcher) Fetch(ctx context.Context) Result {
	start := time.Now()
	result := Result{Source: f.source, FetchedAt: start}

	raw, err := f.FetchRaw(ctx)
	if err == nil {
		result.Points, result.Dropped, err = points.ParseRecords(raw)
		if err != nil {
			err = fmt.Errorf("parse %s: %w", f.source, err)
		}
	}
	result.Duration = time.Since(start)
	result.Error = err
	f.metrics.ObserveFetch(result.Duration, err)

	if err != nil {
		f.log.Warn("fetch %s failed: %v", f.source, err)
		return result
	}
	f.log.Debug("fetched %d academics from %s in %v (%d dropped)",
		len(result.Points), f.source, result.Duration.Round(time.Millisecond), result.Dropped)
	return result
}

// FetchRaw retrieves the raw JSON bytes without decoding.
func (f *Fetcher) FetchRaw(ctx context.Context) ([]byte, error) {
	switch KindOf(f.source) {
	case KindDemo:
		return DemoData(), nil
	case KindHTTP:
		return f.fetchHTTP(ctx)
	default:
		return f.readFile()
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.source, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "ls-globe/1.0 (academic directory globe)")
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", f.source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

func (f *Fetcher) readFile() ([]byte, error) {
	path := strings.TrimPrefix(f.source, "file://")
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return body, nil
}

// Source returns the configured source.
func (f *Fetcher) Source() string {
	return f.source
}

// Poll fetches immediately and then every interval until ctx is done,
// handing each result to fn on the polling goroutine. Static sources are
// fetched once when interval is zero.
func (f *Fetcher) Poll(ctx context.Context, interval time.Duration, fn func(Result)) {
	fn(f.Fetch(ctx))
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			f.log.Debug("fetch loop shutting down")
			return
		case <-ticker.C:
			fn(f.Fetch(ctx))
		}
	}
}
