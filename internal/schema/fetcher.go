package schema

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultSourceURL = "https://schema.autobot.tf/schema"
	defaultMaxBytes  = 256 << 20
	userAgent        = "schemad/1.0"
)

var tracer = otel.Tracer("github.com/juniorISO69960/schema.autobot.tf/internal/schema")

// Fetcher retrieves the schema document from a remote source.
type Fetcher struct {
	sourceURL  string
	maxBytes   int64
	httpClient *http.Client
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher for the given source URL. A zero timeout or
// maxBytes selects the default.
func NewFetcher(sourceURL string, timeout time.Duration, maxBytes int64, logger *slog.Logger) *Fetcher {
	if sourceURL == "" {
		sourceURL = defaultSourceURL
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Fetcher{
		sourceURL: sourceURL,
		maxBytes:  maxBytes,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// SourceURL returns the configured source URL.
func (f *Fetcher) SourceURL() string {
	return f.sourceURL
}

// Fetch performs an HTTP GET to retrieve the raw schema document.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "schema.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("schema.source_url", f.sourceURL))

	body, err := f.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("schema.bytes", len(body)))
	return body, nil
}

func (f *Fetcher) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching schema: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, f.sourceURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("schema response exceeds %d byte limit", f.maxBytes)
	}

	f.logger.Info("schema fetched",
		"component", "schema",
		"source_url", f.sourceURL,
		"bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return body, nil
}

// FetchSnapshot fetches and parses a new snapshot.
func (f *Fetcher) FetchSnapshot(ctx context.Context) (*Snapshot, error) {
	data, err := f.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return Parse(data, f.sourceURL, time.Now(), f.logger)
}
