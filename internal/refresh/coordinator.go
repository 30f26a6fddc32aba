// Package refresh serializes reloads of the schema snapshot. At most one
// reload runs at a time and a successful reload starts a cooldown during
// which further triggers are rejected.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/juniorISO69960/schema.autobot.tf/internal/metrics"
	"github.com/juniorISO69960/schema.autobot.tf/internal/schema"
)

const (
	// DefaultCooldown is the minimum spacing between successful refreshes,
	// measured from the trigger instant.
	DefaultCooldown     = 30 * time.Minute
	defaultFetchTimeout = 5 * time.Minute

	// busyRetry is the retry hint while a run that will not arm the
	// cooldown, such as the initial load, is in flight.
	busyRetry = 5 * time.Second
)

var tracer = otel.Tracer("github.com/juniorISO69960/schema.autobot.tf/internal/refresh")

// State is the coordinator's externally visible state.
type State string

const (
	StateIdle       State = "idle"
	StateRefreshing State = "refreshing"
	StateCooldown   State = "cooldown"
)

// Reason says why a trigger was rejected.
type Reason string

const (
	ReasonInProgress        Reason = "in_progress"
	ReasonRecentlyRefreshed Reason = "recently_refreshed"
)

// RejectedError is returned when a trigger arrives while a refresh is
// running or the cooldown has not expired. Rejected triggers are not queued.
type RejectedError struct {
	Reason     Reason
	RetryAfter time.Duration
}

func (e *RejectedError) Error() string {
	switch e.Reason {
	case ReasonInProgress:
		return fmt.Sprintf("schema refresh already in progress, retry after %s", e.RetryAfter.Round(time.Second))
	default:
		return fmt.Sprintf("schema was refreshed recently, retry after %s", e.RetryAfter.Round(time.Second))
	}
}

// FetchError wraps a failure to fetch or build a new snapshot. The previous
// snapshot stays active and no cooldown is armed.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return "schema refresh failed: " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Result describes a completed refresh.
type Result struct {
	Version     string        `json:"version"`
	Items       int           `json:"items"`
	TriggeredAt time.Time     `json:"triggeredAt"`
	Duration    time.Duration `json:"-"`
}

// SnapshotFetcher produces a freshly built snapshot.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context) (*schema.Snapshot, error)
}

// DocumentSaver persists the document behind an installed snapshot.
type DocumentSaver interface {
	SaveSnapshot(s *schema.Snapshot) error
}

// Coordinator owns the refresh state machine:
//
//	Idle --trigger--> Refreshing --ok--> Cooldown --deadline--> Idle
//	                       |
//	                       +--fail--> Idle
//
// Cooldown expiry is evaluated lazily against a stored deadline.
type Coordinator struct {
	store        *schema.Store
	fetcher      SnapshotFetcher
	saver        DocumentSaver
	logger       *slog.Logger
	cooldown     time.Duration
	fetchTimeout time.Duration
	now          func() time.Time
	baseCtx      context.Context

	mu            sync.Mutex
	inFlight      bool
	inFlightArms  bool
	idle          chan struct{}
	triggerAt     time.Time
	cooldownUntil time.Time
	lastError     string
	lastSuccessAt time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithCooldown overrides DefaultCooldown.
func WithCooldown(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.cooldown = d
		}
	}
}

// WithFetchTimeout bounds a single fetch/build.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// WithDocumentSaver writes every installed document to s.
func WithDocumentSaver(s DocumentSaver) Option {
	return func(c *Coordinator) { c.saver = s }
}

// WithBaseContext ties in-flight fetches to ctx; cancelling it aborts them.
func WithBaseContext(ctx context.Context) Option {
	return func(c *Coordinator) { c.baseCtx = ctx }
}

// New creates a Coordinator that installs into store.
func New(store *schema.Store, fetcher SnapshotFetcher, logger *slog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:        store,
		fetcher:      fetcher,
		logger:       logger,
		cooldown:     DefaultCooldown,
		fetchTimeout: defaultFetchTimeout,
		now:          time.Now,
		baseCtx:      context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Trigger starts a refresh unless one is running or the cooldown is active.
// It blocks until the refresh finishes. Among concurrent callers exactly
// one performs the refresh; the others get a *RejectedError immediately.
func (c *Coordinator) Trigger(ctx context.Context) (Result, error) {
	ctx, span := tracer.Start(ctx, "refresh.trigger")
	defer span.End()

	triggerAt, err := c.begin(true)
	if err != nil {
		var rej *RejectedError
		if errors.As(err, &rej) {
			span.SetAttributes(
				attribute.String("refresh.rejected", string(rej.Reason)),
				attribute.Int64("refresh.retry_after_ms", rej.RetryAfter.Milliseconds()),
			)
			metrics.IncRefresh(string(rej.Reason))
		}
		return Result{}, err
	}

	res, err := c.run(ctx, triggerAt)
	c.finish(triggerAt, err, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}
	span.SetAttributes(
		attribute.String("schema.version", res.Version),
		attribute.Int("schema.items", res.Items),
	)
	return res, nil
}

// Bootstrap performs the initial load. It is rejected while another refresh
// is running but ignores and does not arm the cooldown, so an operator can
// refresh right after startup.
func (c *Coordinator) Bootstrap(ctx context.Context) (Result, error) {
	ctx, span := tracer.Start(ctx, "refresh.bootstrap")
	defer span.End()

	triggerAt, err := c.begin(false)
	if err != nil {
		return Result{}, err
	}
	res, err := c.run(ctx, triggerAt)
	c.finish(triggerAt, err, false)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

// Seed installs a snapshot obtained outside the coordinator, such as the
// warm-start copy from the document cache. It does not arm the cooldown.
func (c *Coordinator) Seed(snap *schema.Snapshot) {
	if snap == nil {
		return
	}
	c.store.Install(snap)
	metrics.SetSnapshot(snap.ItemCount(), snap.FetchedAt)

	c.mu.Lock()
	if snap.FetchedAt.After(c.lastSuccessAt) {
		c.lastSuccessAt = snap.FetchedAt
	}
	c.mu.Unlock()
}

// Wait blocks until no refresh is running or ctx is done.
func (c *Coordinator) Wait(ctx context.Context) error {
	c.mu.Lock()
	if !c.inFlight {
		c.mu.Unlock()
		return nil
	}
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// begin performs the Idle -> Refreshing transition. manual runs honour and
// later arm the cooldown.
func (c *Coordinator) begin(manual bool) (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.inFlight {
		return time.Time{}, &RejectedError{
			Reason:     ReasonInProgress,
			RetryAfter: c.inFlightRetry(now),
		}
	}
	if manual && now.Before(c.cooldownUntil) {
		return time.Time{}, &RejectedError{
			Reason:     ReasonRecentlyRefreshed,
			RetryAfter: positive(c.cooldownUntil.Sub(now)),
		}
	}
	c.inFlight = true
	c.inFlightArms = manual
	c.idle = make(chan struct{})
	c.triggerAt = now
	return now, nil
}

// inFlightRetry is the wait reported while a run is in flight. Callers hold mu.
func (c *Coordinator) inFlightRetry(now time.Time) time.Duration {
	if !c.inFlightArms {
		return busyRetry
	}
	return positive(c.triggerAt.Add(c.cooldown).Sub(now))
}

// finish leaves Refreshing. Only a success arms the cooldown.
func (c *Coordinator) finish(triggerAt time.Time, err error, armCooldown bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inFlight = false
	c.inFlightArms = false
	close(c.idle)
	if err != nil {
		c.lastError = err.Error()
		return
	}
	c.lastError = ""
	c.lastSuccessAt = c.now()
	if armCooldown {
		c.cooldownUntil = triggerAt.Add(c.cooldown)
	}
}

// run fetches, builds and installs outside the state mutex. The fetch is
// detached from the caller's cancellation so that a client disconnect does
// not abort a reload already in progress.
func (c *Coordinator) run(ctx context.Context, triggerAt time.Time) (Result, error) {
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
	defer cancel()
	stop := context.AfterFunc(c.baseCtx, cancel)
	defer stop()

	log := c.spanLogger(ctx)
	log.Info("schema refresh started")
	start := time.Now()

	snap, err := c.fetcher.FetchSnapshot(fetchCtx)
	duration := time.Since(start)
	metrics.ObserveRefreshDuration(duration)
	if err != nil {
		metrics.IncRefresh(metrics.OutcomeFailed)
		log.Error("schema refresh failed",
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return Result{}, &FetchError{Err: err}
	}

	c.store.Install(snap)
	metrics.SetSnapshot(snap.ItemCount(), snap.FetchedAt)
	metrics.IncRefresh(metrics.OutcomeOK)

	if c.saver != nil {
		if err := c.saver.SaveSnapshot(snap); err != nil {
			metrics.IncDocumentCacheWriteErrors()
			log.Warn("document cache write failed", "error", err)
		}
	}

	log.Info("schema refresh complete",
		"version", snap.Version,
		"items", snap.ItemCount(),
		"duration_ms", duration.Milliseconds(),
	)
	return Result{
		Version:     snap.Version,
		Items:       snap.ItemCount(),
		TriggeredAt: triggerAt,
		Duration:    duration,
	}, nil
}

// spanLogger tags refresh logs with the trace of the triggering span.
func (c *Coordinator) spanLogger(ctx context.Context) *slog.Logger {
	l := c.logger.With("component", "refresh")
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		l = l.With("trace_id", sc.TraceID().String())
	}
	return l
}

func positive(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Millisecond
	}
	return d
}
