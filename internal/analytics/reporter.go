// Package analytics forwards page views and interaction events to an
// external collector. Delivery is best effort: events are dropped when the
// queue is full and delivery errors never reach the caller.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Event is one telemetry record.
type Event struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Label     string    `json:"label,omitempty"`
	Value     float64   `json:"value,omitempty"`
	Path      string    `json:"path,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PageViewEvent is the name used for page views.
const PageViewEvent = "page_view"

// Options configures a Reporter.
type Options struct {
	// Endpoint is the collector URL. Empty disables forwarding.
	Endpoint   string
	Buffer     int
	Timeout    time.Duration
	Client     *http.Client
	Logger     *zap.Logger
	Registerer prometheus.Registerer
	Now        func() time.Time
}

// Reporter queues events and forwards them from a single worker.
type Reporter struct {
	endpoint string
	client   *http.Client
	log      *zap.Logger
	now      func() time.Time
	queue    chan Event
	stop     chan struct{}
	stopOnce sync.Once
	events   *prometheus.CounterVec
}

// NewReporter creates a reporter. Call Run to start delivery.
func NewReporter(opts Options) (*Reporter, error) {
	if opts.Buffer <= 0 {
		opts.Buffer = 256
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	r := &Reporter{
		endpoint: opts.Endpoint,
		client:   client,
		log:      opts.Logger.With(zap.String("component", "analytics")),
		now:      opts.Now,
		queue:    make(chan Event, opts.Buffer),
		stop:     make(chan struct{}),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_analytics_events_total",
				Help: "Analytics events by outcome.",
			},
			[]string{"result"},
		),
	}
	if opts.Registerer != nil {
		if err := opts.Registerer.Register(r.events); err != nil {
			return nil, fmt.Errorf("register analytics metrics: %w", err)
		}
	}
	return r, nil
}

// Enabled reports whether a collector is configured.
func (r *Reporter) Enabled() bool {
	return r.endpoint != ""
}

// PageView records a view of path.
func (r *Reporter) PageView(path string) bool {
	return r.Track(Event{Name: PageViewEvent, Category: "navigation", Path: path})
}

// Track queues e without blocking. It reports whether the event was
// accepted.
func (r *Reporter) Track(e Event) bool {
	if !r.Enabled() {
		r.events.WithLabelValues("disabled").Inc()
		return false
	}
	select {
	case <-r.stop:
		r.events.WithLabelValues("dropped").Inc()
		return false
	default:
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = r.now()
	}
	select {
	case r.queue <- e:
		r.events.WithLabelValues("queued").Inc()
		return true
	default:
		r.events.WithLabelValues("dropped").Inc()
		return false
	}
}

// Run delivers queued events until ctx is done or Close is called. Events
// still queued at that point are discarded.
func (r *Reporter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.stop:
			return nil
		case e := <-r.queue:
			r.send(ctx, e)
		}
	}
}

// Close stops the worker. Safe to call more than once.
func (r *Reporter) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *Reporter) send(ctx context.Context, e Event) {
	body, err := json.Marshal(e)
	if err != nil {
		r.fail(e, err)
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		r.fail(e, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.fail(e, err)
		return
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		r.fail(e, fmt.Errorf("collector returned %s", resp.Status))
		return
	}
	r.events.WithLabelValues("sent").Inc()
}

func (r *Reporter) fail(e Event, err error) {
	r.events.WithLabelValues("failed").Inc()
	r.log.Debug("analytics delivery failed", zap.String("event", e.Name), zap.Error(err))
}
