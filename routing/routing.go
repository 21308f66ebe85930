package routing

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/zalando/storefront/logging"
	"github.com/zalando/storefront/metrics"
)

const (
	// DefaultPollTimeout is used when Options.PollTimeout is not set.
	DefaultPollTimeout = 3 * time.Second

	initialLoadTries = 5
)

// Options for initializing the routing.
type Options struct {

	// The sources of the registrations. Their sets are merged in
	// this order.
	DataClients []DataClient

	// The interval between two loads of the sources.
	PollTimeout time.Duration

	// Metrics collector, defaults to a no-op implementation.
	Metrics metrics.Metrics

	// Log receives the routing update logs, defaults to the
	// application log.
	Log logging.Logger

	// When set, the successful rebuilds are not logged.
	SuppressLogs bool
}

// Routing keeps the current generation built from the registration
// sources up to date, and resolves paths against it.
//
// A new generation is built in the background whenever the merged set
// of the sources changes, and it replaces the current one atomically.
// Lookups are never blocked by a rebuild, and every lookup sees a
// single consistent generation.
type Routing struct {
	options   Options
	current   atomic.Pointer[Generation]
	sets      [][]*Registration
	loaded    []bool
	nloaded   int
	firstLoad chan struct{}
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// New initializes a routing instance and starts polling the sources.
func New(o Options) *Routing {
	if o.PollTimeout <= 0 {
		o.PollTimeout = DefaultPollTimeout
	}

	if o.Metrics == nil {
		o.Metrics = metrics.Void
	}

	if o.Log == nil {
		o.Log = logging.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Routing{
		options:   o,
		sets:      make([][]*Registration, len(o.DataClients)),
		loaded:    make([]bool, len(o.DataClients)),
		firstLoad: make(chan struct{}),
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	r.current.Store(Build(nil))
	go r.receive(ctx)
	return r
}

func (r *Routing) receive(ctx context.Context) {
	defer close(r.done)

	t := time.NewTicker(r.options.PollTimeout)
	defer t.Stop()

	for {
		r.update(ctx)
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// load returns the set of the client at index i. Until the first
// successful load, the client is retried with exponential backoff.
func (r *Routing) load(ctx context.Context, i int) ([]*Registration, error) {
	c := r.options.DataClients[i]
	if r.loaded[i] {
		return c.LoadAll()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.options.PollTimeout / 8
	b.MaxInterval = r.options.PollTimeout
	return backoff.Retry(
		ctx,
		c.LoadAll,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(initialLoadTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			r.options.Log.Warnf("failed to load registrations from %s, retrying in %v: %v", sourceName(c), next, err)
		}),
	)
}

func (r *Routing) update(ctx context.Context) {
	for i, c := range r.options.DataClients {
		set, err := r.load(ctx, i)
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			name := sourceName(c)
			r.options.Log.Errorf("error while loading registrations: %v", &sourceError{Source: name, Original: err})
			r.options.Metrics.IncSourceErrors(name)
			continue
		}

		r.sets[i] = set
		if !r.loaded[i] {
			r.loaded[i] = true
			r.nloaded++
		}
	}

	merged := mergeRegistrations(r.sets)
	if fingerprint(merged) == r.current.Load().fingerprint {
		r.options.Metrics.IncRebuilds("unchanged")
	} else {
		r.swap(Build(merged))
	}

	if r.nloaded == len(r.options.DataClients) {
		r.signalFirstLoad()
	}
}

func (r *Routing) swap(g *Generation) {
	r.current.Store(g)

	literals, wildcards, defaults := g.Stats()
	r.options.Metrics.IncRebuilds("rebuilt")
	r.options.Metrics.SetRegistrations("literal", literals)
	r.options.Metrics.SetRegistrations("wildcard", wildcards)
	r.options.Metrics.SetRegistrations("default", defaults)

	if !r.options.SuppressLogs {
		r.options.Log.Infof(
			"routing updated: %d literal, %d wildcard, %d default registrations",
			literals, wildcards, defaults,
		)
	}
}

func (r *Routing) signalFirstLoad() {
	select {
	case <-r.firstLoad:
	default:
		close(r.firstLoad)
	}
}

// FirstLoad returns a channel that is closed when every source was
// loaded successfully at least once.
func (r *Routing) FirstLoad() <-chan struct{} {
	return r.firstLoad
}

// Get returns the current generation.
func (r *Routing) Get() *Generation {
	return r.current.Load()
}

// Resolve returns the matching registration from the current
// generation. See Generation.Resolve.
func (r *Routing) Resolve(path string) (*Registration, bool) {
	m := r.Match(path)
	return m.Registration, m.Type != MatchNone
}

// Match looks up the path in the current generation and records the
// lookup time.
func (r *Routing) Match(path string) Match {
	start := time.Now()
	m := r.Get().Match(path)
	r.options.Metrics.MeasureLookup(m.Type.String(), start)
	if m.Type == MatchNone {
		r.options.Log.Debugf("no registration for %s", path)
	}

	return m
}

// Default returns the default registration of the current generation.
func (r *Routing) Default() (*Registration, bool) {
	return r.Get().Default()
}

// Close stops polling the sources. The last generation stays
// available for lookups.
func (r *Routing) Close() {
	r.closeOnce.Do(func() {
		r.cancel()
		<-r.done
	})
}
