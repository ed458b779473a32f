// Package events carries the engine's monitoring side-channel: typed events,
// a non-blocking in-process stream, rolling stats and prometheus counters.
package events

import (
	"errors"
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var errInvalidBuffer = errors.New("events: BufferSize must be greater than 0")

// Config holds the configuration for the Processor.
type Config struct {
	Logger        Logger
	BufferSize    uint
	PrometheusReg prometheus.Registerer
}

func (c *Config) validate() error {
	if c.Logger == nil {
		return errors.New("events: Logger is required")
	}
	if c.BufferSize < 1 {
		return errInvalidBuffer
	}
	return nil
}

// Stats are rolling counters over everything the processor has seen.
type Stats struct {
	ByKind      map[Kind]uint64
	TotalProfit *big.Int
	Dropped     uint64
}

// Processor fans engine events out to subscribers while keeping rolling
// stats. Emit never blocks the hot path: when the buffer is full the event is
// counted as dropped and logged, never waited on.
type Processor struct {
	mu      sync.Mutex
	byKind  map[Kind]uint64
	profit  *big.Int
	dropped uint64

	eventCh chan Event
	logger  Logger

	emittedCounter *prometheus.CounterVec
	droppedCounter prometheus.Counter
}

// NewProcessor creates a Processor and registers its metrics.
func NewProcessor(cfg Config) (*Processor, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	p := &Processor{
		byKind:  make(map[Kind]uint64),
		profit:  new(big.Int),
		eventCh: make(chan Event, cfg.BufferSize),
		logger:  cfg.Logger,
		emittedCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flasharb_events_emitted_total",
			Help: "Engine events emitted, by kind.",
		}, []string{"kind"}),
		droppedCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flasharb_events_dropped_total",
			Help: "Engine events dropped because the stream buffer was full.",
		}),
	}

	if cfg.PrometheusReg != nil {
		if err := cfg.PrometheusReg.Register(p.emittedCounter); err != nil {
			return nil, err
		}
		if err := cfg.PrometheusReg.Register(p.droppedCounter); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Events returns the read-only subscription channel.
func (p *Processor) Events() <-chan Event {
	return p.eventCh
}

// Emit records the event and forwards it to subscribers without blocking.
func (p *Processor) Emit(ev Event) {
	p.mu.Lock()
	p.byKind[ev.Kind]++
	if ev.Kind == LoanCompleted && ev.Profit != nil {
		p.profit.Add(p.profit, ev.Profit)
	}
	p.mu.Unlock()

	p.emittedCounter.WithLabelValues(string(ev.Kind)).Inc()

	select {
	case p.eventCh <- ev:
	default:
		p.mu.Lock()
		p.dropped++
		p.mu.Unlock()
		p.droppedCounter.Inc()
		p.logger.Warn("event stream buffer full, dropping event", "kind", ev.Kind)
	}
}

// Stats returns a copy of the rolling counters.
func (p *Processor) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	byKind := make(map[Kind]uint64, len(p.byKind))
	for k, v := range p.byKind {
		byKind[k] = v
	}
	return Stats{
		ByKind:      byKind,
		TotalProfit: new(big.Int).Set(p.profit),
		Dropped:     p.dropped,
	}
}
