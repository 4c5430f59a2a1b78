package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rusenback/trackerdash/internal/model"
	"golang.org/x/time/rate"
)

// Syncer is one sync tick's work
type Syncer interface {
	Sync(ctx context.Context) ([]model.Region, error)
}

// Poller calls a Syncer on a fixed interval until stopped. A failed tick is
// logged and the next one runs as scheduled.
type Poller struct {
	syncer   Syncer
	interval time.Duration
	logger   *slog.Logger
	limiter  *rate.Limiter
	trigger  chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	ticks atomic.Int64
}

// NewPoller creates a stopped poller. Manual triggers are limited to one per
// minManual.
func NewPoller(s Syncer, interval, minManual time.Duration, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if minManual > 0 {
		limit = rate.Every(minManual)
	}
	return &Poller{
		syncer:   s,
		interval: interval,
		logger:   logger.With("component", "poller"),
		limiter:  rate.NewLimiter(limit, 1),
		trigger:  make(chan struct{}, 1),
	}
}

// Start begins ticking. Calling Start on a running poller does nothing.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
	p.logger.Info("sync started", "interval", p.interval)
}

// Stop halts the poller and waits for an in-flight tick to return
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.logger.Info("sync stopped")
}

// Running reports whether the poller is started
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Ticks returns how many ticks have run
func (p *Poller) Ticks() int64 {
	return p.ticks.Load()
}

// Trigger asks for a tick now. It returns false when rate limited.
func (p *Poller) Trigger() bool {
	if !p.limiter.Allow() {
		return false
	}
	select {
	case p.trigger <- struct{}{}:
	default:
	}
	return true
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		case <-p.trigger:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	p.ticks.Add(1)

	changed, err := p.syncer.Sync(ctx)
	switch {
	case err == nil:
		if len(changed) > 0 {
			p.logger.Debug("regions updated", "regions", changed)
		}
	case errors.Is(err, context.Canceled):
	case errors.Is(err, ErrParse):
		p.logger.Warn("sync tick failed", "err", err)
	default:
		p.logger.Debug("syncing paused", "err", err)
	}
}
