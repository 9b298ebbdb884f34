package watchlist

import (
	"context"
	"sync/atomic"
	"time"

	"stockpulse/src/interfaces"
	"stockpulse/src/logger"
	"stockpulse/src/models"
	"stockpulse/src/utils"
)

// -----------------------------------------------------------------------------
// Poller periodically drives the same reconciliation pass the list endpoint
// uses. Single-flight per process: a tick is skipped while a pass is still
// running, so a latch transition is never written twice. Disabled by default.
// -----------------------------------------------------------------------------

type Poller struct {
	Service   *Service
	Scheduler interfaces.IMarketScheduler
	Logger    *logger.Logger
	Interval  time.Duration
	inFlight  atomic.Bool
}

// -----------------------------------------------------------------------------

func NewPoller(cfg *models.MConfig, svc *Service) *Poller {
	log := logger.NewLogger(cfg.LogLevel, "Poller")
	return &Poller{
		Service:   svc,
		Scheduler: utils.NewMarketScheduler(nil, log),
		Logger:    log,
		Interval:  time.Duration(cfg.Poller.IntervalSeconds) * time.Second,
	}
}

// -----------------------------------------------------------------------------

// Start launches the polling loop. Cancelling the context stops it.
func (p *Poller) Start(ctx context.Context) {
	p.Logger.Info("Starting alert poller (interval %s)", p.Interval)
	go p.runLoop(ctx)
}

// -----------------------------------------------------------------------------

func (p *Poller) runLoop(ctx context.Context) {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.Logger.Info("Alert poller stopped")
			return
		case <-ticker.C:
			if !p.Scheduler.AnyMarketOpen() {
				p.Logger.Debug("All tracked markets closed, skipping pass")
				continue
			}
			p.runPass(ctx)
		}
	}
}

// -----------------------------------------------------------------------------

func (p *Poller) runPass(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.Logger.Debug("Previous pass still running, skipping tick")
		return
	}
	defer p.inFlight.Store(false)

	enriched, err := p.Service.List(ctx)
	if err != nil {
		p.Logger.Error("Alert pass failed: %v", err)
		return
	}

	symbols := make([]string, 0, len(enriched))
	triggered := 0
	for _, e := range enriched {
		symbols = append(symbols, e.Symbol)
		if e.IsAlertTriggered {
			triggered++
		}
	}
	p.Scheduler.UpdateSymbols(symbols)

	p.Logger.Debug("Alert pass complete: %d entries, %d triggered", len(enriched), triggered)
}
