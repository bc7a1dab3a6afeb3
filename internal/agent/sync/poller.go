package sync

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fieldreport/internal/agent/connectivity"
	"github.com/dmitrijs2005/fieldreport/internal/logging"
)

// Poller periodically re-derives the pending count to drive the "N pending"
// indicator and the auto-sync trigger.
type Poller struct {
	sources  []Source
	conn     connectivity.Port
	status   *Status
	engine   *Engine
	interval time.Duration
	log      logging.Logger
}

func NewPoller(sources []Source, conn connectivity.Port, status *Status, engine *Engine, interval time.Duration, log logging.Logger) *Poller {
	return &Poller{
		sources:  sources,
		conn:     conn,
		status:   status,
		engine:   engine,
		interval: interval,
		log:      log.With("module", "poller"),
	}
}

// Run ticks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	total := 0
	for _, src := range p.sources {
		n, err := src.CountPending(ctx)
		if err != nil {
			// store busy: keep the last published count and retry next tick
			p.log.Warn(ctx, "pending count query failed, will retry", "source", src.Name(), "error", err)
			return
		}
		total += n
	}

	p.status.setPending(total)

	if total > 0 && p.conn.Online() {
		p.engine.TriggerSync()
	}
}
