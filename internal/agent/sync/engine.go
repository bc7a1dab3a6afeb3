// Package sync implements the offline-first synchronization subsystem: the
// engine draining the local pending queue, the pending-count poller and the
// merge layer reconciling local and server record sets for display.
package sync

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/fieldreport/internal/agent/connectivity"
	"github.com/dmitrijs2005/fieldreport/internal/common"
	"github.com/dmitrijs2005/fieldreport/internal/logging"
)

// Engine is the sync state machine. It is either idle or running exactly one
// pass; triggers arriving mid-pass are dropped, and the completed pass
// republishes the pending count so a follow-up trigger fires when needed.
type Engine struct {
	sources       []Source
	conn          connectivity.Port
	status        *Status
	log           logging.Logger
	submitTimeout time.Duration

	syncing atomic.Bool
	trigger chan struct{}
}

func NewEngine(sources []Source, conn connectivity.Port, status *Status, submitTimeout time.Duration, log logging.Logger) *Engine {
	return &Engine{
		sources:       sources,
		conn:          conn,
		status:        status,
		log:           log.With("module", "sync"),
		submitTimeout: submitTimeout,
		trigger:       make(chan struct{}, 1),
	}
}

// TriggerSync requests a sync pass. Safe to call from any goroutine and from
// the CLI's manual "sync now" affordance.
func (e *Engine) TriggerSync() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}

// Run consumes connectivity transitions and sync triggers until ctx is
// cancelled. Teardown mid-pass is safe: records stay pending in the durable
// store and resume on the next launch.
func (e *Engine) Run(ctx context.Context) {
	transitions := e.conn.Subscribe()
	e.status.setOnline(e.conn.Online())

	for {
		select {
		case online := <-transitions:
			e.status.setOnline(online)
			if online {
				e.TriggerSync()
			}
		case <-e.trigger:
			e.RunPass(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunPass executes one bounded drain of the pending snapshot. It returns
// false when the pass was dropped: another pass in progress or the device is
// offline. Connectivity is re-read here rather than trusting the last push.
func (e *Engine) RunPass(ctx context.Context) bool {
	if !e.syncing.CompareAndSwap(false, true) {
		return false
	}
	defer e.syncing.Store(false)

	if !e.conn.Online() {
		return false
	}

	e.status.setSyncing(true)
	defer e.status.setSyncing(false)

	for _, src := range e.sources {
		if ctx.Err() != nil {
			break
		}
		e.drainSource(ctx, src)
	}

	e.publishPending(ctx)
	e.status.setLastSyncAt(time.Now())
	return true
}

// drainSource submits one source's snapshot sequentially, oldest first. One
// record's failure never aborts the pass for the remaining records.
func (e *Engine) drainSource(ctx context.Context, src Source) {
	items, err := src.ListPending(ctx)
	if err != nil {
		e.log.Error(ctx, "failed to snapshot pending records", "source", src.Name(), "error", err)
		return
	}
	if len(items) == 0 {
		return
	}

	e.log.Info(ctx, "starting sync pass", "source", src.Name(), "pending", len(items))

	for _, it := range items {
		if ctx.Err() != nil {
			return
		}

		sctx, cancel := context.WithTimeout(ctx, e.submitTimeout)
		remoteID, err := it.Submit(sctx)
		cancel()

		switch {
		case err == nil:
			if err := src.MarkSynced(ctx, it.LocalKey, remoteID); err != nil {
				e.log.Error(ctx, "failed to mark record synced",
					"source", src.Name(), "local_key", it.LocalKey, "remote_id", remoteID, "error", err)
			} else {
				e.log.Info(ctx, "record synced",
					"source", src.Name(), "local_key", it.LocalKey, "remote_id", remoteID)
			}
		case errors.Is(err, common.ErrPermanentReject):
			e.log.Warn(ctx, "record rejected by server, flagged for review",
				"source", src.Name(), "local_key", it.LocalKey, "error", err)
			if err := src.MarkRejected(ctx, it.LocalKey, err.Error()); err != nil {
				e.log.Error(ctx, "failed to mark record rejected",
					"source", src.Name(), "local_key", it.LocalKey, "error", err)
			}
		default:
			// transient failure: the record stays pending and is retried on
			// the next trigger
			e.log.Warn(ctx, "submission failed, record stays pending",
				"source", src.Name(), "local_key", it.LocalKey, "error", err)
		}
	}
}

func (e *Engine) publishPending(ctx context.Context) {
	total := 0
	for _, src := range e.sources {
		n, err := src.CountPending(ctx)
		if err != nil {
			e.log.Error(ctx, "failed to count pending records", "source", src.Name(), "error", err)
			continue
		}
		total += n
	}
	e.status.setPending(total)
}
