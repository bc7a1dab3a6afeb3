// Package connectivity tracks whether the server is currently reachable.
//
// There is no platform online/offline event to listen to in a headless
// agent, so the watcher derives the signal by probing the server's health
// endpoint on a fixed interval. A probe that succeeds only at link level and
// then fails at request time is covered by the sync engine's per-request
// failure handling, not here.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/fieldreport/internal/logging"
)

// Port is the connectivity signal consumed by the sync engine and the CLI.
// Subscribers are notified exactly once per state transition.
type Port interface {
	Online() bool
	Subscribe() <-chan bool
}

// Pinger probes server reachability. Satisfied by the API client.
type Pinger interface {
	Ping(ctx context.Context) error
}

const probeTimeout = 3 * time.Second

// Watcher polls the Pinger and publishes online/offline transitions.
type Watcher struct {
	pinger   Pinger
	interval time.Duration
	log      logging.Logger

	mu     sync.Mutex
	online bool
	subs   []chan bool
}

func NewWatcher(p Pinger, interval time.Duration, log logging.Logger) *Watcher {
	return &Watcher{
		pinger:   p,
		interval: interval,
		log:      log.With("module", "connectivity"),
	}
}

// Online returns the last observed reachability state.
func (w *Watcher) Online() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.online
}

// Subscribe returns a channel receiving the new state once per transition.
// The channel is buffered; a subscriber that lags misses intermediate flips
// but always observes the latest state eventually.
func (w *Watcher) Subscribe() <-chan bool {
	ch := make(chan bool, 1)
	w.mu.Lock()
	w.subs = append(w.subs, ch)
	w.mu.Unlock()
	return ch
}

// Run probes immediately and then on every tick until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	w.probe(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) probe(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	err := w.pinger.Ping(pctx)
	cancel()

	w.set(ctx, err == nil)
}

// set records the state and notifies subscribers on transitions only.
func (w *Watcher) set(ctx context.Context, online bool) {
	w.mu.Lock()
	if w.online == online {
		w.mu.Unlock()
		return
	}
	w.online = online
	subs := make([]chan bool, len(w.subs))
	copy(subs, w.subs)
	w.mu.Unlock()

	if online {
		w.log.Info(ctx, "server reachable, switching online")
	} else {
		w.log.Warn(ctx, "server unreachable, switching offline")
	}

	for _, ch := range subs {
		select {
		case ch <- online:
		default:
			// drop the stale value so the latest state wins
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- online:
			default:
			}
		}
	}
}
