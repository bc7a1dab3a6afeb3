// Package cli implements the interactive field agent console: capture
// prompts, listing, manual sync and the status indicator.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/dmitrijs2005/fieldreport/internal/agent/api"
	"github.com/dmitrijs2005/fieldreport/internal/agent/config"
	"github.com/dmitrijs2005/fieldreport/internal/agent/connectivity"
	"github.com/dmitrijs2005/fieldreport/internal/agent/services"
	"github.com/dmitrijs2005/fieldreport/internal/agent/storage"
	syncpkg "github.com/dmitrijs2005/fieldreport/internal/agent/sync"
	"github.com/dmitrijs2005/fieldreport/internal/logging"
)

// App wires the agent subsystems together and drives the REPL.
type App struct {
	config  *config.Config
	repos   *storage.Repositories
	reports *services.ReportService
	people  *services.PersonService
	api     *api.Client
	watcher *connectivity.Watcher
	engine  *syncpkg.Engine
	poller  *syncpkg.Poller
	status  *syncpkg.Status
	log     logging.Logger

	userName string
	reader   *bufio.Reader
}

// deferredTrigger lets the services be constructed before the engine they
// nudge. TriggerSync before the engine is attached is a no-op.
type deferredTrigger struct {
	engine *syncpkg.Engine
}

func (t *deferredTrigger) TriggerSync() {
	if t.engine != nil {
		t.engine.TriggerSync()
	}
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	repos, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, err
	}

	apiClient := api.New(c.ServerEndpointAddr, c.SubmitTimeout)
	watcher := connectivity.NewWatcher(apiClient, c.OnlineCheckInterval, log)
	status := syncpkg.NewStatus()

	trigger := &deferredTrigger{}
	reportSvc := services.NewReportService(repos.Reports, apiClient, watcher, trigger, c.PageSize, log)
	personSvc := services.NewPersonService(repos.People, apiClient, watcher, trigger, c.PageSize, log)

	sources := []syncpkg.Source{reportSvc.SyncSource(), personSvc.SyncSource()}
	engine := syncpkg.NewEngine(sources, watcher, status, c.SubmitTimeout, log)
	trigger.engine = engine
	poller := syncpkg.NewPoller(sources, watcher, status, engine, c.PendingPollInterval, log)

	return &App{
		config:  c,
		repos:   repos,
		reports: reportSvc,
		people:  personSvc,
		api:     apiClient,
		watcher: watcher,
		engine:  engine,
		poller:  poller,
		status:  status,
		log:     log.With("module", "cli"),
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

// Run starts the background workers and hands control to the REPL. Teardown
// mid-pass is safe: pending records stay in the durable store and resume on
// the next launch.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.repos.DB.Close()

	go a.watcher.Run(ctx)
	go a.engine.Run(ctx)
	go a.poller.Run(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}
