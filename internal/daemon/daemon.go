package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ebph-project/ebphd/internal/api"
	"github.com/ebph-project/ebphd/internal/domain"
	"github.com/ebph-project/ebphd/internal/eventbus"
	"github.com/ebph-project/ebphd/internal/eventsource"
	"github.com/ebph-project/ebphd/internal/eventsource/mock"
	"github.com/ebph-project/ebphd/internal/health"
	"github.com/ebph-project/ebphd/internal/infra/metrics"
	"github.com/ebph-project/ebphd/internal/persist"
	"github.com/ebph-project/ebphd/internal/registry"
	"github.com/ebph-project/ebphd/internal/settings"
)

// Daemon is ebphd's runtime: it owns the registry, the event bus, the
// persistence store, the settings store, the HTTP control surface, and
// whichever event source is supplying calls.
type Daemon struct {
	Config Config

	Registry   *registry.Registry
	Bus        *eventbus.Bus
	Store      *persist.Store
	Settings   *settings.Store
	Dispatcher *registry.Dispatcher
	Health     *health.Checker
	Server     *api.Server
	Source     eventsource.Source

	cancel context.CancelFunc
}

// New creates and initializes a Daemon, loading config from disk.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg, nil)
}

// NewWithConfig creates a Daemon with the given configuration. If src is
// nil, a mock.Source with no boot-time seeds is used — enough to serve
// the control surface and run the profile engine against synthetic call
// events (tests, and `ebphd serve`, which always passes nil) without a
// real syscall interception backend wired up.
func NewWithConfig(cfg Config, src eventsource.Source) (*Daemon, error) {
	bus := eventbus.New(cfg.Engine.EventBusBuffer)

	store, err := persist.Open(cfg.Store.Dir, cfg.Engine.CallSpace, cfg.Engine.Window)
	if err != nil {
		return nil, fmt.Errorf("open profile store: %w", err)
	}

	reg := registry.New(bus, cfg.Engine.CallSpace, cfg.Engine.Window, cfg.Engine.LocalityFrame)

	stg := settings.NewStore(settings.Settings{
		Monitoring:      cfg.Engine.Monitoring,
		Enforcing:       cfg.Engine.Enforcing,
		NormalWait:      cfg.Engine.NormalWait,
		NormalFactor:    cfg.Engine.NormalFactor,
		NormalFactorDen: cfg.Engine.NormalFactorDen,
		AnomalyLimit:    cfg.Engine.AnomalyLimit,
		TolerizeLimit:   cfg.Engine.TolerizeLimit,
		LogSequences:    cfg.Engine.LogSequences,
	})

	dispatcher := registry.NewDispatcher(reg, stg)
	checker := health.NewChecker(store, bus)
	srv := api.NewServer(reg, store, stg, bus, checker)
	if cfg.API.Prometheus {
		srv.EnableMetrics()
	}

	if src == nil {
		src = mock.New(nil, 256)
	}

	return &Daemon{
		Config:     cfg,
		Registry:   reg,
		Bus:        bus,
		Store:      store,
		Settings:   stg,
		Dispatcher: dispatcher,
		Health:     checker,
		Server:     srv,
		Source:     src,
	}, nil
}

// Serve loads any persisted profiles, bootstraps the registry from the
// event source's already-running processes, starts the dispatch and
// save-tick loops, and blocks serving the HTTP control surface until a
// shutdown signal arrives.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if loaded, err := d.Store.LoadAll(); err != nil {
		log.Printf("[daemon] WARNING: failed to load persisted profiles: %v", err)
	} else {
		for _, p := range loaded {
			d.Registry.Restore(p)
		}
		log.Printf("[daemon] restored %d profiles from disk", len(loaded))
	}

	seeds, err := d.Source.Bootstrap(ctx)
	if err != nil {
		log.Printf("[daemon] WARNING: bootstrap failed: %v", err)
	} else {
		d.Dispatcher.Seed(seeds)
	}

	go d.Health.Run(ctx)
	go d.dispatchLoop(ctx)
	go d.saveLoop(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = d.Store.SaveAll(d.Registry.All())
		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.Source.Close()
		_ = d.Store.Close()
	}()

	fmt.Printf("ebphd serving on http://%s\n", addr)
	if d.Config.API.Prometheus {
		fmt.Printf("  metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// dispatchLoop feeds every call and lifecycle event the source produces
// through the anomaly engine until ctx is cancelled.
func (d *Daemon) dispatchLoop(ctx context.Context) {
	calls := d.Source.Events()
	lifecycle := d.Source.TaskLifecycle()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-calls:
			if !ok {
				return
			}
			decision := d.Dispatcher.Dispatch(ev)
			metrics.CallsProcessed.WithLabelValues(decision.String()).Inc()
			if decision == domain.Deny {
				metrics.EnforcementDenials.Inc()
			}
			if err := d.Source.Decide(ctx, ev.Pid, decision); err != nil {
				log.Printf("[daemon] Decide error for pid %d: %v", ev.Pid, err)
			}
		case ev, ok := <-lifecycle:
			if !ok {
				continue
			}
			d.Dispatcher.HandleLifecycle(ev)
		}
	}
}

// saveLoop persists every registered profile on a fixed wall-clock cadence
// (Config.Store.SaveInterval, default 30s), standing in for the
// tick-counter-driven save of original_source's bpf_program.py on_tick.
func (d *Daemon) saveLoop(ctx context.Context) {
	interval, err := time.ParseDuration(d.Config.Store.SaveInterval)
	if err != nil || interval <= 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			if err := d.Store.SaveAll(d.Registry.All()); err != nil {
				log.Printf("[daemon] save tick error: %v", err)
			}
			metrics.SaveLatency.Observe(time.Since(start).Seconds())
			if usage, err := d.Store.DiskUsage(); err == nil {
				metrics.DiskUsageBytes.Set(float64(usage))
			}
		}
	}
}

// Close releases every daemon resource. Safe to call after Serve returns.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Source != nil {
		_ = d.Source.Close()
	}
	if d.Store != nil {
		_ = d.Store.Close()
	}
}
