// Package app wires all bot subsystems into a running application.
//
// The App struct owns the full lifecycle: [New] creates and connects all
// subsystems, [App.Run] blocks until the context is cancelled, and
// [App.Shutdown] tears everything down in order.
//
// For testing, inject doubles via functional options ([WithStore],
// [WithBackends]). When an option is not provided, New creates real
// implementations from the config.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkodial/tulubot/internal/bot"
	"github.com/pkodial/tulubot/internal/cache"
	"github.com/pkodial/tulubot/internal/config"
	"github.com/pkodial/tulubot/internal/engine"
	"github.com/pkodial/tulubot/internal/fetcher"
	"github.com/pkodial/tulubot/internal/health"
	"github.com/pkodial/tulubot/internal/keepalive"
	"github.com/pkodial/tulubot/internal/lexicon"
	"github.com/pkodial/tulubot/internal/observe"
	"github.com/pkodial/tulubot/internal/store"
	"github.com/pkodial/tulubot/internal/workflow"
)

// sweepInterval is how often expired conversations and dedup keys are
// purged.
const sweepInterval = time.Minute

// App owns all subsystem lifetimes.
type App struct {
	cfg *config.Config

	st       store.Store
	backends []fetcher.Backend
	fetch    *fetcher.Fetcher
	wf       *workflow.Workflow
	bot      *bot.Bot
	activity *keepalive.Activity
	server   *http.Server

	stopOnce sync.Once
}

// Option is a functional option for [New]. Use these to inject test doubles.
type Option func(*App)

// WithStore injects a store instead of connecting one from config.
func WithStore(st store.Store) Option {
	return func(a *App) { a.st = st }
}

// WithBackends injects translation backends instead of building them from
// config.
func WithBackends(backends []fetcher.Backend) Option {
	return func(a *App) { a.backends = backends }
}

// New creates an App by wiring all subsystems together: store (with
// in-memory fallback), lexicon, caches, fetcher, engine, workflow, Discord
// transport, and the HTTP sidecar for health and metrics.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, o := range opts {
		o(a)
	}

	if a.st == nil {
		a.st = store.Connect(ctx, cfg.Store.PostgresDSN, cfg.Store.ConnectTimeout.Std())
	}

	if a.backends == nil {
		backends, err := buildBackends(cfg.Translate.Backends)
		if err != nil {
			a.st.Close()
			return nil, err
		}
		a.backends = backends
	}

	fetchOpts := []fetcher.Option{
		fetcher.WithTimeout(cfg.Translate.Timeout.Std()),
	}
	if cfg.Translate.Strategy == "sequential" {
		fetchOpts = append(fetchOpts, fetcher.WithStrategy(fetcher.StrategySequential))
	}
	a.fetch = fetcher.New(a.backends, fetchOpts...)

	metrics := observe.DefaultMetrics()
	lex := lexicon.New()
	taught := cache.NewTaughtCache(a.st, cfg.Cache.TaughtTTL.Std())
	api := cache.NewAPICache(a.st, cfg.Cache.APIMaxAge.Std())
	states := workflow.NewStates(cfg.Teach.StateTTL.Std(), metrics)

	eng := engine.New(lex, taught, api, a.fetch, a.st, states, metrics)
	a.wf = workflow.New(eng, states, workflow.NewDedup(0), taught, lex, a.st, metrics)

	a.activity = &keepalive.Activity{}

	b, err := bot.New(ctx, bot.Config{
		Token:   cfg.Discord.Token,
		GuildID: cfg.Discord.GuildID,
	}, a.wf, a.activity.Record)
	if err != nil {
		a.st.Close()
		return nil, fmt.Errorf("app: start discord bot: %w", err)
	}
	a.bot = b

	mux := http.NewServeMux()
	health.New(
		health.StoreChecker(a.st),
		health.BreakerChecker(a.fetch.Breakers()),
	).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	addr := cfg.Server.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	a.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return a, nil
}

// buildBackends constructs the configured translation backends in order.
func buildBackends(entries []config.BackendEntry) ([]fetcher.Backend, error) {
	var backends []fetcher.Backend
	for i, e := range entries {
		var (
			b   fetcher.Backend
			err error
		)
		switch e.Type {
		case "openai":
			var opts []fetcher.OpenAIOption
			if e.BaseURL != "" {
				opts = append(opts, fetcher.WithOpenAIBaseURL(e.BaseURL))
			}
			b, err = fetcher.NewOpenAIBackend(e.APIKey, e.Model, opts...)
		case "anyllm":
			b, err = fetcher.NewAnyLLMBackend(e.Provider, e.Model)
		case "rest":
			name := "rest"
			if e.Provider != "" {
				name = e.Provider
			}
			b, err = fetcher.NewRESTBackend(name, e.BaseURL, e.LangPair, 0)
		default:
			err = fmt.Errorf("unsupported backend type %q", e.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("app: build translate.backends[%d]: %w", i, err)
		}
		backends = append(backends, b)
	}
	return backends, nil
}

// Run starts the background tasks and blocks until ctx is cancelled or the
// HTTP server fails.
func (a *App) Run(ctx context.Context) error {
	a.wf.States().StartSweeper(ctx, sweepInterval)
	keepalive.NewPinger(a.cfg.KeepAlive.URL, a.cfg.KeepAlive.Interval.Std(), a.activity).Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("app: http server: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown tears the subsystems down: transport first so no new events
// arrive, then the HTTP server, then the store.
func (a *App) Shutdown(ctx context.Context) {
	a.stopOnce.Do(func() {
		if a.bot != nil {
			if err := a.bot.Close(); err != nil {
				slog.Warn("closing discord bot failed", "err", err)
			}
		}
		if a.server != nil {
			if err := a.server.Shutdown(ctx); err != nil {
				slog.Warn("shutting down http server failed", "err", err)
			}
		}
		if a.st != nil {
			a.st.Close()
		}
		slog.Info("shutdown complete")
	})
}
