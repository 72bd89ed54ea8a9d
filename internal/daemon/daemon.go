package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/gofrs/flock"

	"chorus/internal/clips"
	"chorus/internal/config"
	"chorus/internal/logging"
	"chorus/internal/preflight"
	"chorus/internal/preview"
	"chorus/internal/resultcache"
)

// Daemon serves the analysis API and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *resultcache.Store
	clips   *clips.Store
	service *preview.Service
	api     *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	ListenAddress string
	DatabasePath  string
	ClipsPath     string
	LockFilePath  string
	CacheEntries  int
	Dependencies  []preflight.Status
}

// New constructs a daemon, opening the clip store and, when it is enabled,
// the result cache.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}

	var cache preview.Cache
	var manager cacheManager
	if cfg.ResultCache.Enabled {
		store, err := resultcache.OpenFromConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("open result cache: %w", err)
		}
		d.store = store
		cache = store
		manager = store
	}
	clipStore, err := clips.OpenFromConfig(cfg)
	if err != nil {
		_ = d.store.Close()
		return nil, fmt.Errorf("open clip store: %w", err)
	}
	d.clips = clipStore
	d.service = preview.NewFromConfig(cfg, cache, logger)
	d.api = newAPIServer(cfg.Paths.APIBind, cfg.Paths.APIToken, d.service, manager, clipStore, d.Status, logger)
	return d, nil
}

// Start acquires the daemon lock and begins serving the API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another chorus daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.reportDependencies()
	logging.CleanupOldLogs(d.logger, d.cfg.Logging.RetentionDays, d.cfg.Paths.LogDir, "")

	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("chorus daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.api.addr()),
		logging.Bool("result_cache", d.store != nil),
	)
	return nil
}

// Run starts the daemon, blocks until ctx is canceled and then shuts it down.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	d.logger.Info("shutdown requested", logging.String("cause", context.Cause(ctx).Error()))
	return d.Close()
}

// Stop stops serving and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("chorus daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return errors.Join(d.store.Close(), d.clips.Close())
}

// Addr returns the address the API listens on, or "" when not started.
func (d *Daemon) Addr() string {
	return d.api.addr()
}

// Service exposes the preview service for in-process callers.
func (d *Daemon) Service() *preview.Service {
	return d.service
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		ListenAddress: d.api.addr(),
		ClipsPath:     d.clips.Path(),
		LockFilePath:  d.lockPath,
		Dependencies:  preflight.CheckSystemDeps(d.cfg),
	}
	if d.store != nil {
		status.DatabasePath = d.store.Path()
		if n, err := d.store.Count(ctx); err == nil {
			status.CacheEntries = n
		}
	}
	return status
}

func (d *Daemon) reportDependencies() {
	for _, dep := range preflight.CheckSystemDeps(d.cfg) {
		if dep.Available {
			continue
		}
		impact := "requests for uncached identifiers will fail"
		if dep.Optional {
			impact = "degraded functionality"
		}
		logging.WarnWithContext(d.logger, "dependency unavailable", "dependency_missing",
			logging.String("dependency", dep.Name),
			logging.String("command", dep.Command),
			logging.String("detail", dep.Detail),
			logging.String(logging.FieldImpact, impact),
			logging.String(logging.FieldErrorHint, "install "+dep.Name+" or set its binary path in config.toml"),
		)
	}
}
