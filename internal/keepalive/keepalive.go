package keepalive

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/stigoleg/wakefull/internal/platform"
	"github.com/stigoleg/wakefull/internal/state"
)

// StrategyFactory selects and builds the strategy for the current
// environment. It returns an error wrapping platform.ErrNoMethod when
// nothing is usable.
type StrategyFactory func(ctx context.Context) (platform.Strategy, error)

// Options configures a Keeper.
type Options struct {
	Paths            state.Paths
	RefreshInterval  time.Duration
	HealthInterval   time.Duration
	StopTimeout      time.Duration
	Method           platform.Method // MethodNone selects automatically
	SimulateActivity bool

	Runner  platform.Runner
	Spawner platform.Spawner

	// Factory overrides strategy selection; nil probes the live environment.
	Factory StrategyFactory
}

func (o Options) withDefaults() Options {
	if o.Paths.Dir == "" {
		o.Paths = state.NewPaths(state.DefaultDir())
	}
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = platform.RefreshInterval
	}
	if o.HealthInterval <= 0 {
		o.HealthInterval = platform.HealthCheckInterval
	}
	if o.StopTimeout <= 0 {
		o.StopTimeout = platform.StopTimeout
	}
	if o.Runner == nil {
		o.Runner = platform.ExecRunner{}
	}
	if o.Spawner == nil {
		o.Spawner = platform.ExecSpawner{}
	}
	return o
}

// Keeper is the daemon: it owns the lock, the record and the one active
// strategy, and supervises the strategy until its context is cancelled.
type Keeper struct {
	opts    Options
	factory StrategyFactory
	backup  *state.Backup

	mu       sync.Mutex
	status   Status
	strategy platform.Strategy
	written  platform.StrategyState
	updates  chan Status
}

// New creates a Keeper. Nothing happens until Run.
func New(opts Options) *Keeper {
	opts = opts.withDefaults()
	k := &Keeper{
		opts:    opts,
		backup:  state.NewBackup(opts.Paths.Backup),
		updates: make(chan Status, 16),
	}
	k.factory = opts.Factory
	if k.factory == nil {
		k.factory = newStrategyFactory(opts, k.backup)
	}
	return k
}

// Updates delivers status snapshots. It is closed when Run returns.
// Snapshots are dropped when the reader falls behind.
func (k *Keeper) Updates() <-chan Status {
	return k.updates
}

// Status returns the latest snapshot.
func (k *Keeper) Status() Status {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.status
}

// State returns the lifecycle state.
func (k *Keeper) State() State {
	return k.Status().State
}

func (k *Keeper) update(fn func(s *Status)) {
	k.mu.Lock()
	fn(&k.status)
	snapshot := k.status
	k.mu.Unlock()

	select {
	case k.updates <- snapshot:
	default:
	}
}

func (k *Keeper) setState(s State) {
	k.update(func(st *Status) { st.State = s })
	log.Printf("daemon: %s", s)
}

// Run starts the daemon and blocks until ctx is cancelled, the record is
// removed, or startup fails. Cleanup always runs before Run returns.
func (k *Keeper) Run(ctx context.Context) (err error) {
	defer close(k.updates)
	defer func() {
		k.update(func(st *Status) {
			st.State = StateNotRunning
			st.Err = err
		})
	}()

	k.setState(StateStarting)
	paths := k.opts.Paths
	if err := paths.Ensure(); err != nil {
		return err
	}

	lock, err := state.AcquireLock(paths.Lock)
	if errors.Is(err, state.ErrLocked) {
		return fmt.Errorf("%w: lock %s is held", ErrAlreadyRunning, paths.Lock)
	}
	if err != nil {
		return err
	}

	cleanup := NewCleanupManager(2*k.opts.StopTimeout + platform.CommandTimeout)
	defer func() {
		if cerr := cleanup.Execute(); cerr != nil {
			log.Printf("daemon: cleanup finished with errors: %v", cerr)
		}
	}()
	cleanup.RegisterFunc("lock file", lock.Release)

	started := time.Now()
	pid := os.Getpid()
	k.update(func(st *Status) {
		st.PID = pid
		st.Started = started
	})
	if err := state.WriteRecord(paths.Record, state.Record{PID: pid, Started: started}); err != nil {
		return err
	}
	cleanup.RegisterFunc("daemon record", func() error { return state.RemoveFile(paths.Record) })
	cleanup.RegisterFunc("desktop settings", func() error {
		return restoreSettings(context.Background(), k.opts.Runner, k.backup)
	})
	cleanup.RegisterFunc("inhibition", k.stopStrategy)

	if err := k.startStrategy(ctx); err != nil {
		return err
	}
	k.setState(StateRunning)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return k.supervise(gctx) })
	g.Go(func() error { return k.watchRecord(gctx) })

	err = g.Wait()
	k.setState(StateStopping)
	if errors.Is(err, errRecordRemoved) {
		log.Printf("daemon: record %s removed, stopping", paths.Record)
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// startStrategy selects, starts and records a strategy.
func (k *Keeper) startStrategy(ctx context.Context) error {
	strategy, err := k.factory(ctx)
	if err != nil {
		return err
	}
	log.Printf("daemon: selected method %s", strategy.Method())
	if err := strategy.Start(ctx); err != nil {
		return fmt.Errorf("failed to start %s: %w", strategy.Method(), err)
	}

	k.mu.Lock()
	k.strategy = strategy
	k.mu.Unlock()

	k.update(func(st *Status) {
		st.Method = strategy.Method()
		st.Healthy = true
	})
	return k.persist(true)
}

func (k *Keeper) stopStrategy() error {
	k.mu.Lock()
	strategy := k.strategy
	k.strategy = nil
	k.mu.Unlock()

	if strategy == nil {
		return nil
	}
	return strategy.Stop(k.opts.StopTimeout)
}

// persist rewrites the record when the strategy handles changed.
func (k *Keeper) persist(force bool) error {
	k.mu.Lock()
	strategy := k.strategy
	k.mu.Unlock()
	if strategy == nil {
		return nil
	}

	handles := strategy.State()
	if !force && reflect.DeepEqual(handles, k.written) {
		return nil
	}
	snapshot := k.Status()
	r := state.Record{
		PID:      snapshot.PID,
		Method:   strategy.Method().String(),
		WindowID: handles.WindowID,
		Cookies:  handles.Cookies,
		Started:  snapshot.Started,
	}
	if err := state.WriteRecord(k.opts.Paths.Record, r); err != nil {
		return err
	}
	k.written = handles
	k.update(func(st *Status) {
		st.WindowID = handles.WindowID
		st.Cookies = handles.Cookies
	})
	return nil
}

func (k *Keeper) supervise(ctx context.Context) error {
	refresh := time.NewTicker(k.opts.RefreshInterval)
	defer refresh.Stop()
	health := time.NewTicker(k.opts.HealthInterval)
	defer health.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-refresh.C:
			k.refresh(ctx)
		case <-health.C:
			if err := k.checkHealth(ctx); err != nil {
				return err
			}
		}
	}
}

func (k *Keeper) refresh(ctx context.Context) {
	k.mu.Lock()
	strategy := k.strategy
	k.mu.Unlock()
	if strategy == nil {
		return
	}

	if err := strategy.Refresh(ctx); err != nil {
		log.Printf("daemon: refresh of %s failed: %v", strategy.Method(), err)
	}
	k.update(func(st *Status) { st.LastRefresh = time.Now() })
	if err := k.persist(false); err != nil {
		log.Printf("daemon: failed to update record: %v", err)
	}
}

// checkHealth restarts a dead strategy. A failed restart is retried on the
// next tick rather than ending the daemon.
func (k *Keeper) checkHealth(ctx context.Context) error {
	if _, err := os.Stat(k.opts.Paths.Record); errors.Is(err, os.ErrNotExist) {
		return errRecordRemoved
	}

	k.mu.Lock()
	strategy := k.strategy
	k.mu.Unlock()
	if strategy != nil && strategy.Alive() {
		k.update(func(st *Status) { st.Healthy = true })
		return nil
	}

	if strategy != nil {
		log.Printf("daemon: %s is no longer alive, restarting", strategy.Method())
	}
	if err := k.stopStrategy(); err != nil {
		log.Printf("daemon: stopping dead strategy: %v", err)
	}
	k.update(func(st *Status) {
		st.Healthy = false
		st.Restarts++
	})

	if err := k.startStrategy(ctx); err != nil {
		log.Printf("daemon: restart failed, retrying in %s: %v", k.opts.HealthInterval, err)
		k.update(func(st *Status) { st.Err = err })
		return nil
	}
	k.update(func(st *Status) { st.Err = nil })
	return nil
}

// watchRecord treats removal of the record by anyone else as a stop
// request.
func (k *Keeper) watchRecord(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("daemon: record watch unavailable, relying on health checks: %v", err)
		<-ctx.Done()
		return ctx.Err()
	}
	defer watcher.Close()

	if err := watcher.Add(k.opts.Paths.Dir); err != nil {
		log.Printf("daemon: cannot watch %s, relying on health checks: %v", k.opts.Paths.Dir, err)
		<-ctx.Done()
		return ctx.Err()
	}

	events, errs := watcher.Events, watcher.Errors
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if event.Name == k.opts.Paths.Record && event.Has(fsnotify.Remove|fsnotify.Rename) {
				return errRecordRemoved
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Printf("daemon: record watch error: %v", err)
		}
	}
}
