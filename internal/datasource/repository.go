package datasource

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"golang.org/x/sync/singleflight"

	"github.com/toggleworks/unleash-client-go/interfaces"
	"github.com/toggleworks/unleash-client-go/internal"
	"github.com/toggleworks/unleash-client-go/internal/datastore"
	"github.com/toggleworks/unleash-client-go/model"
)

// DefaultRefreshInterval is the polling interval used when none is configured.
const DefaultRefreshInterval = 10 * time.Second

// RepositoryConfig contains the collaborators of a Repository.
type RepositoryConfig struct {
	Fetcher         Fetcher
	Store           *datastore.ToggleStore
	Bootstrap       interfaces.BootstrapProvider
	RefreshInterval time.Duration
	// SynchronousFetch makes Start perform the first fetch before returning.
	SynchronousFetch bool
	Loggers          ldlog.Loggers
}

// Repository keeps the toggle store synchronized with the server.
//
// At startup it restores the backup, or failing that the bootstrap data. It then polls the fetcher
// at a fixed interval until closed. A failed fetch never touches the current snapshot and never
// stops polling.
type Repository struct {
	fetcher   Fetcher
	store     *datastore.ToggleStore
	bootstrap interfaces.BootstrapProvider
	interval  time.Duration
	syncFetch bool
	loggers   ldlog.Loggers

	stateLock   sync.Mutex
	state       interfaces.RepositoryState
	loaded      bool
	broadcaster *internal.Broadcaster[interfaces.RepositoryEvent]

	fetchGroup     singleflight.Group
	firstFetchOnce sync.Once
	readyCh        chan struct{}
	readyOnce      sync.Once

	ctx       context.Context
	cancel    context.CancelFunc
	startOnce sync.Once
	closeOnce sync.Once
	closed    atomic.Bool
	done      chan struct{}
}

// NewRepository creates a repository in the Uninitialized state. Nothing happens until Start.
func NewRepository(config RepositoryConfig) *Repository {
	interval := config.RefreshInterval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Repository{
		fetcher:     config.Fetcher,
		store:       config.Store,
		bootstrap:   config.Bootstrap,
		interval:    interval,
		syncFetch:   config.SynchronousFetch,
		loggers:     config.Loggers,
		state:       interfaces.RepositoryStateUninitialized,
		broadcaster: internal.NewBroadcaster[interfaces.RepositoryEvent](),
		readyCh:     make(chan struct{}),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// Start loads the initial snapshot and starts polling. Calls after the first have no effect.
func (r *Repository) Start() {
	r.startOnce.Do(func() {
		r.loadInitialSnapshot()
		r.loggers.Infof("Starting toggle polling with interval: %+v", r.interval)
		if r.syncFetch {
			r.Refresh()
		}
		go r.run(!r.syncFetch)
	})
}

func (r *Repository) loadInitialSnapshot() {
	if snapshot := r.store.LoadBackup(); snapshot != nil {
		r.store.Replace(snapshot)
		r.loggers.Infof("Restored %d features from backup", snapshot.Len())
		r.setState(interfaces.RepositoryStateSynchronized, true, interfaces.EventBackupRestored, 0, nil)
		r.markReady()
		return
	}
	if snapshot := r.readBootstrap(); snapshot != nil {
		r.store.Replace(snapshot)
		r.loggers.Infof("Loaded %d features from bootstrap data", snapshot.Len())
		r.setState(interfaces.RepositoryStateSynchronized, true, interfaces.EventBootstrapped, 0, nil)
		r.markReady()
		return
	}
	r.setState(interfaces.RepositoryStateBootstrapping, false, "", 0, nil)
}

func (r *Repository) readBootstrap() *datastore.Snapshot {
	if r.bootstrap == nil {
		return nil
	}
	data, err := r.bootstrap.Read()
	if err != nil {
		r.loggers.Warnf("Unable to read bootstrap data: %s", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	coll, err := model.ParseFeatureCollection(data)
	if err != nil {
		r.loggers.Warnf("Ignoring invalid bootstrap data: %s", err)
		return nil
	}
	// Bootstrap data is never written to the backup; only server responses are.
	return datastore.NewSnapshot(coll, "", nil)
}

func (r *Repository) run(fetchImmediately bool) {
	defer close(r.done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	if fetchImmediately {
		r.Refresh()
	}
	for {
		select {
		case <-r.ctx.Done():
			r.loggers.Info("Toggle polling has been shut down")
			return
		case <-ticker.C:
			r.Refresh()
		}
	}
}

// Refresh performs one fetch and applies its result. Concurrent calls share a single fetch.
func (r *Repository) Refresh() {
	if r.closed.Load() {
		return
	}
	_, _, _ = r.fetchGroup.Do("fetch", func() (interface{}, error) {
		r.poll()
		return nil, nil
	})
}

func (r *Repository) poll() {
	result := r.fetcher.Fetch(r.ctx, r.store.Current().ETag())
	if r.closed.Load() {
		return
	}

	switch result.Status {
	case FetchUpdated:
		snapshot := datastore.NewSnapshot(result.Collection, result.ETag, result.Body)
		r.store.Replace(snapshot)
		r.firstFetchOnce.Do(func() {
			r.loggers.Info("First toggle fetch successful")
		})
		r.setState(interfaces.RepositoryStateSynchronized, true, interfaces.EventTogglesUpdated, 0, nil)
		if err := r.store.Persist(snapshot); err != nil {
			r.publish(interfaces.EventBackupFailed, 0, err)
		}
	case FetchNotModified:
		if r.loggers.IsDebugEnabled() {
			r.loggers.Debug("Toggles have not changed")
		}
		r.stateLock.Lock()
		if r.loaded {
			r.state = interfaces.RepositoryStateSynchronized
		}
		r.publishLocked(interfaces.EventTogglesUnchanged, 0, nil)
		r.stateLock.Unlock()
	default:
		logFetchFailure(r.loggers, result)
		r.setState(interfaces.RepositoryStateDegraded, false, interfaces.EventFetchFailed, result.StatusCode, result.Err)
	}
	r.markReady()
}

func (r *Repository) setState(
	state interfaces.RepositoryState,
	loaded bool,
	kind interfaces.EventKind,
	statusCode int,
	err error,
) {
	r.stateLock.Lock()
	defer r.stateLock.Unlock()
	r.state = state
	r.loaded = r.loaded || loaded
	if kind != "" {
		r.publishLocked(kind, statusCode, err)
	}
}

func (r *Repository) publish(kind interfaces.EventKind, statusCode int, err error) {
	r.stateLock.Lock()
	defer r.stateLock.Unlock()
	r.publishLocked(kind, statusCode, err)
}

func (r *Repository) publishLocked(kind interfaces.EventKind, statusCode int, err error) {
	r.broadcaster.Broadcast(interfaces.RepositoryEvent{
		Kind:         kind,
		State:        r.state,
		FeatureCount: r.store.Current().Len(),
		StatusCode:   statusCode,
		Err:          err,
		Time:         time.Now(),
	})
}

func (r *Repository) markReady() {
	r.readyOnce.Do(func() {
		r.publish(interfaces.EventReady, 0, nil)
		close(r.readyCh)
	})
}

// State returns the current repository state.
func (r *Repository) State() interfaces.RepositoryState {
	r.stateLock.Lock()
	defer r.stateLock.Unlock()
	return r.state
}

// Ready returns a channel that is closed once the repository has a usable snapshot or has finished
// its first fetch attempt, whichever comes first. It is also closed by Close.
func (r *Repository) Ready() <-chan struct{} {
	return r.readyCh
}

// AddListener subscribes to lifecycle events.
func (r *Repository) AddListener() <-chan interfaces.RepositoryEvent {
	return r.broadcaster.AddListener()
}

// RemoveListener unsubscribes a channel returned by AddListener and closes it.
func (r *Repository) RemoveListener(ch <-chan interfaces.RepositoryEvent) {
	r.broadcaster.RemoveListener(ch)
}

// DroppedEvents returns how many events have been discarded because a listener's buffer was full.
func (r *Repository) DroppedEvents() uint64 {
	return r.broadcaster.Dropped()
}

// Close stops polling and waits for the polling goroutine to exit. Any fetch in progress is
// cancelled and its result discarded. Listener channels are closed.
func (r *Repository) Close() error {
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		r.cancel()
		started := true
		r.startOnce.Do(func() { started = false })
		if started {
			<-r.done
		}
		r.readyOnce.Do(func() { close(r.readyCh) })
		r.broadcaster.Close()
	})
	return nil
}
