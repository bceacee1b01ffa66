package interfaces

import (
	"fmt"
	"strings"
	"time"
)

// RepositoryState describes the synchronization state of the toggle repository.
type RepositoryState string

const (
	// RepositoryStateUninitialized is the state before the repository has been started.
	RepositoryStateUninitialized RepositoryState = "UNINITIALIZED"

	// RepositoryStateBootstrapping means that no backup or bootstrap data was available and no fetch
	// has succeeded yet. Every toggle evaluates as undefined.
	RepositoryStateBootstrapping RepositoryState = "BOOTSTRAPPING"

	// RepositoryStateSynchronized means that the current snapshot came from the most recent fetch, or
	// from backup or bootstrap data with no fetch failure since.
	RepositoryStateSynchronized RepositoryState = "SYNCHRONIZED"

	// RepositoryStateDegraded means that the last fetch failed. The previous snapshot stays in use
	// and the repository keeps polling.
	RepositoryStateDegraded RepositoryState = "DEGRADED"
)

// EventKind identifies the kind of a RepositoryEvent.
type EventKind string

const (
	// EventReady is published once, when the repository first has a usable snapshot or has completed
	// its first fetch attempt.
	EventReady EventKind = "READY"
	// EventTogglesUpdated is published when a fetch returned new definitions.
	EventTogglesUpdated EventKind = "TOGGLES_UPDATED"
	// EventTogglesUnchanged is published when the server reported no change.
	EventTogglesUnchanged EventKind = "TOGGLES_UNCHANGED"
	// EventBackupRestored is published when the startup snapshot was read from the backup file.
	EventBackupRestored EventKind = "BACKUP_RESTORED"
	// EventBootstrapped is published when the startup snapshot came from the bootstrap provider.
	EventBootstrapped EventKind = "BOOTSTRAPPED"
	// EventFetchFailed is published when a fetch failed for any reason.
	EventFetchFailed EventKind = "FETCH_FAILED"
	// EventBackupFailed is published when the backup file could not be written.
	EventBackupFailed EventKind = "BACKUP_FAILED"
)

// RepositoryEvent is a lifecycle notification from the toggle repository.
type RepositoryEvent struct {
	Kind EventKind
	// State is the repository state after the event.
	State RepositoryState
	// FeatureCount is the number of features in the current snapshot after the event.
	FeatureCount int
	// StatusCode is the HTTP status of a failed fetch, or 0 if the failure was not an HTTP error.
	StatusCode int
	// Err describes the failure for EventFetchFailed and EventBackupFailed.
	Err  error
	Time time.Time
}

// String returns a simple string representation of the event, for logging.
func (e RepositoryEvent) String() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString("(")
	b.WriteString(string(e.State))
	fmt.Fprintf(&b, ",%d", e.FeatureCount)
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, ",%d", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(",")
		b.WriteString(e.Err.Error())
	}
	b.WriteString(")")
	if !e.Time.IsZero() {
		b.WriteString("@")
		b.WriteString(e.Time.Format(time.RFC3339))
	}
	return b.String()
}
