package datastore

import (
	"sync/atomic"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/toggleworks/unleash-client-go/model"
)

// ToggleStore holds the current snapshot. Reads never block and always see a complete snapshot.
type ToggleStore struct {
	current atomic.Pointer[Snapshot]
	backup  BackupTarget
	loggers ldlog.Loggers
}

// NewToggleStore creates a store holding an empty snapshot. backup may be nil, in which case
// Persist and LoadBackup do nothing.
func NewToggleStore(backup BackupTarget, loggers ldlog.Loggers) *ToggleStore {
	s := &ToggleStore{backup: backup, loggers: loggers}
	s.current.Store(EmptySnapshot())
	return s
}

// Current returns the current snapshot; never nil.
func (s *ToggleStore) Current() *Snapshot {
	return s.current.Load()
}

// Replace makes snapshot current. A nil snapshot is treated as empty.
func (s *ToggleStore) Replace(snapshot *Snapshot) {
	if snapshot == nil {
		snapshot = EmptySnapshot()
	}
	s.current.Store(snapshot)
}

// Persist writes the snapshot's document to the backup target. Failures are logged and returned
// to the caller for reporting; they have no effect on the current snapshot.
func (s *ToggleStore) Persist(snapshot *Snapshot) error {
	if s.backup == nil || snapshot == nil || snapshot.Raw() == nil {
		return nil
	}
	if err := s.backup.Write(snapshot.Raw()); err != nil {
		s.loggers.Warnf("Unable to write feature backup to %s: %s", s.backup.Location(), err)
		return err
	}
	if s.loggers.IsDebugEnabled() {
		s.loggers.Debugf("Wrote %d features to backup %s", snapshot.Len(), s.backup.Location())
	}
	return nil
}

// LoadBackup reads and parses the backup document. It returns nil if there is no backup or it
// cannot be used; a backup that exists but is unusable is logged.
func (s *ToggleStore) LoadBackup() *Snapshot {
	if s.backup == nil {
		return nil
	}
	data, found, err := s.backup.Read()
	if err != nil {
		s.loggers.Warnf("Unable to read feature backup from %s: %s", s.backup.Location(), err)
		return nil
	}
	if !found {
		return nil
	}
	coll, err := model.ParseFeatureCollection(data)
	if err != nil {
		s.loggers.Warnf("Ignoring invalid feature backup in %s: %s", s.backup.Location(), err)
		return nil
	}
	return NewSnapshot(coll, "", data)
}
