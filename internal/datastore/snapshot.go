package datastore

import (
	"golang.org/x/exp/slices"

	"github.com/toggleworks/unleash-client-go/model"
)

// Snapshot is an immutable set of feature definitions as received in one response.
type Snapshot struct {
	features map[string]*model.FeatureDefinition
	names    []string
	version  int
	etag     string
	raw      []byte
}

// NewSnapshot builds a snapshot from a parsed collection. If a name occurs more than once, the last
// definition wins but the name keeps its first position.
//
// etag is the version token the server sent with the data, or "" if there was none. raw is the
// document the collection was parsed from; it is what gets written to the backup.
func NewSnapshot(coll model.FeatureCollection, etag string, raw []byte) *Snapshot {
	s := &Snapshot{
		features: make(map[string]*model.FeatureDefinition, len(coll.Features)),
		names:    make([]string, 0, len(coll.Features)),
		version:  coll.Version,
		etag:     etag,
		raw:      raw,
	}
	for i := range coll.Features {
		f := coll.Features[i]
		if _, exists := s.features[f.Name]; !exists {
			s.names = append(s.names, f.Name)
		}
		s.features[f.Name] = &f
	}
	return s
}

// EmptySnapshot returns a snapshot with no features.
func EmptySnapshot() *Snapshot {
	return &Snapshot{features: map[string]*model.FeatureDefinition{}}
}

// Get returns the definition of a feature. The result must not be modified.
func (s *Snapshot) Get(name string) (*model.FeatureDefinition, bool) {
	f, ok := s.features[name]
	return f, ok
}

// Names returns the feature names in the order they were received.
func (s *Snapshot) Names() []string {
	return slices.Clone(s.names)
}

// Len returns the number of features.
func (s *Snapshot) Len() int { return len(s.names) }

// Version returns the collection format version reported by the server.
func (s *Snapshot) Version() int { return s.version }

// ETag returns the version token to send with the next conditional request.
func (s *Snapshot) ETag() string { return s.etag }

// Raw returns the document this snapshot was parsed from, or nil for an empty snapshot.
func (s *Snapshot) Raw() []byte { return s.raw }
