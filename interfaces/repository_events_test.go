package interfaces

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRepositoryEventStringRepresentation(t *testing.T) {
	now := time.Now()

	e1 := RepositoryEvent{Kind: EventTogglesUpdated, State: RepositoryStateSynchronized, FeatureCount: 3, Time: now}
	assert.Equal(t, "TOGGLES_UPDATED(SYNCHRONIZED,3)@"+now.Format(time.RFC3339), e1.String())

	e2 := RepositoryEvent{Kind: EventFetchFailed, State: RepositoryStateDegraded, StatusCode: 503,
		Err: errors.New("nope"), Time: now}
	assert.Equal(t, "FETCH_FAILED(DEGRADED,0,503,nope)@"+now.Format(time.RFC3339), e2.String())

	e3 := RepositoryEvent{Kind: EventReady, State: RepositoryStateBootstrapping}
	assert.Equal(t, "READY(BOOTSTRAPPING,0)", e3.String())
}

func TestNoOpMetricsSinkDoesNothing(t *testing.T) {
	sink := NoOpMetricsSink()
	sink.CountToggle("a", true)
	sink.CountVariant("a", "v")
}

func TestBootstrapProviderFunc(t *testing.T) {
	p := BootstrapProviderFunc(func() ([]byte, error) { return []byte(`{"features":[]}`), nil })
	data, err := p.Read()
	assert.NoError(t, err)
	assert.Equal(t, `{"features":[]}`, string(data))
}
