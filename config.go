package unleash

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/toggleworks/unleash-client-go/interfaces"
	"github.com/toggleworks/unleash-client-go/internal/datasource"
	"github.com/toggleworks/unleash-client-go/model"
	"github.com/toggleworks/unleash-client-go/strategy"
	"github.com/toggleworks/unleash-client-go/unleashhttp"
)

// DefaultEnvironment is the environment reported when Config.Environment is empty.
const DefaultEnvironment = "default"

// DefaultRefreshInterval is the polling interval used when Config.RefreshInterval is not positive.
const DefaultRefreshInterval = datasource.DefaultRefreshInterval

var (
	// ErrMissingAppName is returned by NewClient if Config.AppName is empty.
	ErrMissingAppName = errors.New("an application name is required")
	// ErrMissingURL is returned by NewClient if Config.URL is empty.
	ErrMissingURL = errors.New("an Unleash server URL is required")
)

// InvalidURLError is returned by NewClient if Config.URL is not an absolute http or https URL.
type InvalidURLError = datasource.InvalidURLError

// Config contains the client configuration. Only AppName and URL are required; see each field for
// the default used when it is not set.
type Config struct {
	// AppName identifies the application to the server. Required.
	AppName string

	// InstanceID identifies this process. If empty, it is "<hostname>-generated-<random uuid>".
	InstanceID string

	// Environment is added to every evaluation context that does not set its own. Defaults to
	// DefaultEnvironment.
	Environment string

	// URL is the base address of the server API, such as "https://unleash.example.com/api". Required.
	URL string

	// ProjectName, if set, limits the fetched toggles to one project.
	ProjectName string

	// NamePrefix, if set, limits the fetched toggles to names starting with this prefix.
	NamePrefix string

	// CustomHeaders are added to every request to the server. This is where an API token normally
	// goes, as the "Authorization" header.
	CustomHeaders map[string]string

	// CustomHeadersProvider is called before every request; its headers take precedence over
	// CustomHeaders.
	CustomHeadersProvider func() map[string]string

	// RefreshInterval is the time between polls. Defaults to DefaultRefreshInterval.
	RefreshInterval time.Duration

	// BackupFile is where the last fetched definitions are saved and restored from at startup.
	// Defaults to "unleash-<AppName>-repo.json" in the system temporary directory.
	BackupFile string

	// DisableBackup turns off both reading and writing the backup file.
	DisableBackup bool

	// SynchronousFetchOnInitialisation makes NewClient wait for the first fetch attempt.
	SynchronousFetchOnInitialisation bool

	// Strategies are custom activation strategies. A custom strategy replaces a built-in one with
	// the same name.
	Strategies []strategy.Strategy

	// FallbackStrategy is used for strategy names that are not registered. If nil, such strategies
	// are never active.
	FallbackStrategy strategy.Strategy

	// BootstrapProvider supplies definitions to use at startup when there is no backup file. See
	// the unleashfile package for a file-based implementation.
	BootstrapProvider interfaces.BootstrapProvider

	// ContextProvider supplies the evaluation context when a call does not pass one with
	// WithContext. If nil, an empty context is used.
	ContextProvider func() model.Context

	// Metrics receives a sample for every evaluation. See the unleashprom package for a Prometheus
	// implementation.
	Metrics interfaces.MetricsSink

	// Loggers controls log output. The zero value logs to standard error.
	Loggers ldlog.Loggers

	// HTTPClientFactory creates the HTTP client used to talk to the server. If nil, a client with
	// the default timeouts from unleashhttp is used.
	HTTPClientFactory unleashhttp.HTTPClientFactory
}

// withDefaults validates the configuration and returns a copy with all defaults filled in.
func (c Config) withDefaults() (Config, error) {
	if c.AppName == "" {
		return c, ErrMissingAppName
	}
	if c.URL == "" {
		return c, ErrMissingURL
	}
	if _, err := datasource.ValidateBaseURL(c.URL); err != nil {
		return c, err
	}
	if c.InstanceID == "" {
		c.InstanceID = generateInstanceID()
	}
	if c.Environment == "" {
		c.Environment = DefaultEnvironment
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = DefaultRefreshInterval
	}
	if c.BackupFile == "" {
		c.BackupFile = filepath.Join(os.TempDir(), fmt.Sprintf("unleash-%s-repo.json", c.AppName))
	}
	if c.ContextProvider == nil {
		c.ContextProvider = func() model.Context { return model.Context{} }
	}
	if c.Metrics == nil {
		c.Metrics = interfaces.NoOpMetricsSink()
	}
	if c.HTTPClientFactory == nil {
		factory, err := unleashhttp.NewHTTPClientFactory()
		if err != nil {
			return c, err
		}
		c.HTTPClientFactory = factory
	}
	return c, nil
}

func (c Config) headers() http.Header {
	h := make(http.Header, len(c.CustomHeaders))
	for k, v := range c.CustomHeaders {
		h.Set(k, v)
	}
	return h
}

func generateInstanceID() string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "undefined"
	}
	return hostname + "-generated-" + uuid.NewString()
}
