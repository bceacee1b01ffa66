package unleash

import (
	"fmt"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/toggleworks/unleash-client-go/interfaces"
	"github.com/toggleworks/unleash-client-go/internal/datasource"
	"github.com/toggleworks/unleash-client-go/internal/datastore"
	"github.com/toggleworks/unleash-client-go/internal/evaluation"
	"github.com/toggleworks/unleash-client-go/model"
	"github.com/toggleworks/unleash-client-go/strategy"
)

// Version is the client library version.
const Version = "1.0.0"

// Client evaluates feature toggles against a locally held copy of the server's definitions.
//
// All methods are safe for concurrent use. Create one Client per application and call Close when
// the application shuts down.
type Client struct {
	config     Config
	store      *datastore.ToggleStore
	repository *datasource.Repository
	evaluator  *evaluation.Evaluator
	loggers    ldlog.Loggers
}

// NewClient creates a client and starts synchronizing with the server.
//
// An error is returned only for invalid configuration. Problems reaching the server are logged and
// retried at every refresh interval; in the meantime the client uses whatever definitions it has.
//
// If Config.SynchronousFetchOnInitialisation is set, NewClient returns after the first fetch
// attempt, successful or not. Otherwise it returns immediately and Ready can be used to wait.
func NewClient(config Config) (*Client, error) {
	resolved, err := config.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("invalid client configuration: %w", err)
	}
	loggers := resolved.Loggers

	fetcher, err := datasource.NewHTTPFetcher(datasource.FetcherConfig{
		BaseURL:         resolved.URL,
		AppName:         resolved.AppName,
		InstanceID:      resolved.InstanceID,
		ProjectName:     resolved.ProjectName,
		NamePrefix:      resolved.NamePrefix,
		Headers:         resolved.headers(),
		HeadersProvider: resolved.CustomHeadersProvider,
		HTTPClient:      resolved.HTTPClientFactory(),
		Loggers:         loggers,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid client configuration: %w", err)
	}

	var backup datastore.BackupTarget
	if !resolved.DisableBackup {
		backup = datastore.NewFileBackup(resolved.BackupFile)
	}
	store := datastore.NewToggleStore(backup, loggers)

	repository := datasource.NewRepository(datasource.RepositoryConfig{
		Fetcher:          fetcher,
		Store:            store,
		Bootstrap:        resolved.BootstrapProvider,
		RefreshInterval:  resolved.RefreshInterval,
		SynchronousFetch: resolved.SynchronousFetchOnInitialisation,
		Loggers:          loggers,
	})

	evaluator := evaluation.NewEvaluator(evaluation.Config{
		Registry: strategy.NewRegistry(resolved.Strategies...),
		Fallback: resolved.FallbackStrategy,
		Metrics:  resolved.Metrics,
		Loggers:  loggers,
	})

	client := &Client{
		config:     resolved,
		store:      store,
		repository: repository,
		evaluator:  evaluator,
		loggers:    loggers,
	}
	loggers.Infof("Starting Unleash client %s for %q (instance %s)", Version, resolved.AppName, resolved.InstanceID)
	repository.Start()
	return client, nil
}

// IsEnabled reports whether the named toggle is active for the evaluation context.
//
// The context is the one given with WithContext, or else the one from Config.ContextProvider. An
// undefined toggle evaluates with the function given by WithFallbackFunc if any, and otherwise to
// the value given by WithDefault (false if not given).
func (c *Client) IsEnabled(name string, opts ...EvalOption) bool {
	o := collectOptions(opts)
	feature, _ := c.store.Current().Get(name)
	var fallback evaluation.FallbackFunc
	if o.fallback != nil {
		fallback = evaluation.FallbackFunc(o.fallback)
	}
	return c.evaluator.IsEnabled(name, feature, c.resolveContext(o), o.defaultValue, fallback)
}

// GetVariant returns the variant of the named toggle for the evaluation context.
//
// If the toggle is undefined, inactive for the context, or has no variants, the result is the
// variant given with WithDefaultVariant, or model.DisabledVariant.
func (c *Client) GetVariant(name string, opts ...EvalOption) model.Variant {
	o := collectOptions(opts)
	feature, _ := c.store.Current().Get(name)
	return c.evaluator.GetVariant(name, feature, c.resolveContext(o), o.defaultVariant)
}

// GetFeatureNames returns the names of all toggles currently defined, in server order.
func (c *Client) GetFeatureNames() []string {
	return c.store.Current().Names()
}

// GetFeatureDefinition returns the current definition of a toggle. The returned value must not be
// modified.
func (c *Client) GetFeatureDefinition(name string) (*model.FeatureDefinition, bool) {
	return c.store.Current().Get(name)
}

// RepositoryState returns the synchronization state of the client.
func (c *Client) RepositoryState() interfaces.RepositoryState {
	return c.repository.State()
}

// AddEventListener subscribes to repository lifecycle events. The channel is buffered; events are
// dropped for a listener that does not keep up. It is closed by RemoveEventListener or Close.
func (c *Client) AddEventListener() <-chan interfaces.RepositoryEvent {
	return c.repository.AddListener()
}

// RemoveEventListener unsubscribes and closes a channel returned by AddEventListener.
func (c *Client) RemoveEventListener(ch <-chan interfaces.RepositoryEvent) {
	c.repository.RemoveListener(ch)
}

// DroppedEvents returns the total number of events that listeners have missed because they did not
// drain their channels quickly enough.
func (c *Client) DroppedEvents() uint64 {
	return c.repository.DroppedEvents()
}

// Ready returns a channel that is closed once the client has definitions to evaluate with, or has
// finished its first attempt to get them from the server.
func (c *Client) Ready() <-chan struct{} {
	return c.repository.Ready()
}

// Close stops background polling and closes all event listener channels. Evaluation still works
// afterward, using the last known definitions.
func (c *Client) Close() error {
	c.loggers.Info("Closing Unleash client")
	return c.repository.Close()
}

func (c *Client) resolveContext(o evalOptions) model.Context {
	var ctx model.Context
	if o.ctx != nil {
		ctx = *o.ctx
	} else {
		ctx = c.config.ContextProvider()
	}
	return ctx.WithStaticFields(c.config.AppName, c.config.Environment)
}
