package datasource

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gregjones/httpcache"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/toggleworks/unleash-client-go/model"
)

// FeaturesPath is appended to the configured server URL to get the feature collection endpoint.
const FeaturesPath = "/client/features"

// ClientSpecVersion is the version of the client specification this client implements, sent in
// the Unleash-Client-Spec header.
const ClientSpecVersion = "4.3.1"

// Header names sent with every fetch.
const (
	AppNameHeader    = "UNLEASH-APPNAME"
	InstanceIDHeader = "UNLEASH-INSTANCEID"
	ClientSpecHeader = "Unleash-Client-Spec"
)

// FetchStatus is the outcome of a fetch.
type FetchStatus int

const (
	// FetchUpdated means the server returned a new feature collection.
	FetchUpdated FetchStatus = iota
	// FetchNotModified means the server reported that the collection has not changed.
	FetchNotModified
	// FetchFailed means the request or the response was unusable.
	FetchFailed
)

func (s FetchStatus) String() string {
	switch s {
	case FetchUpdated:
		return "UPDATED"
	case FetchNotModified:
		return "NOT_MODIFIED"
	default:
		return "FAILED"
	}
}

// FetchResult is the result of one fetch. Collection, Body and ETag are only set for FetchUpdated;
// Err and StatusCode only for FetchFailed.
type FetchResult struct {
	Status     FetchStatus
	Collection model.FeatureCollection
	Body       []byte
	ETag       string
	StatusCode int
	Err        error
}

// Fetcher performs one conditional round trip to get the feature collection.
type Fetcher interface {
	Fetch(ctx context.Context, etag string) FetchResult
}

// FetcherConfig describes the requests an HTTPFetcher makes.
type FetcherConfig struct {
	// BaseURL is the server API URL, such as "https://unleash.example.com/api".
	BaseURL     string
	AppName     string
	InstanceID  string
	ProjectName string
	NamePrefix  string
	// Headers are added to every request.
	Headers http.Header
	// HeadersProvider, if set, is called for every request and its headers are added after Headers.
	HeadersProvider func() map[string]string
	// HTTPClient is the client to use; if nil, a default client is created.
	HTTPClient *http.Client
	Loggers    ldlog.Loggers
}

// HTTPFetcher is the Fetcher implementation that talks to the feature collection endpoint.
type HTTPFetcher struct {
	httpClient      *http.Client
	featuresURL     string
	headers         http.Header
	headersProvider func() map[string]string
	loggers         ldlog.Loggers
}

// ValidateBaseURL checks that rawURL is an absolute http or https URL.
func ValidateBaseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, InvalidURLError{URL: rawURL}
	}
	return u, nil
}

// NewHTTPFetcher creates a fetcher. It returns an InvalidURLError if the base URL is unusable.
//
// The HTTP client is copied and its transport wrapped in an ETag-aware response cache, so that a
// 304 response is seen as the previous response marked as coming from the cache. Redirects are not
// followed; a 3xx response means the collection has not changed.
func NewHTTPFetcher(config FetcherConfig) (*HTTPFetcher, error) {
	base, err := ValidateBaseURL(config.BaseURL)
	if err != nil {
		return nil, err
	}
	featuresURL := *base
	featuresURL.Path = strings.TrimSuffix(base.Path, "/") + FeaturesPath
	query := featuresURL.Query()
	if config.ProjectName != "" {
		query.Set("project", config.ProjectName)
	}
	if config.NamePrefix != "" {
		query.Set("namePrefix", config.NamePrefix)
	}
	featuresURL.RawQuery = query.Encode()

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	modifiedClient := *httpClient
	modifiedClient.Transport = &httpcache.Transport{
		Cache:               httpcache.NewMemoryCache(),
		MarkCachedResponses: true,
		Transport:           httpClient.Transport,
	}
	modifiedClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	headers := make(http.Header)
	headers.Set("Accept", "application/json")
	headers.Set(AppNameHeader, config.AppName)
	headers.Set(InstanceIDHeader, config.InstanceID)
	headers.Set("User-Agent", config.AppName)
	headers.Set(ClientSpecHeader, ClientSpecVersion)
	for k, vv := range config.Headers {
		headers[http.CanonicalHeaderKey(k)] = vv
	}

	return &HTTPFetcher{
		httpClient:      &modifiedClient,
		featuresURL:     featuresURL.String(),
		headers:         headers,
		headersProvider: config.HeadersProvider,
		loggers:         config.Loggers,
	}, nil
}

// URL returns the feature collection URL this fetcher requests.
func (f *HTTPFetcher) URL() string {
	return f.featuresURL
}

// Fetch requests the feature collection, sending etag as If-None-Match if it is not empty.
func (f *HTTPFetcher) Fetch(ctx context.Context, etag string) FetchResult {
	if f.loggers.IsDebugEnabled() {
		f.loggers.Debugf("Fetching toggles from %s", f.featuresURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.featuresURL, nil)
	if err != nil {
		return FetchResult{Status: FetchFailed, Err: err} // COVERAGE: URL was validated at construction
	}
	for k, vv := range f.headers {
		req.Header[k] = vv
	}
	if f.headersProvider != nil {
		for k, v := range f.headersProvider() {
			req.Header.Set(k, v)
		}
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	res, err := f.httpClient.Do(req)
	if err != nil {
		return FetchResult{Status: FetchFailed, Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
	}()

	if err := checkForHTTPError(res.StatusCode, f.featuresURL); err != nil {
		return FetchResult{Status: FetchFailed, StatusCode: res.StatusCode, Err: err}
	}
	if res.StatusCode >= 300 {
		return FetchResult{Status: FetchNotModified}
	}
	// A cached body only counts as unchanged when it is the version the caller already holds. Any other
	// cached entry, for instance one that failed to parse last time, is parsed again.
	if res.Header.Get(httpcache.XFromCache) != "" && etag != "" && res.Header.Get("ETag") == etag {
		return FetchResult{Status: FetchNotModified}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return FetchResult{Status: FetchFailed, Err: err} // COVERAGE: no way to simulate this in unit tests
	}
	if len(body) == 0 {
		return FetchResult{Status: FetchFailed, Err: malformedJSONError{errors.New("empty response body")}}
	}
	coll, err := model.ParseFeatureCollection(body)
	if err != nil {
		return FetchResult{Status: FetchFailed, Err: malformedJSONError{err}}
	}
	return FetchResult{
		Status:     FetchUpdated,
		Collection: coll,
		Body:       body,
		ETag:       res.Header.Get("ETag"),
	}
}
