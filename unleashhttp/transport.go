package unleashhttp

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"
)

const (
	// DefaultConnectTimeout is the connection timeout used when none is configured.
	DefaultConnectTimeout = 5 * time.Second
	// DefaultRequestTimeout bounds a whole request, including reading the response body.
	DefaultRequestTimeout = 10 * time.Second
)

// HTTPClientFactory creates the HTTP client used for fetching toggles.
type HTTPClientFactory func() *http.Client

type transportExtraOptions struct {
	caCerts        *x509.CertPool
	connectTimeout time.Duration
	requestTimeout time.Duration
	proxyURL       *url.URL
}

// TransportOption is the interface for optional configuration parameters that can be passed to
// NewHTTPTransport and NewHTTPClientFactory.
type TransportOption interface {
	apply(opts *transportExtraOptions) error
}

type connectTimeoutOption struct {
	timeout time.Duration
}

func (o connectTimeoutOption) apply(opts *transportExtraOptions) error {
	opts.connectTimeout = o.timeout
	if opts.connectTimeout <= 0 {
		opts.connectTimeout = DefaultConnectTimeout
	}
	return nil
}

// ConnectTimeoutOption specifies the maximum time to wait for a TCP connection.
func ConnectTimeoutOption(timeout time.Duration) TransportOption {
	return connectTimeoutOption{timeout: timeout}
}

type requestTimeoutOption struct {
	timeout time.Duration
}

func (o requestTimeoutOption) apply(opts *transportExtraOptions) error {
	opts.requestTimeout = o.timeout
	if opts.requestTimeout <= 0 {
		opts.requestTimeout = DefaultRequestTimeout
	}
	return nil
}

// RequestTimeoutOption specifies the maximum time for a whole request. It only affects clients
// created by NewHTTPClientFactory.
func RequestTimeoutOption(timeout time.Duration) TransportOption {
	return requestTimeoutOption{timeout: timeout}
}

type caCertOption struct {
	certData []byte
}

func (o caCertOption) apply(opts *transportExtraOptions) error {
	if opts.caCerts == nil {
		opts.caCerts = x509.NewCertPool()
	}
	if !opts.caCerts.AppendCertsFromPEM(o.certData) {
		return errors.New("invalid CA certificate data")
	}
	return nil
}

// CACertOption specifies a CA certificate to be added to the trusted root CA list for HTTPS
// requests. The data must be in PEM format.
func CACertOption(certData []byte) TransportOption {
	return caCertOption{certData: certData}
}

type caCertFileOption struct {
	filePath string
}

func (o caCertFileOption) apply(opts *transportExtraOptions) error {
	bytes, err := os.ReadFile(o.filePath)
	if err != nil {
		return fmt.Errorf("can't read CA certificate file: %w", err)
	}
	return caCertOption{certData: bytes}.apply(opts)
}

// CACertFileOption specifies a CA certificate file to be added to the trusted root CA list for
// HTTPS requests. The file must be in PEM format.
func CACertFileOption(filePath string) TransportOption {
	return caCertFileOption{filePath: filePath}
}

type proxyOption struct {
	url url.URL
}

func (o proxyOption) apply(opts *transportExtraOptions) error {
	u := o.url
	opts.proxyURL = &u
	return nil
}

// ProxyOption specifies a proxy URL for all requests. Without it, the standard proxy environment
// variables such as HTTPS_PROXY are used.
func ProxyOption(url url.URL) TransportOption {
	return proxyOption{url: url}
}

func applyOptions(options []TransportOption) (transportExtraOptions, error) {
	extraOptions := transportExtraOptions{
		connectTimeout: DefaultConnectTimeout,
		requestTimeout: DefaultRequestTimeout,
	}
	for _, o := range options {
		if err := o.apply(&extraOptions); err != nil {
			return extraOptions, err
		}
	}
	return extraOptions, nil
}

// NewHTTPTransport creates a customized http.Transport and returns it along with the net.Dialer it
// uses, so that callers can build their own dial functions on top of it.
func NewHTTPTransport(options ...TransportOption) (*http.Transport, *net.Dialer, error) {
	extraOptions, err := applyOptions(options)
	if err != nil {
		return nil, nil, err
	}
	return newTransport(extraOptions)
}

func newTransport(extraOptions transportExtraOptions) (*http.Transport, *net.Dialer, error) {
	dialer := &net.Dialer{
		Timeout:   extraOptions.connectTimeout,
		KeepAlive: time.Minute,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	if extraOptions.caCerts != nil {
		transport.TLSClientConfig = &tls.Config{RootCAs: extraOptions.caCerts, MinVersion: tls.VersionTLS12}
	}
	if extraOptions.proxyURL != nil {
		transport.Proxy = http.ProxyURL(extraOptions.proxyURL)
	}
	return transport, dialer, nil
}

// NewHTTPClientFactory returns a factory for clients using NewHTTPTransport with the same options.
// The options are validated immediately.
func NewHTTPClientFactory(options ...TransportOption) (HTTPClientFactory, error) {
	extraOptions, err := applyOptions(options)
	if err != nil {
		return nil, err
	}
	return func() *http.Client {
		transport, _, _ := newTransport(extraOptions)
		return &http.Client{Transport: transport, Timeout: extraOptions.requestTimeout}
	}, nil
}
