package unleashhttp

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	ntlm "github.com/launchdarkly/go-ntlm-proxy-auth"
)

// NewNTLMProxyHTTPClientFactory returns a factory for HTTP clients that connect through a proxy
// requiring NTLM authentication. Other transport options, such as CACertOption, may be added.
func NewNTLMProxyHTTPClientFactory(proxyURL, username, password, domain string,
	options ...TransportOption) (HTTPClientFactory, error) {
	if proxyURL == "" || username == "" || password == "" {
		return nil, errors.New("proxy URL, username, and password are required")
	}
	parsedProxyURL, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL %s: %w", proxyURL, err)
	}
	extraOptions, err := applyOptions(options)
	if err != nil {
		return nil, err
	}
	return func() *http.Client {
		transport, dialer, _ := newTransport(extraOptions)
		// the dialer tunnels through the proxy itself, so the transport must connect "directly"
		transport.Proxy = nil
		transport.DialContext = ntlm.NewNTLMProxyDialContext(dialer, *parsedProxyURL,
			username, password, domain, transport.TLSClientConfig)
		return &http.Client{Transport: transport, Timeout: extraOptions.requestTimeout}
	}, nil
}
