// Package unleashhttp provides helpers for configuring the HTTP client that fetches toggles.
//
// Applications normally do not need this package. It is useful for trusting a private CA, routing
// requests through a proxy, or authenticating to a proxy with NTLM:
//
//	factory, err := unleashhttp.NewNTLMProxyHTTPClientFactory("http://my-proxy:8080",
//	    "user", "password", "DOMAIN")
//	if err != nil { ... }
//	config.HTTPClientFactory = factory
package unleashhttp
