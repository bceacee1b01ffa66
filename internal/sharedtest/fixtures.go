package sharedtest

import (
	"net/http"

	"github.com/launchdarkly/go-test-helpers/v3/httphelpers"
)

// Feature collection documents used across tests.
const (
	// UserWithIDDoc has "featureX" enabled for users 123, 111 and 121.
	UserWithIDDoc = `{"version":1,"features":[
  {"name":"featureX","enabled":true,"strategies":[{"name":"userWithId","parameters":{"userIds":"123, 111, 121"}}]},
  {"name":"featureOff","enabled":false,"strategies":[{"name":"default"}]}
]}`

	// VariantsDoc has "test" with two equally weighted variants, "en" and "to".
	VariantsDoc = `{"version":1,"features":[
  {"name":"test","enabled":true,"strategies":[{"name":"default"}],"variants":[
    {"name":"en","weight":50,"payload":{"type":"string","value":"en"}},
    {"name":"to","weight":50,"payload":{"type":"string","value":"to"}}
  ]}
]}`

	// ConstrainedDoc has "prodOnly" active only in the prod environment.
	ConstrainedDoc = `{"version":1,"features":[
  {"name":"prodOnly","enabled":true,"strategies":[{"name":"default","constraints":[
    {"contextName":"environment","operator":"IN","values":["prod"]}
  ]}]}
]}`
)

// FeaturesHandler returns an HTTP handler that serves a feature document with an ETag.
func FeaturesHandler(doc, etag string) http.Handler {
	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")
	if etag != "" {
		headers.Set("ETag", etag)
	}
	return httphelpers.HandlerWithResponse(http.StatusOK, headers, []byte(doc))
}
