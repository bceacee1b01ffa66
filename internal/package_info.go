// Package internal contains client implementation details that are shared between packages,
// but are not exposed to application code. The datasource, datastore and evaluation subpackages
// contain the components specific to their areas of functionality.
package internal
