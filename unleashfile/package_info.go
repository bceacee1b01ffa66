// Package unleashfile provides a bootstrap provider that reads the initial feature collection
// from a file.
//
// The file may contain the JSON document returned by the server's client/features endpoint, or the
// same structure written as YAML:
//
//	version: 1
//	features:
//	  - name: new-checkout
//	    enabled: true
//	    strategies:
//	      - name: userWithId
//	        parameters:
//	          userIds: "123, 456"
//
// Bootstrap data is only used when no backup file exists.
package unleashfile
