// Package datastore is an internal package containing the toggle store: the atomically replaceable
// in-memory snapshot of feature definitions, and the durable backup it is saved to. These types
// are not visible from outside of the client.
package datastore
