// Package datasource is an internal package containing the components that keep the toggle store
// up to date: the HTTP fetcher and the repository that polls it. These types are not visible from
// outside of the client.
package datasource
