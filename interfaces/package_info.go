// Package interfaces contains types shared between the client and its pluggable components:
// repository lifecycle events, the metrics sink and the bootstrap provider.
//
// You will not need to refer to these types in your code unless you are observing repository
// events or supplying a custom component.
package interfaces
