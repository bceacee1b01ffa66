package interfaces

// BootstrapProvider supplies an initial feature collection document. It is read once at startup,
// and only if no backup file is available.
//
// The returned data must be in the same JSON format as the server's feature collection response.
type BootstrapProvider interface {
	Read() ([]byte, error)
}

// BootstrapProviderFunc adapts a function to the BootstrapProvider interface.
type BootstrapProviderFunc func() ([]byte, error)

// Read calls the function.
func (f BootstrapProviderFunc) Read() ([]byte, error) {
	return f()
}
