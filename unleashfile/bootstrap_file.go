package unleashfile

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/spf13/afero"
	"gopkg.in/ghodss/yaml.v1"
)

// Provider is an interfaces.BootstrapProvider that reads a JSON or YAML file.
type Provider struct {
	fs   afero.Fs
	path string
}

// NewProvider creates a provider for a file on the operating system's filesystem.
func NewProvider(path string) *Provider {
	return NewProviderOnFs(afero.NewOsFs(), path)
}

// NewProviderOnFs creates a provider for a file on the given filesystem.
func NewProviderOnFs(fs afero.Fs, path string) *Provider {
	return &Provider{fs: fs, path: path}
}

// Path returns the file path.
func (p *Provider) Path() string { return p.path }

// Read returns the file contents as JSON. YAML content is converted.
func (p *Provider) Read() ([]byte, error) {
	rawData, err := afero.ReadFile(p.fs, p.path)
	if err != nil {
		return nil, fmt.Errorf("unable to read bootstrap file %s: %w", p.path, err)
	}
	if detectJSON(rawData) {
		return rawData, nil
	}
	data, err := yaml.YAMLToJSON(rawData)
	if err != nil {
		return nil, fmt.Errorf("error parsing bootstrap file %s: %w", p.path, err)
	}
	return data, nil
}

// A feature document is always an object, so JSON content must start with '{'.
func detectJSON(rawData []byte) bool {
	return strings.HasPrefix(strings.TrimLeftFunc(string(rawData), unicode.IsSpace), "{")
}
