package platform

import (
	"fmt"
	"runtime"
)

// Provider bundles the backends for the current OS.
type Provider struct {
	Client Client
	Lister Lister

	closer func() error
}

// NewProviderWith assembles a Provider. closer may be nil.
func NewProviderWith(client Client, lister Lister, closer func() error) *Provider {
	return &Provider{Client: client, Lister: lister, closer: closer}
}

// Close releases the provider's connection, if any.
func (p *Provider) Close() error {
	if p == nil || p.closer == nil {
		return nil
	}
	return p.closer()
}

// Options configures provider construction.
type Options struct {
	// BusAddress overrides accessibility bus discovery when non-empty.
	BusAddress string
}

// ErrUnsupported is returned on unsupported platforms.
var ErrUnsupported = fmt.Errorf("atspi-inspector has no accessibility backend for %s/%s; supported: linux (AT-SPI2), or use --fixture", runtime.GOOS, runtime.GOARCH)

// NewProviderFunc is set by platform-specific packages via init().
// See internal/platform/atspi/init.go for the Linux registration.
var NewProviderFunc func(opts Options) (*Provider, error)

// NewProvider returns a Provider for the current OS.
func NewProvider(opts Options) (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc(opts)
}
