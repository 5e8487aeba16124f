package platform

import (
	"errors"
	"testing"
)

func TestNewProvider_UnsupportedPlatform(t *testing.T) {
	// Temporarily clear the provider func to simulate unsupported platform
	orig := NewProviderFunc
	NewProviderFunc = nil
	defer func() { NewProviderFunc = orig }()

	_, err := NewProvider(Options{})
	if err == nil {
		t.Fatal("expected error on unsupported platform")
	}
	if err != ErrUnsupported {
		t.Errorf("expected ErrUnsupported, got: %v", err)
	}
}

func TestNewProvider_UsesRegisteredFunc(t *testing.T) {
	orig := NewProviderFunc
	defer func() { NewProviderFunc = orig }()

	var got Options
	NewProviderFunc = func(opts Options) (*Provider, error) {
		got = opts
		return NewProviderWith(nil, nil, nil), nil
	}
	p, err := NewProvider(Options{BusAddress: "unix:path=/tmp/bus"})
	if err != nil {
		t.Fatal(err)
	}
	if got.BusAddress != "unix:path=/tmp/bus" {
		t.Errorf("options not forwarded: %+v", got)
	}
	if err := p.Close(); err != nil {
		t.Errorf("close without closer: %v", err)
	}
}

func TestProvider_CloseCallsCloser(t *testing.T) {
	want := errors.New("boom")
	p := NewProviderWith(nil, nil, func() error { return want })
	if err := p.Close(); err != want {
		t.Errorf("expected closer error, got %v", err)
	}
	var nilProvider *Provider
	if err := nilProvider.Close(); err != nil {
		t.Errorf("nil provider close: %v", err)
	}
}
