//go:build linux

package atspi

import (
	"context"
	"time"

	"github.com/mj1618/atspi-inspector/internal/platform"
)

const connectTimeout = 5 * time.Second

func init() {
	platform.NewProviderFunc = func(opts platform.Options) (*platform.Provider, error) {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		addr := opts.BusAddress
		if addr == "" {
			var err error
			if addr, err = BusAddress(ctx); err != nil {
				return nil, err
			}
		}
		client, err := Connect(ctx, addr)
		if err != nil {
			return nil, err
		}
		return platform.NewProviderWith(client, client, client.Close), nil
	}
}
