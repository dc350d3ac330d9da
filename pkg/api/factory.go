// Package api provides factory implementations for dependency injection
package api

import (
	"context"

	"github.com/ssargent/binscript/pkg/archive"
	"github.com/ssargent/binscript/pkg/codec"
	"github.com/ssargent/binscript/pkg/metrics"
)

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct{}

// StartServer starts the API server with the given configuration
func (s *DefaultServerStarter) StartServer(
	ctx context.Context,
	c *codec.Codec,
	captures CaptureStore,
	m *metrics.Metrics,
	config ServerConfig,
) error {
	return StartServer(ctx, NewServer(c, captures, config, m))
}

// DefaultArchiveFactory opens pebble backed archives
type DefaultArchiveFactory struct{}

// NewArchiveFactory creates a new archive factory
func NewArchiveFactory() ArchiveFactory {
	return &DefaultArchiveFactory{}
}

// OpenArchive opens or creates the archive in dir
func (f *DefaultArchiveFactory) OpenArchive(dir string) (ArchiveOpener, error) {
	a, err := archive.Open(dir)
	if err != nil {
		return nil, err
	}
	return a, nil
}
