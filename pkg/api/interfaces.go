// Package api provides interfaces for dependency injection
package api

import (
	"context"

	"github.com/ssargent/binscript/pkg/codec"
	"github.com/ssargent/binscript/pkg/metrics"
)

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves until ctx is cancelled. captures may be nil.
	StartServer(ctx context.Context, c *codec.Codec, captures CaptureStore, m *metrics.Metrics, config ServerConfig) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}

// ArchiveOpener is a CaptureStore that owns resources
type ArchiveOpener interface {
	CaptureStore
	Close() error
}

// ArchiveFactory opens capture archives
type ArchiveFactory interface {
	// OpenArchive opens or creates the archive in dir
	OpenArchive(dir string) (ArchiveOpener, error)
}
