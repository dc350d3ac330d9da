//go:build !unix

package stream

import (
	"io"
	"os"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// mapFile reads path into memory where mapping is unavailable.
func mapFile(path string) ([]byte, io.Closer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return data, nopCloser{}, nil
}
