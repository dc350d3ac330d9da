//go:build unix

package stream

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

type mapping []byte

func (m mapping) Close() error {
	if len(m) == 0 {
		return nil
	}
	return unix.Munmap(m)
}

// mapFile maps path read-only.
func mapFile(path string) ([]byte, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	if st.Size() == 0 {
		return []byte{}, mapping(nil), nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(st.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	return data, mapping(data), nil
}
