package archive

import (
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

// captures live under this prefix, keyed by their KSUID bytes
var keyPrefix = []byte("capture/")

// Errors
var (
	ErrNotFound   = &ArchiveError{"capture not found"}
	ErrCorruption = &ArchiveError{"capture data corrupted"}
	ErrTooLarge   = &ArchiveError{"capture too large"}
	ErrInvalidID  = &ArchiveError{"invalid capture id"}
)

// ArchiveError represents a capture archive error
type ArchiveError struct {
	Message string
}

func (e *ArchiveError) Error() string {
	return e.Message
}

// Info describes a capture without its data.
type Info struct {
	ID      ksuid.KSUID
	Name    string
	Size    int
	Created time.Time
}

// Capture is a stored binary stream.
type Capture struct {
	Info
	Data []byte
}

// Archive stores captured binary streams in a pebble database. IDs are
// KSUIDs, so listing returns captures in creation order.
type Archive struct {
	db *pebble.DB
}

// Open opens or creates the archive in dir.
func Open(dir string) (*Archive, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", dir, err)
	}
	return &Archive{db: db}, nil
}

func captureKey(id ksuid.KSUID) []byte {
	key := make([]byte, 0, len(keyPrefix)+len(id))
	key = append(key, keyPrefix...)
	return append(key, id.Bytes()...)
}

// ParseID parses the string form of a capture ID.
func ParseID(s string) (ksuid.KSUID, error) {
	id, err := ksuid.Parse(s)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("%w %q: %v", ErrInvalidID, s, err)
	}
	return id, nil
}

// Put stores data under a new ID.
func (a *Archive) Put(name string, data []byte) (ksuid.KSUID, error) {
	entry, err := NewEntry(name, data)
	if err != nil {
		return ksuid.Nil, err
	}
	value, err := entry.MarshalBinary()
	if err != nil {
		return ksuid.Nil, err
	}

	id := ksuid.New()
	if err := a.db.Set(captureKey(id), value, pebble.Sync); err != nil {
		return ksuid.Nil, err
	}
	return id, nil
}

// Get returns the capture stored under id.
func (a *Archive) Get(id ksuid.KSUID) (*Capture, error) {
	value, closer, err := a.db.Get(captureKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	// value is only valid until closer is closed
	buf := append([]byte(nil), value...)
	if err := closer.Close(); err != nil {
		return nil, err
	}

	return decodeCapture(id, buf)
}

func decodeCapture(id ksuid.KSUID, value []byte) (*Capture, error) {
	var e Entry
	if err := e.UnmarshalBinary(value); err != nil {
		return nil, fmt.Errorf("capture %s: %w", id, err)
	}
	return &Capture{
		Info: Info{
			ID:      id,
			Name:    string(e.Name),
			Size:    len(e.Data),
			Created: e.Time(),
		},
		Data: e.Data,
	}, nil
}

// List returns every capture in creation order.
func (a *Archive) List() ([]Info, error) {
	upper := append([]byte(nil), keyPrefix...)
	upper[len(upper)-1]++

	iter, err := a.db.NewIter(&pebble.IterOptions{LowerBound: keyPrefix, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var infos []Info
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key()[len(keyPrefix):])
		if err != nil {
			return nil, fmt.Errorf("%w: bad key %x", ErrCorruption, iter.Key())
		}
		capture, err := decodeCapture(id, append([]byte(nil), iter.Value()...))
		if err != nil {
			return nil, err
		}
		infos = append(infos, capture.Info)
	}
	return infos, iter.Error()
}

// Delete removes the capture stored under id.
func (a *Archive) Delete(id ksuid.KSUID) error {
	key := captureKey(id)
	_, closer, err := a.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return err
	}
	if err := closer.Close(); err != nil {
		return err
	}
	return a.db.Delete(key, pebble.Sync)
}

func (a *Archive) Close() error {
	return a.db.Close()
}
