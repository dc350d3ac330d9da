package archive

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"time"
)

const entryHeaderSize = 20

// Entry is one stored capture: its name and the raw binary stream.
type Entry struct {
	CRC32     uint32 // CRC32 checksum for integrity
	NameSize  uint32 // Size of the name in bytes
	DataSize  uint32 // Size of the capture in bytes
	Timestamp uint64 // Unix timestamp in nanoseconds
	Name      []byte
	Data      []byte
}

// NewEntry creates an entry stamped with the current time
func NewEntry(name string, data []byte) (*Entry, error) {
	if len(name) > int(^uint32(0)) || len(data) > int(^uint32(0)) {
		return nil, fmt.Errorf("%w: name %d bytes, data %d bytes", ErrTooLarge, len(name), len(data))
	}
	return &Entry{
		NameSize:  uint32(len(name)),
		DataSize:  uint32(len(data)),
		Timestamp: uint64(time.Now().UnixNano()),
		Name:      []byte(name),
		Data:      data,
	}, nil
}

// Time returns the entry timestamp
func (e *Entry) Time() time.Time {
	return time.Unix(0, int64(e.Timestamp))
}

// Size returns the total size of the entry when encoded
func (e *Entry) Size() int {
	return entryHeaderSize + len(e.Name) + len(e.Data)
}

// MarshalBinary serializes the entry as
// [CRC32(4)][NameSize(4)][DataSize(4)][Timestamp(8)][Name][Data]
func (e *Entry) MarshalBinary() ([]byte, error) {
	e.CRC32 = e.checksum()

	buf := make([]byte, e.Size())
	binary.LittleEndian.PutUint32(buf[0:], e.CRC32)
	binary.LittleEndian.PutUint32(buf[4:], e.NameSize)
	binary.LittleEndian.PutUint32(buf[8:], e.DataSize)
	binary.LittleEndian.PutUint64(buf[12:], e.Timestamp)
	copy(buf[entryHeaderSize:], e.Name)
	copy(buf[entryHeaderSize+len(e.Name):], e.Data)

	return buf, nil
}

// UnmarshalBinary decodes and validates an entry. The entry keeps
// references into data.
func (e *Entry) UnmarshalBinary(data []byte) error {
	if len(data) < entryHeaderSize {
		return fmt.Errorf("%w: %d byte entry is shorter than its header", ErrCorruption, len(data))
	}

	e.CRC32 = binary.LittleEndian.Uint32(data[0:4])
	e.NameSize = binary.LittleEndian.Uint32(data[4:8])
	e.DataSize = binary.LittleEndian.Uint32(data[8:12])
	e.Timestamp = binary.LittleEndian.Uint64(data[12:20])

	want := entryHeaderSize + int(e.NameSize) + int(e.DataSize)
	if len(data) != want {
		return fmt.Errorf("%w: entry is %d bytes, header says %d", ErrCorruption, len(data), want)
	}
	e.Name = data[entryHeaderSize : entryHeaderSize+e.NameSize]
	e.Data = data[entryHeaderSize+e.NameSize : want]

	return e.Validate()
}

// Validate checks the integrity of an entry using CRC32
func (e *Entry) Validate() error {
	if sum := e.checksum(); e.CRC32 != sum {
		return fmt.Errorf("%w: CRC32 mismatch: %d != %d", ErrCorruption, e.CRC32, sum)
	}
	return nil
}

// checksum covers every field except the CRC itself
func (e *Entry) checksum() uint32 {
	var header [16]byte
	binary.LittleEndian.PutUint32(header[0:], e.NameSize)
	binary.LittleEndian.PutUint32(header[4:], e.DataSize)
	binary.LittleEndian.PutUint64(header[8:], e.Timestamp)

	crc := crc32.NewIEEE()
	_, _ = crc.Write(header[:])
	_, _ = crc.Write(e.Name)
	_, _ = crc.Write(e.Data)
	return crc.Sum32()
}
