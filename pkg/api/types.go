package api

import (
	"strconv"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/ssargent/binscript/pkg/archive"
	"github.com/ssargent/binscript/pkg/langdef"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind         string
	Port         int
	APIKey       string // X-API-Key is required on /api/v1 when set
	MaxBodyBytes int64  // request body limit (0 = 16 MiB)
}

const defaultMaxBodyBytes = 16 << 20

// CaptureStore defines the capture archive operations the API uses
type CaptureStore interface {
	Put(name string, data []byte) (ksuid.KSUID, error)
	Get(id ksuid.KSUID) (*archive.Capture, error)
	List() ([]archive.Info, error)
	Delete(id ksuid.KSUID) error
}

var _ CaptureStore = (*archive.Archive)(nil)

// SchemaResponse describes the loaded schema
type SchemaResponse struct {
	Endianness string         `json:"endianness"`
	NameWidth  uint           `json:"namewidth"`
	NameShift  uint           `json:"nameshift"`
	Functions  []FunctionInfo `json:"functions"`
}

// FunctionInfo describes one schema function
type FunctionInfo struct {
	Literal   string         `json:"literal"` // opcode as written in the schema
	Opcode    uint64         `json:"opcode"`  // opcode as stored on the wire
	Name      string         `json:"name"`
	CallBytes int            `json:"call_bytes"`
	Arguments []ArgumentInfo `json:"arguments"`
}

// ArgumentInfo describes one function argument
type ArgumentInfo struct {
	Type string `json:"type"`
	Bits uint   `json:"bits"`
	Name string `json:"name,omitempty"`
}

// DecodeResponse is returned by the decode endpoints
type DecodeResponse struct {
	Calls []string `json:"calls"`
	Bytes int      `json:"bytes"`
}

// CaptureResponse describes a stored capture
type CaptureResponse struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Size    int       `json:"size"`
	Created time.Time `json:"created"`
	Data    []byte    `json:"data,omitempty"`
}

func newSchemaResponse(lang *langdef.Language) SchemaResponse {
	resp := SchemaResponse{
		Endianness: lang.Endianness.String(),
		NameWidth:  lang.NameWidth,
		NameShift:  lang.NameShift,
		Functions:  []FunctionInfo{},
	}
	for _, fn := range lang.Functions() {
		info := FunctionInfo{
			Literal:   "0x" + strconv.FormatUint(lang.Literal(fn), 16),
			Opcode:    fn.Opcode,
			Name:      fn.Name,
			CallBytes: lang.CallBytes(fn),
			Arguments: []ArgumentInfo{},
		}
		for _, arg := range fn.Args {
			info.Arguments = append(info.Arguments, ArgumentInfo{Type: arg.Type.String(), Bits: arg.Bits, Name: arg.Name})
		}
		resp.Functions = append(resp.Functions, info)
	}
	return resp
}

func newCaptureResponse(info archive.Info) CaptureResponse {
	return CaptureResponse{
		ID:      info.ID.String(),
		Name:    info.Name,
		Size:    info.Size,
		Created: info.Created,
	}
}
