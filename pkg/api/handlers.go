package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/binscript/pkg/archive"
	"github.com/ssargent/binscript/pkg/codec"
	"github.com/ssargent/binscript/pkg/langdef"
	"github.com/ssargent/binscript/pkg/metrics"
	"github.com/ssargent/binscript/pkg/stream"
	"github.com/ssargent/binscript/pkg/xlog"
)

// Server holds the API server state
type Server struct {
	codec    *codec.Codec
	captures CaptureStore // nil when no archive is configured
	config   ServerConfig
	metrics  *metrics.Metrics
	log      *xlog.Logger
}

// NewServer creates a new API server. A nil metrics gets a fresh set.
func NewServer(c *codec.Codec, captures CaptureStore, config ServerConfig, m *metrics.Metrics) *Server {
	if m == nil {
		m = metrics.New()
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &Server{
		codec:    c,
		captures: captures,
		config:   config,
		metrics:  m,
		log:      xlog.With("component", "api"),
	}
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	APIResponse
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleSchema godoc
//
//	@Summary		Describe the schema
//	@Description	List the functions of the loaded language definition
//	@Tags			schema
//	@Produce		json
//	@Success		200	{object}	SchemaResponse
//	@Router			/schema [get]
//	@Security		ApiKeyAuth
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, newSchemaResponse(s.codec.Language()))
}

// handleDecode godoc
//
//	@Summary		Decode a binary stream
//	@Description	Translate a binary stream into function calls
//	@Tags			translate
//	@Accept			octet-stream
//	@Produce		json
//	@Param			body	body		[]byte	true	"Binary stream"
//	@Param			end		query		string	false	"End mode: null, bytes or statements"
//	@Param			limit	query		int		false	"Budget for the size end modes"
//	@Success		200		{object}	DecodeResponse
//	@Failure		400		{object}	APIResponse
//	@Failure		422		{object}	APIResponse
//	@Router			/decode [post]
//	@Security		ApiKeyAuth
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	mode, limit, err := endOptions(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to read request body: %v", err), statusFor(err))
		return
	}

	resp, err := s.decode(data, mode, limit)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}
	sendSuccess(w, resp)
}

// handleEncode godoc
//
//	@Summary		Encode a script
//	@Description	Translate function calls into a binary stream
//	@Tags			translate
//	@Accept			plain
//	@Produce		octet-stream
//	@Param			body	body		string	true	"Script"
//	@Param			end		query		string	false	"End mode: null, bytes or statements"
//	@Param			limit	query		int		false	"Budget for the size end modes"
//	@Success		200		{file}		binary
//	@Failure		400		{object}	APIResponse
//	@Failure		422		{object}	APIResponse
//	@Router			/encode [post]
//	@Security		ApiKeyAuth
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	mode, limit, err := endOptions(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var out bytes.Buffer
	body := http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	consumer := stream.NewScriptConsumer(s.codec, body, "request", &out)
	defer consumer.Close()
	consumer.SetSize(mode, limit)
	consumer.SetObserver(s.metrics)

	if _, err := consumer.All(); err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(out.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Bytes())
}

// handlePutCapture godoc
//
//	@Summary		Store a capture
//	@Description	Archive a binary stream for later decoding
//	@Tags			captures
//	@Accept			octet-stream
//	@Produce		json
//	@Param			body	body		[]byte	true	"Binary stream"
//	@Param			name	query		string	false	"Capture name"
//	@Success		200		{object}	CaptureResponse
//	@Failure		400		{object}	APIResponse
//	@Failure		500		{object}	APIResponse
//	@Router			/captures [post]
//	@Security		ApiKeyAuth
func (s *Server) handlePutCapture(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to read request body: %v", err), statusFor(err))
		return
	}

	name := r.URL.Query().Get("name")
	id, err := s.captures.Put(name, data)
	s.metrics.RecordArchiveOperation("put", err == nil)
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to store capture: %v", err), statusFor(err))
		return
	}

	s.log.Debug("capture stored", xlog.String("id", id.String()), xlog.Int("size", len(data)))
	sendSuccess(w, CaptureResponse{ID: id.String(), Name: name, Size: len(data)})
}

// handleListCaptures godoc
//
//	@Summary		List captures
//	@Description	List archived captures in creation order
//	@Tags			captures
//	@Produce		json
//	@Success		200	{array}		CaptureResponse
//	@Failure		500	{object}	APIResponse
//	@Router			/captures [get]
//	@Security		ApiKeyAuth
func (s *Server) handleListCaptures(w http.ResponseWriter, r *http.Request) {
	infos, err := s.captures.List()
	s.metrics.RecordArchiveOperation("list", err == nil)
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to list captures: %v", err), statusFor(err))
		return
	}

	resp := make([]CaptureResponse, 0, len(infos))
	for _, info := range infos {
		resp = append(resp, newCaptureResponse(info))
	}
	sendSuccess(w, resp)
}

// handleGetCapture godoc
//
//	@Summary		Get a capture
//	@Description	Return an archived capture with its data
//	@Tags			captures
//	@Produce		json
//	@Param			id	path		string	true	"Capture ID"
//	@Success		200	{object}	CaptureResponse
//	@Failure		400	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Router			/captures/{id} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetCapture(w http.ResponseWriter, r *http.Request) {
	capture, err := s.getCapture(r)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}

	resp := newCaptureResponse(capture.Info)
	resp.Data = capture.Data
	sendSuccess(w, resp)
}

// handleDecodeCapture godoc
//
//	@Summary		Decode a capture
//	@Description	Translate an archived capture into function calls
//	@Tags			captures
//	@Produce		json
//	@Param			id		path		string	true	"Capture ID"
//	@Param			end		query		string	false	"End mode: null, bytes or statements"
//	@Param			limit	query		int		false	"Budget for the size end modes"
//	@Success		200		{object}	DecodeResponse
//	@Failure		404		{object}	APIResponse
//	@Failure		422		{object}	APIResponse
//	@Router			/captures/{id}/calls [get]
//	@Security		ApiKeyAuth
func (s *Server) handleDecodeCapture(w http.ResponseWriter, r *http.Request) {
	mode, limit, err := endOptions(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	capture, err := s.getCapture(r)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}

	resp, err := s.decode(capture.Data, mode, limit)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}
	sendSuccess(w, resp)
}

// handleDeleteCapture godoc
//
//	@Summary		Delete a capture
//	@Tags			captures
//	@Produce		json
//	@Param			id	path		string	true	"Capture ID"
//	@Success		200	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Router			/captures/{id} [delete]
//	@Security		ApiKeyAuth
func (s *Server) handleDeleteCapture(w http.ResponseWriter, r *http.Request) {
	id, err := archive.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}

	err = s.captures.Delete(id)
	s.metrics.RecordArchiveOperation("delete", err == nil)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}
	sendSuccess(w, map[string]string{"message": "Capture deleted successfully"})
}

func (s *Server) getCapture(r *http.Request) (*archive.Capture, error) {
	id, err := archive.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	capture, err := s.captures.Get(id)
	s.metrics.RecordArchiveOperation("get", err == nil)
	return capture, err
}

func (s *Server) decode(data []byte, mode stream.EndMode, limit int) (*DecodeResponse, error) {
	consumer := stream.NewMemoryConsumer(s.codec, data)
	defer consumer.Close()
	consumer.SetSize(mode, limit)
	consumer.SetObserver(s.metrics)

	resp := &DecodeResponse{Calls: []string{}}
	for {
		call, err := consumer.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		resp.Calls = append(resp.Calls, call.String())
	}
	resp.Bytes = consumer.Bytes()
	return resp, nil
}

// endOptions reads the end and limit query parameters
func endOptions(r *http.Request) (stream.EndMode, int, error) {
	q := r.URL.Query()
	mode, err := stream.ParseEndMode(q.Get("end"))
	if err != nil {
		return mode, 0, err
	}
	if mode == stream.NullTerminated {
		return mode, 0, nil
	}

	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit < 0 {
		return mode, 0, fmt.Errorf("end mode %s needs a non-negative limit, got %q", mode, q.Get("limit"))
	}
	return mode, limit, nil
}

// statusFor maps an error to the HTTP status reported for it
func statusFor(err error) int {
	var (
		parseErr  *langdef.ParseError
		streamErr *stream.StreamError
		sizeErr   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &sizeErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, archive.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, archive.ErrInvalidID):
		return http.StatusBadRequest
	case errors.As(err, &parseErr), errors.As(err, &streamErr):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
