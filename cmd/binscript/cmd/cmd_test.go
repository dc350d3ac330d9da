package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/binscript/pkg/api"
	"github.com/ssargent/binscript/pkg/codec"
	"github.com/ssargent/binscript/pkg/config"
	"github.com/ssargent/binscript/pkg/di"
	"github.com/ssargent/binscript/pkg/metrics"
)

const testLanguage = `
(meta (endianness big) (namewidth 6) (nameshift 2))

(def 0x08 test skip2 uint32(intarg) float32(floatarg))
(def 0x0c label str32(text) int10(dx) skip6)
(def 0x10 scale int6(delta) float16(factor) skip4)
`

var testStream = []byte{
	0x08, 0x00, 0x00, 0x00, 0x80, 0x44, 0x42, 0x71, 0x48,
	0x08, 0x00, 0x00, 0x00, 0x0a, 0x46, 0x0a, 0xe0, 0x2f,
	0x0d, 0xa1, 0xa4, 0x00, 0x02, 0x05, 0x00,
	0x13, 0xf3, 0xe0, 0x00,
	0x00,
}

var testScript = `test(128, 777.770020)
test(10, 8888.045898)
label("hi", -5)
scale(-31, 1.500000)
`

// fixture writes the language, stream and script into a temp dir
type fixture struct {
	dir    string
	schema string
	stream string
	script string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	f := fixture{
		dir:    dir,
		schema: filepath.Join(dir, "test.def"),
		stream: filepath.Join(dir, "capture.bin"),
		script: filepath.Join(dir, "program.txt"),
	}
	require.NoError(t, os.WriteFile(f.schema, []byte(testLanguage), 0644))
	require.NoError(t, os.WriteFile(f.stream, testStream, 0644))
	require.NoError(t, os.WriteFile(f.script, []byte(testScript), 0644))
	return f
}

// execute runs a fresh command tree and renders errors the way Execute does
func execute(t *testing.T, stdin []byte, args ...string) (string, string, error) {
	t.Helper()
	appConfig = config.DefaultConfig()

	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(bytes.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	if err != nil {
		reportError(&stderr, err)
	}
	return stdout.String(), stderr.String(), err
}

func TestDescribe(t *testing.T) {
	f := newFixture(t)

	out, _, err := execute(t, nil, "--schema", f.schema, "describe")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "endianness=big namewidth=6 nameshift=2\n"), out)
	assert.Contains(t, out, "0x8 test: <skip:2> <uint:32 intarg> <float:32 floatarg>")
	assert.Contains(t, out, "0x10 scale:")
}

func TestDecode(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"whole stream", nil, testScript},
		{"statement budget", []string{"--end", "statements", "--limit", "2"}, "test(128, 777.770020)\ntest(10, 8888.045898)\n"},
		{"byte budget", []string{"--end", "bytes", "--limit", "9"}, "test(128, 777.770020)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--schema", f.schema, "decode", f.stream}, tt.args...)
			out, _, err := execute(t, nil, args...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	f := newFixture(t)
	truncated := filepath.Join(f.dir, "truncated.bin")
	require.NoError(t, os.WriteFile(truncated, testStream[:12], 0644))

	badSchema := filepath.Join(f.dir, "bad.def")
	require.NoError(t, os.WriteFile(badSchema, []byte("(def 0x08 test blob8)"), 0644))

	tests := []struct {
		name    string
		args    []string
		wantOut string
		wantErr []string
	}{
		{
			name:    "truncated stream",
			args:    []string{"--schema", f.schema, "decode", truncated},
			wantOut: "test(128, 777.770020)\n",
			wantErr: []string{"Error:", "stream ends inside a call"},
		},
		{
			name:    "size mode without limit",
			args:    []string{"--schema", f.schema, "decode", f.stream, "--end", "bytes"},
			wantErr: []string{"end mode bytes needs a positive --limit"},
		},
		{
			name:    "missing schema",
			args:    []string{"decode", f.stream},
			wantErr: []string{"no language definition"},
		},
		{
			name:    "bad schema",
			args:    []string{"--schema", badSchema, "decode", f.stream},
			wantErr: []string{"error:", "UNKNOWN_ARGTYPE", "argument 1 of test"},
		},
		{
			name:    "missing file",
			args:    []string{"--schema", f.schema, "decode", filepath.Join(f.dir, "nope.bin")},
			wantErr: []string{"open"},
		},
		{
			name:    "bad log level",
			args:    []string{"--schema", f.schema, "--log-level", "loud", "decode", f.stream},
			wantErr: []string{"invalid config", "loud"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, stderr, err := execute(t, nil, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantOut, out)
			for _, want := range tt.wantErr {
				assert.Contains(t, stderr, want)
			}
		})
	}
}

func TestDecode_MetricsFile(t *testing.T) {
	f := newFixture(t)
	promFile := filepath.Join(f.dir, "binscript.prom")

	_, _, err := execute(t, nil, "--schema", f.schema, "decode", f.stream, "--metrics-file", promFile)
	require.NoError(t, err)

	data, err := os.ReadFile(promFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `binscript_calls_total{direction="decode",function="label"} 1`)
	assert.Contains(t, string(data), `binscript_streams_finished_total{direction="decode"} 1`)
}

func TestEncode(t *testing.T) {
	f := newFixture(t)

	t.Run("to file", func(t *testing.T) {
		outPath := filepath.Join(f.dir, "out", "program.bin")
		_, _, err := execute(t, nil, "--schema", f.schema, "encode", f.script, "-o", outPath)
		require.NoError(t, err)

		data, err := os.ReadFile(outPath)
		require.NoError(t, err)
		assert.Equal(t, testStream, data)
	})

	t.Run("stdin to stdout", func(t *testing.T) {
		out, _, err := execute(t, []byte(testScript), "--schema", f.schema, "encode", "-")
		require.NoError(t, err)
		assert.Equal(t, testStream, []byte(out))
	})

	t.Run("overwrites output", func(t *testing.T) {
		outPath := filepath.Join(f.dir, "again.bin")
		require.NoError(t, os.WriteFile(outPath, bytes.Repeat([]byte{0xff}, 64), 0644))

		_, _, err := execute(t, []byte("scale(1, 2)"), "--schema", f.schema, "encode", "-", "-o", outPath)
		require.NoError(t, err)

		data, err := os.ReadFile(outPath)
		require.NoError(t, err)
		assert.Len(t, data, 5)
	})

	t.Run("bad argument", func(t *testing.T) {
		_, stderr, err := execute(t, []byte("label(\"toolong\", 0)"), "--schema", f.schema, "encode", "-")
		require.Error(t, err)
		assert.Contains(t, stderr, "ARGUMENT_VALUE")
		assert.Contains(t, stderr, "<stdin>")
	})
}

func TestOutputWriterConfig(t *testing.T) {
	config := outputWriterConfig("out.bin")
	assert.Equal(t, "out.bin", config.FilePath)
	assert.True(t, config.Truncate)
	// zero would fsync every encoded call
	assert.Positive(t, config.FsyncInterval)
}

func TestRoundTrip(t *testing.T) {
	f := newFixture(t)

	script, _, err := execute(t, nil, "--schema", f.schema, "decode", f.stream)
	require.NoError(t, err)

	binary, _, err := execute(t, []byte(script), "--schema", f.schema, "encode", "-")
	require.NoError(t, err)
	assert.Equal(t, testStream, []byte(binary))
}

func TestConfigFile(t *testing.T) {
	f := newFixture(t)

	cfg := config.DefaultConfig()
	cfg.Schema = f.schema
	cfg.End = config.End{Mode: "statements", Limit: 1}
	configPath := filepath.Join(f.dir, "binscript.yaml")
	require.NoError(t, config.SaveConfig(cfg, configPath))

	out, _, err := execute(t, nil, "--config", configPath, "decode", f.stream)
	require.NoError(t, err)
	assert.Equal(t, "test(128, 777.770020)\n", out)

	// flags win over the file
	out, _, err = execute(t, nil, "--config", configPath, "decode", f.stream, "--limit", "3")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "\n"))

	_, stderr, err := execute(t, nil, "--config", filepath.Join(f.dir, "missing.yaml"), "describe")
	require.Error(t, err)
	assert.Contains(t, stderr, "config file does not exist")
}

func TestArchive(t *testing.T) {
	f := newFixture(t)
	archiveDir := filepath.Join(f.dir, "captures")

	out, _, err := execute(t, nil, "archive", "--archive-dir", archiveDir, "put", f.stream, "--name", "session")
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)

	out, _, err = execute(t, nil, "archive", "--archive-dir", archiveDir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "session")

	out, _, err = execute(t, nil, "archive", "--archive-dir", archiveDir, "list", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "`+id+`"`)

	out, _, err = execute(t, nil, "archive", "--archive-dir", archiveDir, "get", id)
	require.NoError(t, err)
	assert.Equal(t, testStream, []byte(out))

	out, _, err = execute(t, nil, "--schema", f.schema, "archive", "--archive-dir", archiveDir, "decode", id)
	require.NoError(t, err)
	assert.Equal(t, testScript, out)

	out, _, err = execute(t, nil, "archive", "--archive-dir", archiveDir, "rm", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted "+id)

	_, stderr, err := execute(t, nil, "archive", "--archive-dir", archiveDir, "get", id)
	require.Error(t, err)
	assert.Contains(t, stderr, "capture not found")

	out, _, err = execute(t, nil, "archive", "--archive-dir", archiveDir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No captures found")

	_, stderr, err = execute(t, nil, "archive", "--archive-dir", archiveDir, "rm", "bogus")
	require.Error(t, err)
	assert.Contains(t, stderr, "invalid capture id")
}

func TestInit(t *testing.T) {
	f := newFixture(t)
	configPath := filepath.Join(f.dir, "conf", "binscript.yaml")

	out, _, err := execute(t, nil, "--config", configPath, "--schema", f.schema, "init", "--print-key")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration written to "+configPath)
	assert.Contains(t, out, "API key: ")

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, f.schema, cfg.Schema)
	assert.Len(t, cfg.Server.APIKey, 64)

	out, _, err = execute(t, nil, "--config", configPath, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	// the written config drives the other commands
	out, _, err = execute(t, nil, "--config", configPath, "decode", f.stream)
	require.NoError(t, err)
	assert.Equal(t, testScript, out)
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, nil, "version")
	require.NoError(t, err)
	assert.Equal(t, "binscript dev\n", out)
}

type recordingStarter struct {
	config   api.ServerConfig
	captures bool
	funcs    int
}

func (s *recordingStarter) StartServer(ctx context.Context, c *codec.Codec, captures api.CaptureStore, m *metrics.Metrics, config api.ServerConfig) error {
	s.config = config
	s.captures = captures != nil
	s.funcs = c.Language().Len()
	return nil
}

type recordingFactory struct {
	starter *recordingStarter
}

func (f *recordingFactory) CreateServerStarter() api.ServerStarter {
	return f.starter
}

func TestServe(t *testing.T) {
	f := newFixture(t)

	starter := &recordingStarter{}
	c := di.NewContainer()
	c.SetServerFactory(&recordingFactory{starter: starter})
	SetContainer(c)
	defer SetContainer(nil)

	_, _, err := execute(t, nil, "--schema", f.schema, "serve",
		"--port", "9400", "--api-key", "secret", "--archive-dir", filepath.Join(f.dir, "captures"))
	require.NoError(t, err)

	assert.Equal(t, api.ServerConfig{Bind: "127.0.0.1", Port: 9400, APIKey: "secret"}, starter.config)
	assert.True(t, starter.captures)
	assert.Equal(t, 3, starter.funcs)

	_, _, err = execute(t, nil, "--schema", f.schema, "serve", "--archive-dir", "")
	require.NoError(t, err)
	assert.False(t, starter.captures)
	assert.Equal(t, 9300, starter.config.Port)
}
