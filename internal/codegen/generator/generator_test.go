package generator

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Alia5/tsdecl/internal/catalog"
	"github.com/Alia5/tsdecl/internal/codegen/common"
	"github.com/Alia5/tsdecl/internal/codegen/emitter"
	"github.com/Alia5/tsdecl/internal/codegen/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
types:
  - name: Refresh
    namespace: Elasticsearch.Net
    kind: enum
    values:
      - name: "True"
      - name: "False"
      - name: WaitFor
        attributes:
          - name: EnumMember
            value: wait_for
  - name: SearchRequest
    namespace: Nest
    properties:
      - name: Size
        jsonName: size
        type: int?
      - name: Routing
        jsonName: routing
        type: string
  - name: Exception
    namespace: System
`

const wantBody = "enum Refresh {\n" +
	"\tTrue = 0,\n" +
	"\tFalse = 1,\n" +
	"\twait_for = 2\n" +
	"}\n" +
	"interface SearchRequest {\n" +
	"\tsize: number;\n" +
	"\t/** mapped on body but might only proxy to request querystring */\n" +
	"\trouting: string;\n" +
	"}\n"

func testOptions(t *testing.T) Options {
	t.Helper()
	dir := t.TempDir()
	cat := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(cat, []byte(testCatalog), 0o644))
	params := filepath.Join(dir, "params.json")
	require.NoError(t, os.WriteFile(params, []byte(`{"SearchRequest": ["Routing"]}`), 0o644))

	return Options{
		CatalogPath:           cat,
		RequestParametersPath: params,
		OutputPath:            filepath.Join(dir, "out", "nest.d.ts"),
		Output:                emitter.OutputAll,
		Catalog:               catalog.DefaultOptions(),
		Policy:                policy.DefaultConfig(),
		Emitter:               emitter.Config{Renames: map[string]string{"KeyValuePair": "Map"}},
	}
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRunStdout(t *testing.T) {
	orig := common.Version
	common.Version = "1.2.3"
	t.Cleanup(func() { common.Version = orig })

	opts := testOptions(t)
	opts.OutputPath = "-"
	g := New(opts, discard())
	var buf bytes.Buffer
	g.Stdout = &buf

	require.NoError(t, g.Run())
	want := "/* eslint-disable */\n" +
		"// Code generated by tsdecl 1.2.3. DO NOT EDIT.\n" +
		"// Source: catalog.yaml\n\n" + wantBody
	assert.Equal(t, want, buf.String())
}

func TestRunWritesFile(t *testing.T) {
	opts := testOptions(t)
	g := New(opts, discard())
	var buf bytes.Buffer
	g.Stdout = &buf

	require.NoError(t, g.Run())
	assert.Empty(t, buf.String())

	data, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), wantBody)

	info, err := os.Stat(opts.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(opts.OutputPath))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file cleaned up")
}

func TestRunCheck(t *testing.T) {
	opts := testOptions(t)
	opts.Check = true

	err := New(opts, discard()).Run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfDate), "missing file")

	opts.Check = false
	require.NoError(t, New(opts, discard()).Run())

	opts.Check = true
	assert.NoError(t, New(opts, discard()).Run())

	require.NoError(t, os.WriteFile(opts.OutputPath, []byte("stale"), 0o644))
	err = New(opts, discard()).Run()
	assert.True(t, errors.Is(err, ErrOutOfDate), "stale file")
}

func TestRunFailsFast(t *testing.T) {
	opts := testOptions(t)
	require.NoError(t, os.WriteFile(opts.CatalogPath, []byte("types:\n  - name: A\n    base: B\n  - name: B\n    base: A\n"), 0o644))

	err := New(opts, discard()).Run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrBaseCycle))
	_, statErr := os.Stat(opts.OutputPath)
	assert.True(t, os.IsNotExist(statErr), "nothing written")
}

func TestLoadMergesRequestParameters(t *testing.T) {
	opts := testOptions(t)
	require.NoError(t, os.WriteFile(opts.CatalogPath, []byte(testCatalog+"requestParameters:\n  SearchRequest: [Size]\n  CountRequest: [Routing]\n"), 0o644))

	cat, err := New(opts, discard()).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"Routing"}, cat.RequestParameters["SearchRequest"], "standalone document wins")
	assert.Equal(t, []string{"Routing"}, cat.RequestParameters["CountRequest"])
	assert.Len(t, cat.Modules, 3)
}
