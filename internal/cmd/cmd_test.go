package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/alecthomas/kong"
	toml "github.com/pelletier/go-toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"github.com/Alia5/tsdecl/internal/codegen/emitter"
)

const testCatalog = `{
  "types": [
    {"name": "Color", "namespace": "Nest", "kind": "enum", "values": [{"name": "Red"}, {"name": "Blue"}]},
    {"name": "SearchRequest", "namespace": "Nest", "properties": [{"name": "Size", "jsonName": "size", "type": "int"}]}
  ]
}`

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))
	return path
}

func parse(t *testing.T, args []string, options ...kong.Option) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	options = append([]kong.Option{kong.Name("tsdecl"), kong.Exit(func(int) { t.Fatal("unexpected exit") })}, options...)
	parser, err := kong.New(&cli, options...)
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, ctx
}

func unmarshalTOML(data []byte, v any) error {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return err
	}
	*v.(*map[string]any) = tree.ToMap()
	return nil
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestGenerateDefaults(t *testing.T) {
	cat := writeCatalog(t)
	cli, ctx := parse(t, []string{"generate", "--catalog", cat})
	assert.Equal(t, "generate", ctx.Command())

	opts, err := cli.Generate.options()
	require.NoError(t, err)
	assert.Equal(t, cat, opts.CatalogPath)
	assert.Equal(t, "-", opts.OutputPath)
	assert.Equal(t, emitter.OutputAll, opts.Output)
	assert.Equal(t, "\t", opts.Emitter.Indent)
	assert.Equal(t, map[string]string{"KeyValuePair": "Map"}, opts.Emitter.Renames)
	assert.IsType(t, emitter.JSDocAppender{}, opts.Emitter.Docs)
	assert.Equal(t, []string{"Nest", "Elasticsearch.Net"}, opts.Policy.RootNamespaces)
	assert.Equal(t, "Request", opts.Policy.RequestMarker)
	assert.Equal(t, "EnumMember", opts.Policy.AliasAttribute)
	assert.Equal(t, "RequestBase", opts.Catalog.RequestBase)
	assert.Equal(t, "IRequestParameters", opts.Catalog.ParameterBagInterface)
	assert.Equal(t, "info", cli.Log.Level)
}

func TestGenerateFlags(t *testing.T) {
	cat := writeCatalog(t)
	cli, _ := parse(t, []string{
		"generate", "--catalog", cat,
		"--emit", "enums,fields",
		"--no-docs", "--export", "--namespaces", "--const-enums",
		"--rename", "KeyValuePair=Pair;Time=Duration",
		"--converter", "GeoCoordinate=[number, number]",
		"--root-namespace", "Acme",
		"--log.level", "debug",
	})

	opts, err := cli.Generate.options()
	require.NoError(t, err)
	assert.Equal(t, emitter.OutputEnums|emitter.OutputFields, opts.Output)
	assert.IsType(t, emitter.NopDocAppender{}, opts.Emitter.Docs)
	assert.True(t, opts.Emitter.Export)
	assert.True(t, opts.Emitter.Namespaces)
	assert.True(t, opts.Emitter.ConstEnums)
	assert.Equal(t, map[string]string{"KeyValuePair": "Pair", "Time": "Duration"}, opts.Emitter.Renames)
	assert.Equal(t, map[string]string{"GeoCoordinate": "[number, number]"}, opts.Emitter.Converters)
	assert.Equal(t, []string{"Acme"}, opts.Policy.RootNamespaces)
	assert.Equal(t, "debug", cli.Log.Level)
}

func TestGenerateInvalidEmit(t *testing.T) {
	g := Generate{Emit: []string{"methods"}}
	_, err := g.options()
	assert.ErrorContains(t, err, "invalid --emit")
}

func TestGenerateCheckNeedsOutputFile(t *testing.T) {
	cat := writeCatalog(t)
	_, ctx := parse(t, []string{"generate", "--catalog", cat, "--check"})
	err := ctx.Run(discard())
	assert.ErrorContains(t, err, "--check needs --output")
	_, statErr := os.Stat("-")
	assert.True(t, os.IsNotExist(statErr))

	g := Generate{Emit: []string{"all"}, Check: true}
	_, err = g.options()
	assert.Error(t, err)
}

func TestGenerateRun(t *testing.T) {
	cat := writeCatalog(t)
	out := filepath.Join(t.TempDir(), "nest.d.ts")
	_, ctx := parse(t, []string{"generate", "--catalog", cat, "-o", out, "--indent", "  "})
	require.NoError(t, ctx.Run(discard()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "enum Color {\n  Red = 0,\n  Blue = 1\n}\n")
	assert.Contains(t, string(data), "interface SearchRequest {\n  size: number;\n}\n")

	_, ctx = parse(t, []string{"generate", "--catalog", cat, "-o", out, "--indent", "  ", "--check"})
	assert.NoError(t, ctx.Run(discard()))
}

func TestConfigurationFile(t *testing.T) {
	cat := writeCatalog(t)
	cfg := filepath.Join(t.TempDir(), "tsdecl.json")
	require.NoError(t, os.WriteFile(cfg, []byte(`{
  "output": "from-config.d.ts",
  "namespaces": true,
  "const_enums": true,
  "log": {"level": "warn"}
}`), 0o644))

	cli, _ := parse(t, []string{"generate", "--catalog", cat}, kong.Configuration(kong.JSON, cfg))
	assert.Equal(t, "from-config.d.ts", cli.Generate.Output)
	assert.True(t, cli.Generate.Namespaces)
	assert.True(t, cli.Generate.ConstEnums)
	assert.Equal(t, "warn", cli.Log.Level)

	cli, _ = parse(t, []string{"generate", "--catalog", cat, "-o", "flag.d.ts"}, kong.Configuration(kong.JSON, cfg))
	assert.Equal(t, "flag.d.ts", cli.Generate.Output, "flags override configuration")
}

func TestDumpRun(t *testing.T) {
	cat := writeCatalog(t)
	cli, ctx := parse(t, []string{"dump", "--catalog", cat, "--depth", "2"})
	var buf bytes.Buffer
	cli.Dump.out = &buf
	require.NoError(t, ctx.Run(discard()))

	out := buf.String()
	assert.Contains(t, out, `module "Nest": Nest.Color Nest.SearchRequest`)
	assert.Contains(t, out, `"SearchRequest"`)
	assert.Contains(t, out, "catalog.TypeNode")
}

func TestConfigInit(t *testing.T) {
	tests := []struct {
		format    string
		unmarshal func([]byte, any) error
	}{
		{"json", json.Unmarshal},
		{"yaml", yaml.Unmarshal},
		{"toml", unmarshalTOML},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "conf", "tsdecl."+tt.format)
			c := ConfigInit{Command: "generate", Format: tt.format, Output: dest}
			require.NoError(t, c.Run())

			data, err := os.ReadFile(dest)
			require.NoError(t, err)
			var m map[string]any
			require.NoError(t, tt.unmarshal(data, &m))

			for _, key := range []string{"catalog", "request_parameters", "request_base", "output", "emit", "const_enums", "root_namespace", "rename", "alias_attribute", "check"} {
				assert.Contains(t, m, key)
			}
			assert.Equal(t, "-", m["output"])
			assert.Equal(t, "Map", m["rename"].(map[string]any)["KeyValuePair"])
			assert.Equal(t, "info", m["log"].(map[string]any)["level"])

			assert.Error(t, c.Run(), "refuses to overwrite")
			c.Force = true
			assert.NoError(t, c.Run())
		})
	}
}

func TestConfigInitDump(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "tsdecl.yaml")
	require.NoError(t, (&ConfigInit{Command: "dump", Format: "yml", Output: dest}).Run())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, yaml.Unmarshal(data, &m))
	assert.Equal(t, 4, m["depth"])
	assert.NotContains(t, m, "output")
}

func TestConfigInitScan(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "tsdecl.json")
	require.NoError(t, (&ConfigInit{Command: "scan", Format: "json", Output: dest}).Run())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.NotContains(t, m, "dir", "positional arguments are not configurable")
	assert.Equal(t, "JsonConverter", m["converter_attribute"])
	assert.Equal(t, "yaml", m["format"])
}

func TestConfigKey(t *testing.T) {
	tests := map[string]string{
		"Catalog":               "catalog",
		"RequestParameters":     "request_parameters",
		"ParameterBagInterface": "parameter_bag_interface",
		"ConstEnums":            "const_enums",
		"RootNamespace":         "root_namespace",
	}
	typ := reflect.TypeOf(Generate{})
	for field, want := range tests {
		sf, ok := typ.FieldByName(field)
		require.True(t, ok, field)
		assert.Equal(t, want, configKey(sf))
	}
}

func TestScanRun(t *testing.T) {
	pkg := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(pkg, "model.go"), []byte(`package model

// Color is a color.
type Color int

const (
	Red Color = iota
	Blue
)

type Doc struct {
	Title string `+"`json:\"title\"`"+`
	Color Color  `+"`json:\"color\"`"+`
}
`), 0o644))

	cli, ctx := parse(t, []string{"scan", pkg, "--namespace", "Nest", "--format", "json"})
	var buf bytes.Buffer
	cli.Scan.out = &buf
	require.NoError(t, ctx.Run(discard()))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	types := doc["types"].([]any)
	require.Len(t, types, 2)
	assert.Equal(t, "Color", types[0].(map[string]any)["name"])
	assert.Equal(t, "enum", types[0].(map[string]any)["kind"])
	assert.Equal(t, "Nest", types[1].(map[string]any)["namespace"])

	catalogPath := filepath.Join(t.TempDir(), "catalog.yaml")
	_, ctx = parse(t, []string{"scan", pkg, "--namespace", "Nest", "-o", catalogPath})
	require.NoError(t, ctx.Run(discard()))

	out := filepath.Join(t.TempDir(), "model.d.ts")
	_, ctx = parse(t, []string{"generate", "--catalog", catalogPath, "-o", out, "--no-docs"})
	require.NoError(t, ctx.Run(discard()))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "enum Color {\n\tRed = 0,\n\tBlue = 1\n}\n")
	assert.Contains(t, string(data), "interface Doc {\n\ttitle: string;\n\tcolor: Color;\n}\n")
}
