package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Alia5/tsdecl/internal/catalog"
	"github.com/Alia5/tsdecl/internal/codegen/emitter"
	"github.com/Alia5/tsdecl/internal/codegen/generator"
	"github.com/Alia5/tsdecl/internal/codegen/policy"
)

// CatalogFlags select the catalog and name the special types in it.
type CatalogFlags struct {
	Catalog               string `help:"Type catalog document (.json, .yaml, .yml or .toml)" required:"" type:"existingfile" env:"TSDECL_CATALOG"`
	RequestParameters     string `help:"Request query-parameter side-table document" type:"existingfile" env:"TSDECL_REQUEST_PARAMETERS"`
	RequestBase           string `help:"Open generic base request type" default:"RequestBase" env:"TSDECL_REQUEST_BASE"`
	ResponseBase          string `help:"Base response type" default:"ResponseBase" env:"TSDECL_RESPONSE_BASE"`
	RequestInterface      string `help:"Generic is-a-request interface" default:"IRequest" env:"TSDECL_REQUEST_INTERFACE"`
	ParameterBagInterface string `help:"Interface marking query-parameter types" default:"IRequestParameters" env:"TSDECL_PARAMETER_BAG_INTERFACE"`
}

func (c CatalogFlags) options() catalog.Options {
	return catalog.Options{
		RequestBase:           c.RequestBase,
		ResponseBase:          c.ResponseBase,
		RequestInterface:      c.RequestInterface,
		ParameterBagInterface: c.ParameterBagInterface,
	}
}

type Generate struct {
	CatalogFlags `embed:""`

	Output        string            `short:"o" help:"Declaration file to write, '-' for stdout" default:"-" env:"TSDECL_OUTPUT"`
	Emit          []string          `help:"Declaration kinds to emit: enums, properties, fields, constants or all" default:"enums,properties,fields,constants" env:"TSDECL_EMIT"`
	ConstEnums    bool              `help:"Emit const enums" env:"TSDECL_CONST_ENUMS"`
	Export        bool              `help:"Prefix interface declarations with export" env:"TSDECL_EXPORT"`
	Namespaces    bool              `help:"Wrap each module in a declare namespace block" env:"TSDECL_NAMESPACES"`
	Docs          bool              `help:"Emit catalog doc strings as comments" default:"true" negatable:"" env:"TSDECL_DOCS"`
	Indent        string            `help:"Indentation unit" default:"\t" env:"TSDECL_INDENT"`
	Rename        map[string]string `help:"Rename a source type (Source=Output)" default:"KeyValuePair=Map" env:"TSDECL_RENAME"`
	Converter     map[string]string `help:"Render a source type as a fixed TypeScript expression instead of declaring it (Type=expr)" env:"TSDECL_CONVERTER"`
	RootNamespace []string          `help:"Namespaces whose types belong to the public model" default:"Nest,Elasticsearch.Net" env:"TSDECL_ROOT_NAMESPACE"`

	RequestMarker      string `help:"Name of the request marker declaration" default:"Request" env:"TSDECL_REQUEST_MARKER"`
	ResponseMarker     string `help:"Name of the response marker declaration" default:"Response" env:"TSDECL_RESPONSE_MARKER"`
	ConverterAttribute string `help:"Attribute marking custom serialization" default:"JsonConverter" env:"TSDECL_CONVERTER_ATTRIBUTE"`
	AliasAttribute     string `help:"Attribute carrying an enum value's serialized name" default:"EnumMember" env:"TSDECL_ALIAS_ATTRIBUTE"`

	Check bool `help:"Do not write; fail when the output file differs from the generated declarations" env:"TSDECL_CHECK"`
}

// Run is called by Kong when the generate command is executed.
func (g *Generate) Run(logger *slog.Logger) error {
	opts, err := g.options()
	if err != nil {
		return err
	}
	logger.Info("Starting declaration generation", "catalog", g.Catalog, "output", g.Output, "emit", opts.Output.String())
	return generator.New(opts, logger).Run()
}

func (g *Generate) options() (generator.Options, error) {
	out, err := emitter.ParseOutput(g.Emit)
	if err != nil {
		return generator.Options{}, fmt.Errorf("invalid --emit: %w", err)
	}
	if g.Check && (g.Output == "" || g.Output == "-") {
		return generator.Options{}, errors.New("--check needs --output naming the declaration file to compare")
	}
	var docs emitter.DocAppender = emitter.NopDocAppender{}
	if g.Docs {
		docs = emitter.JSDocAppender{}
	}
	var roots []string
	for _, r := range g.RootNamespace {
		if r = strings.TrimSpace(r); r != "" {
			roots = append(roots, r)
		}
	}

	return generator.Options{
		CatalogPath:           g.Catalog,
		RequestParametersPath: g.RequestParameters,
		OutputPath:            g.Output,
		Output:                out,
		Check:                 g.Check,
		Catalog:               g.CatalogFlags.options(),
		Policy: policy.Config{
			RootNamespaces:     roots,
			RequestMarker:      g.RequestMarker,
			ResponseMarker:     g.ResponseMarker,
			ConverterAttribute: g.ConverterAttribute,
			AliasAttribute:     g.AliasAttribute,
		},
		Emitter: emitter.Config{
			Renames:    g.Rename,
			Converters: g.Converter,
			Export:     g.Export,
			Namespaces: g.Namespaces,
			ConstEnums: g.ConstEnums,
			Indent:     g.Indent,
			Docs:       docs,
		},
	}, nil
}
