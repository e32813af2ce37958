package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/Alia5/tsdecl/internal/codegen/generator"
)

// Dump prints the resolved catalog for debugging type-graph construction.
type Dump struct {
	CatalogFlags `embed:""`

	Depth int `help:"Maximum nesting depth to print" default:"4" env:"TSDECL_DUMP_DEPTH"`

	out io.Writer
}

// Run is called by Kong when the dump command is executed.
func (d *Dump) Run(logger *slog.Logger) error {
	opts := generator.Options{
		CatalogPath:           d.Catalog,
		RequestParametersPath: d.RequestParameters,
		Catalog:               d.CatalogFlags.options(),
	}
	cat, err := generator.New(opts, logger).Load()
	if err != nil {
		return err
	}

	w := d.out
	if w == nil {
		w = os.Stdout
	}
	cfg := spew.ConfigState{
		Indent:                  "  ",
		MaxDepth:                d.Depth,
		DisableMethods:          true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}
	for _, m := range cat.Modules {
		names := make([]string, len(m.Types))
		for i, t := range m.Types {
			names[i] = t.ID()
		}
		fmt.Fprintf(w, "module %q: %s\n", m.Name, strings.Join(names, " "))
	}
	for _, t := range cat.Types {
		cfg.Fdump(w, t)
	}
	cfg.Fdump(w, cat.RequestParameters)
	return nil
}
