package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Alia5/tsdecl/internal/catalog"
	"github.com/Alia5/tsdecl/internal/codegen/scanner"
)

// Scan builds a catalog document from Go packages.
type Scan struct {
	Dirs []string `arg:"" name:"dir" help:"Go package directories to scan" type:"existingdir"`

	Namespace          string `help:"Namespace assigned to scanned types (defaults to the Go package name). Pass it to generate --root-namespace, whose default only admits Nest and Elasticsearch.Net" env:"TSDECL_SCAN_NAMESPACE"`
	ConstantHolder     string `help:"Type collecting untyped constants (defaults to the package name)" env:"TSDECL_SCAN_CONSTANT_HOLDER"`
	ConverterAttribute string `help:"Attribute attached to types with custom JSON marshaling" default:"JsonConverter" env:"TSDECL_CONVERTER_ATTRIBUTE"`
	Output             string `short:"o" help:"Catalog file to write, '-' for stdout" default:"-" env:"TSDECL_SCAN_OUTPUT"`
	Format             string `help:"Catalog format; inferred from --output when it has an extension" enum:"json,yaml" default:"yaml" env:"TSDECL_SCAN_FORMAT"`

	out io.Writer
}

// Run is called by Kong when the scan command is executed.
func (s *Scan) Run(logger *slog.Logger) error {
	format := catalog.Format(s.Format)
	if s.Output != "-" {
		if f, err := catalog.FormatFromPath(s.Output); err == nil {
			format = f
		}
	}

	doc := &catalog.Document{}
	for _, dir := range s.Dirs {
		pkg, err := scanner.ScanPackage(dir, scanner.Options{
			Namespace:          s.Namespace,
			ConverterAttribute: s.ConverterAttribute,
			ConstantHolder:     s.ConstantHolder,
		})
		if err != nil {
			return fmt.Errorf("scan %s: %w", dir, err)
		}
		logger.Debug("Scanned package", "dir", dir, "types", len(pkg.Types))
		doc.Types = append(doc.Types, pkg.Types...)
	}

	data, err := catalog.Encode(format, doc)
	if err != nil {
		return err
	}
	if s.Output == "-" {
		w := s.out
		if w == nil {
			w = os.Stdout
		}
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(s.Output, data, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	logger.Info("Wrote type catalog", "file", s.Output, "types", len(doc.Types))
	return nil
}
