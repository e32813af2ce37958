package generator

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Alia5/tsdecl/internal/catalog"
	"github.com/Alia5/tsdecl/internal/codegen/common"
	"github.com/Alia5/tsdecl/internal/codegen/emitter"
	"github.com/Alia5/tsdecl/internal/codegen/policy"
)

// ErrOutOfDate is returned in check mode when the file on disk differs from
// what would be generated.
var ErrOutOfDate = errors.New("generated declarations are out of date")

// Options describes one generation.
type Options struct {
	CatalogPath           string
	RequestParametersPath string
	// OutputPath is the declaration file to write; "-" writes to Stdout.
	OutputPath string
	Output     emitter.Output
	Check      bool

	Catalog catalog.Options
	Policy  policy.Config
	Emitter emitter.Config
}

type Generator struct {
	opts   Options
	logger *slog.Logger
	Stdout io.Writer
}

func New(opts Options, logger *slog.Logger) *Generator {
	return &Generator{
		opts:   opts,
		logger: logger,
		Stdout: os.Stdout,
	}
}

// Load reads and resolves the catalog and merges the optional standalone
// request-parameters document over the catalog's own section.
func (g *Generator) Load() (*catalog.Catalog, error) {
	g.logger.Info("Loading type catalog", "path", g.opts.CatalogPath)
	doc, err := catalog.ReadDocument(g.opts.CatalogPath)
	if err != nil {
		return nil, err
	}

	if g.opts.RequestParametersPath != "" {
		params, err := catalog.ReadRequestParameters(g.opts.RequestParametersPath)
		if err != nil {
			return nil, err
		}
		if doc.RequestParameters == nil {
			doc.RequestParameters = make(map[string][]string, len(params))
		}
		for k, v := range params {
			doc.RequestParameters[k] = v
		}
		g.logger.Debug("Loaded request parameters", "path", g.opts.RequestParametersPath, "requests", len(params))
	}

	cat, err := catalog.Resolve(doc, g.opts.Catalog)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog: %w", err)
	}
	g.logger.Info("Resolved type catalog", "types", len(cat.Types), "modules", len(cat.Modules))
	return cat, nil
}

// Render produces the complete declaration file for cat.
func (g *Generator) Render(cat *catalog.Catalog) (string, error) {
	version, err := common.GetVersion()
	if err != nil {
		return "", fmt.Errorf("get version: %w", err)
	}
	em := emitter.New(g.opts.Emitter)
	p := policy.New(g.logger, cat, em, g.opts.Policy)

	g.logger.Debug("Emitting declarations", "output", g.opts.Output.String())
	body := p.Generate(g.opts.Output)
	return common.FileHeader(version, filepath.Base(g.opts.CatalogPath)) + body, nil
}

// Run loads, renders and writes (or checks) the declaration file. Nothing is
// written unless every step succeeded.
func (g *Generator) Run() error {
	cat, err := g.Load()
	if err != nil {
		return err
	}
	content, err := g.Render(cat)
	if err != nil {
		return err
	}

	if g.opts.Check {
		return g.check(content)
	}
	if g.opts.OutputPath == "-" || g.opts.OutputPath == "" {
		_, err := io.WriteString(g.Stdout, content)
		return err
	}
	if err := writeFileAtomic(g.opts.OutputPath, []byte(content)); err != nil {
		return err
	}
	g.logger.Info("Generated TypeScript declarations", "file", g.opts.OutputPath, "bytes", len(content))
	return nil
}

func (g *Generator) check(content string) error {
	existing, err := os.ReadFile(g.opts.OutputPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s does not exist", ErrOutOfDate, g.opts.OutputPath)
		}
		return fmt.Errorf("read %s: %w", g.opts.OutputPath, err)
	}
	if !bytes.Equal(existing, []byte(content)) {
		return fmt.Errorf("%w: %s", ErrOutOfDate, g.opts.OutputPath)
	}
	g.logger.Info("Generated declarations are up to date", "file", g.opts.OutputPath)
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
