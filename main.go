// modgen generates typed modifier parsers, or a modifier schema document,
// from a UI framework's textual interface file.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/phobologic/modgen/internal/catalog"
	"github.com/phobologic/modgen/internal/config"
	"github.com/phobologic/modgen/internal/discover"
	"github.com/phobologic/modgen/internal/emit"
	"github.com/phobologic/modgen/internal/iface"
	"github.com/phobologic/modgen/internal/lang"
	"github.com/phobologic/modgen/internal/model"
	"github.com/phobologic/modgen/internal/parse"
)

var version = "dev"

const (
	defaultChunkSize   = 10
	defaultMaxFileSize = 1_000_000 // 1 MB
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	schema      bool
	chunkSize   int
	configPath  string
	sources     string
	pkg         string
	format      string
	maxFileSize int
	verbose     bool
}

func run(args []string, stdout, stderr io.Writer) error {
	var opts options

	cmd := &cobra.Command{
		Use:   "modgen [flags] <interface-file>",
		Short: "Generate modifier parsers from a framework interface",
		Long: `Generate typed modifier parsers from a framework interface file.

By default modgen writes a Go source file: one type per modifier overload,
chunked dispatch tables and parsers for the enumerated types the modifiers
take. With --schema it writes a schema document describing every modifier
signature and enum instead, merging enums found in the Swift sources under
--sources.

Modifiers that cannot be expressed are reported on stderr as
` + "`name` will be skipped." + `

Examples:
  modgen SwiftUI.swiftinterface > modifiers.go
  modgen --chunk-size 25 --package views SwiftUI.swiftinterface
  modgen --schema --format yaml --sources Sources/ParseableTypes SwiftUI.swiftinterface`,
		Args:          cobra.ExactArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return generate(args[0], opts, stdout, stderr)
		},
	}
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("modgen {{.Version}}\n")

	f := cmd.Flags()
	f.BoolVar(&opts.schema, "schema", false, "write a schema document instead of Go source")
	f.IntVar(&opts.chunkSize, "chunk-size", defaultChunkSize, "modifiers per generated chunk parser")
	f.StringVar(&opts.configPath, "config", "", "TOML configuration file layered over the defaults")
	f.StringVar(&opts.sources, "sources", "", "directory scanned for parseable enums in schema mode")
	f.StringVar(&opts.pkg, "package", "", "package name of the generated file")
	f.StringVar(&opts.format, "format", emit.FormatJSON, "schema format: "+strings.Join(emit.Formats, ", "))
	f.IntVar(&opts.maxFileSize, "max-file-size", defaultMaxFileSize, "skip source files larger than this many bytes")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline stages to stderr")

	return cmd.Execute()
}

func generate(path string, opts options, stdout, stderr io.Writer) error {
	logger := newLogger(opts.verbose, stderr)
	defer func() { _ = logger.Sync() }()

	if !opts.schema && opts.chunkSize < 1 {
		return errors.WithHint(
			errors.Newf("--chunk-size must be at least 1, got %d", opts.chunkSize),
			"each chunk parser needs at least one modifier",
		)
	}
	if opts.schema && !slices.Contains(emit.Formats, opts.format) {
		return errors.WithHint(
			errors.Newf("unknown schema format %q", opts.format),
			"use one of "+strings.Join(emit.Formats, ", "),
		)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading interface %s", path)
	}
	logger.Debug("parsing interface", zap.String("path", path), zap.Int("bytes", len(src)))

	file, err := iface.Parse(string(src))
	if err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}

	cat, err := catalog.Build(file, cfg, stderr)
	if err != nil {
		return err
	}
	logger.Debug("built catalog",
		zap.Int("modifiers", len(cat.Modifiers)),
		zap.Int("enums", len(cat.Enums)),
		zap.Int("deprecations", len(cat.Deprecations)),
		zap.Int("extras", len(cat.Extras)))

	if !opts.schema {
		logger.Debug("writing code", zap.String("package", cfg.Package), zap.Int("chunk_size", opts.chunkSize))
		return emit.Code(stdout, cat, emit.Options{Package: cfg.Package, ChunkSize: opts.chunkSize})
	}

	decls, err := scanSources(cfg.Sources, cfg.ParseableMarkers, opts.maxFileSize, stderr, logger)
	if err != nil {
		return err
	}
	logger.Debug("writing schema", zap.String("format", opts.format), zap.Int("declarations", len(decls)))
	return emit.Encode(stdout, emit.Schema(cat, decls), opts.format)
}

// loadConfig layers --config over the embedded defaults, then applies the
// flag overrides.
func loadConfig(opts options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		return nil, err
	}
	if opts.sources != "" {
		cfg.Sources = opts.sources
	}
	if opts.pkg != "" {
		cfg.Package = opts.pkg
	}
	return cfg, cfg.Validate()
}

func newLogger(verbose bool, w io.Writer) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.DebugLevel))
}

// scanSources parses the Swift files under root. A missing root yields no
// declarations.
func scanSources(root string, markers []string, maxFileSize int, stderr io.Writer, logger *zap.Logger) ([]model.TypeDecl, error) {
	files, err := discover.Files(root, []string{"swift"})
	if err != nil {
		return nil, err
	}
	logger.Debug("discovered sources", zap.String("root", root), zap.Int("files", len(files)))
	if len(files) == 0 {
		return nil, nil
	}

	files = filterBySize(root, files, maxFileSize, stderr)
	return parseFilesConcurrent(root, files, markers)
}

func filterBySize(root string, files []discover.FileEntry, maxSize int, stderr io.Writer) []discover.FileEntry {
	var kept []discover.FileEntry
	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, f.Path))
		if err != nil {
			kept = append(kept, f) // the read reports it
			continue
		}
		if fi.Size() > int64(maxSize) {
			_, _ = fmt.Fprintf(stderr, "Warning: %s: skipped (>%d bytes)\n", f.Path, maxSize)
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// parseFilesConcurrent extracts the type declarations of files, in file
// order. Any unreadable file fails the scan; the error of the first such file
// is returned.
func parseFilesConcurrent(root string, files []discover.FileEntry, markers []string) ([]model.TypeDecl, error) {
	type result struct {
		index int
		decls []model.TypeDecl
		err   error
	}

	numWorkers := min(runtime.GOMAXPROCS(0), len(files))

	work := make(chan int, len(files))
	results := make(chan result, len(files))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Parsers are not safe for concurrent use.
			parsers := make(map[string]*sitter.Parser)

			for idx := range work {
				f := files[idx]
				l := lang.Languages[f.Language]
				p, ok := parsers[f.Language]
				if !ok {
					p = l.NewParser()
					parsers[f.Language] = p
				}

				source, err := os.ReadFile(filepath.Join(root, f.Path))
				if err != nil {
					results <- result{index: idx, err: errors.Wrapf(err, "reading source %s", f.Path)}
					continue
				}
				results <- result{index: idx, decls: parse.Declarations(l, p, source, f.Path, markers)}
			}
		}()
	}

	for i := range files {
		work <- i
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	indexed := make([]result, len(files))
	for r := range results {
		indexed[r.index] = r
	}

	var decls []model.TypeDecl
	for _, r := range indexed {
		if r.err != nil {
			return nil, r.err
		}
		decls = append(decls, r.decls...)
	}
	return decls, nil
}
