package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/toejough/regionize"
)

// fileResult is the outcome of organizing one file.
type fileResult struct {
	path    string
	content string
	result  string
}

func (r fileResult) changed() bool {
	return r.result != r.content
}

// explain lists the member regions of a file that are out of place.
func explain(r fileResult, cfg *regionize.Config, stderr io.Writer) {
	lang, err := regionize.LanguageForPath(r.path)
	if err != nil {
		return
	}

	orders, err := regionize.AnalyzeMemberOrder(lang, r.content, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "  %v\n", err)
		return
	}

	for _, o := range orders {
		if o.InOrder() {
			continue
		}

		for _, rp := range o.Regions {
			switch {
			case rp.Scattered:
				_, _ = fmt.Fprintf(stderr, "  %s %s: %q is scattered\n", o.Kind, o.Name, rp.Caption)
			case rp.Position != rp.Expected:
				_, _ = fmt.Fprintf(stderr, "  %s %s: %q at position %d, expected %d\n",
					o.Kind, o.Name, rp.Caption, rp.Position, rp.Expected)
			}
		}
	}
}

func loadConfig(opts cliOptions, startDir string) (*regionize.Config, string, error) {
	configPath := opts.config

	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, "", fmt.Errorf("config file not found: %s", configPath)
		}
	} else if startDir != "" {
		found, err := regionize.FindConfig(startDir)
		if err != nil {
			return nil, "", fmt.Errorf("finding config: %w", err)
		}

		configPath = found
	}

	cfg := regionize.DefaultConfig()

	if configPath != "" {
		loaded, err := regionize.LoadConfig(configPath)
		if err != nil {
			return nil, "", fmt.Errorf("loading config: %w", err)
		}

		cfg = loaded
	}

	if opts.noRegions {
		cfg.Regions.UseRegions = false
	}

	return cfg, configPath, nil
}

func newLogger(verbose bool, stderr io.Writer) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(zapcore.AddSync(stderr)),
		level,
	)

	return zap.New(core)
}

func organizeFile(ctx context.Context, o *regionize.Organizer, path string, cfg *regionize.Config) (fileResult, error) {
	lang, err := regionize.LanguageForPath(path)
	if err != nil {
		return fileResult{}, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fileResult{}, err
	}

	result, err := o.Organize(ctx, lang, string(content), cfg)
	if err != nil {
		return fileResult{}, err
	}

	return fileResult{path: path, content: string(content), result: result}, nil
}

func report(r fileResult, opts cliOptions, stdout, stderr io.Writer) error {
	if opts.check {
		return nil
	}

	if opts.diff {
		if !r.changed() {
			return nil
		}

		diff := difflib.UnifiedDiff{
			A:        difflib.SplitLines(r.content),
			B:        difflib.SplitLines(r.result),
			FromFile: r.path,
			ToFile:   r.path,
			Context:  3,
		}

		text, err := difflib.GetUnifiedDiffString(diff)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprint(stdout, text)

		return nil
	}

	if opts.write {
		_, _ = fmt.Fprintf(stderr, "%s\n", r.path)
		if r.changed() {
			return os.WriteFile(r.path, []byte(r.result), 0o644)
		}

		return nil
	}

	// Default: output to stdout
	_, _ = fmt.Fprint(stdout, r.result)

	return nil
}

// processStdin handles reading from stdin and writing to stdout.
func processStdin(stdin io.Reader, opts cliOptions, stdout, stderr io.Writer) int {
	content, err := io.ReadAll(stdin)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error reading stdin: %v\n", err)
		return 1
	}

	lang := regionize.TypeScript
	if opts.lang != "" {
		lang, err = regionize.ParseLanguage(opts.lang)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	cfg, _, err := loadConfig(opts, "")
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	log := newLogger(opts.verbose, stderr)
	defer func() { _ = log.Sync() }()

	result, err := regionize.New(regionize.WithLogger(log)).Organize(context.Background(), lang, string(content), cfg)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	_, _ = fmt.Fprint(stdout, result)

	return 0
}

// run is the core logic, taking already-parsed options.
func run(opts cliOptions, files []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(files) == 0 {
		_, _ = fmt.Fprintf(stderr, "Error: no files specified\n")
		return 1
	}

	if len(files) == 1 && files[0] == "-" {
		return processStdin(stdin, opts, stdout, stderr)
	}

	// Discover all source files first (needed for config discovery)
	sources, err := discoverFiles(files, opts.exclude)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error discovering files: %v\n", err)
		return 1
	}

	if len(sources) == 0 {
		_, _ = fmt.Fprintf(stderr, "Error: no TypeScript or Go files found\n")
		return 1
	}

	cfg, configPath, err := loadConfig(opts, filepath.Dir(sources[0]))
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if opts.verbose {
		if configPath != "" {
			_, _ = fmt.Fprintf(stderr, "config: %s\n", configPath)
		} else {
			_, _ = fmt.Fprintf(stderr, "config: using defaults\n")
		}
		_, _ = fmt.Fprintf(stderr, "regions: %t\n", cfg.Regions.UseRegions)
		_, _ = fmt.Fprintf(stderr, "files: %d\n", len(sources))
	}

	log := newLogger(opts.verbose, stderr)
	defer func() { _ = log.Sync() }()

	o := regionize.New(regionize.WithLogger(log))
	results := make([]fileResult, len(sources))

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(min(runtime.GOMAXPROCS(0), len(sources)))

	for i, path := range sources {
		g.Go(func() error {
			r, err := organizeFile(ctx, o, path, cfg)
			if err != nil {
				return fmt.Errorf("processing %s: %w", path, err)
			}

			results[i] = r

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// Results are reported in discovery order
	var changedFiles []string

	for _, r := range results {
		if err := report(r, opts, stdout, stderr); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error processing %s: %v\n", r.path, err)
			return 1
		}

		if r.changed() {
			changedFiles = append(changedFiles, r.path)
		}
	}

	// --check mode: exit 1 if any files would change
	if opts.check && len(changedFiles) > 0 {
		for _, r := range results {
			if !r.changed() {
				continue
			}

			_, _ = fmt.Fprintf(stderr, "%s\n", r.path)

			if opts.verbose {
				explain(r, cfg, stderr)
			}
		}

		return 1
	}

	return 0
}
