package main

import (
	"fmt"
	"io"
	"os"

	"github.com/toejough/regionize"
)

// CLI represents the regionize command.
type CLI struct {
	Write           bool     `targ:"flag,short=w,desc=Write result to source file instead of stdout"`
	Check           bool     `targ:"flag,short=c,desc=Check if files are already organized (exit 1 if not)"`
	Diff            bool     `targ:"flag,short=d,desc=Display diff instead of organized source"`
	Verbose         bool     `targ:"flag,short=v,desc=Show config and processing details"`
	Init            bool     `targ:"flag,name=init,desc=Create a default .regionize.toml config file"`
	InitFormat      string   `targ:"flag,name=init-format,desc=Format of the --init config file (toml|yaml)"`
	ListMemberTypes bool     `targ:"flag,name=list-member-types,desc=List available member type names for config"`
	Config          string   `targ:"flag,name=config,desc=Path to config file"`
	NoRegions       bool     `targ:"flag,name=no-regions,desc=Group members without writing region markers"`
	Lang            string   `targ:"flag,name=lang,desc=Language of stdin input (ts|tsx|go)"`
	Exclude         []string `targ:"flag,name=exclude,desc=Exclude files matching pattern (repeatable; attach the pattern with an equals sign or end the list with another flag)"`
	Path            string   `targ:"positional,placeholder=PATH,desc=File or directory to process or - for stdin"`
}

// Organize TypeScript and Go source files.
// Groups class and interface members into captioned #region blocks.
func (c *CLI) Run() error {
	stdin := io.Reader(os.Stdin)
	stdout := io.Writer(os.Stdout)
	stderr := io.Writer(os.Stderr)

	if testCtx != nil {
		if testCtx.stdin != nil {
			stdin = testCtx.stdin
		}
		stdout = testCtx.stdout
		stderr = testCtx.stderr
	}

	if c.ListMemberTypes {
		_, _ = fmt.Fprintln(stdout, "Available member types for config:")
		for _, name := range regionize.MemberTypes() {
			_, _ = fmt.Fprintf(stdout, "  %s\n", name)
		}

		return nil
	}

	if c.Init {
		return exit(c.runInit(stdout, stderr))
	}

	opts := cliOptions{
		write:     c.Write,
		check:     c.Check,
		diff:      c.Diff,
		verbose:   c.Verbose,
		noRegions: c.NoRegions,
		config:    c.Config,
		lang:      c.Lang,
		exclude:   c.Exclude,
	}

	// --exclude takes every value up to the next flag, so a PATH written
	// right after it lands among the patterns.
	if c.Path == "" && len(c.Exclude) > 0 {
		_, _ = fmt.Fprintf(stderr,
			"Error: no files specified (a PATH after --exclude is read as a pattern; use --exclude=PATTERN or another flag before PATH)\n")

		return exit(1)
	}

	var files []string
	if c.Path != "" {
		files = []string{c.Path}
	}

	return exit(run(opts, files, stdin, stdout, stderr))
}

// unexported variables.
var (
	testCtx *testContext
)

type cliOptions struct {
	write     bool
	check     bool
	diff      bool
	verbose   bool
	noRegions bool
	config    string
	lang      string
	exclude   []string
}

// testContext holds test injection - separate from CLI to avoid targ's zero-value check.
type testContext struct {
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	exitCode int
}

// runInit creates a default config file in the working directory.
// Returns exit code (0 for success, 1 for error).
func (c *CLI) runInit(stdout, stderr io.Writer) int {
	configPath := regionize.ConfigFileName
	if c.InitFormat == "yaml" || c.InitFormat == "yml" {
		configPath = regionize.YAMLConfigFileName
	}

	if _, err := os.Stat(configPath); err == nil {
		_, _ = fmt.Fprintf(stderr, "Error: %s already exists\n", configPath)
		return 1
	}

	f, err := os.OpenFile(configPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error writing config: %v\n", err)
		return 1
	}

	if err := regionize.WriteDefaultConfig(f, c.InitFormat); err != nil {
		_ = f.Close()
		_, _ = fmt.Fprintf(stderr, "Error writing config: %v\n", err)

		return 1
	}

	if err := f.Close(); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error writing config: %v\n", err)
		return 1
	}

	_, _ = fmt.Fprintf(stdout, "Created %s\n", configPath)

	return 0
}

// exit reports the exit code to the test harness, or exits the process.
func exit(code int) error {
	if testCtx != nil {
		testCtx.exitCode = code
		return nil
	}

	if code != 0 {
		os.Exit(code)
	}

	return nil
}
