package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/toejough/regionize"
)

const unorganized = `class Widget {
  render() {}
  private count = 0;
}
`

func TestCLIProcessesSingleFile(t *testing.T) {
	inputFile := writeSource(t, t.TempDir(), "widget.ts", unorganized)

	var stdout, stderr bytes.Buffer
	exitCode := executeCLI([]string{inputFile}, nil, &stdout, &stderr)

	if exitCode != 0 {
		t.Errorf("expected exit code 0, got %d; stderr: %s", exitCode, stderr.String())
	}

	output := stdout.String()
	if !strings.Contains(output, "// #region Private Properties (1)") {
		t.Errorf("expected organized code on stdout, got: %s", output)
	}
	if !strings.Contains(output, "public render() {}") {
		t.Errorf("expected public modifier to be added, got: %s", output)
	}
}

func TestCLIWriteFlag(t *testing.T) {
	inputFile := writeSource(t, t.TempDir(), "widget.ts", unorganized)

	var stdout, stderr bytes.Buffer
	exitCode := executeCLI([]string{"--write", inputFile}, nil, &stdout, &stderr)

	if exitCode != 0 {
		t.Errorf("expected exit code 0, got %d; stderr: %s", exitCode, stderr.String())
	}

	modified, err := os.ReadFile(inputFile)
	if err != nil {
		t.Fatalf("failed to read modified file: %v", err)
	}

	propPos := strings.Index(string(modified), "private count")
	methodPos := strings.Index(string(modified), "render()")
	if propPos > methodPos {
		t.Errorf("expected property before method in written file, got:\n%s", modified)
	}

	if stdout.Len() != 0 {
		t.Errorf("expected nothing on stdout with --write, got: %s", stdout.String())
	}
	if !strings.Contains(stderr.String(), inputFile) {
		t.Errorf("expected processed file name on stderr, got: %s", stderr.String())
	}
}

func TestCLICheckFlag(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("unorganized file returns exit 1", func(t *testing.T) {
		inputFile := writeSource(t, tmpDir, "unorganized.ts", unorganized)

		var stdout, stderr bytes.Buffer
		exitCode := executeCLI([]string{"--check", inputFile}, nil, &stdout, &stderr)

		if exitCode != 1 {
			t.Errorf("expected exit code 1 for unorganized file, got %d", exitCode)
		}
		if !strings.Contains(stderr.String(), "unorganized.ts") {
			t.Errorf("expected file to be listed, got: %s", stderr.String())
		}
	})

	t.Run("organized file returns exit 0", func(t *testing.T) {
		organized, err := regionize.Source(unorganized)
		if err != nil {
			t.Fatal(err)
		}

		inputFile := writeSource(t, tmpDir, "organized.ts", organized)

		var stdout, stderr bytes.Buffer
		exitCode := executeCLI([]string{"--check", inputFile}, nil, &stdout, &stderr)

		if exitCode != 0 {
			t.Errorf("expected exit code 0 for organized file, got %d; stderr: %s", exitCode, stderr.String())
		}
	})
}

func TestCLIDiffFlag(t *testing.T) {
	inputFile := writeSource(t, t.TempDir(), "widget.ts", unorganized)

	var stdout, stderr bytes.Buffer
	exitCode := executeCLI([]string{"--diff", inputFile}, nil, &stdout, &stderr)

	if exitCode != 0 {
		t.Errorf("expected exit code 0, got %d; stderr: %s", exitCode, stderr.String())
	}

	output := stdout.String()
	if !strings.Contains(output, "--- "+inputFile) || !strings.Contains(output, "+++ "+inputFile) {
		t.Errorf("expected unified diff headers, got: %s", output)
	}
	if !strings.Contains(output, "+  // #region Private Properties (1)") {
		t.Errorf("expected added region line, got: %s", output)
	}

	original, err := os.ReadFile(inputFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(original) != unorganized {
		t.Error("expected --diff to leave the file untouched")
	}
}

func TestCLIProcessesDirectoryRecursively(t *testing.T) {
	tmpDir := t.TempDir()
	writeSource(t, tmpDir, "a.ts", unorganized)
	writeSource(t, filepath.Join(tmpDir, "sub"), "b.tsx", unorganized)
	writeSource(t, filepath.Join(tmpDir, "node_modules", "dep"), "c.ts", unorganized)
	writeSource(t, filepath.Join(tmpDir, ".cache"), "d.ts", unorganized)
	writeSource(t, tmpDir, "types.d.ts", "declare class X {\n  b(): void;\n  a: number;\n}\n")
	writeSource(t, tmpDir, "notes.md", "# notes\n")

	var stdout, stderr bytes.Buffer
	exitCode := executeCLI([]string{"--check", tmpDir}, nil, &stdout, &stderr)

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d; stderr: %s", exitCode, stderr.String())
	}

	listed := stderr.String()
	for _, want := range []string{"a.ts", "b.tsx"} {
		if !strings.Contains(listed, want) {
			t.Errorf("expected %s to be checked, got: %s", want, listed)
		}
	}
	for _, skipped := range []string{"c.ts", "d.ts", "types.d.ts", "notes.md"} {
		if strings.Contains(listed, skipped) {
			t.Errorf("expected %s to be skipped, got: %s", skipped, listed)
		}
	}
}

func TestCLIExcludeFlag(t *testing.T) {
	tmpDir := t.TempDir()
	writeSource(t, tmpDir, "widget.ts", unorganized)
	writeSource(t, tmpDir, "widget.spec.ts", unorganized)
	writeSource(t, filepath.Join(tmpDir, "generated"), "api.ts", unorganized)

	t.Run("equals form before PATH", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		exitCode := executeCLI([]string{"--check", "--exclude=*.spec.ts", tmpDir}, nil, &stdout, &stderr)

		if exitCode != 1 {
			t.Errorf("expected exit code 1, got %d; stderr: %s", exitCode, stderr.String())
		}

		listed := stderr.String()
		if !strings.Contains(listed, "widget.ts") || !strings.Contains(listed, "api.ts") {
			t.Errorf("expected widget.ts and api.ts to be checked, got: %s", listed)
		}
		if strings.Contains(listed, "widget.spec.ts") {
			t.Errorf("expected widget.spec.ts to be skipped, got: %s", listed)
		}
	})

	t.Run("repeated and ended by another flag", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		exitCode := executeCLI(
			[]string{"--exclude", "*.spec.ts", "--exclude", "generated/**", "--check", tmpDir},
			nil, &stdout, &stderr,
		)

		if exitCode != 1 {
			t.Errorf("expected exit code 1, got %d; stderr: %s", exitCode, stderr.String())
		}

		listed := stderr.String()
		if !strings.Contains(listed, "widget.ts") {
			t.Errorf("expected widget.ts to be checked, got: %s", listed)
		}
		if strings.Contains(listed, "widget.spec.ts") || strings.Contains(listed, "api.ts") {
			t.Errorf("expected excluded files to be skipped, got: %s", listed)
		}
	})

	t.Run("PATH swallowed by the pattern list", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		exitCode := executeCLI([]string{"--check", "--exclude", "*.spec.ts", tmpDir}, nil, &stdout, &stderr)

		if exitCode != 1 {
			t.Errorf("expected exit code 1, got %d", exitCode)
		}
		if !strings.Contains(stderr.String(), "--exclude=PATTERN") {
			t.Errorf("expected a hint about the --exclude=PATTERN form, got: %s", stderr.String())
		}
	})
}

func TestCLIConfigFlag(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := writeSource(t, tmpDir, "widget.ts", unorganized)
	configFile := writeSource(t, tmpDir, "custom.yaml", `
members:
  order:
    - caption: Everything
      member_types: [publicMethods, privateProperties]
`)

	var stdout, stderr bytes.Buffer
	exitCode := executeCLI([]string{"--config", configFile, inputFile}, nil, &stdout, &stderr)

	if exitCode != 0 {
		t.Errorf("expected exit code 0, got %d; stderr: %s", exitCode, stderr.String())
	}

	if !strings.Contains(stdout.String(), "// #region Everything (2)") {
		t.Errorf("expected configured region, got: %s", stdout.String())
	}
}

func TestCLIMissingConfigError(t *testing.T) {
	inputFile := writeSource(t, t.TempDir(), "widget.ts", unorganized)

	var stdout, stderr bytes.Buffer
	exitCode := executeCLI([]string{"--config", "/nonexistent/.regionize.toml", inputFile}, nil, &stdout, &stderr)

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !strings.Contains(stderr.String(), "config file not found") {
		t.Errorf("expected missing config error, got: %s", stderr.String())
	}
}

func TestCLIConfigDiscovery(t *testing.T) {
	tmpDir := t.TempDir()
	writeSource(t, tmpDir, "package.json", "{}")
	writeSource(t, tmpDir, regionize.ConfigFileName, "[regions]\nadd_row_number_in_region_name = false\n")
	inputFile := writeSource(t, filepath.Join(tmpDir, "src"), "widget.ts", unorganized)

	var stdout, stderr bytes.Buffer
	exitCode := executeCLI([]string{"--verbose", inputFile}, nil, &stdout, &stderr)

	if exitCode != 0 {
		t.Errorf("expected exit code 0, got %d; stderr: %s", exitCode, stderr.String())
	}

	if !strings.Contains(stdout.String(), "// #region Private Properties\n") {
		t.Errorf("expected discovered config to drop counts, got: %s", stdout.String())
	}
	if !strings.Contains(stderr.String(), "config: "+filepath.Join(tmpDir, regionize.ConfigFileName)) {
		t.Errorf("expected verbose output to name the config, got: %s", stderr.String())
	}
}

func TestCLINoRegionsFlag(t *testing.T) {
	inputFile := writeSource(t, t.TempDir(), "widget.ts", unorganized)

	var stdout, stderr bytes.Buffer
	exitCode := executeCLI([]string{"--no-regions", inputFile}, nil, &stdout, &stderr)

	if exitCode != 0 {
		t.Errorf("expected exit code 0, got %d; stderr: %s", exitCode, stderr.String())
	}

	expected := "class Widget {\n  private count = 0;\n\n  public render() {}\n}\n"
	if stdout.String() != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, stdout.String())
	}
}

func TestCLIStdin(t *testing.T) {
	t.Run("typescript by default", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		exitCode := executeCLI([]string{"-"}, strings.NewReader(unorganized), &stdout, &stderr)

		if exitCode != 0 {
			t.Errorf("expected exit code 0, got %d; stderr: %s", exitCode, stderr.String())
		}
		if !strings.Contains(stdout.String(), "// #region Public Methods (1)") {
			t.Errorf("expected organized output, got: %s", stdout.String())
		}
	})

	t.Run("go with --lang", func(t *testing.T) {
		src := "package p\n\ntype Store interface {\n\tPut() error\n\tGet() error\n}\n"

		var stdout, stderr bytes.Buffer
		exitCode := executeCLI([]string{"--lang", "go", "-"}, strings.NewReader(src), &stdout, &stderr)

		if exitCode != 0 {
			t.Errorf("expected exit code 0, got %d; stderr: %s", exitCode, stderr.String())
		}
		if !strings.Contains(stdout.String(), "\t// #region Public Methods (2)") {
			t.Errorf("expected organized Go output, got: %s", stdout.String())
		}
	})

	t.Run("unknown language", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		exitCode := executeCLI([]string{"--lang", "cobol", "-"}, strings.NewReader(""), &stdout, &stderr)

		if exitCode != 1 {
			t.Errorf("expected exit code 1, got %d", exitCode)
		}
	})
}

func TestCLINoFiles(t *testing.T) {
	var stdout, stderr bytes.Buffer
	exitCode := executeCLI([]string{t.TempDir()}, nil, &stdout, &stderr)

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !strings.Contains(stderr.String(), "no TypeScript or Go files found") {
		t.Errorf("expected no files error, got: %s", stderr.String())
	}
}

func TestCLIListMemberTypes(t *testing.T) {
	var stdout, stderr bytes.Buffer
	exitCode := executeCLI([]string{"--list-member-types"}, nil, &stdout, &stderr)

	if exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}

	output := stdout.String()
	for _, name := range []string{"privateStaticConstProperties", "constructors", "publicGettersAndSetters", "privateAbstractMethods"} {
		if !strings.Contains(output, "  "+name+"\n") {
			t.Errorf("expected %s in output, got: %s", name, output)
		}
	}
}

func TestCLIInitCreatesConfig(t *testing.T) {
	for _, tt := range []struct {
		args []string
		file string
		want string
	}{
		{[]string{"--init"}, regionize.ConfigFileName, "[regions]"},
		{[]string{"--init", "--init-format", "yaml"}, regionize.YAMLConfigFileName, "regions:"},
	} {
		t.Run(tt.file, func(t *testing.T) {
			tmpDir := t.TempDir()
			t.Chdir(tmpDir)

			var stdout, stderr bytes.Buffer
			exitCode := executeCLI(tt.args, nil, &stdout, &stderr)

			if exitCode != 0 {
				t.Errorf("expected exit code 0, got %d; stderr: %s", exitCode, stderr.String())
			}

			content, err := os.ReadFile(filepath.Join(tmpDir, tt.file))
			if err != nil {
				t.Fatalf("expected %s to be created: %v", tt.file, err)
			}

			if !strings.Contains(string(content), tt.want) {
				t.Errorf("expected config to contain %q, got:\n%s", tt.want, content)
			}

			if _, err := regionize.LoadConfig(filepath.Join(tmpDir, tt.file)); err != nil {
				t.Errorf("expected written config to load: %v", err)
			}
		})
	}
}

func TestCLIInitFailsIfExists(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	writeSource(t, tmpDir, regionize.ConfigFileName, "existing")

	var stdout, stderr bytes.Buffer
	exitCode := executeCLI([]string{"--init"}, nil, &stdout, &stderr)

	if exitCode != 1 {
		t.Errorf("expected exit code 1 when config exists, got %d", exitCode)
	}

	if !strings.Contains(stderr.String(), "already exists") {
		t.Errorf("expected error about existing file, got: %s", stderr.String())
	}
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}

	return path
}

func TestCLICheckVerboseExplains(t *testing.T) {
	inputFile := writeSource(t, t.TempDir(), "widget.ts", unorganized)

	var stdout, stderr bytes.Buffer
	exitCode := executeCLI([]string{"--check", "--verbose", inputFile}, nil, &stdout, &stderr)

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}

	if !strings.Contains(stderr.String(), `class Widget: "Public Methods" at position 1, expected 2`) {
		t.Errorf("expected misplaced region to be explained, got: %s", stderr.String())
	}
}
