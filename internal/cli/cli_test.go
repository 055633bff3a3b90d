package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vastmap/pkg/errors"
	"github.com/matzehuels/vastmap/pkg/tmap"
)

const testVAST = `{
  "format": "vast",
  "version": "1.0.0",
  "vast": {
    "name": "app",
    "size": 100,
    "children": [
      {"name": "main.o", "type": "object", "size": 30},
      {"name": "lib", "children": [
        {"name": "a.o", "size": 20},
        {"name": "b.o", "size": 10}
      ]}
    ]
  }
}`

// setup runs the test in a temporary directory holding vast.json and
// captures status output.
func setup(t *testing.T) (dir string, status *bytes.Buffer) {
	t.Helper()
	dir = t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile("vast.json", []byte(testVAST), 0644); err != nil {
		t.Fatal(err)
	}

	status = &bytes.Buffer{}
	prev := statusOut
	statusOut = status
	t.Cleanup(func() { statusOut = prev })
	return dir, status
}

// execute runs the CLI with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeLogged(t, io.Discard, args...)
}

// executeLogged is execute with the CLI logger writing to logs at info level.
func executeLogged(t *testing.T, logs io.Writer, args ...string) (string, error) {
	t.Helper()
	c := New(logs, log.InfoLevel)
	root := c.RootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestLayoutStdout(t *testing.T) {
	setup(t)

	out, err := execute(t, "layout", "vast.json")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}

	doc, err := tmap.Unmarshal([]byte(out))
	if err != nil {
		t.Fatalf("stdout is not a TMAP document: %v", err)
	}
	if doc.Source != "vast.json" {
		t.Errorf("Source = %q, want %q", doc.Source, "vast.json")
	}
	if got := len(doc.Treemap.Children); got != 2 {
		t.Errorf("root children = %d, want 2", got)
	}
	if doc.Treemap.X1 != 940 || doc.Treemap.Y1 != 450 {
		t.Errorf("root = %vx%v, want 940x450", doc.Treemap.X1, doc.Treemap.Y1)
	}
}

func TestRootDefaultsToLayout(t *testing.T) {
	setup(t)

	out, err := execute(t, "--width", "200", "--height", "100")
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	doc, err := tmap.Unmarshal([]byte(out))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Treemap.X1 != 200 || doc.Treemap.Y1 != 100 {
		t.Errorf("root = %vx%v, want 200x100", doc.Treemap.X1, doc.Treemap.Y1)
	}
}

func TestLayoutFiles(t *testing.T) {
	dir, status := setup(t)

	out, err := execute(t, "layout", "-o", "out.json", "--svg", "out.svg")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if out != "" {
		t.Errorf("stdout should be empty with -o, got %q", out)
	}

	if _, err := tmap.ReadFile(filepath.Join(dir, "out.json")); err != nil {
		t.Errorf("out.json: %v", err)
	}
	svg, err := os.ReadFile(filepath.Join(dir, "out.svg"))
	if err != nil {
		t.Fatalf("out.svg: %v", err)
	}
	if !bytes.HasPrefix(svg, []byte("<svg")) {
		t.Error("out.svg is not an SVG")
	}
	if !strings.Contains(status.String(), "out.json") {
		t.Errorf("status should mention the output file, got %q", status.String())
	}
}

func TestLayoutSVGRequiresRenderer(t *testing.T) {
	setup(t)

	_, err := execute(t, "layout", "--svg", "out.svg", "--render=false")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestLayoutErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		data  string
		code  errors.Code
	}{
		{"missing file", "nope.json", "", errors.ErrCodeIO},
		{"not json", "bad.json", "{", errors.ErrCodeParse},
		{"wrong format", "tmap.json", `{"format":"tmap","version":"1.0.0","vast":{"name":"x"}}`, errors.ErrCodeInvalidFormat},
		{"wrong version", "old.json", `{"format":"vast","version":"0.1.0","vast":{"name":"x"}}`, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t)
			if tt.data != "" {
				if err := os.WriteFile(tt.input, []byte(tt.data), 0644); err != nil {
					t.Fatal(err)
				}
			}

			_, err := execute(t, "layout", tt.input)
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err: %v)", got, tt.code, err)
			}
		})
	}
}

func TestLayoutPublish(t *testing.T) {
	dir, status := setup(t)

	_, err := execute(t, "layout", "--publish")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("publish without store: error = %v, want INVALID_INPUT", err)
	}

	storeDir := filepath.Join(dir, "store")
	if _, err := execute(t, "layout", "--publish", "--store", "file", "--store-dir", storeDir); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !strings.Contains(status.String(), "tmap:") {
		t.Errorf("published key not printed: %q", status.String())
	}
	entries, err := os.ReadDir(storeDir)
	if err != nil || len(entries) == 0 {
		t.Errorf("store directory is empty (err: %v)", err)
	}
}

func TestRender(t *testing.T) {
	dir, _ := setup(t)

	if _, err := execute(t, "layout", "-o", "treemap.json"); err != nil {
		t.Fatalf("layout: %v", err)
	}
	if _, err := execute(t, "render", "treemap.json", "--no-labels"); err != nil {
		t.Fatalf("render: %v", err)
	}

	svg, err := os.ReadFile(filepath.Join(dir, "treemap.svg"))
	if err != nil {
		t.Fatalf("treemap.svg: %v", err)
	}
	if got := bytes.Count(svg, []byte("<rect")); got != 3 {
		t.Errorf("rects = %d, want 3", got)
	}
	if bytes.Contains(svg, []byte("<text")) {
		t.Error("--no-labels should drop labels")
	}
}

func TestVersion(t *testing.T) {
	setup(t)
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "version: ") {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestCompletion(t *testing.T) {
	setup(t)
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, "vastmap") {
		t.Error("completion script should mention vastmap")
	}
}
