package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDelta(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// runCommand executes the root command with stdout captured. A pipe is
// not a terminal, so output is always the compact form.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	old := os.Stdout
	os.Stdout = w
	rootCmd.SetArgs(args)
	runErr := rootCmd.Execute()
	w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("read output: %v", err)
	}
	r.Close()
	return buf.String(), runErr
}

func TestCatPrintsPlainText(t *testing.T) {
	dir := t.TempDir()
	doc := writeDelta(t, dir, "doc.json",
		`[{"insert":"Hello "},{"insert":"world","attributes":{"bold":true}},{"insert":"\n"}]`)

	out, err := runCommand(t, "cat", doc)
	if err != nil {
		t.Fatalf("cat: %v", err)
	}
	if got, want := out, "Hello world\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestCatReadsStdin(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	if _, err := w.WriteString(`[{"insert":"from stdin\n"}]`); err != nil {
		t.Fatalf("write stdin: %v", err)
	}
	w.Close()
	old := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = old }()

	out, err := runCommand(t, "cat", "-")
	if err != nil {
		t.Fatalf("cat -: %v", err)
	}
	if got, want := out, "from stdin\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestCatRejectsMalformedInput(t *testing.T) {
	dir := t.TempDir()
	bad := writeDelta(t, dir, "bad.json", `{"insert":"not an array"}`)

	_, err := runCommand(t, "cat", bad)
	if err == nil {
		t.Fatal("expected error for malformed input")
	}
	if !strings.Contains(err.Error(), "bad.json") {
		t.Errorf("error %q does not name the input file", err)
	}
}

func TestFmtNormalizes(t *testing.T) {
	dir := t.TempDir()
	in := writeDelta(t, dir, "split.json", `[{"insert":"He"},{"insert":"llo\n"}]`)

	out, err := runCommand(t, "fmt", in)
	if err != nil {
		t.Fatalf("fmt: %v", err)
	}
	if got, want := strings.TrimSpace(out), `[{"insert":"Hello\n"}]`; got != want {
		t.Errorf("output = %s, want %s", got, want)
	}
}

func TestComposeCombinesChanges(t *testing.T) {
	dir := t.TempDir()
	first := writeDelta(t, dir, "first.json", `[{"insert":"Hello"}]`)
	second := writeDelta(t, dir, "second.json", `[{"retain":5},{"insert":"!"}]`)

	out, err := runCommand(t, "compose", first, second)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if got, want := strings.TrimSpace(out), `[{"insert":"Hello!"}]`; got != want {
		t.Errorf("output = %s, want %s", got, want)
	}
}

func TestDiffFindsMinimalChange(t *testing.T) {
	dir := t.TempDir()
	oldDoc := writeDelta(t, dir, "old.json", `[{"insert":"cat\n"}]`)
	newDoc := writeDelta(t, dir, "new.json", `[{"insert":"cart\n"}]`)

	out, err := runCommand(t, "diff", oldDoc, newDoc)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if got, want := strings.TrimSpace(out), `[{"retain":2},{"insert":"r"}]`; got != want {
		t.Errorf("output = %s, want %s", got, want)
	}
}

func TestTransformHonorsPriority(t *testing.T) {
	t.Cleanup(func() { transformPriority = false })
	dir := t.TempDir()
	applied := writeDelta(t, dir, "applied.json", `[{"insert":"A"}]`)
	incoming := writeDelta(t, dir, "incoming.json", `[{"insert":"B"}]`)

	out, err := runCommand(t, "transform", applied, incoming)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if got, want := strings.TrimSpace(out), `[{"insert":"B"}]`; got != want {
		t.Errorf("output = %s, want %s", got, want)
	}

	out, err = runCommand(t, "transform", "--priority", applied, incoming)
	if err != nil {
		t.Fatalf("transform --priority: %v", err)
	}
	if got, want := strings.TrimSpace(out), `[{"retain":1},{"insert":"B"}]`; got != want {
		t.Errorf("output = %s, want %s", got, want)
	}
}

func TestInvertUndoesChange(t *testing.T) {
	dir := t.TempDir()
	change := writeDelta(t, dir, "change.json", `[{"retain":1},{"delete":2}]`)
	base := writeDelta(t, dir, "base.json", `[{"insert":"abc"}]`)

	out, err := runCommand(t, "invert", change, base)
	if err != nil {
		t.Fatalf("invert: %v", err)
	}
	if got, want := strings.TrimSpace(out), `[{"retain":1},{"insert":"bc"}]`; got != want {
		t.Errorf("output = %s, want %s", got, want)
	}
}

func TestLintReportsShape(t *testing.T) {
	dir := t.TempDir()
	doc := writeDelta(t, dir, "doc.json", `[{"insert":"hello world\n"}]`)

	out, err := runCommand(t, "lint", doc)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if strings.Contains(out, "not in canonical form") {
		t.Errorf("canonical document flagged as non-canonical:\n%s", out)
	}
	for _, want := range []string{"length:    12", "lines:     1", "words:     2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLintFlagsNonCanonicalForm(t *testing.T) {
	dir := t.TempDir()
	doc := writeDelta(t, dir, "doc.json", `[{"insert":"hi"}]`)

	out, err := runCommand(t, "lint", doc)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if !strings.Contains(out, "not in canonical form") {
		t.Errorf("missing terminator not flagged:\n%s", out)
	}
}

func TestLintRejectsChangeDeltas(t *testing.T) {
	dir := t.TempDir()
	change := writeDelta(t, dir, "change.json", `[{"retain":3}]`)

	if _, err := runCommand(t, "lint", change); err == nil {
		t.Fatal("expected error for a delta with retains")
	}
}
