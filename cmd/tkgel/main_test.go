package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestVersion(t *testing.T) {
	out, err := runCmd(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, version) {
		t.Errorf("version output %q missing %q", out, version)
	}
}

func TestInitAndValidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if _, err := runCmd(t, "init", "evokg", "--output", path); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("init did not write the config: %v", err)
	}

	out, err := runCmd(t, "validate", path)
	if err != nil {
		t.Fatalf("validate failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "is valid") {
		t.Errorf("unexpected validate output: %s", out)
	}

	// Refuses to overwrite.
	if _, err := runCmd(t, "init", "evokg", "--output", path); err == nil {
		t.Error("init overwrote an existing config")
	}
}

func TestInitUnknownProfile(t *testing.T) {
	if _, err := runCmd(t, "init", "transe", "--root", t.TempDir()); err == nil {
		t.Error("init accepted an unknown profile")
	}
}

func TestValidateReportsProblems(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "import: [default, evokg]\nevokg:\n  dropout: 3.0\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	out, err := runCmd(t, "validate", path)
	if err == nil {
		t.Fatal("validate passed an invalid config")
	}
	if !strings.Contains(out, "evokg.dropout") {
		t.Errorf("output does not name the bad key: %s", out)
	}
}

func TestConfigGetSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if _, err := runCmd(t, "init", "evokg", "--output", path); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	out, err := runCmd(t, "config", "get", path, "evokg.lr")
	if err != nil {
		t.Fatalf("config get failed: %v", err)
	}
	if !strings.Contains(out, "0.001") {
		t.Errorf("config get output %q missing default lr", out)
	}

	if _, err := runCmd(t, "config", "set", path, "evokg.lr", "0.0005"); err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	out, err = runCmd(t, "config", "get", path, "evokg.lr")
	if err != nil {
		t.Fatalf("config get failed: %v", err)
	}
	if !strings.Contains(out, "0.0005") {
		t.Errorf("config get output %q missing updated lr", out)
	}

	// Type mismatch is rejected.
	if _, err := runCmd(t, "config", "set", path, "evokg.lr", "fast"); err == nil {
		t.Error("config set accepted a string for a float key")
	}
	// Unknown keys need --create.
	if _, err := runCmd(t, "config", "set", path, "evokg.new_knob", "1"); err == nil {
		t.Error("config set created a key without --create")
	}
	if _, err := runCmd(t, "config", "set", path, "evokg.new_knob", "1", "--create"); err != nil {
		t.Errorf("config set --create failed: %v", err)
	}
}

func TestDiff(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	if _, err := runCmd(t, "init", "evokg", "--output", a); err != nil {
		t.Fatalf("init a failed: %v", err)
	}
	if _, err := runCmd(t, "init", "evokg", "--output", b); err != nil {
		t.Fatalf("init b failed: %v", err)
	}
	if _, err := runCmd(t, "config", "set", b, "evokg.lr", "0.01"); err != nil {
		t.Fatalf("config set failed: %v", err)
	}

	out, err := runCmd(t, "diff", a, b)
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	if !strings.Contains(out, "evokg.lr") {
		t.Errorf("diff output %q missing changed key", out)
	}

	out, err = runCmd(t, "diff", a, a)
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	if !strings.Contains(out, "No differences") {
		t.Errorf("self-diff output: %s", out)
	}
}

func TestCheckpointPrune(t *testing.T) {
	root := t.TempDir()
	jobDir := filepath.Join(root, "run")
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for e := 1; e <= 6; e++ {
		name := filepath.Join(jobDir, "checkpoint_0000"+string(rune('0'+e))+".pt")
		if err := os.WriteFile(name, []byte("x"), 0644); err != nil {
			t.Fatalf("writing checkpoint: %v", err)
		}
	}

	out, err := runCmd(t, "checkpoint", "prune", "run", "--root", root, "--every", "0", "--keep", "0")
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if !strings.Contains(out, "Removed 5") {
		t.Errorf("prune output: %s", out)
	}
}
