package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetPathInfo(t *testing.T) {
	full, parent, err := GetPathInfo("a/../b/c.src")
	if err != nil {
		t.Fatalf("GetPathInfo failed: %v", err)
	}
	if !filepath.IsAbs(full) || filepath.Base(full) != "c.src" {
		t.Errorf("fullPath = %q", full)
	}
	if filepath.Base(parent) != "b" {
		t.Errorf("parentDir = %q, want a directory named b", parent)
	}
}

func TestReadSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.src")
	if err := os.WriteFile(path, []byte("int a;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	full, src, err := ReadSource(path)
	if err != nil {
		t.Fatalf("ReadSource failed: %v", err)
	}
	if full != path || src != "int a;\n" {
		t.Errorf("got (%q, %q)", full, src)
	}

	if _, _, err := ReadSource(filepath.Join(t.TempDir(), "missing")); !os.IsNotExist(err) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}

func TestReplaceExt(t *testing.T) {
	tests := map[string]string{
		"prog.src":     "prog.tac",
		"dir/prog":     "dir/prog.tac",
		"a.b/prog.c":   "a.b/prog.tac",
		"/abs/x.y.src": "/abs/x.y.tac",
	}
	for in, want := range tests {
		if got := ReplaceExt(in, ".tac"); got != want {
			t.Errorf("ReplaceExt(%q) = %q, want %q", in, got, want)
		}
	}
}
