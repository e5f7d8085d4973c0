package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// UpdateEnv, when set, makes Golden rewrite testdata files instead of comparing.
const UpdateEnv = "GOLDEN_UPDATE"

// Golden compares got with testdata/<name>.golden and reports the first
// differing line.
func Golden(t *testing.T, name string, got []byte) {
	t.Helper()

	path := filepath.Join("testdata", name+".golden")

	if os.Getenv(UpdateEnv) != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("create testdata: %v", err)
		}
		if err := os.WriteFile(path, got, 0644); err != nil {
			t.Fatalf("update %s: %v", path, err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v (run with %s=1 to create it)", path, err, UpdateEnv)
	}
	if string(got) == string(want) {
		return
	}

	wantLines := strings.Split(string(want), "\n")
	gotLines := strings.Split(string(got), "\n")
	for i := 0; i < max(len(wantLines), len(gotLines)); i++ {
		var w, g string
		if i < len(wantLines) {
			w = wantLines[i]
		}
		if i < len(gotLines) {
			g = gotLines[i]
		}
		if w != g {
			t.Errorf("%s: line %d differs\nwant: %q\ngot:  %q", path, i+1, w, g)
			return
		}
	}
}

// GoldenString is like Golden but takes a string.
func GoldenString(t *testing.T, name string, got string) {
	t.Helper()
	Golden(t, name, []byte(got))
}
