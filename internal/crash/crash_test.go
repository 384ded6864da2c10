package crash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeSnap struct {
	data []byte
	err  error
}

func (f fakeSnap) SaveProject() ([]byte, error) { return f.data, f.err }

func TestRecoverWritesReportAndSnapshot(t *testing.T) {
	dir := t.TempDir()
	exitCode := -1
	exitFn = func(code int) { exitCode = code }
	defer func() { exitFn = os.Exit }()

	func() {
		defer Recover(dir, fakeSnap{data: []byte(`{"version":1}`)})
		panic("boom")
	}()

	if exitCode != 2 {
		t.Fatalf("exit code = %d, want 2", exitCode)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var haveReport, haveSnapshot bool
	for _, e := range entries {
		switch {
		case strings.HasPrefix(e.Name(), "crash-"):
			haveReport = true
			data, err := os.ReadFile(filepath.Join(dir, e.Name()))
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if !strings.Contains(string(data), "Panic: boom") {
				t.Fatalf("report missing panic value:\n%s", data)
			}
		case strings.HasPrefix(e.Name(), "emergency-"):
			haveSnapshot = true
		}
	}
	if !haveReport || !haveSnapshot {
		t.Fatalf("report=%v snapshot=%v, want both", haveReport, haveSnapshot)
	}
}

func TestRecoverNoPanicIsNoop(t *testing.T) {
	exitFn = func(int) { t.Fatal("exit called without a panic") }
	defer func() { exitFn = os.Exit }()

	func() {
		defer Recover(t.TempDir(), nil)
	}()
}
