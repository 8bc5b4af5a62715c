package until

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// receiveContents reads from out until want arrives or the timeout passes.
// Writers truncate before writing, so partial contents may be seen first.
func receiveContents(t *testing.T, out <-chan []byte, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case data, ok := <-out:
			if !ok {
				t.Fatalf("channel closed before %q arrived", want)
			}
			if string(data) == want {
				return
			}
		case <-deadline:
			t.Fatalf("timeout waiting for %q", want)
		}
	}
}

func TestFileWatcher_EmitsInitialContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.txt")
	if err := os.WriteFile(path, []byte("initial"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	out, err := NewFileWatcher(path).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	select {
	case data := <-out:
		if string(data) != "initial" {
			t.Errorf("expected 'initial', got %q", string(data))
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for initial contents")
	}
}

func TestFileWatcher_EmitsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.txt")
	if err := os.WriteFile(path, []byte("initial"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out, err := NewFileWatcher(path).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	receiveContents(t, out, "initial", 100*time.Millisecond)

	if err := os.WriteFile(path, []byte("updated"), 0o600); err != nil {
		t.Fatalf("failed to update file: %v", err)
	}
	receiveContents(t, out, "updated", time.Second)
}

func TestFileWatcher_FollowsRenameReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.txt")
	if err := os.WriteFile(path, []byte("v1"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out, err := NewFileWatcher(path).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	receiveContents(t, out, "v1", 100*time.Millisecond)

	tmp := filepath.Join(dir, "config.txt.tmp")
	if err := os.WriteFile(tmp, []byte("v2"), 0o600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("failed to rename: %v", err)
	}
	receiveContents(t, out, "v2", time.Second)
}

func TestFileWatcher_WaitsForMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "later.txt")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out, err := NewFileWatcher(path).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("created"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	receiveContents(t, out, "created", time.Second)
}

func TestFileWatcher_ErrorOnMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "config.txt")

	if _, err := NewFileWatcher(path).Watch(context.Background()); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestFileWatcher_ClosesOnContextCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.txt")
	if err := os.WriteFile(path, []byte("initial"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	out, err := NewFileWatcher(path).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	receiveContents(t, out, "initial", 100*time.Millisecond)

	cancel()

	select {
	case _, ok := <-out:
		if ok {
			t.Error("expected channel to be closed")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for channel close")
	}
}

func TestFileWatcher_Path(t *testing.T) {
	if p := NewFileWatcher("/etc/../etc/app.yaml").Path(); p != "/etc/app.yaml" {
		t.Errorf("expected cleaned path, got %q", p)
	}
}

func writeTempFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
