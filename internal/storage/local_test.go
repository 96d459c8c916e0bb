package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewLocalStorage(t *testing.T) {
	t.Run("creates directory if not exists", func(t *testing.T) {
		dir := filepath.Join(os.TempDir(), "audiosummary_test_"+randomSuffix())
		defer func() { _ = os.RemoveAll(dir) }()

		storage, err := NewLocalStorage(dir)
		if err != nil {
			t.Fatalf("NewLocalStorage() error = %v", err)
		}

		if storage.Dir() != dir {
			t.Errorf("Dir() = %v, want %v", storage.Dir(), dir)
		}

		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("directory not created: %v", err)
		}
		if !info.IsDir() {
			t.Error("expected directory, got file")
		}
	})

	t.Run("uses default directory when empty", func(t *testing.T) {
		storage, err := NewLocalStorage("")
		if err != nil {
			t.Fatalf("NewLocalStorage() error = %v", err)
		}

		expected := filepath.Join(os.TempDir(), "audiosummary")
		if storage.Dir() != expected {
			t.Errorf("Dir() = %v, want %v", storage.Dir(), expected)
		}
	})
}

func TestLocalStorage_Save(t *testing.T) {
	storage := setupTestStorage(t)

	t.Run("saves data under key", func(t *testing.T) {
		ctx := context.Background()

		path, err := storage.Save(ctx, "speech/1-abcd.pb", bytes.NewReader([]byte("record")))
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		if path != filepath.Join(storage.Dir(), "speech", "1-abcd.pb") {
			t.Errorf("unexpected path %s", path)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read saved file: %v", err)
		}
		if string(content) != "record" {
			t.Errorf("got %q, want %q", string(content), "record")
		}
	})

	t.Run("leaves no partial files", func(t *testing.T) {
		ctx := context.Background()
		if _, err := storage.Save(ctx, "clean.pb", strings.NewReader("x")); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		entries, err := os.ReadDir(storage.Dir())
		if err != nil {
			t.Fatalf("ReadDir() error = %v", err)
		}
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), ".partial_") {
				t.Errorf("found leftover temp file %s", e.Name())
			}
		}
	})

	t.Run("rejects keys escaping the root", func(t *testing.T) {
		ctx := context.Background()
		for _, key := range []string{"../outside.pb", "/abs/path.pb", ""} {
			_, err := storage.Save(ctx, key, strings.NewReader("x"))
			if !errors.Is(err, ErrInvalidKey) {
				t.Errorf("Save(%q): expected ErrInvalidKey, got %v", key, err)
			}
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := storage.Save(ctx, "cancelled.pb", bytes.NewReader([]byte("data")))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("reports reader errors", func(t *testing.T) {
		ctx := context.Background()
		_, err := storage.Save(ctx, "broken.pb", &failingReader{})
		if err == nil {
			t.Fatal("expected error from failing reader")
		}
		if _, statErr := os.Stat(filepath.Join(storage.Dir(), "broken.pb")); !os.IsNotExist(statErr) {
			t.Error("expected no file for failed save")
		}
	})
}

func TestLocalStorage_Load(t *testing.T) {
	storage := setupTestStorage(t)
	ctx := context.Background()

	t.Run("loads saved file", func(t *testing.T) {
		path, err := storage.Save(ctx, "load_test.pb", bytes.NewReader([]byte("load data")))
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		reader, err := storage.Load(ctx, path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		defer func() { _ = reader.Close() }()

		content, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("failed to read: %v", err)
		}
		if string(content) != "load data" {
			t.Errorf("got %q, want %q", string(content), "load data")
		}
	})

	t.Run("returns error for non-existent file", func(t *testing.T) {
		_, err := storage.Load(ctx, filepath.Join(storage.Dir(), "missing.pb"))
		if err == nil {
			t.Error("expected error for non-existent file")
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := storage.Load(cctx, "whatever")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("read failed")
}

func setupTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage() error = %v", err)
	}
	return storage
}

func randomSuffix() string {
	return time.Now().Format("20060102150405.000000000")
}
