package logostore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveWritesFileAndReturnsURL(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "http://localhost:8080/")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	url, err := store.Save(context.Background(), "image/png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost:8080/uploads/") {
		t.Fatalf("unexpected url %q", url)
	}
	if !strings.HasSuffix(url, ".png") {
		t.Fatalf("expected .png suffix, got %q", url)
	}

	name := url[strings.LastIndex(url, "/")+1:]
	data, err := os.ReadFile(filepath.Join(store.Dir(), name))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("content mismatch: %q", data)
	}
}

func TestSaveRejectsUnsupportedType(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "http://localhost:8080")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	_, err = store.Save(context.Background(), "image/gif", strings.NewReader("gif"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestSaveMintsUniqueNames(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "http://localhost:8080")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ctx := context.Background()
	first, err := store.Save(ctx, "image/jpeg", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	second, err := store.Save(ctx, "image/jpeg", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct urls, got %q twice", first)
	}
}
