package badger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mchtech/webcache/kv/kvtest"
)

func TestBadgerStore(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "webcache-badger")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(tempDir)

	store, err := New(filepath.Join(tempDir, "db"))
	if err != nil {
		t.Fatalf("New badger store: %v", err)
	}

	kvtest.Exercise(t, store)
}
