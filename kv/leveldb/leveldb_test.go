package leveldb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mchtech/webcache/kv/kvtest"
)

func TestLevelDBStore(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "webcache-leveldb")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(tempDir)

	store, err := New(filepath.Join(tempDir, "db"))
	if err != nil {
		t.Fatalf("New leveldb store: %v", err)
	}

	kvtest.Exercise(t, store)
}
