package diskv

import (
	"os"
	"testing"

	"github.com/mchtech/webcache/kv/kvtest"
)

func TestDiskvStore(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "webcache-diskv")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(tempDir)

	store := New(tempDir)

	kvtest.Exercise(t, store)
}
