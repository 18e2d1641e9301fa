package mediacache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEvictionKeepsBoundedSize(t *testing.T) {
	c := New()
	dir := t.TempDir()
	base := time.Now()
	c.now = func() time.Time { return base }

	for i := 0; i < MaxEntries+2; i++ {
		key := string(rune('a' + i))
		path := filepath.Join(dir, key)
		if err := writeEmpty(path); err != nil {
			t.Fatal(err)
		}
		c.Insert(key, path)
		base = base.Add(time.Second)
		c.now = func() time.Time { return base }
	}

	if c.Len() > MaxEntries {
		t.Fatalf("cache len = %d, want <= %d", c.Len(), MaxEntries)
	}
}

func TestEvictionExpiresByTTL(t *testing.T) {
	c := New()
	dir := t.TempDir()
	base := time.Now()
	c.now = func() time.Time { return base }

	path := filepath.Join(dir, "x")
	if err := writeEmpty(path); err != nil {
		t.Fatal(err)
	}
	c.Insert("x", path)

	base = base.Add(TTL + time.Second)
	c.now = func() time.Time { return base }

	if _, ok := c.Get("x"); ok {
		t.Fatal("expired entry should not be returned")
	}
}

func TestRecordEvictionExtractsSHAPrefix(t *testing.T) {
	c := New()
	c.evicted = nil
	c.recordEviction("deadbeef:jpg")
	c.recordEviction("cafebabe")
	got := c.DrainEvictions()
	if len(got) != 2 || got[0] != "deadbeef" || got[1] != "cafebabe" {
		t.Fatalf("recordEviction produced %v", got)
	}
}

func TestMimeExtensionMapping(t *testing.T) {
	cases := map[string]string{
		"image/jpeg": "jpg",
		"video/mp4":  "mp4",
		"audio/mpeg": "mp3",
		"text/plain": "bin",
	}
	for mime, want := range cases {
		if got := extensionFor(mime); got != want {
			t.Errorf("extensionFor(%q) = %q, want %q", mime, got, want)
		}
	}
}

func writeEmpty(path string) error {
	return os.WriteFile(path, nil, 0o600)
}
