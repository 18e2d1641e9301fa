package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInitializeSetsDefaults(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if got := GetInt("aead.default-chunk-size"); got != 1<<20 {
		t.Errorf("aead.default-chunk-size = %d, want %d", got, 1<<20)
	}
	if got := GetInt("media-cache.max-entries"); got != 20 {
		t.Errorf("media-cache.max-entries = %d, want 20", got)
	}
	if got := GetDuration("media-cache.ttl").Minutes(); got != 5 {
		t.Errorf("media-cache.ttl = %v minutes, want 5", got)
	}
}

func TestEnvVarOverridesDefault(t *testing.T) {
	t.Setenv("GT_LOCK_TIMEOUT", "30s")
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if got := GetString("lock-timeout"); got != "30s" {
		t.Errorf("lock-timeout = %q, want 30s", got)
	}
	if src := GetValueSource("lock-timeout"); src != SourceEnvVar {
		t.Errorf("GetValueSource(lock-timeout) = %v, want env_var", src)
	}
}

func TestWatchConfigWithoutAConfigFileIsNoop(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	WatchConfig(func() { t.Fatal("onChange should not fire without a config file") })
}

func TestWatchConfigFiresOnEdit(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.Mkdir(filepath.Join(dir, ".goldenthread"), 0o755); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(dir, ".goldenthread", "config.yaml")
	if err := os.WriteFile(configPath, []byte("lock-timeout: 5s\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if v.ConfigFileUsed() != configPath {
		t.Fatalf("ConfigFileUsed() = %q, want %q", v.ConfigFileUsed(), configPath)
	}

	changed := make(chan struct{}, 1)
	WatchConfig(func() { changed <- struct{}{} })

	if err := os.WriteFile(configPath, []byte("lock-timeout: 30s\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
		if got := GetString("lock-timeout"); got != "30s" {
			t.Errorf("lock-timeout after reload = %q, want 30s", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WatchConfig did not fire onChange within 2s")
	}
}
