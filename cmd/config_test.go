package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/finance/archive"
	"github.com/google/go-cmp/cmp"
	"github.com/mitchellh/go-homedir"
)

func TestLoadConfig(t *testing.T) {
	homedir.DisableCache = true
	home, dir := t.TempDir(), t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("FINBAK_CONFIG_PATH", dir)
	t.Setenv("FINBAK_BOOKS", "/srv/books")
	yaml := "keystore: ~/keys\nmode: raw\niterations: 5\nstyle: light\n"
	if err := os.WriteFile(filepath.Join(dir, ".finbak.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	want := &Config{
		Keystore:   filepath.Join(home, "keys"),
		Books:      "/srv/books",
		Iterations: 5,
		Mode:       archive.Raw,
		Style:      "light",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	homedir.DisableCache = true
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("FINBAK_CONFIG_PATH", "")

	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	want := DefaultConfig()
	want.Keystore = filepath.Join(home, ".finbak", "keys")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_InvalidMode(t *testing.T) {
	t.Setenv("FINBAK_MODE", "zip")
	if _, err := LoadConfig(); err == nil {
		t.Errorf("LoadConfig() with an invalid mode succeeded")
	}
}
