package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `default_vault = "personal"

[vaults]
personal = "/home/me/notes"
work = "/home/me/work"

[ui]
accent = "39"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.DefaultVault != "personal" {
		t.Errorf("default_vault = %q", cfg.DefaultVault)
	}
	if len(cfg.Vaults) != 2 || cfg.Vaults["work"] != "/home/me/work" {
		t.Errorf("vaults = %v", cfg.Vaults)
	}
	if cfg.UI.Accent != "39" {
		t.Errorf("accent = %q", cfg.UI.Accent)
	}
}

func TestLoadFromMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("default_vault = [broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestGetVaultPath(t *testing.T) {
	cfg := &Config{
		DefaultVault: "personal",
		Vaults: map[string]string{
			"personal": "/notes",
			"work":     "/work",
		},
	}

	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", "/notes", false},
		{"work", "/work", false},
		{"missing", "", true},
	}
	for _, tt := range tests {
		got, err := cfg.GetVaultPath(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("GetVaultPath(%q) should fail", tt.name)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("GetVaultPath(%q) = %q, %v; want %q", tt.name, got, err, tt.want)
		}
	}
}

func TestGetVaultPathNoDefault(t *testing.T) {
	cfg := &Config{}
	if _, err := cfg.GetVaultPath(""); err == nil {
		t.Error("expected error when no default vault is configured")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.toml")

	cfg := &Config{
		DefaultVault: "personal",
		Vaults:       map[string]string{"personal": "/notes"},
		UI:           UIConfig{CodeTheme: "dracula"},
	}
	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.DefaultVault != "personal" || loaded.Vaults["personal"] != "/notes" {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.UI.CodeTheme != "dracula" {
		t.Errorf("code_theme = %q", loaded.UI.CodeTheme)
	}
}
