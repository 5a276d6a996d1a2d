package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gdmirror/gdmirror/internal/utils"
)

func TestConfigPath(t *testing.T) {
	if got := ConfigPath("source"); got != "config_source.json" {
		t.Errorf("ConfigPath(source) = %q", got)
	}
	if got := ConfigPath("target"); got != "config_target.json" {
		t.Errorf("ConfigPath(target) = %q", got)
	}
}

func TestMarshalAccountConfigRoundTrip(t *testing.T) {
	cfg := &AccountConfig{
		ClientID:     "id.apps.googleusercontent.com",
		ClientSecret: "secret",
		RefreshToken: "1//refresh",
		Scopes:       []string{utils.ScopeFull},
	}

	data, err := MarshalAccountConfig(cfg)
	if err != nil {
		t.Fatalf("MarshalAccountConfig() error = %v", err)
	}
	if data[len(data)-1] != '\n' {
		t.Error("marshalled config must end with a newline")
	}

	var decoded AccountConfig
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.ClientID != cfg.ClientID || decoded.RefreshToken != cfg.RefreshToken {
		t.Errorf("round trip = %+v, want %+v", decoded, cfg)
	}
}

func TestLoadAccountConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config_source.json")
	body := `{"client_id": "id", "client_secret": "secret", "refresh_token": "tok"}`
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := loadAccountConfig(path)
	if err != nil {
		t.Fatalf("loadAccountConfig() error = %v", err)
	}
	if cfg.ClientID != "id" || cfg.ClientSecret != "secret" || cfg.RefreshToken != "tok" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadAccountConfigRejectsIncomplete(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing client id", `{"client_secret": "secret"}`},
		{"missing client secret", `{"client_id": "id"}`},
		{"empty object", `{}`},
		{"malformed json", `{not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(tt.body), 0600); err != nil {
				t.Fatalf("writing config: %v", err)
			}
			if _, err := loadAccountConfig(path); err == nil {
				t.Error("loadAccountConfig() error = nil, want error")
			}
		})
	}
}

func TestSaveAccountConfigPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config_target.json")
	cfg := &AccountConfig{ClientID: "id", ClientSecret: "secret"}

	if err := saveAccountConfig(path, cfg); err != nil {
		t.Fatalf("saveAccountConfig() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file mode = %o, want 0600 (credentials stay private)", perm)
	}
}

func TestRootFolder(t *testing.T) {
	s := &Session{Key: "source"}
	root := s.RootFolder()
	if root.ID != "root" {
		t.Errorf("root ID = %q, want root", root.ID)
	}
	if root.MimeType != utils.MimeTypeFolder {
		t.Errorf("root MimeType = %q", root.MimeType)
	}
}
