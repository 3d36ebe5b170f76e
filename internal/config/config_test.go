package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadClient(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		check   func(t *testing.T, cfg Client)
		wantErr bool
	}{
		{
			name: "full config",
			yaml: "server_url: https://sync.example.com\ndata_dir: /tmp/tk\ndebounce_ms: 250\ndisable_keyring: true\n",
			check: func(t *testing.T, cfg Client) {
				if cfg.ServerURL != "https://sync.example.com" {
					t.Errorf("server_url = %q", cfg.ServerURL)
				}
				if cfg.Debounce() != 250*time.Millisecond {
					t.Errorf("debounce = %v", cfg.Debounce())
				}
				if !cfg.DisableKeyring {
					t.Error("disable_keyring not read")
				}
			},
		},
		{
			name: "partial config keeps defaults",
			yaml: "data_dir: /tmp/tk\n",
			check: func(t *testing.T, cfg Client) {
				if cfg.ServerURL != DefaultClient().ServerURL {
					t.Errorf("server_url = %q", cfg.ServerURL)
				}
				if cfg.DebounceMs != 500 {
					t.Errorf("debounce_ms = %d", cfg.DebounceMs)
				}
			},
		},
		{name: "invalid url", yaml: "server_url: not a url\n", wantErr: true},
		{name: "negative debounce", yaml: "debounce_ms: -5\n", wantErr: true},
		{name: "broken yaml", yaml: "server_url: [\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadClient(writeConfig(t, tt.yaml))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadClientExplicitMissingFile(t *testing.T) {
	if _, err := LoadClient(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("explicitly named missing file should be an error")
	}
}

func TestLoadServer(t *testing.T) {
	path := writeConfig(t, "addr: \":8080\"\ndb_path: /tmp/tk.db\nlog_file: /tmp/tk.log\n")
	cfg, err := LoadServer(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.DBPath != "/tmp/tk.db" || cfg.LogFile != "/tmp/tk.log" {
		t.Errorf("cfg = %+v", cfg)
	}

	// Clearing a required field fails validation.
	if _, err := LoadServer(writeConfig(t, "addr: \"\"\n")); err == nil {
		t.Error("empty addr accepted")
	}
}

func TestDefaults(t *testing.T) {
	client := DefaultClient()
	if client.Debounce() != 500*time.Millisecond {
		t.Errorf("default debounce = %v", client.Debounce())
	}
	server := DefaultServer()
	if server.Addr == "" || server.DBPath == "" {
		t.Errorf("server defaults incomplete: %+v", server)
	}
}
