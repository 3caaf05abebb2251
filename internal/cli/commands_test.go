package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/orbit-drive/orbit/internal/config"
	"github.com/orbit-drive/orbit/internal/models"
	"github.com/orbit-drive/orbit/internal/settings"
)

func TestRootCommandStructure(t *testing.T) {
	root := NewRootCmd()
	AddCommands(root)

	for _, name := range []string{"shell", "ls", "config", "version"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
			continue
		}
		if cmd.Short == "" {
			t.Errorf("%s: Short description is empty", name)
		}
	}

	for _, flag := range []string{"config", "client-id", "api-key", "verbose", "debug"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestConfigCommandStructure(t *testing.T) {
	cmd := newConfigCmd()
	want := map[string]bool{"show": false, "set": false, "path": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
		if sub.RunE == nil {
			t.Errorf("config %s: RunE is nil", sub.Name())
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("config %s not registered", name)
		}
	}
}

// withTestConfig points the package globals at a temporary config.
func withTestConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	dir := t.TempDir()

	cfg := config.NewAppConfig()
	cfg.Latency = config.LatencyConfig{}
	cfg.Settings.Path = filepath.Join(dir, "settings.json")

	prevCfg, prevFile := appConfig, cfgFile
	appConfig = cfg
	cfgFile = filepath.Join(dir, "orbit.ini")
	t.Cleanup(func() {
		appConfig, cfgFile = prevCfg, prevFile
	})
	return cfg
}

func TestConfigSet_SavesConnectionRecord(t *testing.T) {
	cfg := withTestConfig(t)

	cmd := newConfigSetCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--client-id", "  AKIAEXAMPLE ", "--api-key", "secret"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config set: %v", err)
	}
	if !strings.Contains(out.String(), "Connection record saved") {
		t.Errorf("output = %q", out.String())
	}

	s := settings.New(settings.NewFileStore(cfg.Settings.Path), nil)
	defer s.Close()
	creds, err := s.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if creds.ClientID != "AKIAEXAMPLE" || creds.APIKey != "secret" {
		t.Errorf("stored = %+v", creds)
	}
}

func TestConfigSet_AppSettings(t *testing.T) {
	withTestConfig(t)

	cmd := newConfigSetCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--policy", "QUEUE"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config set: %v", err)
	}

	loaded, err := config.LoadAppConfig(cfgFile)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Upload.Policy != "queue" {
		t.Errorf("policy = %q, want queue", loaded.Upload.Policy)
	}

	cmd = newConfigSetCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--provider", "s3"})
	if err := cmd.Execute(); err == nil {
		t.Error("s3 without a bucket should fail validation")
	}
}

func TestConfigShow_MasksKey(t *testing.T) {
	cfg := withTestConfig(t)

	s := settings.New(settings.NewFileStore(cfg.Settings.Path), nil)
	if err := s.Save(context.Background(), models.Credentials{ClientID: "client-1234", APIKey: "supersecretkey"}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	cmd := newConfigShowCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out.String(), "supersecretkey") {
		t.Errorf("API key printed in clear:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Upload policy:   reject") {
		t.Errorf("missing app settings:\n%s", out.String())
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := newVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "orbit v") {
		t.Errorf("version output = %q", out.String())
	}
}
