package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/orbit-drive/orbit/internal/config"
	"github.com/orbit-drive/orbit/internal/core"
	"github.com/orbit-drive/orbit/internal/settings"
	"github.com/orbit-drive/orbit/internal/view"
)

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer) {
	t.Helper()
	cfg := config.NewAppConfig()
	cfg.Latency = config.LatencyConfig{}

	engine, err := core.NewEngine(context.Background(), core.Options{
		Config:   cfg,
		Settings: settings.New(settings.NewMemoryStore(), nil),
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(func() { engine.Close() })

	var out bytes.Buffer
	return NewShell(engine, &out, nil), &out
}

func TestShell_LoginAndList(t *testing.T) {
	shell, out := newTestShell(t)
	ctx := context.Background()

	if err := shell.Exec(ctx, "login"); err != nil {
		t.Fatalf("login: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Signed in as Demo User <demo@orbit.app> (demo mode)") {
		t.Errorf("missing sign-in line:\n%s", got)
	}
	for _, name := range []string{"Project Proposals", "Q4 Financial Report.pdf", "main_theme.mp3"} {
		if !strings.Contains(got, name) {
			t.Errorf("listing missing %q", name)
		}
	}

	out.Reset()
	if err := shell.Exec(ctx, "ls report"); err != nil {
		t.Fatalf("ls: %v", err)
	}
	got = out.String()
	if !strings.Contains(got, "Q4 Financial Report.pdf") || strings.Contains(got, "Launch_Campaign.jpg") {
		t.Errorf("filtered listing wrong:\n%s", got)
	}
	if shell.engine.SearchTerm() != "" {
		t.Error("ls filter should not change the engine search term")
	}
}

func TestShell_SignedOut(t *testing.T) {
	shell, out := newTestShell(t)
	ctx := context.Background()

	if err := shell.Exec(ctx, "ls"); !errors.Is(err, core.ErrNotSignedIn) {
		t.Errorf("ls err = %v, want ErrNotSignedIn", err)
	}
	if err := shell.Exec(ctx, "whoami"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Not signed in") {
		t.Errorf("whoami output = %q", out.String())
	}
	if got := shell.prompt(); got != "orbit> " {
		t.Errorf("prompt = %q", got)
	}
}

func TestShell_Navigation(t *testing.T) {
	shell, out := newTestShell(t)
	ctx := context.Background()

	if err := shell.Exec(ctx, "login"); err != nil {
		t.Fatal(err)
	}
	if err := shell.Exec(ctx, "cd 1"); err != nil {
		t.Fatalf("cd 1: %v", err)
	}
	if got := shell.prompt(); got != "orbit:Project Proposals> " {
		t.Errorf("prompt = %q", got)
	}

	out.Reset()
	shell.Exec(ctx, "pwd")
	if got := strings.TrimSpace(out.String()); got != "My Drive / Project Proposals" {
		t.Errorf("pwd = %q", got)
	}

	if err := shell.Exec(ctx, "cd 3"); err == nil {
		t.Error("cd into a file should fail")
	}
	if err := shell.Exec(ctx, "cd 99"); err == nil {
		t.Error("cd into an unknown id should fail")
	}

	if err := shell.Exec(ctx, "cd .."); err != nil {
		t.Fatalf("cd ..: %v", err)
	}
	out.Reset()
	if err := shell.Exec(ctx, "back"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Already at My Drive") {
		t.Errorf("back at root output = %q", out.String())
	}
}

func TestShell_Upload(t *testing.T) {
	shell, out := newTestShell(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello orbit\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := shell.Exec(ctx, "upload "+path); !errors.Is(err, core.ErrNotSignedIn) {
		t.Errorf("upload before login err = %v", err)
	}

	shell.Exec(ctx, "login")
	out.Reset()
	if err := shell.Exec(ctx, "upload "+path); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.Contains(out.String(), "Uploaded notes.txt (0.00 MB)") {
		t.Errorf("upload output = %q", out.String())
	}

	files := shell.engine.List()
	if len(files) != 7 || files[0].Name != "notes.txt" {
		t.Errorf("first entry = %+v, want notes.txt prepended", files[0])
	}

	out.Reset()
	shell.Exec(ctx, "uploads")
	if !strings.Contains(out.String(), "completed") || !strings.Contains(out.String(), "notes.txt") {
		t.Errorf("uploads output = %q", out.String())
	}

	if err := shell.Exec(ctx, "upload "+t.TempDir()); err == nil {
		t.Error("uploading a directory should fail")
	}
}

func TestShell_SearchAndView(t *testing.T) {
	shell, out := newTestShell(t)
	ctx := context.Background()
	shell.Exec(ctx, "login")

	out.Reset()
	if err := shell.Exec(ctx, "search zzz"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), view.EmptyMessage) {
		t.Errorf("empty search output = %q", out.String())
	}

	shell.Exec(ctx, "search")
	if shell.engine.SearchTerm() != "" {
		t.Errorf("search term = %q after clearing", shell.engine.SearchTerm())
	}

	if err := shell.Exec(ctx, "view list"); err != nil {
		t.Fatal(err)
	}
	if shell.engine.ViewMode() != view.ModeList {
		t.Errorf("view mode = %s", shell.engine.ViewMode())
	}
	if err := shell.Exec(ctx, "view tiles"); err == nil {
		t.Error("invalid view mode should fail")
	}
}

func TestShell_Run(t *testing.T) {
	shell, out := newTestShell(t)

	script := strings.Join([]string{"login", "bogus", "logout", "exit", "whoami"}, "\n")
	if err := shell.Run(context.Background(), strings.NewReader(script)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, `Error: unknown command "bogus"`) {
		t.Errorf("missing unknown command error:\n%s", got)
	}
	if !strings.Contains(got, "Signed out") {
		t.Errorf("missing logout line:\n%s", got)
	}
	if strings.Contains(got, "Not signed in") {
		t.Error("commands after exit should not run")
	}
	if shell.engine.Authenticated() {
		t.Error("engine still authenticated after logout")
	}
}

func TestDescribeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	desc, err := describeFile(path)
	if err != nil {
		t.Fatalf("describeFile: %v", err)
	}
	if desc.Name != "report.pdf" || desc.LocalPath != path {
		t.Errorf("desc = %+v", desc)
	}
	if desc.DeclaredType != "application/pdf" {
		t.Errorf("DeclaredType = %q, want application/pdf", desc.DeclaredType)
	}

	if _, err := describeFile(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
