package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PXLTCH/startup-ai/internal/config"
	"github.com/PXLTCH/startup-ai/internal/export"
	"github.com/PXLTCH/startup-ai/internal/logo"
)

// execute runs the root command with args against a fresh flag state and
// returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	rootDir = "."
	forceFlag, providerFlag = false, ""
	addrFlag, sessionFlag = "", ""
	limitFlag, jsonFlag = 20, false
	formatFlag, sourceFlag, outFlag = "md", export.SourceCurrent, "."
	styleFlag, generationFlag, paletteFlag, fontFlag = string(logo.Wordmark), 1, nil, ""
	keepFlag, dryRunFlag = 0, false

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// offlineProject writes a config that needs neither cgo nor a model.
func offlineProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Storage.Driver = "sqlite"
	cfg.Refiner.Provider = "static"
	if err := config.WriteConfig(dir, cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	return dir
}

func TestInitWritesConfigAndGitignore(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("node_modules/"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--dir", dir, "init", "--provider", "static")
	if err != nil {
		t.Fatalf("init: %v\n%s", err, out)
	}

	cfg, err := config.ReadConfig(dir)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.Refiner.Provider != "static" {
		t.Errorf("provider = %q, want static", cfg.Refiner.Provider)
	}

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		t.Fatal(err)
	}
	gi := string(data)
	if !strings.HasPrefix(gi, "node_modules/\n\n# Added by orchestra init\n") {
		t.Errorf(".gitignore header missing:\n%s", gi)
	}
	if !strings.Contains(gi, ".orchestra/log.jsonl") {
		t.Errorf(".gitignore missing runtime entries:\n%s", gi)
	}

	// A second run appends nothing.
	if _, err := execute(t, "--dir", dir, "init", "--force", "--provider", "static"); err != nil {
		t.Fatalf("second init: %v", err)
	}
	again, _ := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if string(again) != gi {
		t.Errorf(".gitignore changed on second init:\n%s", again)
	}
}

func TestInitRejectsUnknownProvider(t *testing.T) {
	if _, err := execute(t, "--dir", t.TempDir(), "init", "--provider", "magic"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestCatalogWithoutConfig(t *testing.T) {
	out, err := execute(t, "--dir", t.TempDir(), "catalog")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	for _, want := range []string{"Vision", "vision.name", "16 questions"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "--dir", dir, "render", "Acme", "Health", "--style", "emblem", "--generation", "2")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, `Emblem logos for "Acme Health", generation 2`) {
		t.Errorf("unexpected header:\n%s", out)
	}

	var files int
	for _, line := range strings.Split(out, "\n") {
		p := strings.TrimSpace(line)
		if !strings.HasSuffix(p, ".svg") {
			continue
		}
		files++
		if _, err := os.Stat(p); err != nil {
			t.Errorf("rendered file missing: %v", err)
		}
		if !strings.Contains(p, "logos_acme_health") {
			t.Errorf("path %s not under the company directory", p)
		}
	}
	if files != logo.VariantsPerRender {
		t.Errorf("rendered %d files, want %d", files, logo.VariantsPerRender)
	}
}

func TestRenderRejectsShortPalette(t *testing.T) {
	if _, err := execute(t, "--dir", t.TempDir(), "render", "Acme", "--palette", "#000000"); err == nil {
		t.Error("expected error for a one-color palette")
	}
}

func TestSessionsAnswersAndExport(t *testing.T) {
	dir := offlineProject(t)
	ctx := context.Background()

	out, err := execute(t, "--dir", dir, "sessions")
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if !strings.Contains(out, "No sessions yet") {
		t.Errorf("empty listing = %q", out)
	}

	a, err := openApp(ctx, dir, true)
	if err != nil {
		t.Fatalf("openApp: %v", err)
	}
	res, err := a.engine.Create(ctx)
	if err != nil {
		t.Fatal(err)
	}
	id := res.SessionID
	if _, err := a.engine.Submit(ctx, id, "Acme Health"); err != nil {
		t.Fatal(err)
	}
	if _, err := a.engine.Confirm(ctx, id, nil); err != nil {
		t.Fatal(err)
	}
	_ = a.Close()

	out, err = execute(t, "--dir", dir, "sessions")
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if !strings.Contains(out, id) || !strings.Contains(out, " 1/16 confirmed") {
		t.Errorf("listing missing session:\n%s", out)
	}

	out, err = execute(t, "--dir", dir, "answers", id)
	if err != nil {
		t.Fatalf("answers: %v", err)
	}
	if !strings.Contains(out, "# Acme Health: Answers Summary") {
		t.Errorf("markdown header missing:\n%s", out)
	}

	exportDir := filepath.Join(dir, "out")
	out, err = execute(t, "--dir", dir, "export", id, "--format", "json", "--out", exportDir)
	if err != nil {
		t.Fatalf("export json: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(exportDir, "answers_acme_health_*.json"))
	if len(matches) != 1 {
		t.Errorf("json export files = %v; output: %s", matches, out)
	}

	out, err = execute(t, "--dir", dir, "export", id, "--format", "pack")
	if err != nil {
		t.Fatalf("export pack: %v", err)
	}
	if !strings.Contains(out, "founder-pack_acme_health_") {
		t.Errorf("pack path missing:\n%s", out)
	}

	if _, err := execute(t, "--dir", dir, "export", id, "--format", "logos"); err == nil {
		t.Error("expected error exporting logos before any were generated")
	}
	if _, err := execute(t, "--dir", dir, "export", id, "--format", "pdf"); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := execute(t, "--dir", dir, "answers", "missing"); err == nil {
		t.Error("expected error for unknown session")
	}
}

func TestCleanDryRun(t *testing.T) {
	dir := offlineProject(t)

	out, err := execute(t, "--dir", dir, "clean", "--dry-run")
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if !strings.Contains(out, "No assets to clean up.") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, err := execute(t, "--dir", dir, "render", "Acme"); err != nil {
		t.Fatalf("render: %v", err)
	}
	out, err = execute(t, "--dir", dir, "clean", "--dry-run")
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if !strings.Contains(out, "No assets to clean up.") {
		t.Errorf("fresh logos should be kept:\n%s", out)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Storage.Driver = "postgres"
	if err := config.WriteConfig(dir, cfg); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(dir); err == nil {
		t.Error("expected error for unknown storage driver")
	}
}
