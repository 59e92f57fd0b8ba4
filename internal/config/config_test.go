// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/kartikk221/application-compiler/internal/issue"
	"github.com/kartikk221/application-compiler/internal/testutil"
	"github.com/kartikk221/application-compiler/pkg/types"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Keyword != "include" {
		t.Errorf("expected default keyword to be include, got %s", cfg.Keyword)
	}

	if cfg.WatchDelay != 250 {
		t.Errorf("expected default watch delay to be 250, got %d", cfg.WatchDelay)
	}

	if cfg.SettleDelay != 50 {
		t.Errorf("expected default settle delay to be 50, got %d", cfg.SettleDelay)
	}

	if cfg.Write.Dir != "" {
		t.Errorf("expected default output dir to be empty, got %q", cfg.Write.Dir)
	}

	if cfg.Write.Name != "" {
		t.Errorf("expected default output name to be empty, got %q", cfg.Write.Name)
	}

	if cfg.Write.Delay != 250 {
		t.Errorf("expected default write delay to be 250, got %d", cfg.Write.Delay)
	}

	want := CheckCommand{"node", "--check", "{file}"}
	if len(cfg.Write.Check) != len(want) {
		t.Fatalf("expected default check command %v, got %v", want, cfg.Write.Check)
	}
	for i := range want {
		if cfg.Write.Check[i] != want[i] {
			t.Errorf("check[%d] = %q, want %q", i, cfg.Write.Check[i], want[i])
		}
	}

	if !cfg.Write.RelativeErrors {
		t.Error("expected relative_errors to be true by default")
	}
}

func TestConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG behavior is Linux-specific")
	}

	testXDGPath := "/tmp/test-xdg-config"
	restoreXDG := testutil.MustSetenv(t, "XDG_CONFIG_HOME", testXDGPath)
	defer restoreXDG()

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}

	expected := filepath.Join(testXDGPath, AppName)
	if dir != expected {
		t.Errorf("ConfigDir() = %s, want %s", dir, expected)
	}

	// With XDG_CONFIG_HOME unset, falls back to ~/.config
	restoreXDG()
	restoreUnset := testutil.MustUnsetenv(t, "XDG_CONFIG_HOME")
	defer restoreUnset()

	home := t.TempDir()
	restoreHome := testutil.SetHomeDir(t, home)
	defer restoreHome()

	dir, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	expected = filepath.Join(home, ".config", AppName)
	if dir != expected {
		t.Errorf("ConfigDir() = %s, want %s", dir, expected)
	}
}

func TestConfigDir_Override(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if got != dir {
		t.Errorf("ConfigDir() = %s, want override %s", got, dir)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfgDir := t.TempDir()

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: types.FilesystemPath(cfgDir)})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Keyword != DefaultKeyword {
		t.Errorf("Keyword = %q, want default", cfg.Keyword)
	}
	if cfg.WatchDelay != DefaultWatchDelay {
		t.Errorf("WatchDelay = %d, want default", cfg.WatchDelay)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("APPC_WATCH_DELAY", "750")
	t.Setenv("APPC_KEYWORD", "require")

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: types.FilesystemPath(t.TempDir())})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.WatchDelay != 750 {
		t.Errorf("WatchDelay = %d, want env override 750", cfg.WatchDelay)
	}
	if cfg.Keyword != "require" {
		t.Errorf("Keyword = %q, want env override require", cfg.Keyword)
	}
}

func TestLoad_FromCUEFile(t *testing.T) {
	cfgDir := t.TempDir()
	content := `
keyword:     "require"
watch_delay: 100

write: {
	dir:             "/srv/out"
	delay:           500
	relative_errors: false
}
`
	if err := os.WriteFile(filepath.Join(cfgDir, "config.cue"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: types.FilesystemPath(cfgDir)})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Keyword != "require" {
		t.Errorf("Keyword = %q, want require", cfg.Keyword)
	}
	if cfg.WatchDelay != 100 {
		t.Errorf("WatchDelay = %d, want 100", cfg.WatchDelay)
	}
	// Unset fields keep their defaults
	if cfg.SettleDelay != DefaultSettleDelay {
		t.Errorf("SettleDelay = %d, want default", cfg.SettleDelay)
	}
	if cfg.Write.Dir != "/srv/out" {
		t.Errorf("Write.Dir = %q, want /srv/out", cfg.Write.Dir)
	}
	if cfg.Write.Delay != 500 {
		t.Errorf("Write.Delay = %d, want 500", cfg.Write.Delay)
	}
	if cfg.Write.RelativeErrors {
		t.Error("Write.RelativeErrors should be false")
	}
	if len(cfg.Write.Check) == 0 {
		t.Error("Write.Check should keep its default")
	}
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.cue")
	if err := os.WriteFile(path, []byte(`keyword: "import_once"`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: types.FilesystemPath(path)})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Keyword != "import_once" {
		t.Errorf("Keyword = %q, want import_once", cfg.Keyword)
	}
}

func TestLoad_ExplicitConfigFileMissing(t *testing.T) {
	_, err := NewProvider().Load(context.Background(), LoadOptions{
		ConfigFilePath: types.FilesystemPath(filepath.Join(t.TempDir(), "nope.cue")),
	})
	if err == nil {
		t.Fatal("Load() should fail for a missing explicit config file")
	}

	var actionable *issue.ActionableError
	if !errors.As(err, &actionable) {
		t.Fatalf("error should be *issue.ActionableError, got %T", err)
	}
	if !actionable.HasSuggestions() {
		t.Error("error should carry suggestions")
	}
}

func TestLoad_InvalidCUESyntax(t *testing.T) {
	cfgDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(cfgDir, "config.cue"), []byte(`keyword: "unterminated`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: types.FilesystemPath(cfgDir)})
	if err == nil {
		t.Fatal("Load() should fail for invalid CUE syntax")
	}
}

func TestLoad_SchemaViolation(t *testing.T) {
	cfgDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(cfgDir, "config.cue"), []byte(`watch_delay: -5`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: types.FilesystemPath(cfgDir)})
	if err == nil {
		t.Fatal("Load() should fail for a negative watch_delay")
	}
}

func TestLoad_UnknownField(t *testing.T) {
	cfgDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(cfgDir, "config.cue"), []byte(`wath_delay: 100`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: types.FilesystemPath(cfgDir)})
	if err == nil {
		t.Fatal("Load() should fail for an unknown field")
	}
}

func TestLoad_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: types.FilesystemPath(t.TempDir())})
	if err == nil {
		t.Fatal("Load() should fail when the context is canceled")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error should wrap context.Canceled, got %v", err)
	}
}

func TestCreateDefaultConfig_RoundTrip(t *testing.T) {
	cfgDir := t.TempDir()
	SetConfigDirOverride(cfgDir)
	t.Cleanup(Reset)

	if err := CreateDefaultConfig(); err != nil {
		t.Fatalf("CreateDefaultConfig() returned error: %v", err)
	}

	cfgPath := filepath.Join(cfgDir, "config.cue")
	if _, err := os.Stat(cfgPath); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	// Creating again is a no-op
	if err := CreateDefaultConfig(); err != nil {
		t.Fatalf("second CreateDefaultConfig() returned error: %v", err)
	}

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: types.FilesystemPath(cfgDir)})
	if err != nil {
		t.Fatalf("Load() of generated config returned error: %v", err)
	}
	if cfg.Keyword != DefaultKeyword {
		t.Errorf("Keyword = %q, want default", cfg.Keyword)
	}
	if !cfg.Write.RelativeErrors {
		t.Error("generated config should keep relative_errors on")
	}
}

func TestSave_WritesParseableConfig(t *testing.T) {
	cfgDir := t.TempDir()
	SetConfigDirOverride(cfgDir)
	t.Cleanup(Reset)

	cfg := DefaultConfig()
	cfg.Keyword = "require"
	cfg.Write.Dir = "/srv/out"
	cfg.Write.Name = "bundle.js"

	if err := Save(cfg); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	loaded, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: types.FilesystemPath(cfgDir)})
	if err != nil {
		t.Fatalf("Load() of saved config returned error: %v", err)
	}
	if loaded.Keyword != "require" {
		t.Errorf("Keyword = %q, want require", loaded.Keyword)
	}
	if loaded.Write.Dir != "/srv/out" {
		t.Errorf("Write.Dir = %q, want /srv/out", loaded.Write.Dir)
	}
	if loaded.Write.Name != "bundle.js" {
		t.Errorf("Write.Name = %q, want bundle.js", loaded.Write.Name)
	}
}

func TestGenerateCUE(t *testing.T) {
	t.Parallel()

	out := GenerateCUE(DefaultConfig())

	for _, want := range []string{
		`keyword: "include"`,
		"watch_delay: 250",
		"settle_delay: 50",
		"delay: 250",
		`check: ["node", "--check", "{file}"]`,
		"relative_errors: true",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("GenerateCUE() missing %q\ngot:\n%s", want, out)
		}
	}
}

func TestEnsureConfigDir(t *testing.T) {
	base := t.TempDir()
	SetConfigDirOverride(filepath.Join(base, "nested", "appc"))
	t.Cleanup(Reset)

	if err := EnsureConfigDir(); err != nil {
		t.Fatalf("EnsureConfigDir() returned error: %v", err)
	}

	info, err := os.Stat(filepath.Join(base, "nested", "appc"))
	if err != nil || !info.IsDir() {
		t.Errorf("config dir not created: %v", err)
	}
}
