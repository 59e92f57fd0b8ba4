// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kartikk221/application-compiler/internal/config"
)

func TestRunWatch_RequiresOutputDir(t *testing.T) {
	dir := t.TempDir()
	root := writeSourceFile(t, dir, "app.js", "const a = 1;\n")

	app, _, _ := newTestApp()
	err := runWatch(context.Background(), app, root, "", "", "")
	if err == nil {
		t.Fatal("runWatch() should fail without an output directory")
	}
	if !strings.Contains(err.Error(), "output directory") {
		t.Errorf("error should explain the missing output directory, got %v", err)
	}
}

func TestRunWatch_UsesConfiguredOutputDir(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "lib.js", "const b = 2;\n")
	root := writeSourceFile(t, dir, "app.js", "include(\"./lib.js\");\n")
	outDir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Write.Dir = config.OutputDirPath(outDir)
	// Writing happens synchronously before Run; disable the checker so the
	// test does not depend on a node binary.
	cfg.Write.Check = nil

	app, stdout, stderr := newTestApp()
	app.Config = stubConfigProvider{cfg: cfg}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runWatch(ctx, app, root, "", "", "")
	}()

	artifact := filepath.Join(outDir, "app.compiled.js")
	deadline := time.After(5 * time.Second)
	for {
		if _, err := os.Stat(artifact); err == nil {
			break
		}
		select {
		case <-deadline:
			cancel()
			t.Fatalf("artifact never appeared (stderr: %s)", stderr.String())
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("runWatch() returned error after cancel: %v", err)
	}

	data, err := os.ReadFile(artifact)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "const b = 2;") {
		t.Errorf("artifact missing included content:\n%s", data)
	}
	if !strings.Contains(stdout.String(), "watching") {
		t.Errorf("stdout should announce watch mode, got %q", stdout.String())
	}
}
