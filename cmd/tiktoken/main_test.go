package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/corebpe/tiktoken"
)

func TestApplyConfigFlagNoopWhenUnset(t *testing.T) {
	runFlags(t, []cli.Flag{&cli.StringFlag{Name: "config"}}, nil, func(cmd *cli.Command) {
		if _, err := applyConfigFlag(context.Background(), cmd); err != nil {
			t.Fatalf("applyConfigFlag: %v", err)
		}
	})
}

func TestApplyConfigFlagRegistersVocabFromFile(t *testing.T) {
	dir := t.TempDir()
	tiktokenPath := filepath.Join(dir, "custom.tiktoken")
	// base64("a") == "YQ==", a single-byte token at rank 0.
	if err := os.WriteFile(tiktokenPath, []byte("YQ== 0\n"), 0o644); err != nil {
		t.Fatalf("write tiktoken file: %v", err)
	}
	configPath := filepath.Join(dir, "registry.yaml")
	configContent := "vocabs:\n  - name: cli-config-fixture\n    pattern: '.'\n    tiktoken_file: " + tiktokenPath + "\n"
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Cleanup(func() { _ = tiktoken.Unregister("cli-config-fixture") })

	runFlags(t, []cli.Flag{&cli.StringFlag{Name: "config"}}, []string{"--config=" + configPath}, func(cmd *cli.Command) {
		if _, err := applyConfigFlag(context.Background(), cmd); err != nil {
			t.Fatalf("applyConfigFlag: %v", err)
		}
	})

	if _, err := tiktoken.GetEncoding(context.Background(), "cli-config-fixture"); err != nil {
		t.Fatalf("expected config-seeded vocab to resolve: %v", err)
	}
}
