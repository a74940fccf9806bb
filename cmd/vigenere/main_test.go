package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/vigenere/internal/cipher"
	"github.com/verte-zerg/vigenere/internal/config"
	"github.com/verte-zerg/vigenere/internal/model"
)

func isolateHome(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestEncryptCommand(t *testing.T) {
	out, err := execute(t, "", "encrypt", "--key", "lemon", "--text", "Attack at dawn!")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if out != "Lxfopv ef rnhr!\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestDecryptCommandReadsStdin(t *testing.T) {
	out, err := execute(t, "LXFOPVEFRNHR\n", "decrypt", "--key", "LEMON")
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if out != "ATTACKATDAWN\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestCrackRecordsHistory(t *testing.T) {
	isolateHome(t)
	raw, err := os.ReadFile(filepath.Join("..", "..", "internal", "attack", "testdata", "quijote.txt"))
	if err != nil {
		t.Fatalf("read testdata: %v", err)
	}
	ct, err := cipher.EncodeText(string(raw), "LUNA")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "cipher.txt")
	if err := os.WriteFile(path, []byte(ct), 0o644); err != nil {
		t.Fatalf("write cipher: %v", err)
	}

	out, err := execute(t, "", "crack", "--file", path, "--max-len", "12", "--workers", "2", "--record")
	if err != nil {
		t.Fatalf("crack: %v", err)
	}
	lines := strings.Split(out, "\n")
	if len(lines) < 2 || !strings.Contains(lines[1], "LUNA") {
		t.Fatalf("expected LUNA ranked first, got:\n%s", out)
	}
	if !strings.Contains(out, "Score by key length:") {
		t.Fatalf("expected sparkline, got:\n%s", out)
	}

	if _, err := os.Stat(config.DefaultDBPath()); err != nil {
		t.Fatalf("expected history database: %v", err)
	}
	out, err = execute(t, "", "history", "--mode", "statistical")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "LUNA") || !strings.Contains(out, model.ModeStatistical) {
		t.Fatalf("unexpected history output:\n%s", out)
	}
}

func TestCrackRejectsUnknownMode(t *testing.T) {
	isolateHome(t)
	if _, err := execute(t, "", "crack", "--mode", "quantum", "--text", "HOLA"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestCrackRejectsOverflowingBruteLength(t *testing.T) {
	isolateHome(t)
	_, err := execute(t, "", "crack", "--mode", "brute", "--max-len", "14", "--text", "HOLA")
	if !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	valid := model.Config{Mode: model.ModeStatistical, Lang: "es", Workers: 0, MaxLen: 20, BruteMaxLen: 4, Top: 10}
	if err := validateConfig(valid); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	tests := []struct {
		name   string
		mutate func(*model.Config)
	}{
		{"mode", func(c *model.Config) { c.Mode = "guess" }},
		{"lang", func(c *model.Config) { c.Lang = "xx" }},
		{"workers", func(c *model.Config) { c.Workers = -1 }},
		{"max-len", func(c *model.Config) { c.MaxLen = 0 }},
		{"brute-max-len", func(c *model.Config) { c.BruteMaxLen = 0 }},
		{"brute-max-len overflow", func(c *model.Config) { c.BruteMaxLen = 14 }},
		{"top", func(c *model.Config) { c.Top = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := validateConfig(cfg); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var b strings.Builder
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, " = ") {
			line = strings.TrimPrefix(line, "# ")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	a := cfg.Attack
	if a.Lang == nil || *a.Lang != "es" {
		t.Fatalf("unexpected lang: %v", a.Lang)
	}
	if a.MaxLen == nil || *a.MaxLen != 20 || a.BruteMaxLen == nil || *a.BruteMaxLen != 4 {
		t.Fatalf("unexpected key lengths: %v %v", a.MaxLen, a.BruteMaxLen)
	}
	if a.Top == nil || *a.Top != 10 || a.Record == nil || *a.Record {
		t.Fatalf("unexpected top/record: %v %v", a.Top, a.Record)
	}
}

func TestReadInputPrefersText(t *testing.T) {
	got, err := readInput(strings.NewReader("stdin"), "inline", "ignored")
	if err != nil || got != "inline" {
		t.Fatalf("expected inline text, got %q (%v)", got, err)
	}
	got, err = readInput(strings.NewReader("from stdin\n"), "", "-")
	if err != nil || got != "from stdin" {
		t.Fatalf("expected stdin text, got %q (%v)", got, err)
	}
}
