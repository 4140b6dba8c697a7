package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupIntegrityDir(t *testing.T, dir string, withTokens bool) *ConfigFiles {
	t.Helper()
	writeTestFile(t, filepath.Join(dir, ConfigFileName), "service:\n  name: test\n")
	if withTokens {
		writeTestFile(t, filepath.Join(dir, TokensFileName), "tokens:\n  - token: abc\n    scopes: [\"*\"]\n")
	}
	files, err := ResolveFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	return files
}

func TestVerifyIntegrityAllValid(t *testing.T) {
	files := setupIntegrityDir(t, t.TempDir(), true)
	if _, err := Lock(files, false); err != nil {
		t.Fatal(err)
	}

	result, err := VerifyIntegrity(files)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Passed || !result.Manifest {
		t.Errorf("expected Passed with manifest, got %+v", result)
	}
	if len(result.Warnings) > 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
}

func TestVerifyIntegrityNoManifest(t *testing.T) {
	t.Run("config only passes", func(t *testing.T) {
		files := setupIntegrityDir(t, t.TempDir(), false)
		result, err := VerifyIntegrity(files)
		if err != nil {
			t.Fatal(err)
		}
		if !result.Passed || result.Manifest {
			t.Errorf("got %+v", result)
		}
	})

	t.Run("tokens without manifest fails", func(t *testing.T) {
		files := setupIntegrityDir(t, t.TempDir(), true)
		result, err := VerifyIntegrity(files)
		if err != nil {
			t.Fatal(err)
		}
		if result.Passed {
			t.Fatal("expected failure")
		}
		if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "config lock") {
			t.Errorf("errors = %v", result.Errors)
		}
	})
}

func TestVerifyIntegrityHighSecurityMismatch(t *testing.T) {
	dir := t.TempDir()
	files := setupIntegrityDir(t, dir, true)
	if _, err := Lock(files, false); err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, files.Tokens, "tokens:\n  - token: stolen\n    scopes: [\"*\"]\n")

	result, err := VerifyIntegrity(files)
	if err != nil {
		t.Fatal(err)
	}
	if result.Passed {
		t.Fatal("expected Passed=false on tokens.yaml tampering")
	}
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "hash mismatch for tokens.yaml") {
		t.Errorf("errors = %v", result.Errors)
	}
}

func TestVerifyIntegrityOperationalMismatchWarns(t *testing.T) {
	files := setupIntegrityDir(t, t.TempDir(), false)
	if _, err := Lock(files, false); err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, files.Config, "service:\n  name: edited\n")

	result, err := VerifyIntegrity(files)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Passed {
		t.Fatalf("operational drift should not fail: %v", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("warnings = %v", result.Warnings)
	}
}

func TestVerifyIntegrityTokensRemoved(t *testing.T) {
	dir := t.TempDir()
	files := setupIntegrityDir(t, dir, true)
	if _, err := Lock(files, false); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(files.Tokens); err != nil {
		t.Fatal(err)
	}

	files, err := ResolveFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	result, err := VerifyIntegrity(files)
	if err != nil {
		t.Fatal(err)
	}
	if result.Passed {
		t.Fatal("removing a locked tokens.yaml must fail verification")
	}
}
